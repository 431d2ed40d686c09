package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"github.com/hailam/swnchess/internal/engine"
	"github.com/hailam/swnchess/internal/game"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	keyCurrent     = "current"
	savePrefix     = "save/"
)

// Sentinel errors for save slots.
var (
	// ErrNoSave indicates a slot with nothing saved in it.
	ErrNoSave = errors.New("no saved game")

	// ErrBadSlot indicates a slot name that cannot be used as a key.
	ErrBadSlot = errors.New("invalid slot name")

	// ErrUnfinished indicates a result recorded before the game ended.
	ErrUnfinished = errors.New("game not finished")
)

// PlayerColor represents which color the human plays
type PlayerColor int

const (
	ColorWhite PlayerColor = iota
	ColorBlack
)

// UserPreferences stores user settings
type UserPreferences struct {
	Username    string            `json:"username"`
	Difficulty  engine.Difficulty `json:"difficulty"`
	PlayerColor PlayerColor       `json:"player_color"`
	Variant     string            `json:"variant"`
	LastPlayed  time.Time         `json:"last_played"`
}

// DefaultPreferences returns default user preferences
func DefaultPreferences() *UserPreferences {
	return &UserPreferences{
		Username:    "Player",
		Difficulty:  engine.Medium,
		PlayerColor: ColorWhite,
		Variant:     "standard",
		LastPlayed:  time.Now(),
	}
}

// GameStats stores game statistics
type GameStats struct {
	GamesPlayed    int            `json:"games_played"`
	Wins           int            `json:"wins"`
	Losses         int            `json:"losses"`
	Draws          int            `json:"draws"`
	WinsByDiff     map[string]int `json:"wins_by_difficulty"`
	TotalPlayTime  time.Duration  `json:"total_play_time"`
	LongestWinStrk int            `json:"longest_win_streak"`
	CurrentStreak  int            `json:"current_streak"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{
		WinsByDiff: make(map[string]int),
	}
}

// GameResult represents the result of a completed game
type GameResult struct {
	Outcome    game.Outcome
	Player     PlayerColor
	Difficulty engine.Difficulty
	Duration   time.Duration
}

// Won reports whether the human side won.
func (r GameResult) Won() bool {
	return (r.Outcome == game.WhiteWins && r.Player == ColorWhite) ||
		(r.Outcome == game.BlackWins && r.Player == ColorBlack)
}

// Storage wraps BadgerDB for persistent storage. Saved games are stored as
// zstd-compressed JSON records.
type Storage struct {
	db      *badger.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	log     zerolog.Logger
}

// NewStorage opens the database in the platform data directory.
func NewStorage(log zerolog.Logger) (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir, log)
}

// Open opens or creates the database in dir.
func Open(dir string, log zerolog.Logger) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", dir, err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	log.Debug().Str("dir", dir).Msg("storage opened")
	return &Storage{db: db, encoder: encoder, decoder: decoder, log: log}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.encoder != nil {
		s.encoder.Close()
	}
	if s.decoder != nil {
		s.decoder.Close()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func slotKey(slot string) ([]byte, error) {
	if slot == "" || strings.ContainsAny(slot, "/ \t\n") {
		return nil, fmt.Errorf("%w: %q", ErrBadSlot, slot)
	}
	return []byte(savePrefix + slot), nil
}

// SaveGame stores a game record in slot and makes it the current slot.
func (s *Storage) SaveGame(slot string, rec game.Record) error {
	key, err := slotKey(slot)
	if err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	packed := s.encoder.EncodeAll(data, nil)

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, packed); err != nil {
			return err
		}
		return txn.Set([]byte(keyCurrent), []byte(slot))
	})
	if err != nil {
		return fmt.Errorf("save slot %s: %w", slot, err)
	}
	s.log.Debug().Str("slot", slot).Int("plies", len(rec.History)).
		Int("bytes", len(packed)).Msg("game saved")
	return nil
}

// LoadGame reads the record in slot.
func (s *Storage) LoadGame(slot string) (game.Record, error) {
	var rec game.Record
	key, err := slotKey(slot)
	if err != nil {
		return rec, err
	}

	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w in slot %s", ErrNoSave, slot)
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			data, err := s.decoder.DecodeAll(val, nil)
			if err != nil {
				return fmt.Errorf("decompress slot %s: %w", slot, err)
			}
			return json.Unmarshal(data, &rec)
		})
	})
	return rec, err
}

// DeleteGame removes the record in slot. If slot was current, no slot is
// current afterwards.
func (s *Storage) DeleteGame(slot string) error {
	key, err := slotKey(slot)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w in slot %s", ErrNoSave, slot)
		} else if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}

		item, err := txn.Get([]byte(keyCurrent))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		current, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if string(current) == slot {
			return txn.Delete([]byte(keyCurrent))
		}
		return nil
	})
}

// ListSaves returns the names of all used slots in key order.
func (s *Storage) ListSaves() ([]string, error) {
	var slots []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(savePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			slots = append(slots, strings.TrimPrefix(string(it.Item().Key()), savePrefix))
		}
		return nil
	})
	return slots, err
}

// CurrentSlot returns the slot saved last, or "" if there is none.
func (s *Storage) CurrentSlot() (string, error) {
	var slot string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyCurrent))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			slot = string(val)
			return nil
		})
	})
	return slot, err
}

// SavePreferences saves user preferences
func (s *Storage) SavePreferences(prefs *UserPreferences) error {
	prefs.LastPlayed = time.Now()

	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPreferences), data)
	})
}

// LoadPreferences loads user preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*UserPreferences, error) {
	prefs := DefaultPreferences()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPreferences))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Use defaults
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, prefs)
		})
	})

	return prefs, err
}

// SaveStats saves game statistics
func (s *Storage) SaveStats(stats *GameStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyStats), data)
	})
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyStats))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Use empty stats
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})

	return stats, err
}

// RecordGame records a completed game and updates statistics
func (s *Storage) RecordGame(result GameResult) error {
	if result.Outcome == game.Ongoing {
		return ErrUnfinished
	}
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.GamesPlayed++
	stats.TotalPlayTime += result.Duration

	switch {
	case result.Outcome == game.Draw:
		stats.Draws++
		stats.CurrentStreak = 0
	case result.Won():
		stats.Wins++
		stats.CurrentStreak++
		if stats.CurrentStreak > stats.LongestWinStrk {
			stats.LongestWinStrk = stats.CurrentStreak
		}
		stats.WinsByDiff[result.Difficulty.String()]++
	default:
		stats.Losses++
		stats.CurrentStreak = 0
	}

	return s.SaveStats(stats)
}

// GetWinRate returns the win rate as a percentage (0-100)
func (s *GameStats) GetWinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.GamesPlayed) * 100
}
