// Package uci drives a game over a UCI-style line protocol.
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/swnchess/internal/board"
	"github.com/hailam/swnchess/internal/engine"
	"github.com/hailam/swnchess/internal/game"
	"github.com/hailam/swnchess/internal/storage"
)

// Config holds the optional collaborators of the protocol handler.
type Config struct {
	// Store keeps save slots; save and load are refused without one.
	Store *storage.Storage
	// Seed fixes the random seed of every new game; 0 picks one per game.
	Seed    uint32
	Variant string
	// Player is the side the user plays; finished games count as wins or
	// losses from its point of view.
	Player storage.PlayerColor
	Logger zerolog.Logger
}

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine *engine.Engine
	game   *game.Game
	cfg    Config
	log    zerolog.Logger

	in  io.Reader
	out io.Writer
	mu  sync.Mutex // serialises writes from the search goroutine

	// Search state
	searchDone chan struct{}
	cancel     context.CancelFunc

	started  time.Time
	recorded string // key of the last game added to the stats
}

// New creates a new UCI protocol handler reading commands from in and
// writing replies to out.
func New(eng *engine.Engine, in io.Reader, out io.Writer, cfg Config) *UCI {
	if cfg.Variant == "" {
		cfg.Variant = "standard"
	}
	u := &UCI{
		engine: eng,
		cfg:    cfg,
		log:    cfg.Logger,
		in:     in,
		out:    out,
	}
	u.newGame()
	return u
}

func (u *UCI) newGame() {
	u.game = game.New(u.gameOptions()...)
	u.started = time.Now()
	u.recorded = ""
}

// Game returns the current game.
func (u *UCI) Game() *game.Game {
	return u.game
}

func (u *UCI) gameOptions() []game.Option {
	opts := []game.Option{game.WithLogger(u.log)}
	if u.cfg.Seed != 0 {
		opts = append(opts, game.WithSeed(u.cfg.Seed))
	}
	return opts
}

func (u *UCI) send(format string, args ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, format+"\n", args...)
}

// Run reads commands until "quit" or the end of input. Only "stop" and
// "quit" cut a running search short; commands that change the game wait
// for it, as does the end of input.
func (u *UCI) Run() error {
	scanner := bufio.NewScanner(u.in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]
		u.log.Debug().Str("cmd", line).Msg("command")

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.send("readyok")
		case "ucinewgame":
			u.wait()
			u.newGame()
		case "position":
			u.wait()
			u.handlePosition(args)
			u.recordResult()
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleStop()
			return nil
		case "setoption":
			u.handleSetOption(args)
		// Debug and shell commands
		case "d":
			u.handleDisplay()
		case "perft":
			u.handlePerft(args)
		case "undo":
			u.wait()
			u.handleUndo(args)
		case "save":
			u.handleSave(args)
		case "load":
			u.wait()
			u.handleLoad(args)
		case "saves":
			u.handleSaves()
		case "delete":
			u.handleDelete(args)
		case "stats":
			u.handleStats()
		default:
			u.send("info string Unknown command: %s", cmd)
		}
	}

	u.wait()
	return scanner.Err()
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.send("id name SwnChess")
	u.send("id author SwnChess Team")
	u.send("")
	u.send("option name Difficulty type combo default %s var easy var medium var hard", u.engine.Difficulty())
	u.send("option name Seed type spin default 0 min 0 max 4294967295")
	u.send("uciok")
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
//
// Moves may be given in coordinate or algebraic form.
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	movesAt := len(args)
	for i, arg := range args {
		if arg == "moves" {
			movesAt = i
			break
		}
	}

	switch args[0] {
	case "startpos":
		u.game = game.New(u.gameOptions()...)
	case "fen":
		fen := strings.Join(args[1:movesAt], " ")
		u.game = game.FromFEN(fen, u.gameOptions()...)
	default:
		return
	}

	if movesAt >= len(args) {
		return
	}
	for _, text := range args[movesAt+1:] {
		res := u.game.MoveText(text)
		if !res.OK {
			u.log.Warn().Str("move", text).Err(res.Err).Msg("position move rejected")
			u.send("info string Invalid move: %s", text)
			return
		}
	}
}

// handleGo starts a search on its own goroutine. Only "depth" is
// understood; without it the difficulty depth is used.
func (u *UCI) handleGo(args []string) {
	u.wait()

	depth := 0
	for i := 0; i < len(args); i++ {
		if args[i] == "depth" && i+1 < len(args) {
			depth, _ = strconv.Atoi(args[i+1])
			i++
		}
	}
	u.engine.SetDepth(depth)

	// Configure info callback
	u.engine.OnInfo = u.sendInfo

	root := u.game.Position().Copy()
	if u.game.IsOver() || len(root.LegalMoves()) == 0 {
		u.send("bestmove 0000")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel
	u.searchDone = make(chan struct{})
	results := u.engine.SearchAsync(ctx, u.game)

	go func() {
		defer close(u.searchDone)
		res, ok := <-results
		if !ok {
			u.log.Debug().Msg("search abandoned")
			return
		}
		u.send("bestmove %s", moveString(root, res))
	}()
}

// moveString renders a search result in coordinate form. Promotions are
// always to a queen.
func moveString(pos *board.Position, res engine.Result) string {
	if res.From == board.NoSquare {
		return "0000"
	}
	s := res.From.String() + res.To.String()
	if pos.Board[res.From].Kind() == board.Pawn && (res.To.Rank() == 0 || res.To.Rank() == 7) {
		s += "q"
	}
	return s
}

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	var parts []string

	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))

	// Score
	switch {
	case info.Score > engine.Win:
		parts = append(parts, fmt.Sprintf("score mate %d", engine.MateDistance(info.Score)))
	case info.Score < -engine.Win:
		parts = append(parts, fmt.Sprintf("score mate -%d", engine.MateDistance(-info.Score)))
	default:
		parts = append(parts, fmt.Sprintf("score cp %d", engine.CentiPawns(info.Score)))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))

	// NPS
	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}
	if info.Move.From != board.NoSquare {
		parts = append(parts, "pv "+info.Move.From.String()+info.Move.To.String())
	}

	u.send("info %s", strings.Join(parts, " "))
}

// handleStop abandons the current search and waits for its goroutine.
func (u *UCI) handleStop() {
	if u.cancel != nil {
		u.cancel()
		u.cancel = nil
	}
	u.wait()
}

// wait blocks until the running search, if any, has reported.
func (u *UCI) wait() {
	if u.searchDone != nil {
		<-u.searchDone
		u.searchDone = nil
	}
	if u.cancel != nil {
		u.cancel()
		u.cancel = nil
	}
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	// Handle options
	switch strings.ToLower(name) {
	case "difficulty":
		d, ok := engine.ParseDifficulty(strings.ToLower(value))
		if !ok {
			u.send("info string Unknown difficulty: %s", value)
			return
		}
		u.engine.SetDifficulty(d)
	case "seed":
		seed, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			u.send("info string Invalid seed: %s", value)
			return
		}
		u.cfg.Seed = uint32(seed)
	default:
		u.send("info string Unknown option: %s", name)
	}
}

// handleDisplay prints the board, the FEN and the game state.
func (u *UCI) handleDisplay() {
	g := u.game
	u.send("%s", g.Position().String())
	u.send("Fen: %s", g.FEN())
	u.send("Ply: %d", g.Ply())
	if moves := g.Notation(); len(moves) > 0 {
		u.send("Moves: %s", strings.Join(moves, " "))
	}
	if g.IsOver() {
		u.send("Result: %s", g.Outcome())
	}
}

// handlePerft runs a perft test, listing the count below each root move.
func (u *UCI) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		depth, _ = strconv.Atoi(args[0])
	}

	pos := u.game.Position().Copy()
	start := time.Now()
	divide := u.engine.Divide(pos, depth)
	elapsed := time.Since(start)

	keys := make([]string, 0, len(divide))
	var nodes uint64
	for k, n := range divide {
		keys = append(keys, k)
		nodes += n
	}
	sort.Strings(keys)
	for _, k := range keys {
		u.send("%s: %d", k, divide[k])
	}

	u.send("Nodes: %d", nodes)
	u.send("Time: %v", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		u.send("NPS: %.0f", nps)
	}
}

// handleUndo takes back n plies, one by default.
func (u *UCI) handleUndo(args []string) {
	n := 1
	if len(args) > 0 {
		if v, err := strconv.Atoi(args[0]); err == nil && v > 0 {
			n = v
		}
	}
	if err := u.game.JumpToPly(-n); err != nil {
		u.log.Error().Err(err).Msg("undo failed")
		u.send("info string Undo failed: %v", err)
	}
}

// handleSave stores the current game in a slot.
func (u *UCI) handleSave(args []string) {
	if len(args) == 0 {
		u.send("info string Usage: save <slot>")
		return
	}
	if u.cfg.Store == nil {
		u.send("info string No storage configured")
		return
	}
	if err := u.cfg.Store.SaveGame(args[0], u.game.Snapshot(u.cfg.Variant)); err != nil {
		u.log.Error().Err(err).Str("slot", args[0]).Msg("save failed")
		u.send("info string Save failed: %v", err)
		return
	}
	u.send("info string Saved %s", args[0])
}

// handleLoad replaces the current game with the one in a slot. Without an
// argument the last saved slot is used.
func (u *UCI) handleLoad(args []string) {
	if u.cfg.Store == nil {
		u.send("info string No storage configured")
		return
	}
	slot := ""
	if len(args) > 0 {
		slot = args[0]
	} else {
		current, err := u.cfg.Store.CurrentSlot()
		if err != nil || current == "" {
			u.send("info string Nothing to load")
			return
		}
		slot = current
	}

	rec, err := u.cfg.Store.LoadGame(slot)
	if err != nil {
		u.send("info string Load failed: %v", err)
		return
	}
	g, err := game.Restore(rec, game.WithLogger(u.log))
	if err != nil {
		u.log.Error().Err(err).Str("slot", slot).Msg("restore failed")
		u.send("info string Load failed: %v", err)
		return
	}
	u.game = g
	u.cfg.Variant = rec.Variant
	u.started = time.Now()
	if g.IsOver() {
		// Saved after it ended, so it was counted then.
		u.recorded = gameKey(g)
	}
	u.send("info string Loaded %s", slot)
}

// handleSaves lists the used save slots and the current one.
func (u *UCI) handleSaves() {
	if u.cfg.Store == nil {
		u.send("info string No storage configured")
		return
	}
	slots, err := u.cfg.Store.ListSaves()
	if err != nil {
		u.log.Error().Err(err).Msg("list saves failed")
		u.send("info string Listing saves failed: %v", err)
		return
	}
	if len(slots) == 0 {
		u.send("info string No saved games")
		return
	}
	u.send("info string Saves: %s", strings.Join(slots, " "))
	if current, err := u.cfg.Store.CurrentSlot(); err == nil && current != "" {
		u.send("info string Current: %s", current)
	}
}

// handleDelete removes a save slot.
func (u *UCI) handleDelete(args []string) {
	if len(args) == 0 {
		u.send("info string Usage: delete <slot>")
		return
	}
	if u.cfg.Store == nil {
		u.send("info string No storage configured")
		return
	}
	if err := u.cfg.Store.DeleteGame(args[0]); err != nil {
		u.send("info string Delete failed: %v", err)
		return
	}
	u.send("info string Deleted %s", args[0])
}

// handleStats prints the results recorded so far.
func (u *UCI) handleStats() {
	if u.cfg.Store == nil {
		u.send("info string No storage configured")
		return
	}
	stats, err := u.cfg.Store.LoadStats()
	if err != nil {
		u.log.Error().Err(err).Msg("load stats failed")
		u.send("info string Stats failed: %v", err)
		return
	}
	u.send("info string Games %d wins %d losses %d draws %d win rate %.1f%%",
		stats.GamesPlayed, stats.Wins, stats.Losses, stats.Draws, stats.GetWinRate())
	u.send("info string Streak %d longest %d", stats.CurrentStreak, stats.LongestWinStrk)
}

// gameKey identifies a game by where it started and what was played.
func gameKey(g *game.Game) string {
	return g.Beginning() + " " + strings.Join(g.Notation(), " ")
}

// recordResult adds the current game to the stats the first time it is
// seen finished. GUIs resend the whole game with every position command,
// so the same finished game is only counted once.
func (u *UCI) recordResult() {
	if u.cfg.Store == nil || !u.game.IsOver() {
		return
	}
	key := gameKey(u.game)
	if key == u.recorded {
		return
	}
	u.recorded = key

	result := storage.GameResult{
		Outcome:    u.game.Outcome(),
		Player:     u.cfg.Player,
		Difficulty: u.engine.Difficulty(),
		Duration:   time.Since(u.started),
	}
	if err := u.cfg.Store.RecordGame(result); err != nil {
		u.log.Error().Err(err).Msg("record game failed")
		u.send("info string Recording result failed: %v", err)
		return
	}
	u.log.Info().Str("result", result.Outcome.String()).Bool("won", result.Won()).Msg("game recorded")
	u.send("info string Result %s recorded", result.Outcome)
}
