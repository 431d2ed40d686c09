package game

import (
	"fmt"

	"github.com/hailam/swnchess/internal/board"
)

// Record is the saved form of a game: enough to rebuild it by replaying
// History from Start with the same seed. FEN is the position the history
// leads to and is checked on restore.
type Record struct {
	Variant string `json:"variant"`
	Seed    uint32 `json:"seed"`
	Start   string `json:"start,omitempty"`
	History []Step `json:"history"`
	FEN     string `json:"fen"`
}

// Snapshot returns the record of the game under the given variant name.
func (g *Game) Snapshot(variant string) Record {
	rec := Record{
		Variant: variant,
		Seed:    g.seed,
		History: g.History(),
		FEN:     g.pos.FEN(),
	}
	if g.beginning != board.StartFEN {
		rec.Start = g.beginning
	}
	return rec
}

// Restore rebuilds a game from a record. A step that no longer applies
// returns an error wrapping ErrIllegalMove; a replay that does not reach
// the recorded FEN returns ErrBadRecord.
func Restore(rec Record, opts ...Option) (*Game, error) {
	start := rec.Start
	if start == "" {
		start = board.StartFEN
	}
	opts = append(opts, WithSeed(rec.Seed))
	g := FromFEN(start, opts...)

	for _, s := range rec.History {
		if res := g.apply(s); !res.OK {
			return nil, &ReplayError{Err: res.Err, Ply: g.pos.Ply, Step: s}
		}
	}
	if rec.FEN != "" && rec.FEN != g.pos.FEN() {
		return nil, fmt.Errorf("%w: replay reached %q, record has %q", ErrBadRecord, g.pos.FEN(), rec.FEN)
	}
	g.logger.Debug().Str("variant", rec.Variant).Int("ply", g.pos.Ply).Msg("game restored")
	return g, nil
}
