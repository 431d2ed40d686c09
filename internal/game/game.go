// Package game owns a single chess game: the position, the move history,
// repetition bookkeeping, the outcome and the game's own random source and
// evaluation tables.
package game

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/swnchess/internal/board"
	"github.com/hailam/swnchess/internal/engine"
	"github.com/hailam/swnchess/internal/rng"
)

// Draw thresholds on the half-move clock.
const (
	drawClock       = 100
	drawLikelyClock = 90
)

// Outcome is the result of a game. The values match the saved format.
type Outcome int

const (
	Ongoing Outcome = iota
	BlackWins
	WhiteWins
	Draw
)

// String returns the outcome in PGN result style.
func (o Outcome) String() string {
	switch o {
	case BlackWins:
		return "0-1"
	case WhiteWins:
		return "1-0"
	case Draw:
		return "1/2-1/2"
	}
	return "*"
}

// winner returns the outcome for a checkmate of colour mated.
func winner(mated board.Color) Outcome {
	return Outcome(mated) + 1
}

// placement returns the reserve piece a negative from square stands for.
func placement(from board.Square) (board.Piece, bool) {
	if from >= 0 || from < -board.Square(board.BlackQueen) {
		return board.Empty, false
	}
	p := board.Piece(-from)
	return p, p.IsPiece()
}

// promotable reports whether a pawn may become kind.
func promotable(kind board.Piece) bool {
	switch kind {
	case board.Queen, board.Rook, board.Bishop, board.Knight:
		return true
	}
	return false
}

// Step is one entry of the move history. From is negative for a reserve
// placement of piece -From; a pass has From and To both -1.
type Step struct {
	From      board.Square `json:"from"`
	To        board.Square `json:"to"`
	Promotion board.Piece  `json:"promotion,omitempty"`
}

// IsPass reports whether the step is a pass.
func (s Step) IsPass() bool {
	return s.To < 0
}

// String returns the step in coordinate form.
func (s Step) String() string {
	switch {
	case s.IsPass():
		return "-"
	case s.From < 0:
		p, ok := placement(s.From)
		if !ok {
			return "?@" + s.To.String()
		}
		return p.String() + "@" + s.To.String()
	}
	return s.From.String() + s.To.String()
}

// MoveResult is the answer to a move attempt. An illegal attempt leaves
// the game untouched and sets Err.
type MoveResult struct {
	OK       bool
	Flags    board.MoveFlags
	Notation string
	Err      error
}

func illegal(notation string) MoveResult {
	return MoveResult{Notation: notation, Err: ErrIllegalMove}
}

// Game is one game in progress. It is not safe for concurrent use; hand a
// search to another goroutine through SearchState.
type Game struct {
	pos       *board.Position
	beginning string
	seed      uint32

	history  []Step
	notation []string

	positionCounts     map[string]int
	currentRepetitions int

	prepared bool
	outcome  Outcome

	rng      *rng.Source
	searcher *engine.Searcher
	logger   zerolog.Logger
}

// Option configures a new Game.
type Option func(*Game)

// WithSeed fixes the seed of the game's random source.
func WithSeed(seed uint32) Option {
	return func(g *Game) {
		g.seed = seed
	}
}

// WithLogger sets the logger for move and outcome events.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Game) {
		g.logger = logger
	}
}

// New starts a game from the standard position.
func New(opts ...Option) *Game {
	return FromFEN(board.StartFEN, opts...)
}

// FromFEN starts a game from a FEN string. Parsing is lenient; problems
// that were repaired are logged as warnings.
func FromFEN(fen string, opts ...Option) *Game {
	g := &Game{
		seed:     uint32(time.Now().UnixNano()),
		logger:   zerolog.Nop(),
		searcher: engine.NewSearcher(),
	}
	for _, opt := range opts {
		opt(g)
	}

	pos, warnings := board.ParseFEN(fen)
	for _, w := range warnings {
		g.logger.Warn().Str("fen", fen).Msg(w)
	}
	g.pos = pos
	g.beginning = fen
	g.rng = rng.New(g.seed)
	g.positionCounts = map[string]int{pos.ReducedFEN(): 1}
	g.currentRepetitions = 1
	return g
}

// FEN returns the current position as a six-field FEN string.
func (g *Game) FEN() string {
	return g.pos.FEN()
}

// ReducedFEN returns the repetition key of the current position.
func (g *Game) ReducedFEN() string {
	return g.pos.ReducedFEN()
}

// Position returns the live position. Callers must not modify it.
func (g *Game) Position() *board.Position {
	return g.pos
}

// SideToMove returns the colour to move.
func (g *Game) SideToMove() board.Color {
	return g.pos.SideToMove
}

// Ply returns the half-move count, including moves before the starting
// FEN.
func (g *Game) Ply() int {
	return g.pos.Ply
}

// Seed returns the seed of the game's random source.
func (g *Game) Seed() uint32 {
	return g.seed
}

// Beginning returns the FEN the game started from.
func (g *Game) Beginning() string {
	return g.beginning
}

// History returns a copy of the applied steps.
func (g *Game) History() []Step {
	return append([]Step(nil), g.history...)
}

// Notation returns a copy of the move texts, one per history step.
func (g *Game) Notation() []string {
	return append([]string(nil), g.notation...)
}

// Outcome returns the latched result.
func (g *Game) Outcome() Outcome {
	return g.outcome
}

// IsOver reports whether the outcome has been decided.
func (g *Game) IsOver() bool {
	return g.outcome != Ongoing
}

// Repetitions returns how often the current position has occurred.
func (g *Game) Repetitions() int {
	return g.currentRepetitions
}

// LegalMovesFrom returns the legal destinations of the piece on sq.
func (g *Game) LegalMovesFrom(sq board.Square) []board.Square {
	var out []board.Square
	for _, m := range g.pos.LegalMoves() {
		if m.From == sq {
			out = append(out, m.To)
		}
	}
	return out
}

func (g *Game) drawLikely() bool {
	return g.pos.HalfMoveClock > drawLikelyClock || g.currentRepetitions >= 2
}

// prepare refreshes the evaluation tables if a move made them stale.
// Move scores are not needed to play a move, but the refresh draws from the
// random source, so it happens at the same points a search would expect.
func (g *Game) prepare() {
	if !g.prepared {
		engine.Prepare(g.pos, g.rng, g.drawLikely())
		g.prepared = true
	}
}

// Move plays from-to for the side to move. Promotion is the piece kind a
// pawn reaching the last rank becomes; Empty means queen, and only queen,
// rook, bishop or knight are accepted. A negative from
// places the reserve piece -from on the empty square to; placements skip
// the legality checks and do not pass the turn.
func (g *Game) Move(from, to board.Square, promotion board.Piece) MoveResult {
	if g.outcome != Ongoing {
		return MoveResult{Notation: "game over", Err: ErrGameOver}
	}
	if promotion == board.Empty {
		promotion = board.Queen
	}
	promotion = promotion.Kind()
	if !promotable(promotion) || !to.IsValid() {
		return illegal("")
	}

	pos := g.pos
	c := pos.SideToMove
	g.prepare()

	var moves board.MoveList
	if from >= 0 {
		moves = pos.Generate(c, pos.EnPassant, 0)
		if !moves.Contains(from, to) {
			return illegal("")
		}
	} else if _, ok := placement(from); !ok || pos.Board[to] != board.Empty {
		return illegal("")
	}

	undo := pos.MakeMove(from, to, promotion)
	if from >= 0 && pos.InCheck(c) {
		pos.UnmakeMove(undo)
		return illegal("in check!")
	}

	flags := board.FlagOK
	pos.EnPassant = undo.EnPassant
	switch {
	case undo.IsCapture():
		pos.HalfMoveClock = 0
		flags |= board.FlagCapture
	case undo.Moved.Kind() == board.Pawn:
		pos.HalfMoveClock = 0
	default:
		pos.HalfMoveClock++
	}
	if undo.IsCastling() {
		if from > to {
			flags |= board.FlagCastleQueen
		} else {
			flags |= board.FlagCastleKing
		}
	}
	if from >= 0 {
		pos.SideToMove = c.Other()
	}

	step := Step{From: from, To: to, Promotion: promotion}
	flags |= g.finishPly(c.Other(), undo.EnPassant)
	text := board.MoveToText(pos, from, to, undo.Moved, promotion, flags, moves)
	return g.record(step, flags, text, c)
}

// Pass records a turn in which the side to move does nothing. The board
// and the side to move are unchanged; the clocks advance.
func (g *Game) Pass() MoveResult {
	if g.outcome != Ongoing {
		return MoveResult{Notation: "game over", Err: ErrGameOver}
	}
	c := g.pos.SideToMove
	g.prepare()
	g.pos.EnPassant = board.NoSquare
	g.pos.HalfMoveClock++

	step := Step{From: -1, To: -1}
	flags := board.FlagOK | g.finishPly(c.Other(), board.NoSquare)
	return g.record(step, flags, "-", c)
}

// finishPly advances the ply, counts the repetition and returns the draw,
// check and mate flags for the reply of colour other.
func (g *Game) finishPly(other board.Color, ep board.Square) board.MoveFlags {
	pos := g.pos
	pos.Ply++

	key := pos.ReducedFEN()
	g.positionCounts[key]++
	g.currentRepetitions = g.positionCounts[key]

	var flags board.MoveFlags
	if pos.HalfMoveClock > drawClock || g.currentRepetitions >= 3 || pos.InsufficientMaterial() {
		flags |= board.FlagDraw
	}
	if pos.InCheck(other) {
		flags |= board.FlagCheck
	}
	if !pos.HasLegalReply(other, ep) {
		flags |= board.FlagMate
	}
	return flags
}

// record appends the step and latches the outcome.
func (g *Game) record(step Step, flags board.MoveFlags, text string, mover board.Color) MoveResult {
	g.history = append(g.history, step)
	g.notation = append(g.notation, text)
	g.prepared = false

	switch {
	case flags.Has(board.FlagMate) && flags.Has(board.FlagCheck):
		g.outcome = winner(mover.Other())
	case flags.Has(board.FlagMate), flags.Has(board.FlagDraw):
		// No legal reply without check is stalemate.
		g.outcome = Draw
	}

	ev := g.logger.Debug().Int("ply", g.pos.Ply).Str("move", text)
	if flags.Has(board.FlagCheck) {
		ev = ev.Bool("check", true)
	}
	ev.Msg("move played")
	if g.outcome != Ongoing {
		g.logger.Info().Str("result", g.outcome.String()).Int("ply", g.pos.Ply).
			Int("repetitions", g.currentRepetitions).Msg("game over")
	}

	return MoveResult{OK: true, Flags: flags, Notation: text}
}

// MoveText parses and plays a move written in algebraic or coordinate
// form. "-" and "0000" pass.
func (g *Game) MoveText(text string) MoveResult {
	switch text {
	case "-", "0000":
		return g.Pass()
	}
	if g.outcome != Ongoing {
		return MoveResult{Notation: "game over", Err: ErrGameOver}
	}
	mt, ok := board.ParseMoveText(g.pos, text)
	if !ok {
		return illegal("")
	}
	return g.Move(mt.From, mt.To, mt.Promotion)
}

// apply replays a history step.
func (g *Game) apply(s Step) MoveResult {
	if s.IsPass() {
		return g.Pass()
	}
	return g.Move(s.From, s.To, s.Promotion)
}

// FindMove searches depth plies for the side to move. The evaluation
// tables are always refreshed first; the game's random source advances.
func (g *Game) FindMove(depth int) engine.Result {
	engine.Prepare(g.pos, g.rng, g.drawLikely())
	g.prepared = true
	engine.OrderPieces(g.pos)
	g.searcher.Reset()
	res := g.searcher.FindMove(g.pos, depth, g.pos.SideToMove, g.pos.EnPassant)

	g.logger.Debug().Int("depth", depth).Int("score", res.Score).
		Uint64("nodes", g.searcher.Nodes()).
		Str("move", res.From.String()+res.To.String()).Msg("search done")
	return res
}

// SearchState hands a copy of the position and of the random source to
// the engine, so a search can run on another goroutine while the game
// stays usable.
func (g *Game) SearchState() (*board.Position, *rng.Source, bool) {
	return g.pos.Copy(), g.rng.Clone(), g.drawLikely()
}

// JumpToPly rebuilds the game as it was at ply by replaying the history
// from the starting position. A negative ply counts back from the current
// one; a ply past the end stays at the end. Later history is dropped.
func (g *Game) JumpToPly(ply int) error {
	current := g.pos.Ply
	if ply > current {
		ply = current
	} else if ply < 0 {
		ply += current
	}

	fresh := FromFEN(g.beginning, WithSeed(g.seed), WithLogger(g.logger))
	for i := 0; i < len(g.history) && fresh.pos.Ply < ply; i++ {
		if res := fresh.apply(g.history[i]); !res.OK {
			return &ReplayError{Err: res.Err, Ply: fresh.pos.Ply, Step: g.history[i]}
		}
	}
	fresh.searcher = g.searcher
	*g = *fresh

	g.logger.Debug().Int("ply", g.pos.Ply).Msg("jumped")
	return nil
}
