package engine

import (
	"context"
	"strconv"
	"time"

	"github.com/hailam/swnchess/internal/board"
	"github.com/hailam/swnchess/internal/rng"
)

// SearchInfo contains information about a finished search.
type SearchInfo struct {
	Depth int
	Score int
	Nodes uint64
	Time  time.Duration
	Move  Result
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// DifficultyDepth maps difficulty to search depth in plies.
var DifficultyDepth = map[Difficulty]int{
	Easy:   2,
	Medium: 3,
	Hard:   4,
}

// String returns the difficulty name.
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	}
	return "unknown"
}

// ParseDifficulty converts a name back to a Difficulty.
func ParseDifficulty(s string) (Difficulty, bool) {
	for d := Easy; d <= Hard; d++ {
		if d.String() == s {
			return d, true
		}
	}
	return Medium, false
}

// Searchable is a game the engine can think about. SearchState returns a
// position the engine may modify freely, the random source for evaluation
// jitter, and whether a draw is close (long quiet run or a repeated
// position).
type Searchable interface {
	SearchState() (pos *board.Position, r *rng.Source, drawLikely bool)
}

// Engine is the chess AI engine.
type Engine struct {
	searcher   *Searcher
	difficulty Difficulty
	depth      int // overrides the difficulty depth when positive

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates a new chess engine at Medium difficulty.
func NewEngine() *Engine {
	return &Engine{
		searcher:   NewSearcher(),
		difficulty: Medium,
	}
}

// SetDifficulty sets the engine difficulty.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.difficulty = d
}

// Difficulty returns the current difficulty.
func (e *Engine) Difficulty() Difficulty {
	return e.difficulty
}

// SetDepth fixes the search depth regardless of difficulty. Zero or less
// goes back to the difficulty depth.
func (e *Engine) SetDepth(depth int) {
	e.depth = depth
}

// Depth returns the search depth in plies.
func (e *Engine) Depth() int {
	if e.depth > 0 {
		return e.depth
	}
	if d, ok := DifficultyDepth[e.difficulty]; ok {
		return d
	}
	return DifficultyDepth[Medium]
}

// Search finds the best move for the side to move at the engine's depth.
func (e *Engine) Search(g Searchable) Result {
	return e.SearchDepth(g, e.Depth())
}

// SearchDepth finds the best move searching depth plies.
func (e *Engine) SearchDepth(g Searchable, depth int) Result {
	pos, r, drawLikely := g.SearchState()
	e.searcher.Reset()
	return e.run(e.searcher, pos, r, drawLikely, depth)
}

func (e *Engine) run(s *Searcher, pos *board.Position, r *rng.Source, drawLikely bool, depth int) Result {
	startTime := time.Now()
	Prepare(pos, r, drawLikely)
	OrderPieces(pos)
	res := s.FindMove(pos, depth, pos.SideToMove, pos.EnPassant)

	if e.OnInfo != nil {
		e.OnInfo(SearchInfo{
			Depth: depth,
			Score: res.Score,
			Nodes: s.Nodes(),
			Time:  time.Since(startTime),
			Move:  res,
		})
	}
	return res
}

// SearchAsync runs Search on its own goroutine and delivers the result on
// the returned channel, which is closed afterwards. Cancelling ctx stops
// the search after the current root move; nothing is delivered then.
func (e *Engine) SearchAsync(ctx context.Context, g Searchable) <-chan Result {
	pos, r, drawLikely := g.SearchState()
	depth := e.Depth()
	s := NewSearcher()
	out := make(chan Result, 1)

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-done:
		}
	}()

	go func() {
		defer close(out)
		defer close(done)
		res := e.run(s, pos, r, drawLikely, depth)
		if ctx.Err() != nil {
			return
		}
		out <- res
	}()
	return out
}

// Stop stops a running synchronous search.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// Perft counts the leaf nodes of the legal move tree from pos, with each
// promotion counted once per promotion piece.
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	return perft(pos, pos.SideToMove, pos.EnPassant, depth)
}

// Divide returns the perft count below each legal root move, keyed by the
// move's coordinate text.
func (e *Engine) Divide(pos *board.Position, depth int) map[string]uint64 {
	out := make(map[string]uint64)
	if depth < 1 {
		return out
	}
	c := pos.SideToMove
	for _, m := range pos.Legal(c, pos.EnPassant) {
		for _, promo := range promotionsFor(pos, m) {
			undo := pos.MakeMove(m.From, m.To, promo)
			key := m.String()
			if promo != board.Empty {
				key += string(promo.Letter() + 'a' - 'A')
			}
			out[key] = perft(pos, c.Other(), undo.EnPassant, depth-1)
			pos.UnmakeMove(undo)
		}
	}
	return out
}

var promotionPieces = []board.Piece{board.Queen, board.Rook, board.Bishop, board.Knight}

// promotionsFor lists the promotion choices for a move, or a single Empty
// for a move that does not promote.
func promotionsFor(pos *board.Position, m board.ScoredMove) []board.Piece {
	if pos.Board[m.From].Kind() == board.Pawn && (m.To.Rank() == 0 || m.To.Rank() == 7) {
		return promotionPieces
	}
	return []board.Piece{board.Empty}
}

func perft(pos *board.Position, c board.Color, ep board.Square, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	var nodes uint64
	for _, m := range pos.Legal(c, ep) {
		for _, promo := range promotionsFor(pos, m) {
			if depth == 1 {
				nodes++
				continue
			}
			undo := pos.MakeMove(m.From, m.To, promo)
			nodes += perft(pos, c.Other(), undo.EnPassant, depth-1)
			pos.UnmakeMove(undo)
		}
	}
	return nodes
}

// ScoreToString converts a score to a human-readable string. Scores count
// a pawn as 20; mates are shown by the number of moves to the king
// capture.
func ScoreToString(score int) string {
	if score > Win {
		return "Mate in " + strconv.Itoa(MateDistance(score))
	}
	if score < -Win {
		return "Mated in " + strconv.Itoa(MateDistance(-score))
	}

	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	cp := CentiPawns(score)
	return sign + strconv.Itoa(cp/100) + "." + strconv.Itoa(cp%100/10) + strconv.Itoa(cp%10)
}

// CentiPawns converts an engine score to centipawns.
func CentiPawns(score int) int {
	return score * 100 / board.Pawn.Value()
}

// MateDistance returns the number of moves to the king capture for a
// winning score.
func MateDistance(score int) int {
	return (KingValue + WinDecay/2 - score) / WinDecay
}
