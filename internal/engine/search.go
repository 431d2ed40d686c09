package engine

import (
	"sync/atomic"

	"github.com/hailam/swnchess/internal/board"
)

// Search constants
const (
	// KingValue is the unscaled value of a king. A move scoring above Win
	// captures a king.
	KingValue = 8000
	Win       = KingValue >> 1
	// WinDecay is taken off a lost score at every level above the loss,
	// so distant mates look better than near ones.
	WinDecay = 300
	// WinNow is the threshold below which a side is losing its king.
	WinNow = KingValue - 250

	MaxScore = 9999
	MinScore = -MaxScore
)

// Result is the outcome of a root search. From is NoSquare when the side
// to move had no moves at all.
type Result struct {
	From  board.Square
	To    board.Square
	Score int
}

// Searcher performs the fixed-depth alpha-beta search.
type Searcher struct {
	nodes    uint64
	pruning  bool
	stopFlag atomic.Bool
}

// NewSearcher creates a new searcher with alpha-beta pruning enabled.
func NewSearcher() *Searcher {
	return &Searcher{pruning: true}
}

// SetPruning switches alpha-beta cutoffs on or off. With pruning off the
// searcher visits the full minimax tree.
func (s *Searcher) SetPruning(on bool) {
	s.pruning = on
}

// Stop makes a running FindMove return after the current root move.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// IsStopped returns true if the search has been stopped.
func (s *Searcher) IsStopped() bool {
	return s.stopFlag.Load()
}

// Reset clears the node counter and the stop flag.
func (s *Searcher) Reset() {
	s.nodes = 0
	s.stopFlag.Store(false)
}

// Nodes returns the number of nodes searched.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// FindMove searches depth plies for colour c with en passant target ep.
// The position must have been prepared; its piece lists are read in the
// order OrderPieces left them. Depth 0 or less returns the best-scoring
// generated move.
//
// Moves are pseudo-legal: a reply that captures the king scores above Win,
// which is how illegal moves and mates are recognised.
func (s *Searcher) FindMove(pos *board.Position, depth int, c board.Color, ep board.Square) Result {
	moves := pos.Generate(c, ep, 0)
	alpha := MinScore
	var best Result

	if depth <= 0 {
		for _, m := range moves {
			if m.Score > alpha {
				alpha = m.Score
				best.From, best.To = m.From, m.To
			}
		}
		best.Score = alpha
		return best
	}

	for _, m := range moves {
		if m.Score > Win {
			alpha = KingValue
			best.From, best.To = m.From, m.To
			break
		}
		t := -s.treeclimber(pos, depth-1, c.Other(), m.Score, m.From, m.To, MinScore, -alpha)
		if t > alpha {
			alpha = t
			best.From, best.To = m.From, m.To
		}
		if s.stopFlag.Load() && best.From != board.NoSquare {
			break
		}
	}
	// Losing the king without being in check means stalemate.
	if alpha < -WinNow && !pos.InCheck(c) {
		alpha = pos.StalemateScores[c]
	}
	best.Score = alpha
	return best
}

// treeclimber plays from-to, searches count more plies of replies by
// colour c and takes the move back. score is the evaluation after the
// move from the mover's side.
func (s *Searcher) treeclimber(pos *board.Position, count int, c board.Color, score int, from, to board.Square, alpha, beta int) int {
	s.nodes++
	if !s.pruning {
		alpha, beta = MinScore, MaxScore
	}
	undo := pos.MakeMove(from, to, board.Queen)
	moves := pos.Generate(c, undo.EnPassant, -score)

	if count > 0 {
		for _, m := range moves {
			if m.Score > Win {
				alpha = KingValue
				break
			}
			t := -s.treeclimber(pos, count-1, c.Other(), m.Score, m.From, m.To, -beta, -alpha)
			if t > alpha {
				alpha = t
			}
			if s.pruning && alpha >= beta {
				break
			}
		}
		if alpha < -WinNow && !pos.InCheck(c) {
			alpha = pos.StalemateScores[c]
		}
		if alpha < -Win {
			alpha += WinDecay
		}
	} else {
		// Leaves take the best generated score, captures last in the scan.
		for i := len(moves) - 1; i >= 0 && (!s.pruning || beta > alpha); i-- {
			if moves[i].Score > alpha {
				alpha = moves[i].Score
			}
		}
	}

	pos.UnmakeMove(undo)
	return alpha
}
