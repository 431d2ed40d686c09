package engine

import (
	"sort"

	"github.com/hailam/swnchess/internal/board"
)

// threatBonus is the fraction of its value a piece gains when an enemy
// move lands on its square.
const threatBonus = 0.01

// pieceOrder scores one piece-list entry for ordering.
type pieceOrder struct {
	entry      board.PieceSquare
	score      float64
	threatened float64
}

// OrderPieces sorts each colour's piece list so that the search, which
// walks the lists from the end, tries the most promising pieces first.
//
// A piece scores its best quiet move under the prepared weights (never
// below zero), plus a small share of its value when it is attacked. Ties
// keep board order. Captures are not counted here because the generator
// already puts them first.
func OrderPieces(pos *board.Position) {
	moves := [2]board.MoveList{
		pos.Generate(board.White, board.NoSquare, 0),
		pos.Generate(board.Black, board.NoSquare, 0),
	}

	for c := board.White; c <= board.Black; c++ {
		bySquare := make(map[board.Square]*pieceOrder, len(pos.Pieces[c]))
		for _, ps := range pos.Pieces[c] {
			bySquare[ps.Square] = &pieceOrder{entry: ps}
		}

		for _, m := range moves[c] {
			if pos.Board[m.To] != board.Empty {
				continue
			}
			if po := bySquare[m.From]; po != nil && float64(m.Score) > po.score {
				po.score = float64(m.Score)
			}
		}
		for _, m := range moves[c.Other()] {
			if po := bySquare[m.To]; po != nil {
				po.threatened = threatBonus
			}
		}

		ordered := make([]*pieceOrder, 0, len(bySquare))
		for sq := board.Square(20); sq < 100; sq++ {
			if po := bySquare[sq]; po != nil {
				po.score += po.threatened * float64(pos.Values[c][po.entry.Piece])
				ordered = append(ordered, po)
			}
		}
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].score < ordered[j].score
		})

		list := make([]board.PieceSquare, len(ordered))
		for i, po := range ordered {
			list[i] = po.entry
		}
		pos.Pieces[c] = list
	}
}
