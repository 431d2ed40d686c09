// Package engine implements the square-weight evaluator and the fixed-depth
// search that picks moves.
package engine

import (
	"math"

	"github.com/hailam/swnchess/internal/board"
	"github.com/hailam/swnchess/internal/rng"
)

// Static square tables, indexed by board square.
var (
	// centralWeights rises towards the middle of the board.
	centralWeights [board.BoardSize]int
	// knightWeights is flat-topped in the centre; bishops use it too.
	knightWeights [board.BoardSize]int
	// basePawnWeights rewards advancement, seen from white.
	basePawnWeights [board.BoardSize]int
)

func init() {
	const pawnRows = "000012347000"
	for i := 0; i < board.BoardSize; i++ {
		y, x := i/10, i%10
		dx := math.Abs(float64(x) - 4.5)
		dy := math.Abs(float64(y) - 5.5)
		centralWeights[i] = int(6 - math.Pow((dx*dx+dy*dy)*1.5, 0.6))
		knightWeights[i] = int(b2f(dx < 2)+b2f(dy < 2)*1.5+b2f(dx < 3)+b2f(dy < 3)) - 2
		basePawnWeights[i] = int(pawnRows[y] - '0')
	}
}

// earliness scales the centralising bonus in the opening. It is switched
// off; the terms that use it are kept so the random stream stays the same.
const earliness = 0

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// jitter draws a random weight bonus in [0, top) where top may be
// fractional. The sampler masks draws to the power of two covering top-1
// and rejects values not below top.
func jitter(r *rng.Source, top float64) int {
	mask := uint32(int32(top - 1))
	mask |= mask >> 1
	mask |= mask >> 2
	mask |= mask >> 4
	mask |= mask >> 8
	mask |= mask >> 16
	for {
		if v := r.Uint31() & mask; float64(v) < top {
			return int(v)
		}
	}
}

// Prepare fills the position's Weights, Values and StalemateScores tables
// for a search from the current position, and rebuilds the piece lists in
// board order.
//
// Material is scaled so the side that is behind values pieces more (and a
// stalemate as a gain), pawns are pushed harder on an empty board, and
// after move 20 or in a thin endgame pieces are drawn towards the enemy
// king. In the opening and when drawLikely is set, r adds a little noise
// to the tables.
func Prepare(pos *board.Position, r *rng.Source, drawLikely bool) {
	pos.RebuildPieceLists()
	b := &pos.Board
	moveno := pos.Ply >> 1
	kingShouldHide := moveno < 12
	early := moveno < 5

	var kings [2]int
	material := pos.Material()
	for _, c := range [2]board.Color{board.White, board.Black} {
		kings[c] = int(pos.KingSquare(c))
	}

	qvalue := board.Queen.Value()
	materialSum := float64(material[0] + material[1] + 2*qvalue)
	multipliers := [2]float64{
		float64(2*(material[1]+qvalue)) / materialSum,
		float64(2*(material[0]+qvalue)) / materialSum,
	}
	emptiness := float64(4*board.Queen) / materialSum
	for c, mul := range multipliers {
		pos.StalemateScores[c] = int(0.5 + (mul-1)*2*float64(qvalue))
		for i, v := range board.PieceValue {
			if v < Win {
				pos.Values[c][i] = int(float64(v)*mul + 0.5)
			} else {
				pos.Values[c][i] = v
			}
		}
	}

	kx := [2]int{kings[0] % 10, kings[1] % 10}
	ky := [2]int{kings[0] / 10, kings[1] / 10}

	// Frontmost pawn rank per file, 0 if none: the most advanced white
	// pawn and the least advanced black one.
	var pawnCols [2][10]int
	for y := 3; y < 9; y++ {
		for x := 1; x < 9; x++ {
			piece := b[y*10+x]
			if piece.Kind() != board.Pawn {
				continue
			}
			if piece.Color() == board.White {
				pawnCols[0][x] = y
			} else if pawnCols[1][x] == 0 {
				pawnCols[1][x] = y
			}
		}
	}
	targetKing := moveno >= 20 || materialSum < float64(5*qvalue)

	w := &pos.Weights
	for y := 2; y < 10; y++ {
		for x := 1; x < 9; x++ {
			i := y*10 + x
			earlyCentre := float64(centralWeights[i] * earliness)
			plateau := knightWeights[i]
			for c := 0; c < 2; c++ {
				dx := absInt(kx[1-c] - x)
				dy := absInt(ky[1-c] - y)
				ourDx := absInt(kx[c] - x)

				d := math.Max(math.Sqrt(float64(dx*dx+dy*dy)), 1) + 1
				mul := multipliers[c] // below 1 when winning
				mul3 := mul * mul * mul
				atHome := y == 2+c*7
				pawnHome := y == 3+c*5
				row4 := y == 5+c
				promotionRow := y == 9-c*7
				getOut := 0
				if early && atHome {
					getOut = -5
				}

				knight := int(earlyCentre*0.3) + 2*plateau + getOut
				rook := int(earlyCentre * 0.3)
				bishop := int(earlyCentre*0.6) + plateau + getOut
				if atHome {
					midgame := moveno > 10 && moveno < 20
					rook += b2i(x == 4 || x == 5) * (earliness + b2i(!targetKing))
					rook += b2i((x == 1 || x == 8) && midgame) * -3
					rook += b2i((x == 2 || x == 7) && midgame) * -1
				}

				// The queen stays home early, then jumps in.
				queen := int(float64(plateau)*0.5 + earlyCentre*(0.5-b2f(early)))
				king := b2i(kingShouldHide && atHome) * 2 * earliness

				// An empty board makes pawn advancement more urgent.
				sq := i
				if c == 1 {
					sq = board.BoardSize - 1 - i
				}
				pawn := math.Max(emptiness*2, 1) * float64(basePawnWeights[sq])
				if early {
					if y >= 4 && y <= 7 {
						boost := 1 + 3*b2i(y == 5 || y == 6)
						pawn += float64(int(float64(boost+r.Intn(4)) * 0.1 * earlyCentre))
					}
					if x == 4 || x == 5 {
						pawn -= float64(3 * b2i(pawnHome))
						pawn += float64(3 * b2i(row4))
					}
				}
				if promotionRow {
					pawn += float64(pos.Values[c][board.Queen] - pos.Values[c][board.Pawn])
				}
				// Pawns in front of a castled king stay put.
				if y == 3 && ky[c] == 2 && ourDx < 2 && kx[c] != 5 && x != 4 && x != 5 {
					pawn += 4
				}
				// Passed pawns.
				cols := &pawnCols[1-c]
				if cols[x] == 0 || (c == 0 && cols[x] < y) || (c == 1 && cols[x] > y) {
					pawn += 2
				}

				if targetKing {
					knight += 2 * int(8*mul/d)
					rook += 2 * (b2i(dx < 2) + b2i(dy < 2))
					bishop += 3 * b2i(absInt(dx-dy) < 2)
					queen += 2*int(8/d) + b2i(dx*dy == 0) + b2i(dx-dy == 0)
					// The losing king keeps to the middle, the winning
					// king closes in.
					kingCentre := 8 * emptiness * float64(centralWeights[i])
					king += int(150*emptiness/(mul3*d) + kingCentre*mul3)
				}

				w[int(board.Pawn)+c][i] = int(pawn)
				w[int(board.Knight)+c][i] = knight
				w[int(board.Rook)+c][i] = rook
				w[int(board.Bishop)+c][i] = bishop
				w[int(board.Queen)+c][i] = queen
				w[int(board.King)+c][i] = king

				// The winning side shakes its weights to steer away from
				// a draw.
				if drawLikely && mul < 1 {
					top := 3 / mul3
					for j := 2 + c; j < 14; j += 2 {
						w[j][i] += jitter(r, top)
					}
				}
			}
		}
	}
}
