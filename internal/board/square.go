// Package board implements the chess rules core on a padded 10x12 mailbox:
// piece encoding, FEN and algebraic notation, move generation with
// incremental scoring, check detection and reversible move execution.
package board

// Square is an index into the 120-cell board, rank*10 + file.
// The playing area is ranks 2-9 (chess ranks 1-8) and files 1-8 (a-h);
// every other cell holds the Off sentinel.
type Square int

// NoSquare is the zero index. It is always off-board, so it doubles as
// "no en passant target" and "no source square".
const NoSquare Square = 0

// Squares used by the castling rules.
const (
	A1 Square = 21
	B1 Square = 22
	C1 Square = 23
	D1 Square = 24
	E1 Square = 25
	F1 Square = 26
	G1 Square = 27
	H1 Square = 28
	A8 Square = 91
	B8 Square = 92
	C8 Square = 93
	D8 Square = 94
	E8 Square = 95
	F8 Square = 96
	G8 Square = 97
	H8 Square = 98
)

// BoardSize is the number of cells including the border.
const BoardSize = 120

// NewSquare creates a square from a 0-based file (0=a) and rank (0=1).
func NewSquare(file, rank int) Square {
	return Square((rank+2)*10 + file + 1)
}

// File returns the 0-based file (0=a, 7=h).
func (sq Square) File() int {
	return int(sq)%10 - 1
}

// Rank returns the 0-based rank (0=1st rank, 7=8th rank).
func (sq Square) Rank() int {
	return int(sq)/10 - 2
}

// IsValid returns true if the square lies inside the playing area.
func (sq Square) IsValid() bool {
	f, r := sq.File(), sq.Rank()
	return sq > 0 && f >= 0 && f < 8 && r >= 0 && r < 8
}

// String returns the algebraic name of the square ("e4"), or "-".
func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	return string([]byte{'a' + byte(sq.File()), '1' + byte(sq.Rank())})
}

// ParseSquare parses algebraic notation ("e4").
func ParseSquare(s string) (Square, bool) {
	if len(s) != 2 {
		return NoSquare, false
	}
	file := int(s[0]) - 'a'
	rank := int(s[1]) - '1'
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return NoSquare, false
	}
	return NewSquare(file, rank), true
}

// parity is 1 on dark squares and 0 on light squares.
func (sq Square) parity() int {
	return (int(sq) & 1) ^ ((int(sq) / 10) & 1)
}
