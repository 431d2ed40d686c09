package board

// Color represents the color of a piece or player.
type Color uint8

const (
	White Color = iota
	Black
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	if c == White {
		return "White"
	}
	return "Black"
}

// Piece is a board cell value. Bit 0 is the colour, bit 1 marks single-step
// movers (pawn, king), bit 2 orthogonal sliders and bit 3 diagonal sliders.
// Knights carry bits 1 and 2 so that neither slider mask matches them.
//
//	          16 8 4 2 1
//	empty
//	pawn             1 c
//	rook           1   c
//	knight         1 1 c
//	bishop       1     c
//	king         1   1 c
//	queen        1 1   c
//	off        1
type Piece uint8

const (
	Empty  Piece = 0
	Pawn   Piece = 2
	Rook   Piece = 4
	Knight Piece = 6
	Bishop Piece = 8
	King   Piece = 10
	Queen  Piece = 12
	Off    Piece = 16
)

const (
	WhitePawn   = Pawn
	BlackPawn   = Pawn | 1
	WhiteRook   = Rook
	BlackRook   = Rook | 1
	WhiteKnight = Knight
	BlackKnight = Knight | 1
	WhiteBishop = Bishop
	BlackBishop = Bishop | 1
	WhiteKing   = King
	BlackKing   = King | 1
	WhiteQueen  = Queen
	BlackQueen  = Queen | 1
)

// Masks used to classify attackers on a shared ray scan.
//
// p&gridMask == Rook|c matches rooks and queens of colour c,
// p&diagMask == Bishop|c matches bishops and queens of colour c, and
// p&gridMask == Pawn|c matches pawns and kings of colour c.
const (
	kindMask Piece = 14
	gridMask Piece = 23
	diagMask Piece = 27
)

// PieceValue is the unscaled material value of each piece code.
// Pawns are 20 so that positional weights have sub-pawn resolution.
var PieceValue = [16]int{
	0, 0,
	20, 20, // pawns
	100, 100, // rooks
	60, 60, // knights
	61, 61, // bishops
	8000, 8000, // kings
	180, 180, // queens
	0, 0,
}

// NewPiece combines a piece kind with a colour.
func NewPiece(kind Piece, c Color) Piece {
	return kind&kindMask | Piece(c)
}

// Kind strips the colour bit.
func (p Piece) Kind() Piece {
	return p & kindMask
}

// Color returns the colour bit of the piece.
func (p Piece) Color() Color {
	return Color(p & 1)
}

// IsEmpty returns true for an empty on-board cell.
func (p Piece) IsEmpty() bool {
	return p == Empty
}

// IsOff returns true for the border sentinel.
func (p Piece) IsOff() bool {
	return p == Off
}

// IsPiece returns true if the cell holds a piece of either colour.
func (p Piece) IsPiece() bool {
	return p >= Pawn && p < Off
}

// BelongsTo reports whether p is a piece of colour c. Empty and border cells
// belong to nobody.
func (p Piece) BelongsTo(c Color) bool {
	return p&(Off|1) == Piece(c) && p != Empty
}

// Value returns the unscaled material value.
func (p Piece) Value() int {
	return PieceValue[p&15]
}

const fenChars = "  PpRrNnBbKkQq"

// String returns the FEN character for the piece.
// Uppercase for white, lowercase for black.
func (p Piece) String() string {
	if !p.IsPiece() {
		return " "
	}
	return string(fenChars[p])
}

// Letter returns the upper-case algebraic letter for the piece kind.
func (p Piece) Letter() byte {
	if !p.IsPiece() {
		return ' '
	}
	return fenChars[p.Kind()]
}

// PieceFromChar converts a FEN character to a Piece.
func PieceFromChar(c byte) Piece {
	switch c {
	case 'P':
		return WhitePawn
	case 'N':
		return WhiteKnight
	case 'B':
		return WhiteBishop
	case 'R':
		return WhiteRook
	case 'Q':
		return WhiteQueen
	case 'K':
		return WhiteKing
	case 'p':
		return BlackPawn
	case 'n':
		return BlackKnight
	case 'b':
		return BlackBishop
	case 'r':
		return BlackRook
	case 'q':
		return BlackQueen
	case 'k':
		return BlackKing
	default:
		return Empty
	}
}
