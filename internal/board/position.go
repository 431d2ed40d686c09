package board

import (
	"fmt"
	"strings"
)

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteQueenSideCastle CastlingRights = 1 << iota // Q
	WhiteKingSideCastle                             // K
	BlackQueenSideCastle                            // q
	BlackKingSideCastle                             // k
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// ForColor returns the two rights of one side in the low bits:
// bit 0 queen side, bit 1 king side.
func (cr CastlingRights) ForColor(c Color) CastlingRights {
	return (cr >> (uint(c) * 2)) & 3
}

// Board is the padded 10x12 grid.
type Board [BoardSize]Piece

// NewEmptyBoard returns a board with an empty playing area and Off borders.
func NewEmptyBoard() Board {
	var b Board
	for i := range b {
		sq := Square(i)
		if !sq.IsValid() {
			b[i] = Off
		}
	}
	return b
}

// PieceSquare is one entry of a colour's piece list.
type PieceSquare struct {
	Piece  Piece
	Square Square
}

// Position represents the mutable core of a game: the board, the fields
// that go into a FEN string, the per-colour piece lists that move
// generation walks, and the weight tables the evaluator prepares.
type Position struct {
	Board Board

	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // Target square for en passant, NoSquare if none
	HalfMoveClock  int    // Plies since the last pawn move or capture
	Ply            int    // Half-move count; the full-move number is Ply/2 + 1

	// Pieces lists every occupied square per colour. Make/unmake replace the
	// slices instead of editing them, so an Undo can keep the old ones.
	Pieces [2][]PieceSquare

	// Evaluator output, read by Generate. Zero until prepared.
	Weights         [14][BoardSize]int
	Values          [2][16]int
	StalemateScores [2]int
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, _ := ParseFEN(StartFEN)
	return pos
}

// Copy creates a deep copy of the position.
func (p *Position) Copy() *Position {
	newPos := *p
	for c := range p.Pieces {
		newPos.Pieces[c] = append([]PieceSquare(nil), p.Pieces[c]...)
	}
	return &newPos
}

// PieceAt returns the cell value at sq.
func (p *Position) PieceAt(sq Square) Piece {
	if sq < 0 || sq >= BoardSize {
		return Off
	}
	return p.Board[sq]
}

// FullMoveNumber returns the FEN move number.
func (p *Position) FullMoveNumber() int {
	return p.Ply>>1 + 1
}

// RebuildPieceLists recomputes both piece lists from the board in scan
// order (a1 to h8).
func (p *Position) RebuildPieceLists() {
	p.Pieces[White] = p.Pieces[White][:0:0]
	p.Pieces[Black] = p.Pieces[Black][:0:0]
	for sq := Square(20); sq < 100; sq++ {
		piece := p.Board[sq]
		if piece.IsPiece() {
			c := piece.Color()
			p.Pieces[c] = append(p.Pieces[c], PieceSquare{piece, sq})
		}
	}
}

// KingSquare returns the square of the colour's king, scanning the piece
// list from the end, or NoSquare if the list has none.
func (p *Position) KingSquare(c Color) Square {
	king := King | Piece(c)
	list := p.Pieces[c]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Piece == king {
			return list[i].Square
		}
	}
	return NoSquare
}

// InsufficientMaterial reports a dead position: only kings, plus either a
// single knight or any number of bishops all on one square colour.
func (p *Position) InsufficientMaterial() bool {
	knights := false
	bishopParity := -1
	for sq := Square(20); sq < 100; sq++ {
		kind := p.Board[sq].Kind()
		switch kind {
		case Empty, King:
			continue
		case Knight:
			if knights || bishopParity >= 0 {
				return false
			}
			knights = true
		case Bishop:
			parity := sq.parity()
			if knights {
				return false
			}
			if bishopParity < 0 {
				bishopParity = parity
			} else if bishopParity != parity {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Material returns the unscaled material of each colour, kings excluded.
func (p *Position) Material() [2]int {
	var m [2]int
	for sq := Square(20); sq < 100; sq++ {
		piece := p.Board[sq]
		if piece.IsPiece() && piece.Kind() != King {
			m[piece.Color()] += piece.Value()
		}
	}
	return m
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := p.Board[NewSquare(file, rank)]
			if piece == Empty {
				sb.WriteString(". ")
			} else {
				sb.WriteString(piece.String() + " ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Castling: %s\n", p.CastlingRights)
	fmt.Fprintf(&sb, "En passant: %s\n", p.EnPassant)
	fmt.Fprintf(&sb, "Half-move clock: %d\n", p.HalfMoveClock)
	fmt.Fprintf(&sb, "Full move: %d\n", p.FullMoveNumber())
	return sb.String()
}
