package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string into a Position. Parsing is lenient and
// never fails: unknown board characters are read as empty-square counts,
// missing trailing fields take their defaults, and castling rights whose
// king and rook are not on their home squares are dropped. Each dropped
// right is reported in the returned diagnostics.
func ParseFEN(fen string) (*Position, []string) {
	pos := &Position{Board: NewEmptyBoard()}
	var diagnostics []string

	parts := strings.Fields(fen)
	field := func(n int, def string) string {
		if n < len(parts) {
			return parts[n]
		}
		return def
	}

	parsePiecePlacement(&pos.Board, field(0, ""))

	// Side to move (field 1)
	if strings.EqualFold(field(1, "w"), "b") {
		pos.SideToMove = Black
	}

	// Castling rights (field 2)
	castling := field(2, "-")
	for i := 0; i < len(castling); i++ {
		right, known := castlingFromChar(castling[i])
		if !known {
			continue
		}
		if castlingPiecesInPlace(&pos.Board, right) {
			pos.CastlingRights |= right
		} else {
			diagnostics = append(diagnostics, fmt.Sprintf(
				"FEN claims castle state %s but pieces are not in place for %c", castling, castling[i]))
		}
	}

	// En passant square (field 3)
	if ep := field(3, "-"); ep != "-" {
		if sq, ok := ParseSquare(ep); ok {
			pos.EnPassant = sq
		}
	}

	// Half-move clock (field 4, optional)
	if hmc, err := strconv.Atoi(field(4, "0")); err == nil {
		pos.HalfMoveClock = hmc
	}

	// Full-move number (field 5, optional)
	fullMove := 1
	if fmn, err := strconv.Atoi(field(5, "1")); err == nil && fmn > 0 {
		fullMove = fmn
	}
	pos.Ply = 2*(fullMove-1) + int(pos.SideToMove)

	pos.RebuildPieceLists()
	return pos, diagnostics
}

// parsePiecePlacement fills the board from the first FEN field, rank 8
// first. Characters that are not pieces are treated as run lengths.
func parsePiecePlacement(b *Board, placement string) {
	rank, file := 7, 0
	for i := 0; i < len(placement); i++ {
		c := placement[i]
		if c == '/' {
			rank--
			file = 0
			if rank < 0 {
				break
			}
			continue
		}
		if piece := PieceFromChar(c); piece != Empty {
			if file < 8 {
				b[NewSquare(file, rank)] = piece
				file++
			}
			continue
		}
		run := 0
		if c >= '0' && c <= '9' {
			run = int(c - '0')
		}
		for end := min(file+run, 8); file < end; file++ {
			b[NewSquare(file, rank)] = Empty
		}
	}
}

func castlingFromChar(c byte) (CastlingRights, bool) {
	switch c {
	case 'K':
		return WhiteKingSideCastle, true
	case 'Q':
		return WhiteQueenSideCastle, true
	case 'k':
		return BlackKingSideCastle, true
	case 'q':
		return BlackQueenSideCastle, true
	}
	return NoCastling, false
}

// castlingPiecesInPlace reports whether the king and the rook for the
// given right stand on their home squares.
func castlingPiecesInPlace(b *Board, right CastlingRights) bool {
	switch right {
	case WhiteKingSideCastle:
		return b[E1] == WhiteKing && b[H1] == WhiteRook
	case WhiteQueenSideCastle:
		return b[E1] == WhiteKing && b[A1] == WhiteRook
	case BlackKingSideCastle:
		return b[E8] == BlackKing && b[H8] == BlackRook
	case BlackQueenSideCastle:
		return b[E8] == BlackKing && b[A8] == BlackRook
	}
	return false
}

// FEN returns the full six-field FEN representation of the position.
func (p *Position) FEN() string {
	var sb strings.Builder
	p.writeReducedFEN(&sb)

	// Half-move clock and full-move number
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber()))

	return sb.String()
}

// ReducedFEN returns the first four FEN fields. Positions with equal
// reduced FEN are repetitions of each other.
func (p *Position) ReducedFEN() string {
	var sb strings.Builder
	p.writeReducedFEN(&sb)
	return sb.String()
}

func (p *Position) writeReducedFEN(sb *strings.Builder) {
	// Piece placement
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.Board[NewSquare(file, rank)]
			if piece == Empty {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	// Side to move
	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	// Castling rights
	sb.WriteByte(' ')
	sb.WriteString(p.CastlingRights.String())

	// En passant
	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())
}
