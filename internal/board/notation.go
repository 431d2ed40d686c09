package board

import (
	"regexp"
	"strings"
)

// MoveFlags describe the result of a played move.
type MoveFlags uint8

const (
	FlagOK          MoveFlags = 1
	FlagCheck       MoveFlags = 2
	FlagMate        MoveFlags = 4
	FlagCapture     MoveFlags = 8
	FlagCastleKing  MoveFlags = 16
	FlagCastleQueen MoveFlags = 32
	FlagDraw        MoveFlags = 64
)

// Has reports whether all bits of f are set.
func (m MoveFlags) Has(f MoveFlags) bool {
	return m&f == f
}

// MoveText is a move decoded from text. Promotion is a colourless piece
// kind, or Empty when the text named none.
type MoveText struct {
	From      Square
	To        Square
	Promotion Piece
}

var (
	algebraicRe  = regexp.MustCompile(`^\s*([RNBQK]?[a-h]?[1-8]?)[ :x-]*([a-h][1-8]?)(=[RNBQ])?[!?+#e.p]*(\s+stalemate)?\s*$`)
	castleRe     = regexp.MustCompile(`^\s*([O0o]-[O0o](-[O0o])?)[!?+#]*(\s+stalemate)?\s*$`)
	coordinateRe = regexp.MustCompile(`^\s*([a-h][1-8])([a-h][1-8])([qrbn])\s*$`)
)

// ParseMoveText decodes a move typed by a player or read from a protocol
// stream for the side to move. It accepts coordinate pairs ("e2e4",
// "e2-e4", "e7e8q"), standard algebraic notation ("e4", "exd5", "Nbd2",
// "e8=Q+") and castling ("O-O", "0-0-0"). Coordinate pairs are returned as
// written; the other forms are resolved against the position and require
// exactly one piece of the named kind that can legally make the move, the
// first in generation order winning when several can.
func ParseMoveText(pos *Position, text string) (MoveText, bool) {
	if m := coordinateRe.FindStringSubmatch(text); m != nil {
		from, _ := ParseSquare(m[1])
		to, _ := ParseSquare(m[2])
		promotion := PieceFromChar(m[3][0] - 'a' + 'A')
		return MoveText{From: from, To: to, Promotion: promotion.Kind()}, true
	}

	m := algebraicRe.FindStringSubmatch(text)
	if m == nil {
		c := castleRe.FindStringSubmatch(text)
		if c == nil {
			return MoveText{}, false
		}
		from := E1 + 70*Square(pos.SideToMove)
		to := from + 2
		if c[2] != "" {
			to = from - 2
		}
		return MoveText{From: from, To: to}, true
	}

	src, dest := m[1], m[2]
	to, ok := ParseSquare(dest)
	if !ok {
		return MoveText{}, false
	}

	var from Square
	switch {
	case src == "":
		from = findSource(pos, to, "P"+dest[:1])
	case strings.ContainsAny(src[:1], "RNBQK"):
		from = findSource(pos, to, src)
	case len(src) == 2:
		from, ok = ParseSquare(src)
		if !ok {
			return MoveText{}, false
		}
	case len(src) == 1 && src[0] >= 'a' && src[0] <= 'h':
		from = findSource(pos, to, "P"+src)
	}
	if from == NoSquare {
		return MoveText{}, false
	}

	mt := MoveText{From: from, To: to}
	if m[3] != "" {
		mt.Promotion = PieceFromChar(m[3][1]).Kind()
	}
	return mt, true
}

// findSource resolves a piece letter plus optional file and rank hints
// ("N", "Nb", "N1", "Pe") to the square of a piece that can legally move
// to the target. It returns NoSquare if none can.
func findSource(pos *Position, to Square, hint string) Square {
	c := pos.SideToMove
	piece := NewPiece(PieceFromChar(hint[0]), c)
	file, rank := -1, -1
	for i := 1; i < len(hint); i++ {
		switch ch := hint[i]; {
		case ch >= 'a' && ch <= 'h':
			file = int(ch - 'a')
		case ch >= '1' && ch <= '8':
			rank = int(ch - '1')
		}
	}

	for _, m := range pos.Generate(c, pos.EnPassant, 0) {
		s := m.From
		if m.To != to || pos.Board[s] != piece {
			continue
		}
		if (file >= 0 && s.File() != file) || (rank >= 0 && s.Rank() != rank) {
			continue
		}
		undo := pos.MakeMove(s, to, Queen)
		safe := !pos.InCheck(c)
		pos.UnmakeMove(undo)
		if safe {
			return s
		}
	}
	return NoSquare
}

// MoveToText renders a move in standard algebraic notation.
//
// moved is the piece that made the move and moves is the pseudo-legal list
// it was chosen from, which is searched for other pieces of the same kind
// that could reach the same square. A negative from is a placement,
// rendered as the piece letter and the square; a negative to is a pass,
// rendered as "-".
func MoveToText(pos *Position, from, to Square, moved, promotion Piece, flags MoveFlags, moves MoveList) string {
	if to < 0 {
		return "-"
	}
	dest := to.String()
	if from < 0 {
		return string(moved.Letter()) + dest
	}

	var sb strings.Builder
	capture := flags.Has(FlagCapture)
	kind := moved.Kind()

	switch {
	case kind == Pawn:
		if capture {
			sb.WriteByte('a' + byte(from.File()))
			sb.WriteByte('x')
		}
		sb.WriteString(dest)
		if to.Rank() == 0 || to.Rank() == 7 {
			if promotion == Empty {
				promotion = Queen
			}
			sb.WriteByte('=')
			sb.WriteByte(promotion.Letter())
		}

	case kind == King && (from-to)*(from-to) == 4:
		if to < from {
			sb.WriteString("O-O-O")
		} else {
			sb.WriteString("O-O")
		}

	default:
		sb.WriteByte(moved.Letter())
		sb.WriteString(disambiguation(pos, from, to, moved, moves))
		if capture {
			sb.WriteByte('x')
		}
		sb.WriteString(dest)
	}

	switch {
	case flags.Has(FlagCheck | FlagMate):
		sb.WriteByte('#')
	case flags.Has(FlagCheck):
		sb.WriteByte('+')
	case flags.Has(FlagMate):
		sb.WriteString(" stalemate")
	}
	return sb.String()
}

// disambiguation returns the file and/or rank qualifier needed when another
// piece of the same kind could also land on the target square.
func disambiguation(pos *Position, from, to Square, moved Piece, moves MoveList) string {
	var fileQ, rankQ string
	others := false
	for _, m := range moves {
		if m.To != to || m.From == from || pos.Board[m.From] != moved {
			continue
		}
		others = true
		if m.From.File() == from.File() {
			rankQ = from.String()[1:]
		}
		if m.From.Rank() == from.Rank() {
			fileQ = from.String()[:1]
		}
	}
	if others && fileQ == "" && rankQ == "" {
		fileQ = from.String()[:1]
	}
	return fileQ + rankQ
}
