package board

import (
	"testing"
)

// play makes a move the way a game does and returns its notation.
func play(t *testing.T, pos *Position, from, to Square, promotion Piece) string {
	t.Helper()
	c := pos.SideToMove
	moves := pos.Generate(c, pos.EnPassant, 0)
	moved := pos.Board[from]
	undo := pos.MakeMove(from, to, promotion)

	flags := FlagOK
	if undo.IsCapture() {
		flags |= FlagCapture
	}
	if pos.InCheck(c.Other()) {
		flags |= FlagCheck
	}
	if !pos.HasLegalReply(c.Other(), undo.EnPassant) {
		flags |= FlagMate
	}
	text := MoveToText(pos, from, to, moved, promotion, flags, moves)

	pos.SideToMove = c.Other()
	pos.EnPassant = undo.EnPassant
	return text
}

func TestParseMoveText(t *testing.T) {
	tests := []struct {
		name      string
		fen       string
		text      string
		from, to  string
		promotion Piece
		ok        bool
	}{
		{"pawn push", StartFEN, "e4", "e2", "e4", Empty, true},
		{"coordinates", StartFEN, "e2e4", "e2", "e4", Empty, true},
		{"dashed coordinates", StartFEN, "e2-e4", "e2", "e4", Empty, true},
		{"knight", StartFEN, "Nf3", "g1", "f3", Empty, true},
		{"knight with spaces", StartFEN, "  Nc3  ", "b1", "c3", Empty, true},
		{"blocked", StartFEN, "Bb5", "", "", Empty, false},
		{"no such pawn", StartFEN, "e5", "", "", Empty, false},
		{"garbage", StartFEN, "hello", "", "", Empty, false},
		{"bad square", StartFEN, "e2e9", "", "", Empty, false},
		{"pawn capture", "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1", "exd5", "e4", "d5", Empty, true},
		{"annotated", "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1", "exd5!?", "e4", "d5", Empty, true},
		{"en passant", "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1", "exd6e.p.", "e5", "d6", Empty, true},
		{"castle", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "O-O", "e1", "g1", Empty, true},
		{"castle long zero", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "0-0-0", "e1", "c1", Empty, true},
		{"black castle", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", "o-o", "e8", "g8", Empty, true},
		{"castle check", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", "O-O-O+", "e8", "c8", Empty, true},
		{"promotion", "8/4P3/8/8/8/8/k7/4K3 w - - 0 1", "e8=N", "e7", "e8", Knight, true},
		{"promotion coordinates", "8/4P3/8/8/8/8/k7/4K3 w - - 0 1", "e7e8r", "e7", "e8", Rook, true},
		{"file hint", "4k3/8/8/6N1/8/2N5/8/4K3 w - - 0 1", "Nce4", "c3", "e4", Empty, true},
		{"rank hint", "4k3/8/8/6N1/8/8/8/4K1N1 w - - 0 1", "N1f3", "g1", "f3", Empty, true},
		{"square hint", "4k3/8/8/6N1/8/8/8/4K1N1 w - - 0 1", "Ng5f3", "g5", "f3", Empty, true},
		{"pinned piece skipped", "4k3/4r3/8/8/8/8/2N1N3/4K3 w - - 0 1", "Nd4", "c2", "d4", Empty, true},
		{"stalemate suffix", "7k/8/6K1/8/8/8/8/5Q2 w - - 0 1", "Qf7 stalemate", "f1", "f7", Empty, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := mustParseFEN(t, tt.fen)
			got, ok := ParseMoveText(pos, tt.text)
			if ok != tt.ok {
				t.Fatalf("ParseMoveText(%q) ok = %v, want %v (%+v)", tt.text, ok, tt.ok, got)
			}
			if !ok {
				return
			}
			want := MoveText{From: sq(t, tt.from), To: sq(t, tt.to), Promotion: tt.promotion}
			if got != want {
				t.Errorf("ParseMoveText(%q) = %+v, want %+v", tt.text, got, want)
			}
		})
	}
}

func TestMoveToText(t *testing.T) {
	tests := []struct {
		name      string
		fen       string
		from, to  string
		promotion Piece
		want      string
	}{
		{"pawn push", StartFEN, "e2", "e4", Empty, "e4"},
		{"knight", StartFEN, "g1", "f3", Empty, "Nf3"},
		{"pawn capture", "4k3/8/8/3p4/4P3/8/8/4K3 w - - 0 1", "e4", "d5", Empty, "exd5"},
		{"en passant", "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1", "e5", "d6", Empty, "exd6"},
		{"castle short", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "e1", "g1", Empty, "O-O"},
		{"castle long", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", "e8", "c8", Empty, "O-O-O"},
		{"castle with check", "5k2/8/8/8/8/8/8/4K2R w K - 0 1", "e1", "g1", Empty, "O-O+"},
		{"promotion default", "8/4P3/8/8/8/8/k7/4K3 w - - 0 1", "e7", "e8", Empty, "e8=Q"},
		{"under promotion", "8/4P3/8/8/8/8/k7/4K3 w - - 0 1", "e7", "e8", Knight, "e8=N"},
		{"file qualifier", "4k3/8/8/6N1/8/2N5/8/4K3 w - - 0 1", "c3", "e4", Empty, "Nce4"},
		{"rank qualifier", "4k3/8/8/6N1/8/8/8/4K1N1 w - - 0 1", "g1", "f3", Empty, "N1f3"},
		{"same rank", "4k3/8/8/8/8/8/4K3/R4R2 w - - 0 1", "a1", "d1", Empty, "Rad1"},
		{"capture", "4k3/8/8/3r4/8/8/8/3RK3 w - - 0 1", "d1", "d5", Empty, "Rxd5"},
		{"check", "4k3/8/8/8/8/8/8/R3K3 w - - 0 1", "a1", "a8", Empty, "Ra8+"},
		{"mate", "6k1/5ppp/8/8/8/8/8/R3K3 w - - 0 1", "a1", "a8", Empty, "Ra8#"},
		{"stalemate", "7k/8/6K1/8/8/8/8/5Q2 w - - 0 1", "f1", "f7", Empty, "Qf7 stalemate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := mustParseFEN(t, tt.fen)
			if got := play(t, pos, sq(t, tt.from), sq(t, tt.to), tt.promotion); got != tt.want {
				t.Errorf("notation = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("placement and pass", func(t *testing.T) {
		pos := mustParseFEN(t, "4k3/8/8/8/8/8/8/4K3 w - - 0 1")
		if got := MoveToText(pos, -Square(WhiteKnight), sq(t, "c3"), WhiteKnight, Empty, FlagOK, nil); got != "Nc3" {
			t.Errorf("placement = %q", got)
		}
		if got := MoveToText(pos, -1, -1, Empty, Empty, FlagOK, nil); got != "-" {
			t.Errorf("pass = %q", got)
		}
	})
}

// TestNotationRoundTrip renders every legal move and parses it back.
func TestNotationRoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		"4k3/8/8/6N1/8/2N5/8/R3K2R w KQ - 0 1",
		"7k/8/8/1Q1Q4/8/1Q1Q4/8/4K3 w - - 0 1",
	}
	for _, fen := range fens {
		pos := mustParseFEN(t, fen)
		for _, m := range pos.LegalMoves() {
			work := pos.Copy()
			text := play(t, work, m.From, m.To, Empty)

			got, ok := ParseMoveText(pos, text)
			if !ok || got.From != m.From || got.To != m.To {
				t.Errorf("%s: %v rendered as %q parsed back as %+v (ok=%v)", fen, m, text, got, ok)
			}
		}
	}
}
