package engine

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hailam/swnchess/internal/board"
	"github.com/hailam/swnchess/internal/rng"
)

// fenGame is a Searchable built from a FEN string and a fixed seed.
type fenGame struct {
	t          *testing.T
	fen        string
	seed       uint32
	drawLikely bool
}

func (g fenGame) SearchState() (*board.Position, *rng.Source, bool) {
	g.t.Helper()
	pos, warnings := board.ParseFEN(g.fen)
	if len(warnings) > 0 {
		g.t.Fatalf("ParseFEN(%q): %v", g.fen, warnings)
	}
	return pos, rng.New(g.seed), g.drawLikely
}

func square(t *testing.T, s string) board.Square {
	t.Helper()
	sq, ok := board.ParseSquare(s)
	if !ok {
		t.Fatalf("bad square %q", s)
	}
	return sq
}

func TestPrepareStartPosition(t *testing.T) {
	pos := board.NewPosition()
	Prepare(pos, rng.New(1), false)

	// Material is level, so values are unscaled.
	for c := 0; c < 2; c++ {
		if diff := cmp.Diff(board.PieceValue, pos.Values[c]); diff != "" {
			t.Errorf("values[%d] mismatch (-want +got):\n%s", c, diff)
		}
		if pos.StalemateScores[c] != 0 {
			t.Errorf("stalemate score[%d] = %d, want 0", c, pos.StalemateScores[c])
		}
	}

	wantPawn := []int{
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, -3, -3, 0, 0, 0, 0,
		0, 1, 1, 1, 1, 1, 1, 1, 1, 0,
		0, 2, 2, 2, 5, 5, 2, 2, 2, 0,
		0, 3, 3, 3, 3, 3, 3, 3, 3, 0,
		0, 4, 4, 4, 4, 4, 4, 4, 4, 0,
		0, 7, 7, 7, 7, 7, 7, 7, 7, 0,
		0, 162, 162, 162, 162, 162, 162, 162, 162, 0,
	}
	if diff := cmp.Diff(wantPawn, pos.Weights[board.WhitePawn][20:100]); diff != "" {
		t.Errorf("white pawn weights mismatch (-want +got):\n%s", diff)
	}

	// Black tables mirror white ones.
	for sq := board.Square(20); sq < 100; sq++ {
		if !sq.IsValid() {
			continue
		}
		for _, kind := range []board.Piece{board.Pawn, board.Knight, board.Bishop, board.Rook, board.Queen} {
			w, b := pos.Weights[kind][sq], pos.Weights[kind|1][board.BoardSize-1-sq]
			if w != b {
				t.Errorf("%v weight at %v = %d, mirrored black = %d", kind, sq, w, b)
			}
		}
	}
}

func TestPrepareScalesMaterial(t *testing.T) {
	// White is a queen up: black values pieces more and likes a stalemate.
	pos, _ := board.ParseFEN("4k3/8/8/8/8/8/8/3QK3 w - - 0 1")
	Prepare(pos, rng.New(1), false)

	if pos.Values[board.White][board.WhiteRook] >= pos.Values[board.Black][board.BlackRook] {
		t.Errorf("winning side rook %d, losing side rook %d",
			pos.Values[board.White][board.WhiteRook], pos.Values[board.Black][board.BlackRook])
	}
	if pos.StalemateScores[board.White] >= 0 || pos.StalemateScores[board.Black] <= 0 {
		t.Errorf("stalemate scores = %v", pos.StalemateScores)
	}
	if pos.Values[board.White][board.WhiteKing] != KingValue {
		t.Errorf("king value scaled to %d", pos.Values[board.White][board.WhiteKing])
	}
}

func TestPrepareDrawLikelyJitter(t *testing.T) {
	const fen = "4k3/8/8/8/8/8/8/3QK3 w - - 95 80"
	calm, _ := board.ParseFEN(fen)
	Prepare(calm, rng.New(7), false)
	shaken, _ := board.ParseFEN(fen)
	Prepare(shaken, rng.New(7), true)

	changed := false
	for sq := 20; sq < 100; sq++ {
		d := shaken.Weights[board.WhiteQueen][sq] - calm.Weights[board.WhiteQueen][sq]
		if d < 0 {
			t.Fatalf("jitter lowered weight at %d by %d", sq, -d)
		}
		if d > 0 {
			changed = true
		}
		// The losing side is left alone.
		if shaken.Weights[board.BlackQueen][sq] != calm.Weights[board.BlackQueen][sq] {
			t.Fatalf("losing side weight changed at %d", sq)
		}
	}
	if !changed {
		t.Error("draw-likely preparation left the winning side's weights unchanged")
	}
}

func TestJitterRange(t *testing.T) {
	r := rng.New(3)
	for _, top := range []float64{1, 2.5, 3, 7.9, 24} {
		for i := 0; i < 200; i++ {
			if v := jitter(r, top); v < 0 || float64(v) >= top {
				t.Fatalf("jitter(%v) = %d", top, v)
			}
		}
	}
}

func TestOrderPiecesKeepsPieces(t *testing.T) {
	pos, _ := board.ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	Prepare(pos, rng.New(1), false)
	before := [2]int{len(pos.Pieces[0]), len(pos.Pieces[1])}
	OrderPieces(pos)

	for c := 0; c < 2; c++ {
		if len(pos.Pieces[c]) != before[c] {
			t.Fatalf("colour %d: %d pieces after ordering, want %d", c, len(pos.Pieces[c]), before[c])
		}
		for _, ps := range pos.Pieces[c] {
			if pos.Board[ps.Square] != ps.Piece {
				t.Errorf("entry %v on %v but board has %v", ps.Piece, ps.Square, pos.Board[ps.Square])
			}
		}
	}
}

// Known best moves and scores with seed 1.
func TestSearchKnownResults(t *testing.T) {
	tests := []struct {
		fen   string
		depth int
		move  string
		score int
	}{
		{board.StartFEN, 1, "g1f3", 0},
		{board.StartFEN, 2, "g1f3", 11},
		{board.StartFEN, 3, "g1f3", 0},
		{"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3", 1, "b1c3", 0},
		{"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3", 2, "f1b5", 33},
		{"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3", 3, "f1b5", -7},
		{"6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 30", 1, "a1f1", 0},
		{"6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 30", 2, "a1a8", 7702},
		{"6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 30", 3, "a1a8", 7700},
		{"4k3/8/8/3q4/8/8/3R4/4K3 w - - 0 40", 1, "d2d5", 160},
		{"4k3/8/8/3q4/8/8/3R4/4K3 w - - 0 40", 2, "d2d5", 162},
		{"4k3/8/8/3q4/8/8/3R4/4K3 w - - 0 40", 3, "d2d5", 161},
		{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 1, "e2a6", -5},
		{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 2, "e2a6", 59},
		{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 3, "e2a6", -7},
		{"7k/8/6K1/8/8/8/8/5Q2 w - - 0 50", 1, "f1f6", 3},
		{"7k/8/6K1/8/8/8/8/5Q2 w - - 0 50", 2, "f1f8", 7708},
		{"7k/8/6K1/8/8/8/8/5Q2 w - - 0 50", 3, "f1f8", 7700},
	}

	eng := NewEngine()
	for _, tt := range tests {
		res := eng.SearchDepth(fenGame{t: t, fen: tt.fen, seed: 1}, tt.depth)
		got := res.From.String() + res.To.String()
		if got != tt.move || res.Score != tt.score {
			t.Errorf("%s depth %d: got %s (%d), want %s (%d)", tt.fen, tt.depth, got, res.Score, tt.move, tt.score)
		}
	}
}

func TestStalemateOverridesLoss(t *testing.T) {
	fens := []string{
		"7k/5Q2/6K1/8/8/8/8/8 b - - 0 50",
		"k7/8/1QK5/8/8/8/8/8 b - - 0 60",
	}
	eng := NewEngine()
	for _, fen := range fens {
		for depth := 1; depth <= 2; depth++ {
			g := fenGame{t: t, fen: fen, seed: 1}
			res := eng.SearchDepth(g, depth)

			pos, _, _ := g.SearchState()
			Prepare(pos, rng.New(1), false)
			if want := pos.StalemateScores[board.Black]; res.Score != want {
				t.Errorf("%s depth %d: score %d, want stalemate score %d", fen, depth, res.Score, want)
			}
			if pos.Board[res.From] != board.BlackKing {
				t.Errorf("%s depth %d: move %v%v is not a king move", fen, depth, res.From, res.To)
			}
		}
	}
}

func TestPruningMatchesMinimax(t *testing.T) {
	fens := []string{
		board.StartFEN,
		"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3",
		"r1bqkb1r/pppp1ppp/2n2n2/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4",
	}
	for _, fen := range fens {
		for depth := 1; depth <= 3; depth++ {
			var results [2]Result
			var nodes [2]uint64
			for i, pruning := range []bool{true, false} {
				pos, r, draw := fenGame{t: t, fen: fen, seed: 5}.SearchState()
				Prepare(pos, r, draw)
				OrderPieces(pos)
				s := NewSearcher()
				s.SetPruning(pruning)
				results[i] = s.FindMove(pos, depth, pos.SideToMove, pos.EnPassant)
				nodes[i] = s.Nodes()
			}
			if results[0] != results[1] {
				t.Errorf("%s depth %d: alpha-beta %+v, minimax %+v", fen, depth, results[0], results[1])
			}
			if nodes[0] > nodes[1] {
				t.Errorf("%s depth %d: alpha-beta visited %d nodes, minimax %d", fen, depth, nodes[0], nodes[1])
			}
			t.Logf("%s depth %d: %d vs %d nodes", fen, depth, nodes[0], nodes[1])
		}
	}
}

func TestSearchLeavesPositionIntact(t *testing.T) {
	pos, r, _ := fenGame{t: t, fen: "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", seed: 1}.SearchState()
	Prepare(pos, r, false)
	OrderPieces(pos)
	before := pos.Copy()

	NewSearcher().FindMove(pos, 3, pos.SideToMove, pos.EnPassant)

	if diff := cmp.Diff(before, pos); diff != "" {
		t.Errorf("position changed by search (-before +after):\n%s", diff)
	}
}

func TestSearchDepthZero(t *testing.T) {
	pos, r, _ := fenGame{t: t, fen: "4k3/8/8/3q4/8/8/3R4/4K3 w - - 0 40", seed: 1}.SearchState()
	Prepare(pos, r, false)
	res := NewSearcher().FindMove(pos, 0, board.White, board.NoSquare)
	if res.From != square(t, "d2") || res.To != square(t, "d5") {
		t.Errorf("depth 0 picked %v%v, want the queen capture", res.From, res.To)
	}
}

func TestSearchNoMoves(t *testing.T) {
	// Black has no pieces at all, so there is nothing to generate.
	pos, _ := board.ParseFEN("8/8/8/8/8/8/8/4K3 b - - 0 1")
	res := NewSearcher().FindMove(pos, 2, board.Black, board.NoSquare)
	if res.From != board.NoSquare {
		t.Errorf("got move %v%v from an empty side", res.From, res.To)
	}
}

func TestSearchDifficultyDepth(t *testing.T) {
	eng := NewEngine()
	for d, want := range DifficultyDepth {
		eng.SetDifficulty(d)
		if got := eng.Depth(); got != want {
			t.Errorf("%v depth = %d, want %d", d, got, want)
		}
	}
	eng.SetDifficulty(Difficulty(42))
	if got := eng.Depth(); got != DifficultyDepth[Medium] {
		t.Errorf("unknown difficulty depth = %d", got)
	}

	for _, name := range []string{"easy", "medium", "hard"} {
		d, ok := ParseDifficulty(name)
		if !ok || d.String() != name {
			t.Errorf("ParseDifficulty(%q) = %v, %v", name, d, ok)
		}
	}
	if _, ok := ParseDifficulty("grandmaster"); ok {
		t.Error("ParseDifficulty accepted an unknown name")
	}
}

func TestSearchInfoCallback(t *testing.T) {
	eng := NewEngine()
	eng.SetDifficulty(Easy)
	var infos []SearchInfo
	eng.OnInfo = func(info SearchInfo) { infos = append(infos, info) }

	res := eng.Search(fenGame{t: t, fen: board.StartFEN, seed: 1})
	if len(infos) != 1 {
		t.Fatalf("got %d info callbacks, want 1", len(infos))
	}
	if infos[0].Move != res || infos[0].Depth != 2 || infos[0].Nodes == 0 {
		t.Errorf("info = %+v for result %+v", infos[0], res)
	}
}

func TestSearchAsync(t *testing.T) {
	eng := NewEngine()
	g := fenGame{t: t, fen: board.StartFEN, seed: 1}
	want := eng.Search(g)

	res, ok := <-eng.SearchAsync(context.Background(), g)
	if !ok {
		t.Fatal("async search delivered nothing")
	}
	if res != want {
		t.Errorf("async result %+v, sync result %+v", res, want)
	}
}

func TestSearchAsyncCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := NewEngine()
	eng.SetDifficulty(Hard)
	if res, ok := <-eng.SearchAsync(ctx, fenGame{t: t, fen: board.StartFEN, seed: 1}); ok {
		t.Errorf("cancelled search delivered %+v", res)
	}
}

func TestPerft(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		depth int
		want  uint64
	}{
		{"start d3", board.StartFEN, 3, 8902},
		{"kiwipete d2", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 2, 2039},
		{"promotions d1", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", 1, 6},
		{"promotions d2", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", 2, 264},
	}

	eng := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, _ := board.ParseFEN(tt.fen)
			if got := eng.Perft(pos, tt.depth); got != tt.want {
				t.Errorf("perft = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDivide(t *testing.T) {
	eng := NewEngine()
	pos, _ := board.ParseFEN("8/4P3/8/8/8/8/k7/4K3 w - - 0 1")
	div := eng.Divide(pos, 1)

	for _, key := range []string{"e7e8q", "e7e8r", "e7e8b", "e7e8n", "e1d1"} {
		if div[key] != 1 {
			t.Errorf("divide[%s] = %d, want 1", key, div[key])
		}
	}

	var total uint64
	for _, n := range div {
		total += n
	}
	if want := eng.Perft(pos, 1); total != want {
		t.Errorf("divide total %d, perft %d", total, want)
	}
}

func TestScoreToString(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, "0.00"},
		{20, "1.00"},
		{-30, "-1.50"},
		{161, "8.05"},
		{7702, "Mate in 1"},
		{7400, "Mate in 2"},
		{-7700, "Mated in 1"},
	}
	for _, tt := range tests {
		if got := ScoreToString(tt.score); got != tt.want {
			t.Errorf("ScoreToString(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
