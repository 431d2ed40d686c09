package board

// Generate returns the pseudo-legal moves of colour c, captures first.
//
// ep is the en passant target (NoSquare for none). Each move carries score
// plus the change in evaluation it causes, read from the prepared Weights
// and Values tables; with unprepared tables every score equals the input.
// Pawns that reach the last rank are generated once; the promotion piece
// is chosen when the move is made.
func (p *Position) Generate(c Color, ep Square, score int) MoveList {
	b := &p.Board
	them := c.Other()
	dir := forward(c)
	values := &p.Values[them]
	castling := p.CastlingRights.ForColor(c)

	var captures, quiet MoveList
	capture := func(s, e Square, weight int, lut *[BoardSize]int) {
		victim := b[e]
		captures = append(captures, ScoredMove{
			Score: weight + values[victim] + lut[e] + p.Weights[victim][e],
			From:  s,
			To:    e,
		})
	}

	pieces := p.Pieces[c]
	for j := len(pieces) - 1; j >= 0; j-- {
		s := pieces[j].Square
		piece := b[s]
		lut := &p.Weights[piece&15]
		weight := score - lut[s]

		switch kind := piece.Kind(); kind {
		case Pawn:
			e := s + dir
			if b[e] == Empty {
				quiet = append(quiet, ScoredMove{weight + lut[e], s, e})
				// s*(120-s) < 3200 holds on the two outer ranks at each end.
				if e2 := e + dir; s*(BoardSize-s) < 3200 && b[e2] == Empty {
					quiet = append(quiet, ScoredMove{weight + lut[e2], s, e2})
				}
			}
			if b[e-1].BelongsTo(them) {
				capture(s, e-1, weight, lut)
			}
			if b[e+1].BelongsTo(them) {
				capture(s, e+1, weight, lut)
			}

		case Knight, King:
			dirs := &knightDirs
			if kind == King {
				dirs = &kingDirs
			}
			for _, d := range dirs {
				e := s + d
				switch target := b[e]; {
				case target == Empty:
					quiet = append(quiet, ScoredMove{weight + lut[e], s, e})
				case target.BelongsTo(them):
					capture(s, e, weight, lut)
				}
			}
			if kind == King && castling != 0 {
				if castling&1 != 0 && b[s-1] == Empty && b[s-2] == Empty && b[s-3] == Empty &&
					b.CastlingSafe(s-2, them, dir, -1) {
					quiet = append(quiet, ScoredMove{weight + 12, s, s - 2})
				}
				if castling&2 != 0 && b[s+1] == Empty && b[s+2] == Empty &&
					b.CastlingSafe(s, them, dir, 1) {
					quiet = append(quiet, ScoredMove{weight + 13, s, s + 2})
				}
			}

		default:
			var dirs []Square
			switch kind {
			case Rook:
				dirs = rookDirs[:]
			case Bishop:
				dirs = bishopDirs[:]
			default:
				dirs = kingDirs[:]
			}
			for _, d := range dirs {
				for e := s + d; ; e += d {
					target := b[e]
					if target == Empty {
						quiet = append(quiet, ScoredMove{weight + lut[e], s, e})
						continue
					}
					if target.BelongsTo(them) {
						capture(s, e, weight, lut)
					}
					break
				}
			}
		}
	}

	if ep != NoSquare {
		pawn := Pawn | Piece(c)
		lut := &p.Weights[pawn]
		taken := values[Pawn] + p.Weights[Pawn|Piece(them)][ep-dir]
		for _, s := range [2]Square{ep - dir - 1, ep - dir + 1} {
			if b[s] == pawn {
				captures = append(captures, ScoredMove{score - lut[s] + lut[ep] + taken, s, ep})
			}
		}
	}

	return append(captures, quiet...)
}

// Legal returns the moves of colour c that do not leave its own king in
// check. Promotions appear once.
func (p *Position) Legal(c Color, ep Square) MoveList {
	moves := p.Generate(c, ep, 0)
	legal := moves[:0]
	for _, m := range moves {
		undo := p.MakeMove(m.From, m.To, Queen)
		ok := !p.InCheck(c)
		p.UnmakeMove(undo)
		if ok {
			legal = append(legal, m)
		}
	}
	return legal
}

// LegalMoves returns the legal moves of the side to move.
func (p *Position) LegalMoves() MoveList {
	return p.Legal(p.SideToMove, p.EnPassant)
}

// HasLegalReply reports whether colour c has at least one move that does
// not leave its king in check, given en passant target ep.
func (p *Position) HasLegalReply(c Color, ep Square) bool {
	for _, m := range p.Generate(c, ep, 0) {
		undo := p.MakeMove(m.From, m.To, Queen)
		ok := !p.InCheck(c)
		p.UnmakeMove(undo)
		if ok {
			return true
		}
	}
	return false
}

// IsCheckmate returns true if the side to move is checkmated.
func (p *Position) IsCheckmate() bool {
	c := p.SideToMove
	return p.InCheck(c) && !p.HasLegalReply(c, p.EnPassant)
}

// IsStalemate returns true if the side to move has no legal move and is
// not in check.
func (p *Position) IsStalemate() bool {
	c := p.SideToMove
	return !p.InCheck(c) && !p.HasLegalReply(c, p.EnPassant)
}
