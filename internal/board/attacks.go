package board

// Step offsets on the 10x12 board.
var (
	rookDirs   = [4]Square{1, 10, -1, -10}
	bishopDirs = [4]Square{11, 9, -11, -9}
	knightDirs = [8]Square{21, 19, 12, 8, -21, -19, -12, -8}
	kingDirs   = [8]Square{1, 10, 11, 9, -1, -10, -11, -9}
)

// forward returns the pawn advance offset for a colour.
func forward(c Color) Square {
	return 10 - 20*Square(c)
}

// scan walks from sq in steps of d and returns the first non-empty cell.
func (b *Board) scan(sq, d Square) Piece {
	for {
		sq += d
		if piece := b[sq]; piece != Empty {
			return piece
		}
	}
}

// InCheck reports whether the king of colour c is attacked. A colour with
// no king on its piece list is never in check.
func (p *Position) InCheck(c Color) bool {
	s := p.KingSquare(c)
	if s == NoSquare {
		return false
	}
	b := &p.Board
	them := c.Other()
	dir := forward(c)

	pawn := Pawn | Piece(them)
	if b[s+dir-1] == pawn || b[s+dir+1] == pawn {
		return true
	}

	knight := Knight | Piece(them)
	king := King | Piece(them)
	for i := 0; i < 8; i++ {
		if b[s+knightDirs[i]] == knight || b[s+kingDirs[i]] == king {
			return true
		}
	}

	diagSlider := Bishop | Piece(them)
	gridSlider := Rook | Piece(them)
	for i := 0; i < 4; i++ {
		if b.scan(s, bishopDirs[i])&diagMask == diagSlider {
			return true
		}
		if b.scan(s, rookDirs[i])&gridMask == gridSlider {
			return true
		}
	}
	return false
}

// CastlingSafe reports whether a king may castle through three squares
// starting at s: none of s, s+1 and s+2 may be attacked by colour them.
// side is -1 for the queen side and 1 for the king side. dir is the
// castling colour's pawn direction.
func (b *Board) CastlingSafe(s Square, them Color, dir, side Square) bool {
	knight := Knight | Piece(them)
	diagSlider := Bishop | Piece(them)
	gridSlider := Rook | Piece(them)
	kingPawn := Pawn | Piece(them)

	for sq := s; sq < s+3; sq++ {
		if b.scan(sq, dir)&gridMask == gridSlider {
			return false
		}
		if b.scan(sq, dir-1)&diagMask == diagSlider {
			return false
		}
		if b.scan(sq, dir+1)&diagMask == diagSlider {
			return false
		}
		if b[sq+dir-2] == knight || b[sq+dir+2] == knight {
			return false
		}
	}

	// Pawns and kings one rank up, knights two ranks up.
	for sq := s + dir - 1; sq < s+dir+4; sq++ {
		if b[sq]&gridMask == kingPawn || b[sq+dir] == knight {
			return false
		}
	}

	// Sliders along the back rank from the far side of the king.
	start := s
	if side < 0 {
		start = s + 2
	}
	return b.scan(start, -side)&gridMask != gridSlider
}
