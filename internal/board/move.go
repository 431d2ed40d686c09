package board

// ScoredMove is a generated move with its incremental score.
type ScoredMove struct {
	Score int
	From  Square
	To    Square
}

// String returns the coordinate form of the move (e.g. "e2e4").
func (m ScoredMove) String() string {
	return m.From.String() + m.To.String()
}

// MoveList is the output of move generation, captures first.
type MoveList []ScoredMove

// Contains returns true if the list holds a move from one square to another.
func (ml MoveList) Contains(from, to Square) bool {
	for _, m := range ml {
		if m.From == from && m.To == to {
			return true
		}
	}
	return false
}

// Undo stores everything needed to reverse one MakeMove.
type Undo struct {
	From     Square
	To       Square
	Moved    Piece // Piece that left From (the reserve piece for placements)
	Captured Piece // Cell value at To before the move

	// EnPassant is the target created by this move (a two-square pawn
	// advance), NoSquare otherwise. MakeMove does not store it on the
	// position; callers decide whether the move is final.
	EnPassant Square

	CastlingRights CastlingRights // Rights before the move

	RookFrom Square // Castling rook origin, NoSquare if not castling
	RookTo   Square
	Rook     Piece

	EPCaptureSquare Square // Square of a pawn taken en passant
	EPCaptured      Piece

	Pieces [2][]PieceSquare // Piece lists before the move
}

// IsCapture reports whether the move removed an enemy piece.
func (u *Undo) IsCapture() bool {
	return u.Captured != Empty || u.EPCaptureSquare != NoSquare
}

// IsCastling reports whether the move was a castle.
func (u *Undo) IsCastling() bool {
	return u.RookFrom != NoSquare
}

// MakeMove plays a pseudo-legal move on the board and returns the record
// that UnmakeMove needs. Promotion is the piece kind a pawn reaching the
// last rank becomes; Empty means queen.
//
// A negative from places the piece -from on to without vacating anything.
func (p *Position) MakeMove(from, to Square, promotion Piece) Undo {
	b := &p.Board
	var moved Piece
	if from >= 0 {
		moved = b[from]
	} else {
		moved = Piece(-from)
	}
	u := Undo{
		From:           from,
		To:             to,
		Moved:          moved,
		Captured:       b[to],
		CastlingRights: p.CastlingRights,
		Pieces:         p.Pieces,
	}
	b[to] = moved
	endPiece := moved
	color := moved.Color()

	if from >= 0 {
		b[from] = Empty
		switch moved.Kind() {
		case Pawn:
			switch {
			case to.Rank() == 0 || to.Rank() == 7:
				if promotion == Empty {
					promotion = Queen
				}
				endPiece = NewPiece(promotion, color)
				b[to] = endPiece
			case (from^to)&1 != 0 && u.Captured == Empty:
				// Diagonal step onto an empty square: en passant.
				u.EPCaptureSquare = to - 10 + 20*Square(color)
				u.EPCaptured = b[u.EPCaptureSquare]
				b[u.EPCaptureSquare] = Empty
			case (from-to)*(from-to) == 400:
				u.EnPassant = (from + to) >> 1
			}
		case King:
			if (from-to)*(from-to) == 4 {
				u.RookFrom = from - 4
				if from < to {
					u.RookFrom = from + 3
				}
				u.RookTo = (from + to) >> 1
				u.Rook = NewPiece(Rook, color)
				b[u.RookFrom] = Empty
				b[u.RookTo] = u.Rook
			}
		}
		p.CastlingRights &^= castlingLoss(from, to, color)
	}

	// Rebuild the mover's list without the vacated squares.
	own := make([]PieceSquare, 0, len(u.Pieces[color])+1)
	for _, ps := range u.Pieces[color] {
		if ps.Square != from && ps.Square != u.RookFrom {
			own = append(own, ps)
		}
	}
	own = append(own, PieceSquare{endPiece, to})
	if u.Rook != Empty {
		own = append(own, PieceSquare{u.Rook, u.RookTo})
	}
	p.Pieces[color] = own

	if u.IsCapture() {
		gone := to
		if u.EPCaptureSquare != NoSquare {
			gone = u.EPCaptureSquare
		}
		theirs := u.Pieces[color.Other()]
		rest := make([]PieceSquare, 0, len(theirs))
		for _, ps := range theirs {
			if ps.Square != gone {
				rest = append(rest, ps)
			}
		}
		p.Pieces[color.Other()] = rest
	}

	return u
}

// castlingLoss returns the rights lost by a move: both of the mover's for a
// king move, one for a move from a rook corner, and one of the opponent's
// for any move onto their rook corner.
func castlingLoss(from, to Square, color Color) CastlingRights {
	var mask CastlingRights
	shift := uint(color) * 2
	side := Square(color) * 70
	switch from - side {
	case E1:
		mask |= 3 << shift
	case A1:
		mask |= 1 << shift
	case H1:
		mask |= 2 << shift
	}
	switch to + side {
	case A8:
		mask |= 4 >> shift
	case H8:
		mask |= 8 >> shift
	}
	return mask
}

// UnmakeMove restores the position to its state before MakeMove.
func (p *Position) UnmakeMove(u Undo) {
	b := &p.Board
	if u.EPCaptureSquare != NoSquare {
		b[u.EPCaptureSquare] = u.EPCaptured
	}
	if u.From >= 0 {
		b[u.From] = u.Moved
	}
	b[u.To] = u.Captured
	if u.RookFrom != NoSquare {
		b[u.RookFrom] = u.Rook
		b[u.RookTo] = Empty
	}
	p.Pieces = u.Pieces
	p.CastlingRights = u.CastlingRights
}
