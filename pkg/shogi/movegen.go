package shogi

// GenerateMoves lists the pseudo-legal moves of the side to move.
// Drop restrictions and forced promotions are honored here; leaving the
// king in check is rejected by MakeMove.
func (b *Board) GenerateMoves() []Move {
	var moves = make([]Move, 0, 128)
	moves = b.generateBoardMoves(moves)
	moves = b.generateDrops(moves)
	return moves
}

func (b *Board) generateBoardMoves(moves []Move) []Move {
	for from := Square(0); from < SquareCount; from++ {
		var p = b.squares[from]
		if p.IsEmpty() || p.IsBlack() != b.black {
			continue
		}
		for _, s := range kindSteps(p.Kind()) {
			var to = offsetSquare(from, forSide(s, b.black))
			if to >= 0 {
				moves = b.appendMove(moves, p, from, to)
			}
		}
		for _, s := range kindSlides(p.Kind()) {
			var d = forSide(s, b.black)
			for to := offsetSquare(from, d); to >= 0; to = offsetSquare(to, d) {
				moves = b.appendMove(moves, p, from, to)
				if !b.squares[to].IsEmpty() {
					break
				}
			}
		}
	}
	return moves
}

func (b *Board) appendMove(moves []Move, p Piece, from, to Square) []Move {
	var target = b.squares[to]
	if !target.IsEmpty() && (target.IsBlack() == b.black || target.Kind() == King) {
		return moves
	}
	var k = p.Kind()
	var canPromote = k.Promote() != NoPieceKind &&
		(promotionZone(from, b.black) || promotionZone(to, b.black))
	if canPromote {
		moves = append(moves, MakeMove(from, to, true))
	}
	if !mustPromote(k, to, b.black) {
		moves = append(moves, MakeMove(from, to, false))
	}
	return moves
}

func (b *Board) generateDrops(moves []Move) []Move {
	var side = sideIndex(b.black)
	for hi := 0; hi < HandKindCount; hi++ {
		if b.hands[side][hi] == 0 {
			continue
		}
		var k = handKind(hi)
		for to := Square(0); to < SquareCount; to++ {
			if !b.squares[to].IsEmpty() {
				continue
			}
			if mustPromote(k, to, b.black) {
				continue
			}
			if k == Pawn && b.pawnOnFile(to.File(), b.black) {
				continue
			}
			moves = append(moves, MakeDrop(k, to))
		}
	}
	return moves
}
