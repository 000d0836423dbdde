package shogi

import "github.com/pkg/errors"

// CompactBoardSize is the fixed byte size of a serialized position:
// 81 squares, 14 hand counts, side to move.
const CompactBoardSize = SquareCount + 2*HandKindCount + 1

// CompactBoard is the fixed-size serialized form of a Board, used as
// job payload and as the root blob of the training record format.
type CompactBoard [CompactBoardSize]byte

// Compact serializes the position.
func (b *Board) Compact() CompactBoard {
	var cb CompactBoard
	for sq := 0; sq < SquareCount; sq++ {
		cb[sq] = byte(b.squares[sq])
	}
	for side := 0; side < 2; side++ {
		for k := 0; k < HandKindCount; k++ {
			cb[SquareCount+side*HandKindCount+k] = byte(b.hands[side][k])
		}
	}
	if b.black {
		cb[CompactBoardSize-1] = 1
	}
	return cb
}

// NewBoardFromCompact rebuilds a board from its serialized form.
func NewBoardFromCompact(cb CompactBoard) (*Board, error) {
	var b = &Board{black: cb[CompactBoardSize-1] != 0}
	var kings int
	for sq := 0; sq < SquareCount; sq++ {
		var p = Piece(int8(cb[sq]))
		if k := p.Kind(); k > King {
			return nil, errors.Errorf("compact board: bad piece %d at %d", int8(cb[sq]), sq)
		}
		b.squares[sq] = p
		if p.Kind() == King {
			kings++
		}
	}
	if kings != 2 {
		return nil, errors.Errorf("compact board: %d kings", kings)
	}
	for side := 0; side < 2; side++ {
		for k := 0; k < HandKindCount; k++ {
			var n = int8(cb[SquareCount+side*HandKindCount+k])
			if n < 0 || n > handCaps[k] {
				return nil, errors.Errorf("compact board: bad hand count %d", n)
			}
			b.hands[side][k] = n
		}
	}
	b.refresh()
	return b, nil
}
