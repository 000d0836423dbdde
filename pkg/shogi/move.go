package shogi

import "fmt"

// Move packs a move into 16 bits: bits 0-6 destination square,
// bits 7-13 origin (81+hand slot for drops), bit 14 promotion.
// The packed form doubles as the on-disk move code.
type Move uint16

const MoveEmpty Move = 0

const dropOrigin = SquareCount

func MakeMove(from, to Square, promote bool) Move {
	var m = Move(to) | Move(from)<<7
	if promote {
		m |= 1 << 14
	}
	return m
}

func MakeDrop(k PieceKind, to Square) Move {
	return Move(to) | Move(dropOrigin+handIndex(k))<<7
}

func (m Move) To() Square   { return Square(m & 0x7f) }
func (m Move) From() Square { return Square((m >> 7) & 0x7f) }
func (m Move) IsDrop() bool { return (m>>7)&0x7f >= dropOrigin }
func (m Move) IsEmpty() bool {
	return m == MoveEmpty
}
func (m Move) IsPromotion() bool { return m&(1<<14) != 0 }

// DropKind returns the dropped kind; only meaningful when IsDrop.
func (m Move) DropKind() PieceKind {
	return handKind(int((m>>7)&0x7f) - dropOrigin)
}

// Serialize16 is the 16-bit wire form used by the training record codec.
func (m Move) Serialize16() uint16 { return uint16(m) }

// DeserializeMove rebuilds a move from its wire form. Legality is not
// checked here; replaying onto a board decides that.
func DeserializeMove(code uint16) Move { return Move(code) }

func (m Move) String() string {
	if m.IsEmpty() {
		return "none"
	}
	if m.IsDrop() {
		return fmt.Sprintf("%v*%d%d", m.DropKind(), m.To().File()+1, m.To().Rank()+1)
	}
	var s = fmt.Sprintf("%d%d%d%d",
		m.From().File()+1, m.From().Rank()+1,
		m.To().File()+1, m.To().Rank()+1)
	if m.IsPromotion() {
		s += "+"
	}
	return s
}
