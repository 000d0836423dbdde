package shogi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func legalMoves(b *Board) []Move {
	var result []Move
	for _, m := range b.GenerateMoves() {
		if b.MakeMove(m) {
			b.UnmakeMove()
			result = append(result, m)
		}
	}
	return result
}

func TestInitialPositionMoveCount(t *testing.T) {
	var b = NewBoard()
	require.True(t, b.IsBlack())
	require.Len(t, legalMoves(b), 30)
}

func TestMakeUnmakeRestores(t *testing.T) {
	var b = NewBoard()
	var before = b.Compact()
	var beforeKey = b.Key()
	for _, m := range b.GenerateMoves() {
		if !b.MakeMove(m) {
			continue
		}
		b.UnmakeMove()
		require.Equal(t, before, b.Compact(), "move %v", m)
		require.Equal(t, beforeKey, b.Key(), "move %v", m)
	}
}

func TestMakeMoveSwitchesSide(t *testing.T) {
	var b = NewBoard()
	var m = MakeMove(MakeSquare(2, 6), MakeSquare(2, 5), false)
	require.True(t, b.MakeMove(m))
	require.False(t, b.IsBlack())
	b.UnmakeMove()
	require.True(t, b.IsBlack())
}

func TestCaptureGoesToHand(t *testing.T) {
	var b = NewEmptyBoard(MakeSquare(8, 8), MakeSquare(0, 0), true)
	b.SetPiece(MakeSquare(4, 4), MakePiece(Rook, true))
	b.SetPiece(MakeSquare(4, 1), MakePiece(Tokin, false))

	require.True(t, b.MakeMove(MakeMove(MakeSquare(4, 4), MakeSquare(4, 1), false)))
	// a captured tokin turns back into a pawn in hand
	require.Equal(t, 1, b.Hand(true, Pawn))
	b.UnmakeMove()
	require.Equal(t, 0, b.Hand(true, Pawn))
	require.Equal(t, MakePiece(Tokin, false), b.Piece(MakeSquare(4, 1)))
}

func TestPawnDropRules(t *testing.T) {
	var b = NewEmptyBoard(MakeSquare(8, 8), MakeSquare(0, 0), true)
	b.SetPiece(MakeSquare(3, 5), MakePiece(Pawn, true))
	b.SetHand(true, Pawn, 1)

	// no second unpromoted pawn on a file
	require.False(t, b.MakeMove(MakeDrop(Pawn, MakeSquare(3, 4))))
	// no pawn on the last rank
	require.False(t, b.MakeMove(MakeDrop(Pawn, MakeSquare(5, 0))))
	require.True(t, b.MakeMove(MakeDrop(Pawn, MakeSquare(5, 4))))
}

func TestForcedPromotion(t *testing.T) {
	var b = NewEmptyBoard(MakeSquare(8, 8), MakeSquare(0, 0), true)
	b.SetPiece(MakeSquare(6, 1), MakePiece(Pawn, true))

	require.False(t, b.MakeMove(MakeMove(MakeSquare(6, 1), MakeSquare(6, 0), false)))
	require.True(t, b.MakeMove(MakeMove(MakeSquare(6, 1), MakeSquare(6, 0), true)))
	require.Equal(t, MakePiece(Tokin, true), b.Piece(MakeSquare(6, 0)))
}

func TestSelfCheckRejected(t *testing.T) {
	var b = NewEmptyBoard(MakeSquare(4, 8), MakeSquare(4, 0), true)
	b.SetPiece(MakeSquare(4, 4), MakePiece(Rook, false))
	b.SetPiece(MakeSquare(4, 6), MakePiece(Gold, true))

	// the gold is pinned to the king by the rook
	require.False(t, b.MakeMove(MakeMove(MakeSquare(4, 6), MakeSquare(3, 6), false)))
	require.True(t, b.MakeMove(MakeMove(MakeSquare(4, 6), MakeSquare(4, 5), false)))
}

func TestInCheck(t *testing.T) {
	var b = NewEmptyBoard(MakeSquare(4, 8), MakeSquare(4, 0), true)
	require.False(t, b.InCheck())
	b.SetPiece(MakeSquare(4, 4), MakePiece(Rook, false))
	require.True(t, b.InCheck())
}

func TestMakeMoveIrrClearsUndo(t *testing.T) {
	var b = NewBoard()
	require.True(t, b.MakeMoveIrr(MakeMove(MakeSquare(2, 6), MakeSquare(2, 5), false)))
	var after = b.Compact()
	b.UnmakeMove()
	require.Equal(t, after, b.Compact())
}

func TestMoveSerializeRoundTrip(t *testing.T) {
	var b = NewBoard()
	for _, m := range b.GenerateMoves() {
		require.Equal(t, m, DeserializeMove(m.Serialize16()))
	}
	var drop = MakeDrop(Knight, MakeSquare(4, 4))
	require.Equal(t, drop, DeserializeMove(drop.Serialize16()))
	require.True(t, drop.IsDrop())
	require.Equal(t, Knight, drop.DropKind())
}

func TestCompactRoundTrip(t *testing.T) {
	var b = NewBoard()
	b.MakeMove(MakeMove(MakeSquare(2, 6), MakeSquare(2, 5), false))
	b.MakeMove(MakeMove(MakeSquare(6, 2), MakeSquare(6, 3), false))

	var cb = b.Compact()
	restored, err := NewBoardFromCompact(cb)
	require.NoError(t, err)
	require.Equal(t, cb, restored.Compact())
	require.Equal(t, b.Key(), restored.Key())
	require.Equal(t, b.IsBlack(), restored.IsBlack())
}

func TestCompactRejectsGarbage(t *testing.T) {
	var cb CompactBoard
	for i := range cb {
		cb[i] = 0x7f
	}
	var _, err = NewBoardFromCompact(cb)
	require.Error(t, err)
}

func TestMirrorSquare(t *testing.T) {
	require.Equal(t, MakeSquare(8, 3), MirrorSquare(MakeSquare(0, 3)))
	require.Equal(t, MakeSquare(4, 5), MirrorSquare(MakeSquare(4, 5)))
	for sq := Square(0); sq < SquareCount; sq++ {
		require.Equal(t, sq, MirrorSquare(MirrorSquare(sq)))
		require.Equal(t, sq, Rotate180(Rotate180(sq)))
	}
}
