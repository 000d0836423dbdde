package learning

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kbinani/sunfish3/pkg/eval"
	"github.com/kbinani/sunfish3/pkg/shogi"
)

func TestOnlineShrinkSign(t *testing.T) {
	require.Negative(t, onlineShrink(0.5))
	require.Positive(t, onlineShrink(-0.5))
	require.Zero(t, onlineShrink(0))
	require.Equal(t, -onlineShrink(1), onlineShrink(-1))
}

func TestHingeMarginBounds(t *testing.T) {
	require.Equal(t, eval.Value(minHingeMargin), hingeMargin(shogi.NewBoard()))

	var b = shogi.NewEmptyBoard(shogi.MakeSquare(8, 8), shogi.MakeSquare(0, 0), true)
	b.SetHand(true, shogi.Pawn, 18)
	b.SetHand(true, shogi.Rook, 2)
	b.SetHand(true, shogi.Bishop, 2)
	b.SetHand(true, shogi.Gold, 4)
	var m = hingeMargin(b)
	require.GreaterOrEqual(t, int(m), minHingeMargin)
	require.LessOrEqual(t, int(m), maxHingeMargin)
	require.Greater(t, int(m), minHingeMargin)
}

func TestOnlineErrorScale(t *testing.T) {
	require.Equal(t, float32(0), onlineError(0))
	require.Equal(t, float32(10*gradientBase*eval.PositionalScale), onlineError(10))
}

// a quiet constructed position: the played king move has several
// siblings, all scoring inside the hinge window
func TestGenGradientSiblingAccounting(t *testing.T) {
	if testing.Short() {
		t.Skip("allocates full parameter tables")
	}
	var b = shogi.NewEmptyBoard(shogi.MakeSquare(4, 4), shogi.MakeSquare(0, 0), true)
	b.SetPiece(shogi.MakeSquare(0, 2), shogi.MakePiece(shogi.Pawn, false))

	var l = &OnlineLearning{
		config:    Config{Threads: 1, Depth: 1},
		evaluator: testEvaluator(),
		g:         eval.NewFV(),
	}
	l.pool = newWorkerPool(1, l.evaluator, learningSearchConfig(1), nil)

	var move0 = shogi.MakeMove(shogi.MakeSquare(4, 4), shogi.MakeSquare(4, 3), false)
	l.genGradient(0, job{board: b.Compact(), move: move0})

	// the king has eight moves: seven siblings beside the played one
	require.Equal(t, uint32(7), l.errorCount)
	require.Equal(t, uint32(numberOfSiblingNodes), l.miniBatchScale)
	require.Positive(t, l.errorSum)

	var touched bool
	for _, v := range l.g.KKP {
		if v != 0 {
			touched = true
			break
		}
	}
	require.True(t, touched, "gradient extraction reached the tables")
}

func TestGenGradientSkipsMateRoot(t *testing.T) {
	// black mates with a gold drop; the position carries no signal
	var b = shogi.NewEmptyBoard(shogi.MakeSquare(8, 8), shogi.MakeSquare(0, 0), true)
	b.SetPiece(shogi.MakeSquare(2, 1), shogi.MakePiece(shogi.Dragon, true))
	b.SetHand(true, shogi.Gold, 1)

	var l = &OnlineLearning{
		config:    Config{Threads: 1, Depth: 1},
		evaluator: testEvaluator(),
	}
	l.pool = newWorkerPool(1, l.evaluator, learningSearchConfig(1), nil)

	var move0 = shogi.MakeDrop(shogi.Gold, shogi.MakeSquare(0, 1))
	l.genGradient(0, job{board: b.Compact(), move: move0})

	require.Zero(t, l.errorCount)
	require.Zero(t, l.miniBatchScale)
}

func TestGenGradientSkipsForcedPosition(t *testing.T) {
	// box the king in with immobile pieces: one pawn push is the only
	// pseudo-legal move, and a single choice carries no signal
	var b = shogi.NewEmptyBoard(shogi.MakeSquare(0, 0), shogi.MakeSquare(8, 8), true)
	b.SetPiece(shogi.MakeSquare(1, 0), shogi.MakePiece(shogi.Knight, true))
	b.SetPiece(shogi.MakeSquare(1, 1), shogi.MakePiece(shogi.Knight, true))
	b.SetPiece(shogi.MakeSquare(0, 1), shogi.MakePiece(shogi.Pawn, true))
	b.SetPiece(shogi.MakeSquare(5, 5), shogi.MakePiece(shogi.Pawn, true))

	var l = &OnlineLearning{
		config:    Config{Threads: 1, Depth: 1},
		evaluator: testEvaluator(),
	}
	l.pool = newWorkerPool(1, l.evaluator, learningSearchConfig(1), nil)

	var moves = b.GenerateMoves()
	require.Len(t, moves, 1)
	l.genGradient(0, job{board: b.Compact(), move: moves[0]})
	require.Zero(t, l.miniBatchScale)
	require.Zero(t, l.errorCount)
}

func TestOnlineEmptyCorpus(t *testing.T) {
	if testing.Short() {
		t.Skip("allocates full parameter tables")
	}
	var cfg = Config{
		Kifu:    t.TempDir(),
		Threads: 1,
		Depth:   1,
	}
	var evaluator = testEvaluator()
	var l = NewOnlineLearning(cfg, evaluator)
	require.NoError(t, l.Run())

	// no mini-batch ran: the tables are untouched zeroes
	for _, i := range []int{0, 1234567, eval.KPPAll - 1} {
		require.Zero(t, evaluator.KPP[i])
	}
	require.Equal(t, uint32(1), l.miniBatchCount)
}
