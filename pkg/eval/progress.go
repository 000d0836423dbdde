package eval

import (
	"github.com/kbinani/sunfish3/pkg/shogi"
)

// ProgressScale is the denominator of Progress results.
const ProgressScale = 1024

// Progress estimates how far a game has advanced, from 0 (opening) to
// ProgressScale (deep endgame). Captured and promoted material are the
// signal: both start at zero and only grow as the game unwinds.
func Progress(b *shogi.Board) int {
	var raw int
	for hi := 0; hi < shogi.HandKindCount; hi++ {
		var k = shogi.PieceKind(hi + 1)
		raw += 2 * (b.Hand(true, k) + b.Hand(false, k))
	}
	for sq := shogi.Square(0); sq < shogi.SquareCount; sq++ {
		var p = b.Piece(sq)
		if !p.IsEmpty() && p.Kind().IsPromoted() {
			raw += 3
		}
	}
	var prog = raw * ProgressScale / 64
	if prog > ProgressScale {
		prog = ProgressScale
	}
	return prog
}
