package eval

import (
	"github.com/kbinani/sunfish3/pkg/shogi"
)

// The feature schema is Bonanza-style: side-relative codes for pieces
// in hand (one code per kind, indexed by count) followed by codes for
// board pieces (promoted minors collapse onto gold). Every KPP slot
// couples a king square with an unordered pair of codes; every KKP slot
// couples both king squares with a single code.

const (
	handCodesPerSide = 18 + 4 + 4 + 4 + 4 + 2 + 2 // 38

	boardKindCount = 9
	boardCodeBase  = 2 * handCodesPerSide

	// FEEnd is the number of feature codes.
	FEEnd = boardCodeBase + 2*boardKindCount*shogi.SquareCount

	kppTriangle = FEEnd * (FEEnd + 1) / 2

	// KPPAll and KKPAll are the table slot counts.
	KPPAll = shogi.SquareCount * kppTriangle
	KKPAll = shogi.SquareCount * shogi.SquareCount * FEEnd
)

var handCodeOffset = [shogi.HandKindCount]int{0, 18, 22, 26, 30, 34, 36}

// boardKind collapses a piece kind onto its effective movement class.
func boardKind(k shogi.PieceKind) int {
	switch k {
	case shogi.Pawn:
		return 0
	case shogi.Lance:
		return 1
	case shogi.Knight:
		return 2
	case shogi.Silver:
		return 3
	case shogi.Gold, shogi.Tokin, shogi.ProLance, shogi.ProKnight, shogi.ProSilver:
		return 4
	case shogi.Bishop:
		return 5
	case shogi.Rook:
		return 6
	case shogi.Horse:
		return 7
	case shogi.Dragon:
		return 8
	}
	return -1
}

func handCode(own bool, hi int, count int) int {
	var code = handCodeOffset[hi] + count - 1
	if !own {
		code += handCodesPerSide
	}
	return code
}

func boardCode(own bool, k shogi.PieceKind, sq shogi.Square) int {
	var code = boardCodeBase + boardKind(k)*shogi.SquareCount + int(sq)
	if !own {
		code += boardKindCount * shogi.SquareCount
	}
	return code
}

// featureLists enumerates the active codes from the black perspective
// (lf) and the white perspective (le, colors swapped and squares
// rotated). Each code appears at most once per list.
func featureLists(b *shogi.Board, lf, le []int) ([]int, []int) {
	for _, black := range []bool{true, false} {
		for hi := 0; hi < shogi.HandKindCount; hi++ {
			var c = b.Hand(black, shogi.PieceKind(hi+1))
			if c == 0 {
				continue
			}
			lf = append(lf, handCode(black, hi, c))
			le = append(le, handCode(!black, hi, c))
		}
	}
	for sq := shogi.Square(0); sq < shogi.SquareCount; sq++ {
		var p = b.Piece(sq)
		if p.IsEmpty() || p.Kind() == shogi.King {
			continue
		}
		lf = append(lf, boardCode(p.IsBlack(), p.Kind(), sq))
		le = append(le, boardCode(!p.IsBlack(), p.Kind(), shogi.Rotate180(sq)))
	}
	return lf, le
}

func kppIndex(king shogi.Square, f0, f1 int) int {
	if f0 < f1 {
		f0, f1 = f1, f0
	}
	return int(king)*kppTriangle + f0*(f0+1)/2 + f1
}

func kkpIndex(k0, k1 shogi.Square, f int) int {
	return (int(k0)*shogi.SquareCount+int(k1))*FEEnd + f
}

// mirrorFe maps a code to its reflection across the central file.
var mirrorFe [FEEnd]int

func init() {
	for f := 0; f < FEEnd; f++ {
		if f < boardCodeBase {
			mirrorFe[f] = f
			continue
		}
		var rel = f - boardCodeBase
		var sq = shogi.Square(rel % shogi.SquareCount)
		mirrorFe[f] = f - int(sq) + int(shogi.MirrorSquare(sq))
	}
}

const (
	tableKPP = iota
	tableKKP
)

// forEachIndex reports every active slot for the board with its sign:
// +1 for black-perspective slots, -1 for white-perspective ones.
func forEachIndex(b *shogi.Board, fn func(table, index int, sign int32)) {
	var lfBuf, leBuf [64]int
	var lf, le = featureLists(b, lfBuf[:0], leBuf[:0])

	var bk = b.KingSquare(true)
	var wk = b.KingSquare(false)
	var bkR = shogi.Rotate180(bk)
	var wkR = shogi.Rotate180(wk)

	for i := 1; i < len(lf); i++ {
		for j := 0; j < i; j++ {
			fn(tableKPP, kppIndex(bk, lf[i], lf[j]), 1)
		}
	}
	for i := 1; i < len(le); i++ {
		for j := 0; j < i; j++ {
			fn(tableKPP, kppIndex(wkR, le[i], le[j]), -1)
		}
	}
	for _, f := range lf {
		fn(tableKKP, kkpIndex(bk, wk, f), 1)
	}
	for _, f := range le {
		fn(tableKKP, kkpIndex(wkR, bkR, f), -1)
	}
}

// forEachMirrorPair visits every (index, mirror) pair of both tables
// exactly once, skipping self-mirrored slots.
func forEachMirrorPair(fn func(table, i, j int)) {
	for king := shogi.Square(0); king < shogi.SquareCount; king++ {
		var mk = shogi.MirrorSquare(king)
		for f0 := 0; f0 < FEEnd; f0++ {
			for f1 := 0; f1 <= f0; f1++ {
				var i = kppIndex(king, f0, f1)
				var j = kppIndex(mk, mirrorFe[f0], mirrorFe[f1])
				if i < j {
					fn(tableKPP, i, j)
				}
			}
		}
	}
	for k0 := shogi.Square(0); k0 < shogi.SquareCount; k0++ {
		var m0 = shogi.MirrorSquare(k0)
		for k1 := shogi.Square(0); k1 < shogi.SquareCount; k1++ {
			var m1 = shogi.MirrorSquare(k1)
			for f := 0; f < FEEnd; f++ {
				var i = kkpIndex(k0, k1, f)
				var j = kkpIndex(m0, m1, mirrorFe[f])
				if i < j {
					fn(tableKKP, i, j)
				}
			}
		}
	}
}
