package eval

import (
	"github.com/kbinani/sunfish3/pkg/shogi"
)

// FV is a float-valued parameter tensor of the same shape as the
// deployed evaluation tables. Online learning keeps three of these
// (gradient, weights, weighted sum); batch learning keeps one.
type FV struct {
	KPP []float32
	KKP []float32
}

func NewFV() *FV {
	return &FV{
		KPP: make([]float32, KPPAll),
		KKP: make([]float32, KKPAll),
	}
}

// Init zeroes every slot.
func (fv *FV) Init() {
	for i := range fv.KPP {
		fv.KPP[i] = 0
	}
	for i := range fv.KKP {
		fv.KKP[i] = 0
	}
}

// Extract applies v to every slot active in the board: added when
// accumulate is set, assigned otherwise. White-perspective slots
// receive -v. Callers that accumulate from several goroutines must
// hold their own lock.
func (fv *FV) Extract(b *shogi.Board, v float32, accumulate bool) {
	forEachIndex(b, func(table, index int, sign int32) {
		var x = v
		if sign < 0 {
			x = -v
		}
		switch table {
		case tableKPP:
			if accumulate {
				fv.KPP[index] += x
			} else {
				fv.KPP[index] = x
			}
		case tableKKP:
			if accumulate {
				fv.KKP[index] += x
			} else {
				fv.KKP[index] = x
			}
		}
	})
}

// Symmetrize folds every mirror pair of slots through fn.
func (fv *FV) Symmetrize(fn func(a, b float32) (float32, float32)) {
	forEachMirrorPair(func(table, i, j int) {
		switch table {
		case tableKPP:
			fv.KPP[i], fv.KPP[j] = fn(fv.KPP[i], fv.KPP[j])
		case tableKKP:
			fv.KKP[i], fv.KKP[j] = fn(fv.KKP[i], fv.KKP[j])
		}
	})
}
