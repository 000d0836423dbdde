package eval

import (
	"bufio"
	"encoding/binary"
	"os"
	"sync/atomic"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/kbinani/sunfish3/pkg/shogi"
)

const EvalFileName = "eval.bin"

const (
	cacheSize     = 1 << 16
	cacheSizeMask = cacheSize - 1
	cacheEvalMask = uint64(0xffff)
	cacheKeyMask  = ^cacheEvalMask
	cacheEvalZero = 32768
)

// Evaluator is the deployed evaluation function: the material table
// plus the rounded-to-integer positional tables. Reads are lock-free;
// table rewrites happen only while no searcher is active.
type Evaluator struct {
	Material *Material
	KPP      []int16
	KKP      []int16
	cache    []uint64
}

func NewEvaluator() *Evaluator {
	return &Evaluator{
		Material: NewMaterial(),
		KPP:      make([]int16, KPPAll),
		KKP:      make([]int16, KKPAll),
		cache:    make([]uint64, cacheSize),
	}
}

// Init zeroes the positional tables.
func (e *Evaluator) Init() {
	for i := range e.KPP {
		e.KPP[i] = 0
	}
	for i := range e.KKP {
		e.KKP[i] = 0
	}
	e.ClearCache()
}

// Evaluate scores the position from the black side. Positional slots
// are summed at PositionalScale.
func (e *Evaluator) Evaluate(b *shogi.Board) Value {
	var entry = &e.cache[uint32(b.Key())&cacheSizeMask]
	var data = atomic.LoadUint64(entry)
	if data&cacheKeyMask == b.Key()&cacheKeyMask {
		return Value(int32(data&cacheEvalMask) - cacheEvalZero)
	}
	var v = e.evaluate(b)
	atomic.StoreUint64(entry, (b.Key()&cacheKeyMask)|uint64(int32(v)+cacheEvalZero))
	return v
}

func (e *Evaluator) evaluate(b *shogi.Board) Value {
	var material Value
	for sq := shogi.Square(0); sq < shogi.SquareCount; sq++ {
		var p = b.Piece(sq)
		if p.IsEmpty() || p.Kind() == shogi.King {
			continue
		}
		if p.IsBlack() {
			material += e.Material.Piece(p.Kind())
		} else {
			material -= e.Material.Piece(p.Kind())
		}
	}
	for hi := 0; hi < shogi.HandKindCount; hi++ {
		var k = shogi.PieceKind(hi + 1)
		material += Value(b.Hand(true, k)) * e.Material.Piece(k)
		material -= Value(b.Hand(false, k)) * e.Material.Piece(k)
	}
	var positional int32
	forEachIndex(b, func(table, index int, sign int32) {
		switch table {
		case tableKPP:
			positional += sign * int32(e.KPP[index])
		case tableKKP:
			positional += sign * int32(e.KKP[index])
		}
	})
	return material + Value(positional/PositionalScale)
}

// ClearCache drops every cached evaluation.
func (e *Evaluator) ClearCache() {
	for i := range e.cache {
		atomic.StoreUint64(&e.cache[i], 0)
	}
}

func roundToInt16(x float32) int16 {
	var r = math32.Round(x)
	if r > 32767 {
		return 32767
	}
	if r < -32768 {
		return -32768
	}
	return int16(r)
}

// LoadRounded replaces the positional tables with w rounded slot-wise.
func (e *Evaluator) LoadRounded(w *FV) {
	for i := range e.KPP {
		e.KPP[i] = roundToInt16(w.KPP[i])
	}
	for i := range e.KKP {
		e.KKP[i] = roundToInt16(w.KKP[i])
	}
}

// LoadAveraged replaces the positional tables with the running average
// round(w - u/count).
func (e *Evaluator) LoadAveraged(w, u *FV, count uint32) {
	var c = float32(count)
	for i := range e.KPP {
		e.KPP[i] = roundToInt16(w.KPP[i] - u.KPP[i]/c)
	}
	for i := range e.KKP {
		e.KKP[i] = roundToInt16(w.KKP[i] - u.KKP[i]/c)
	}
}

// Symmetrize copies each canonical slot over its mirror so the tables
// are invariant under left-right reflection.
func (e *Evaluator) Symmetrize() {
	forEachMirrorPair(func(table, i, j int) {
		switch table {
		case tableKPP:
			e.KPP[j] = e.KPP[i]
		case tableKKP:
			e.KKP[j] = e.KKP[i]
		}
	})
}

// WriteFile persists the positional tables.
func (e *Evaluator) WriteFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "write eval")
	}
	defer file.Close()
	var w = bufio.NewWriterSize(file, 1<<20)
	if err := binary.Write(w, binary.LittleEndian, e.KPP); err != nil {
		return errors.Wrap(err, "write eval")
	}
	if err := binary.Write(w, binary.LittleEndian, e.KKP); err != nil {
		return errors.Wrap(err, "write eval")
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "write eval")
	}
	return nil
}

// ReadFile loads the positional tables.
func (e *Evaluator) ReadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "read eval")
	}
	defer file.Close()
	var r = bufio.NewReaderSize(file, 1<<20)
	if err := binary.Read(r, binary.LittleEndian, e.KPP); err != nil {
		return errors.Wrap(err, "read eval")
	}
	if err := binary.Read(r, binary.LittleEndian, e.KKP); err != nil {
		return errors.Wrap(err, "read eval")
	}
	e.ClearCache()
	return nil
}
