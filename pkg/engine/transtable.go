package engine

import (
	"github.com/kbinani/sunfish3/pkg/eval"
	"github.com/kbinani/sunfish3/pkg/shogi"
)

const (
	boundLower = 1 << iota
	boundUpper
)

const boundExact = boundLower | boundUpper

type transEntry struct {
	key   uint64
	move  shogi.Move
	score int16
	depth int8
	bound uint8
}

type transTable struct {
	entries []transEntry
	mask    uint32
}

func roundPowerOfTwo(size int) int {
	var x = 1
	for (x << 1) <= size {
		x <<= 1
	}
	return x
}

func newTransTable(megabytes int) *transTable {
	var size = roundPowerOfTwo(1024 * 1024 * megabytes / 16)
	return &transTable{
		entries: make([]transEntry, size),
		mask:    uint32(size - 1),
	}
}

func (tt *transTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = transEntry{}
	}
}

func (tt *transTable) Read(key uint64) (depth int, score eval.Value, bound int, move shogi.Move, ok bool) {
	var entry = &tt.entries[uint32(key)&tt.mask]
	if entry.key != key {
		return
	}
	return int(entry.depth), eval.Value(entry.score), int(entry.bound), entry.move, true
}

func (tt *transTable) Update(key uint64, depth int, score eval.Value, bound int, move shogi.Move) {
	var entry = &tt.entries[uint32(key)&tt.mask]
	if entry.key == key && int(entry.depth) > depth {
		return
	}
	*entry = transEntry{
		key:   key,
		move:  move,
		score: int16(score),
		depth: int8(depth),
		bound: uint8(bound),
	}
}
