package engine

import (
	"github.com/kbinani/sunfish3/pkg/shogi"
)

const historyMax = 1 << 14

// historyTable scores quiet moves by origin and destination; drop
// origins get their own slots past the board squares.
type historyTable struct {
	table [2][88 * 81]int16
}

func moveIndex(m shogi.Move) int {
	return int(m.From())*81 + int(m.To())
}

func (h *historyTable) Read(sideToMove bool, m shogi.Move) int {
	return int(h.table[sideIdx(sideToMove)][moveIndex(m)])
}

func (h *historyTable) Update(sideToMove bool, quietsSearched []shogi.Move, bestMove shogi.Move, depth int) {
	var bonus = depth * depth
	if bonus > 400 {
		bonus = 400
	}
	var side = sideIdx(sideToMove)
	for _, m := range quietsSearched {
		var newVal = -historyMax
		if m == bestMove {
			newVal = historyMax
		}
		var idx = moveIndex(m)
		// exponential moving average
		h.table[side][idx] += int16((newVal - int(h.table[side][idx])) * bonus / 512)
		if m == bestMove {
			break
		}
	}
}

func (h *historyTable) Clear() {
	for side := range h.table {
		for i := range h.table[side] {
			h.table[side][i] = 0
		}
	}
}

func sideIdx(black bool) int {
	if black {
		return 0
	}
	return 1
}
