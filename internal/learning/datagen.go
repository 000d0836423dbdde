package learning

import (
	"github.com/kbinani/sunfish3/pkg/eval"
	"github.com/kbinani/sunfish3/pkg/shogi"
)

// genParams parameterizes the shared training-data generator. The two
// regimes differ only in the window, the sibling budget, the search
// flavor, and what happens to the surviving lines: the online engine
// turns them into gradients in memory, the batch engine appends a
// training block.
type genParams struct {
	depth          int
	iterative      bool
	checkExtension bool
	maxSiblings    int // 0 means unlimited

	window func(root *shogi.Board, v0 eval.Value) (alpha, beta eval.Value)

	// onSibling sees every searched sibling value, in or out of window
	onSibling func(v, alpha, beta eval.Value)

	// emit receives the root, the played line and the in-window siblings
	emit func(root *shogi.Board, played pvLine, siblings []pvLine)
}

func (p *workerPool) setDepth(wn, depth int) {
	var cfg = p.searchers[wn].Config()
	cfg.MaxDepth = depth
	p.searchers[wn].SetConfig(cfg)
}

func (p *workerPool) searchMove(wn int, board *shogi.Board, m shogi.Move,
	alpha, beta eval.Value, extend bool, params genParams) (v eval.Value, line pvLine, ok bool) {
	if !board.MakeMove(m) {
		return 0, pvLine{}, false
	}
	var depth = params.depth
	if extend && board.InCheck() {
		depth++
	}
	p.setDepth(wn, depth)
	var searcher = p.searchers[wn]
	if params.iterative {
		searcher.IDSearch(board, alpha, beta)
	} else {
		searcher.Search(board, alpha, beta)
	}
	board.UnmakeMove()
	var info = searcher.Info()
	v = -info.Eval
	line = pvLine{moves: append([]shogi.Move{m}, info.PV...)}
	return v, line, true
}

// generateTrainingData searches the played move and its siblings from
// one root and hands the surviving lines to the regime callback.
// Positions with no real choice and mate-bound roots carry no learning
// signal and are skipped.
func (p *workerPool) generateTrainingData(wn int, board *shogi.Board,
	move0 shogi.Move, params genParams) {
	var moves = board.GenerateMoves()
	if len(moves) < 2 {
		return
	}

	p.searchers[wn].ClearHistory()

	v0, played, ok := p.searchMove(wn, board, move0,
		-eval.ValueInf, eval.ValueInf, params.checkExtension, params)
	if !ok || v0.IsMate() {
		return
	}

	var alpha, beta = params.window(board, v0)

	p.rgens[wn].Shuffle(len(moves), func(i, j int) {
		moves[i], moves[j] = moves[j], moves[i]
	})

	var siblings []pvLine
	var visited int
	for _, m := range moves {
		if m == move0 {
			continue
		}
		if params.maxSiblings > 0 && visited >= params.maxSiblings {
			break
		}
		v, line, ok := p.searchMove(wn, board, m, -beta, -alpha, false, params)
		if !ok {
			continue
		}
		visited++
		if params.onSibling != nil {
			params.onSibling(v, alpha, beta)
		}
		// values at the window edge are outside it
		if v <= alpha || v >= beta {
			continue
		}
		siblings = append(siblings, line)
	}

	params.emit(board, played, siblings)
}

// pvLeaf replays a stored line from the root and returns the terminal
// board. A ply that no longer applies ends the replay early.
func pvLeaf(root *shogi.Board, line pvLine) *shogi.Board {
	var board = root.Clone()
	if !board.MakeMoveIrr(line.moves[0]) {
		return board
	}
	for _, m := range line.moves[1:] {
		if m.IsEmpty() || !board.MakeMove(m) {
			break
		}
	}
	return board
}
