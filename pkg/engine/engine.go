package engine

import (
	"github.com/kbinani/sunfish3/pkg/eval"
	"github.com/kbinani/sunfish3/pkg/shogi"
)

const maxPly = 64

// SearchConfig mirrors the knobs a learning run flips off: no limits,
// no clock, no pondering, no output. Learning additionally disables
// the transposition table so repeated searches of the same position
// are reproducible.
type SearchConfig struct {
	MaxDepth             int
	WorkerSize           int
	TreeSize             int
	EnableLimit          bool
	NodeLimit            int64
	EnableTimeManagement bool
	Ponder               bool
	Logging              bool
	Learning             bool
}

// StandardTreeSize returns the stack budget for a worker count.
func StandardTreeSize(workerSize int) int {
	return workerSize * maxPly
}

// SearchInfo carries the outcome of one bounded search: the value from
// the side to move and the principal variation.
type SearchInfo struct {
	Eval  eval.Value
	PV    []shogi.Move
	Nodes int64
}

// Searcher drives single-threaded bounded alpha-beta over a borrowed
// evaluator. One learning worker owns one searcher.
type Searcher struct {
	config    SearchConfig
	evaluator *eval.Evaluator
	tt        *transTable
	history   historyTable
	info      SearchInfo
	nodes     int64
}

func NewSearcher(evaluator *eval.Evaluator) *Searcher {
	var s = &Searcher{evaluator: evaluator}
	s.SetConfig(SearchConfig{
		MaxDepth:   5,
		WorkerSize: 1,
		TreeSize:   StandardTreeSize(1),
	})
	return s
}

func (s *Searcher) Config() SearchConfig { return s.config }

func (s *Searcher) SetConfig(cfg SearchConfig) {
	s.config = cfg
	if cfg.Learning {
		s.tt = nil
	} else if s.tt == nil {
		s.tt = newTransTable(16)
	}
}

// Info returns the result of the most recent search.
func (s *Searcher) Info() SearchInfo { return s.info }

// ClearHistory resets the history heuristic.
func (s *Searcher) ClearHistory() {
	s.history.Clear()
}

// ClearTT drops the transposition table contents. A no-op while the
// learning flag disables the table.
func (s *Searcher) ClearTT() {
	if s.tt != nil {
		s.tt.Clear()
	}
}
