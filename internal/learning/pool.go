package learning

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbinani/sunfish3/pkg/engine"
	"github.com/kbinani/sunfish3/pkg/eval"
	"github.com/kbinani/sunfish3/pkg/shogi"
)

// job is one unit of work: a position plus the played move (online) or
// a game file path (batch).
type job struct {
	board shogi.CompactBoard
	move  shogi.Move
	path  string
}

// workerPool runs a fixed set of long-lived workers over a FIFO job
// queue. Each worker owns a searcher and a random generator seeded
// from its predecessor. The pool mutex is the process-wide lock: it
// guards the queue, the active counter, and also gradient accumulation
// and training-file appends in the engines.
type workerPool struct {
	mu        sync.Mutex
	queue     []job
	active    int
	shutdown  atomic.Bool
	wg        sync.WaitGroup
	rgens     []*rand.Rand
	searchers []*engine.Searcher
	run       func(wn int, j job)
}

func newWorkerPool(nt int, evaluator *eval.Evaluator, cfg engine.SearchConfig, run func(wn int, j job)) *workerPool {
	var p = &workerPool{run: run}
	var seed = time.Now().UnixNano()
	for wn := 0; wn < nt; wn++ {
		var rgen = rand.New(rand.NewSource(seed))
		seed = rgen.Int63()
		p.rgens = append(p.rgens, rgen)
		var searcher = engine.NewSearcher(evaluator)
		searcher.SetConfig(cfg)
		p.searchers = append(p.searchers, searcher)
	}
	return p
}

func learningSearchConfig(depth int) engine.SearchConfig {
	return engine.SearchConfig{
		MaxDepth:             depth,
		WorkerSize:           1,
		TreeSize:             engine.StandardTreeSize(1),
		EnableLimit:          false,
		EnableTimeManagement: false,
		Ponder:               false,
		Logging:              false,
		Learning:             true,
	}
}

func (p *workerPool) start() {
	p.shutdown.Store(false)
	for wn := range p.searchers {
		p.wg.Add(1)
		go func(wn int) {
			defer p.wg.Done()
			p.work(wn)
		}(wn)
	}
}

func (p *workerPool) work(wn int) {
	for !p.shutdown.Load() {
		time.Sleep(time.Millisecond)

		p.mu.Lock()
		if len(p.queue) == 0 {
			p.mu.Unlock()
			continue
		}
		var j = p.queue[0]
		p.queue = p.queue[1:]
		p.active++
		p.mu.Unlock()

		p.run(wn, j)

		p.mu.Lock()
		p.active--
		p.mu.Unlock()
	}
}

func (p *workerPool) push(jobs ...job) {
	p.mu.Lock()
	p.queue = append(p.queue, jobs...)
	p.mu.Unlock()
}

// waitIdle blocks until the queue is empty and no worker is inside a
// job; this dual condition is the only drain barrier between stages.
func (p *workerPool) waitIdle() {
	for {
		p.mu.Lock()
		var idle = len(p.queue) == 0 && p.active == 0
		p.mu.Unlock()
		if idle {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

func (p *workerPool) stop() {
	p.shutdown.Store(true)
	p.wg.Wait()
}

func (p *workerPool) clearTT() {
	for _, s := range p.searchers {
		s.ClearTT()
	}
}
