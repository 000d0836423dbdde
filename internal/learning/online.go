package learning

import (
	"context"
	"log"
	"time"

	"github.com/chewxy/math32"

	"github.com/kbinani/sunfish3/pkg/eval"
	"github.com/kbinani/sunfish3/pkg/shogi"
)

const (
	maxHingeMargin       = 256
	minHingeMargin       = 10
	numberOfSiblingNodes = 16
	miniBatchLength      = 256
	onlineNorm           = 1.0e-6
	gradientBase         = 4.0
)

// hingeMargin scales the learning window with game progress: narrow in
// the opening, wide in the endgame.
func hingeMargin(board *shogi.Board) eval.Value {
	var prog = eval.Progress(board)
	var margin = minHingeMargin +
		(maxHingeMargin-minHingeMargin)*prog/eval.ProgressScale
	return eval.Value(margin)
}

func onlineGradient() float32 {
	return gradientBase * eval.PositionalScale
}

func onlineError(x float32) float32 {
	return x * onlineGradient()
}

// onlineShrink is the L1-style soft shrinkage applied per mini-batch.
func onlineShrink(x float32) float32 {
	const n = onlineNorm * eval.PositionalScale
	if x > 0 {
		return -n
	} else if x < 0 {
		return n
	}
	return 0
}

// OnlineLearning refines the evaluation tables one mini-batch at a
// time: workers turn (position, move) jobs into gradients against a
// shared accumulator, and the orchestrator folds each drained batch
// into the weights with shrinkage and running averaging.
type OnlineLearning struct {
	config    Config
	evaluator *eval.Evaluator
	pool      *workerPool

	g *eval.FV
	w *eval.FV
	u *eval.FV

	jobs []job

	miniBatchCount uint32
	miniBatchScale uint32
	errorCount     uint32
	errorSum       float32
}

func NewOnlineLearning(config Config, evaluator *eval.Evaluator) *OnlineLearning {
	return &OnlineLearning{config: config, evaluator: evaluator}
}

// Run performs the whole online pass over the configured corpus.
func (l *OnlineLearning) Run() error {
	log.Println("begin learning")
	var start = time.Now()

	files, err := shogi.EnumerateFiles(l.config.Kifu, "csa")
	if err != nil {
		return err
	}

	l.evaluator.Init()
	l.miniBatchCount = 1
	l.g = eval.NewFV()
	l.w = eval.NewFV()
	l.u = eval.NewFV()

	l.pool = newWorkerPool(l.config.Threads, l.evaluator,
		learningSearchConfig(l.config.Depth), l.genGradient)

	l.jobs, err = loadJobs(context.Background(), files)
	if err != nil {
		return err
	}

	var rgen = l.pool.rgens[0]
	rgen.Shuffle(len(l.jobs), func(i, j int) {
		l.jobs[i], l.jobs[j] = l.jobs[j], l.jobs[i]
	})

	l.pool.start()
	for l.miniBatch() {
	}
	l.pool.stop()

	log.Println("completed..")
	log.Println("elapsed:", time.Since(start))
	log.Println("end learning")
	return nil
}

// genGradient is the per-job worker body: search the played move and
// its siblings, then push hinge gradients onto the shared accumulator.
func (l *OnlineLearning) genGradient(wn int, j job) {
	board, err := shogi.NewBoardFromCompact(j.board)
	if err != nil {
		log.Println("skip job", "err", err)
		return
	}
	var black = board.IsBlack()
	var sideSign float32 = 1
	if !black {
		sideSign = -1
	}

	var params = genParams{
		depth:       l.config.Depth,
		maxSiblings: numberOfSiblingNodes,
		window: func(root *shogi.Board, v0 eval.Value) (eval.Value, eval.Value) {
			return v0 - hingeMargin(root), v0 + maxHingeMargin
		},
		onSibling: func(v, alpha, beta eval.Value) {
			var clipped = v
			if clipped < alpha {
				clipped = alpha
			}
			if clipped > beta {
				clipped = beta
			}
			l.pool.mu.Lock()
			l.errorCount++
			l.errorSum += onlineError(float32(clipped - alpha))
			l.pool.mu.Unlock()
		},
		emit: func(root *shogi.Board, played pvLine, siblings []pvLine) {
			var g = onlineGradient() * sideSign
			var gsum float32

			l.pool.mu.Lock()
			defer l.pool.mu.Unlock()

			for _, line := range siblings {
				var leaf = pvLeaf(root, line)
				l.g.Extract(leaf, -g, true)
				gsum += g
			}
			var leaf = pvLeaf(root, played)
			l.g.Extract(leaf, gsum, true)

			// missing siblings count as zero-gradient targets
			l.miniBatchScale += numberOfSiblingNodes
		},
	}
	l.pool.generateTrainingData(wn, board, j.move, params)
}

// miniBatch drains one batch of jobs through the pool and applies the
// averaged gradient step. Returns false once fewer than a batch of
// jobs remain.
func (l *OnlineLearning) miniBatch() bool {
	if len(l.jobs) < miniBatchLength {
		return false
	}

	log.Println("jobs =", len(l.jobs))

	l.miniBatchScale = 0
	l.errorCount = 0
	l.errorSum = 0

	l.pool.mu.Lock()
	var n = len(l.jobs)
	l.pool.queue = append(l.pool.queue, l.jobs[n-miniBatchLength:]...)
	l.jobs = l.jobs[:n-miniBatchLength]
	l.pool.mu.Unlock()

	l.pool.waitIdle()

	var scale = float32(l.miniBatchScale)
	if scale == 0 {
		scale = 1
	}
	var count = float32(l.miniBatchCount)
	var maxW, maxU float32
	var magnitudeW float64

	var update = func(g, w, u []float32) {
		for i := range g {
			var f = g[i]/scale + onlineShrink(w[i])
			g[i] = 0
			w[i] += f
			u[i] += f * count
			maxW = math32.Max(maxW, math32.Abs(w[i]))
			magnitudeW += float64(math32.Abs(w[i]))
			maxU = math32.Max(maxU, math32.Abs(u[i]))
		}
	}
	update(l.g.KPP, l.w.KPP, l.u.KPP)
	update(l.g.KKP, l.w.KKP, l.u.KKP)

	l.miniBatchCount++

	// deploy the running average and persist it
	l.evaluator.LoadAveraged(l.w, l.u, l.miniBatchCount)
	if err := l.evaluator.WriteFile(eval.EvalFileName); err != nil {
		log.Println("write eval failed", "err", err)
		return false
	}

	// the next round of searches sees the raw weights
	l.evaluator.LoadRounded(l.w)

	var errAvg float32
	if l.errorCount > 0 {
		errAvg = l.errorSum / float32(l.errorCount)
	}
	log.Println("mini_batch_count =", l.miniBatchCount-1,
		"error =", errAvg,
		"max_w =", maxW,
		"magnitude_w =", magnitudeW,
		"max_u =", maxU)

	l.evaluator.ClearCache()
	l.pool.clearTT()

	return true
}

