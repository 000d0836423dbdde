package learning

import (
	"log"
	"math/rand"
	"os"
	"sort"
	"sync/atomic"
	"time"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/kbinani/sunfish3/pkg/eval"
	"github.com/kbinani/sunfish3/pkg/shogi"
)

const (
	searchWindow = 256
	batchNorm    = 1.0e-2

	materialFileName = "material.bin"
)

const sigmoidGain = 7.0 / searchWindow

func sigmoidf(x float32) float32 {
	return 1.0 / (1.0 + math32.Exp(-x*sigmoidGain))
}

func dsigmoidf(x float32) float32 {
	var s = sigmoidf(x)
	return (s - s*s) * sigmoidGain
}

func batchShrink(e int16) float32 {
	if e > 0 {
		return -batchNorm
	} else if e < 0 {
		return batchNorm
	}
	return 0
}

// materialResiduals is the discretized material step: the thirteen
// accumulators, ranked ascending, receive these deltas. The fixed
// shape keeps material ratios anchored instead of drifting with the
// raw gradient magnitudes.
var materialResiduals = [eval.MaterialCount]eval.Value{
	-2, -2, -1, -1, -1, 0, 0, 0, 1, 1, 1, 2, 2,
}

// nextUpdateCount halves the number of gradient passes per outer
// iteration, flooring at 16.
func nextUpdateCount(c int) int {
	return max(c/2, 16)
}

// BatchLearning alternates regenerating a training file from the
// current parameters with many randomized integer gradient passes over
// it, updating the material values alongside the positional tables.
type BatchLearning struct {
	config    Config
	evaluator *eval.Evaluator
	pool      *workerPool
	writer    *TrainingWriter
	rgen      *rand.Rand

	g  *eval.FV
	gm [eval.MaterialCount]float32

	totalMoves      atomic.Int64
	outOfWindowLoss atomic.Int64
	loss            float64

	maxAbs    int16
	magnitude uint64
}

func NewBatchLearning(config Config, evaluator *eval.Evaluator) *BatchLearning {
	return &BatchLearning{
		config:    config,
		evaluator: evaluator,
		rgen:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run performs the whole batch learning loop.
func (l *BatchLearning) Run() error {
	log.Println("begin learning")
	var start = time.Now()

	l.evaluator.Init()
	l.g = eval.NewFV()

	l.pool = newWorkerPool(l.config.Threads, l.evaluator,
		learningSearchConfig(l.config.Depth), l.generateJob)
	l.pool.start()
	var err = l.iterate()
	l.pool.stop()

	os.Remove(trainingDatName)

	if err != nil {
		return err
	}

	log.Println("completed..")
	log.Println("elapsed:", time.Since(start))
	log.Println("end learning")
	return nil
}

func (l *BatchLearning) iterate() error {
	var updateCount = 256

	for i := 0; i < l.config.Iteration; i++ {
		writer, err := NewTrainingWriter(trainingDatName)
		if err != nil {
			log.Println("open training data failed", "err", err)
			return err
		}
		l.writer = writer

		l.totalMoves.Store(0)
		l.outOfWindowLoss.Store(0)

		if err := l.generateJobs(); err != nil {
			writer.Close()
			return err
		}
		l.pool.waitIdle()

		if err := writer.Close(); err != nil {
			return err
		}

		updateCount = nextUpdateCount(updateCount)

		for j := 0; j < updateCount; j++ {
			l.loss = 0

			if err := l.generateGradient(); err != nil {
				return err
			}
			l.updateParameters()

			var totalMoves = float64(l.totalMoves.Load())
			var outOfWindow = float64(l.outOfWindowLoss.Load())
			log.Println("iteration =", i, ",", j,
				"out_wind_loss =", outOfWindow/totalMoves,
				"loss =", (outOfWindow+l.loss)/totalMoves,
				"max =", l.maxAbs,
				"magnitude =", l.magnitude)
		}

		if err := l.evaluator.WriteFile(eval.EvalFileName); err != nil {
			return err
		}
		if err := l.evaluator.Material.WriteFile(materialFileName); err != nil {
			return err
		}
		l.evaluator.ClearCache()
	}

	return nil
}

func (l *BatchLearning) generateJobs() error {
	files, err := shogi.EnumerateFiles(l.config.Kifu, "csa")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no files")
	}
	var jobs = make([]job, 0, len(files))
	for _, path := range files {
		jobs = append(jobs, job{path: path})
	}
	l.pool.push(jobs...)
	return nil
}

// generateJob expands one game file into per-position training blocks.
// A record that fails to parse aborts the run; the training file would
// silently lose a whole game otherwise.
func (l *BatchLearning) generateJob(wn int, j job) {
	record, err := shogi.ReadCSA(j.path)
	if err != nil {
		log.Fatalln("could not read csa file",
			"path", j.path,
			"err", err)
	}
	for record.UnmakeMove() {
	}
	for {
		var move = record.NextMove()
		if move.IsEmpty() {
			break
		}
		l.generatePosition(wn, record.Board(), move)
		if !record.MakeMove() {
			break
		}
	}
}

func (l *BatchLearning) generatePosition(wn int, board *shogi.Board, move0 shogi.Move) {
	var params = genParams{
		depth:          l.config.Depth,
		iterative:      true,
		checkExtension: true,
		window: func(root *shogi.Board, v0 eval.Value) (eval.Value, eval.Value) {
			return v0 - searchWindow, v0 + searchWindow
		},
		onSibling: func(v, alpha, beta eval.Value) {
			if v >= beta {
				l.outOfWindowLoss.Add(1)
			}
		},
		emit: func(root *shogi.Board, played pvLine, siblings []pvLine) {
			l.totalMoves.Add(1)
			var lines = append([]pvLine{played}, siblings...)

			l.pool.mu.Lock()
			defer l.pool.mu.Unlock()
			if err := l.writer.WriteBlock(root.Compact(), lines); err != nil {
				log.Println("append training block failed", "err", err)
			}
		},
	}
	l.pool.generateTrainingData(wn, board, move0, params)
}

// generateGradient streams the training file and accumulates the
// sigmoid-loss gradient over the positional tables and the material
// accumulators.
func (l *BatchLearning) generateGradient() error {
	file, err := os.Open(trainingDatName)
	if err != nil {
		log.Println("open training data failed", "err", err)
		return errors.Wrap(err, "open training data")
	}
	defer file.Close()
	var reader = NewTrainingReader(file)

	l.g.Init()
	for i := range l.gm {
		l.gm[i] = 0
	}

	for {
		cb, ok, err := reader.ReadRoot()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		root, err := shogi.NewBoardFromCompact(cb)
		if err != nil {
			return err
		}
		var sideSign float32 = 1
		if !root.IsBlack() {
			sideSign = -1
		}

		var board0 = root.Clone()
		ok, broken, err := reader.ReadPV(board0)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if broken {
			// keep the stream aligned, drop the block
			if err := l.skipBlock(reader, root); err != nil {
				return err
			}
			continue
		}
		var v0 = l.evaluator.Evaluate(board0)

		for {
			var board = root.Clone()
			ok, broken, err := reader.ReadPV(board)
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			if broken {
				continue
			}
			var v = l.evaluator.Evaluate(board)

			var diff = float32(v-v0) * sideSign

			l.loss += float64(sigmoidf(diff))

			var g = dsigmoidf(diff) * sideSign
			l.g.Extract(board0, g, true)
			l.g.Extract(board, -g, true)
			for i := 0; i < eval.MaterialCount; i++ {
				var k = shogi.PieceKind(i + 1)
				l.gm[i] += g * float32(netMaterial(board0, k)-netMaterial(board, k))
			}
		}
	}
	return nil
}

func (l *BatchLearning) skipBlock(reader *TrainingReader, root *shogi.Board) error {
	for {
		ok, _, err := reader.ReadPV(root.Clone())
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

// netMaterial counts black minus white units of a piece kind,
// including pieces in hand at their base kind.
func netMaterial(b *shogi.Board, k shogi.PieceKind) int {
	var n int
	for sq := shogi.Square(0); sq < shogi.SquareCount; sq++ {
		var p = b.Piece(sq)
		if p.IsEmpty() || p.Kind() != k {
			continue
		}
		if p.IsBlack() {
			n++
		} else {
			n--
		}
	}
	if int(k) <= shogi.HandKindCount {
		n += b.Hand(true, k) - b.Hand(false, k)
	}
	return n
}

func (l *BatchLearning) bit() int16 {
	return int16(l.rgen.Int63() & 1)
}

// updateParameters applies one randomized integer step to every slot
// and the ordinal material update, then restores mirror symmetry.
func (l *BatchLearning) updateParameters() {
	l.g.Symmetrize(func(a, b float32) (float32, float32) {
		var s = a + b
		return s, s
	})

	l.maxAbs = 0
	l.magnitude = 0

	var update = func(g []float32, e []int16) {
		for i := range g {
			var gg = g[i] + batchShrink(e[i])
			if gg > 0 {
				e[i] += l.bit() + l.bit()
			} else if gg < 0 {
				e[i] -= l.bit() + l.bit()
			}
			var abs = e[i]
			if abs < 0 {
				abs = -abs
			}
			if abs > l.maxAbs {
				l.maxAbs = abs
			}
			l.magnitude += uint64(abs)
		}
	}
	update(l.g.KPP, l.evaluator.KPP)
	update(l.g.KKP, l.evaluator.KKP)

	l.updateMaterial()

	l.evaluator.Symmetrize()
	l.evaluator.ClearCache()
	// searchers run with learning=true, which already disables their
	// transposition tables; there is nothing further to clear
}

// updateMaterial ranks the material accumulators and applies the fixed
// residual per rank; ties are broken randomly so equal accumulators
// share the residuals evenly over time.
func (l *BatchLearning) updateMaterial() {
	var order [eval.MaterialCount]int
	for i := range order {
		order[i] = i
	}
	l.rgen.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	sort.SliceStable(order[:], func(i, j int) bool {
		return l.gm[order[i]] < l.gm[order[j]]
	})
	for rank, idx := range order {
		l.evaluator.Material.Add(idx, materialResiduals[rank])
	}
	l.evaluator.Material.UpdateEx()
}
