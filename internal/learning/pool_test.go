package learning

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPoolDrainPredicate(t *testing.T) {
	var done atomic.Int64
	var pool = newWorkerPool(4, testEvaluator(), learningSearchConfig(1),
		func(wn int, j job) {
			time.Sleep(2 * time.Millisecond)
			done.Add(1)
		})
	pool.start()
	defer pool.stop()

	var jobs = make([]job, 50)
	pool.push(jobs...)
	pool.waitIdle()

	require.Equal(t, int64(50), done.Load())
	pool.mu.Lock()
	require.Empty(t, pool.queue)
	require.Zero(t, pool.active)
	pool.mu.Unlock()
}

func TestPoolWaitIdleOnEmptyPool(t *testing.T) {
	var pool = newWorkerPool(2, testEvaluator(), learningSearchConfig(1),
		func(wn int, j job) {})
	pool.start()
	pool.waitIdle()
	pool.stop()
}

func TestPoolWorkerSeeds(t *testing.T) {
	var pool = newWorkerPool(3, testEvaluator(), learningSearchConfig(1), nil)
	require.Len(t, pool.rgens, 3)
	require.Len(t, pool.searchers, 3)

	// chained seeding gives every worker its own sequence
	var a = [4]int64{pool.rgens[0].Int63(), pool.rgens[0].Int63(),
		pool.rgens[0].Int63(), pool.rgens[0].Int63()}
	var b = [4]int64{pool.rgens[1].Int63(), pool.rgens[1].Int63(),
		pool.rgens[1].Int63(), pool.rgens[1].Int63()}
	require.NotEqual(t, a, b)
}

func TestLearningSearchConfig(t *testing.T) {
	var cfg = learningSearchConfig(7)
	require.Equal(t, 7, cfg.MaxDepth)
	require.Equal(t, 1, cfg.WorkerSize)
	require.True(t, cfg.Learning)
	require.False(t, cfg.EnableLimit)
	require.False(t, cfg.EnableTimeManagement)
	require.False(t, cfg.Ponder)
	require.False(t, cfg.Logging)
}
