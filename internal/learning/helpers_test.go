package learning

import (
	"sync"

	"github.com/kbinani/sunfish3/pkg/eval"
)

// the deployed tables are large; every test in the package shares one
// evaluator and resets what it touches
var (
	testEvalOnce sync.Once
	testEval     *eval.Evaluator
)

func testEvaluator() *eval.Evaluator {
	testEvalOnce.Do(func() {
		testEval = eval.NewEvaluator()
	})
	testEval.Init()
	testEval.Material = eval.NewMaterial()
	return testEval
}
