package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/kbinani/sunfish3/internal/learning"
	"github.com/kbinani/sunfish3/pkg/eval"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	var err = run()
	if err != nil {
		log.Fatalln(err)
	}
}

func run() error {
	var mode string
	flag.StringVar(&mode, "mode", "online", "learning mode: online or batch")
	flag.Parse()

	config, err := learning.LoadConfig()
	if err != nil {
		return err
	}
	log.Printf("%+v", config)

	var evaluator = eval.NewEvaluator()

	switch mode {
	case "online":
		return learning.NewOnlineLearning(config, evaluator).Run()
	case "batch":
		return learning.NewBatchLearning(config, evaluator).Run()
	}
	return fmt.Errorf("unknown mode %q", mode)
}
