package learning

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kbinani/sunfish3/pkg/shogi"
)

const corpusReaders = 4

// loadJobs streams every game record into per-position jobs: each
// played move becomes one (position, move) pair. Records that fail to
// parse are logged and skipped.
func loadJobs(ctx context.Context, files []string) ([]job, error) {
	g, ctx := errgroup.WithContext(ctx)

	var paths = make(chan string)
	var results = make(chan job, 128)

	g.Go(func() error {
		defer close(paths)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case paths <- path:
			}
		}
		return nil
	})

	var wg = &sync.WaitGroup{}
	for i := 0; i < corpusReaders; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for path := range paths {
				var err = readRecordJobs(ctx, path, results)
				if err != nil {
					return err
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		wg.Wait()
		close(results)
		return nil
	})

	var jobs []job
	g.Go(func() error {
		for j := range results {
			jobs = append(jobs, j)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Println("loadJobs",
		"files", len(files),
		"jobs", len(jobs))
	return jobs, nil
}

func readRecordJobs(ctx context.Context, path string, results chan<- job) error {
	record, err := shogi.ReadCSA(path)
	if err != nil {
		log.Println("skip record",
			"path", path,
			"err", err)
		return nil
	}
	for record.UnmakeMove() {
	}
	for {
		var move = record.NextMove()
		if move.IsEmpty() {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case results <- job{board: record.Board().Compact(), move: move}:
		}
		if !record.MakeMove() {
			break
		}
	}
	return nil
}
