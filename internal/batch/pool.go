package batch

import (
	"context"
	"sync"
	"time"

	"github.com/MeKo-Tech/filamentrecolor/internal/recolor"
)

// Processor handles a single task.
type Processor interface {
	Process(ctx context.Context, task Task) (Outcome, error)
}

// Task is one (file, color) unit of work.
type Task struct {
	Color  recolor.TargetColor
	File   string
	Source string
	Output string
	Index  int // 1-based position of File in the listing
	Total  int // number of listed files
}

// Outcome carries what a successful task did.
type Outcome struct {
	Skipped  bool
	Coverage float64
}

// Result represents the outcome of a task.
type Result struct {
	Task    Task
	Err     error
	Elapsed time.Duration
	Outcome
}

// ResultFunc is called once per finished task, from a single goroutine.
type ResultFunc func(r Result)

// PoolConfig configures the worker pool.
type PoolConfig struct {
	Processor Processor
	OnResult  ResultFunc
	Workers   int
}

// Pool runs tasks on a fixed number of workers.
type Pool struct {
	processor Processor
	onResult  ResultFunc
	workers   int
}

// NewPool creates a worker pool. Fewer than one worker means one.
func NewPool(cfg PoolConfig) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:   workers,
		processor: cfg.Processor,
		onResult:  cfg.OnResult,
	}
}

// Run executes all tasks and returns their results in completion order.
// With a single worker, completion order equals task order.
// Tasks still queued when ctx is cancelled finish with ctx.Err().
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return nil
	}

	taskCh := make(chan Task, len(tasks))
	resultCh := make(chan Result, len(tasks))

	for _, task := range tasks {
		taskCh <- task
	}
	close(taskCh)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, taskCh, resultCh)
		}()
	}

	results := make([]Result, 0, len(tasks))
	done := make(chan struct{})

	go func() {
		for result := range resultCh {
			results = append(results, result)
			if p.onResult != nil {
				p.onResult(result)
			}
		}
		close(done)
	}()

	wg.Wait()
	close(resultCh)
	<-done

	return results
}

func (p *Pool) worker(ctx context.Context, tasks <-chan Task, results chan<- Result) {
	for task := range tasks {
		if err := ctx.Err(); err != nil {
			results <- Result{Task: task, Err: err}
			continue
		}

		start := time.Now()
		outcome, err := p.processor.Process(ctx, task)

		results <- Result{
			Task:    task,
			Err:     err,
			Elapsed: time.Since(start),
			Outcome: outcome,
		}
	}
}
