// Package worker provides a parallel worker pool for rendering texture slices.
package worker

import (
	"context"
	"sync"
	"time"
)

// Renderer produces the bytes of one slice of a volume.
// Slices must be independent: RenderSlice is called concurrently from several workers.
type Renderer interface {
	RenderSlice(ctx context.Context, index int) ([]byte, error)
}

// Task represents a single slice to render.
type Task struct {
	Index int
}

// Result represents the outcome of a slice rendering task.
type Result struct {
	Err     error
	Data    []byte
	Task    Task
	Elapsed time.Duration
}

// ProgressFunc is called after each task completes.
type ProgressFunc func(completed, total, failed int)

// Config configures the worker pool.
type Config struct {
	Renderer   Renderer
	OnProgress ProgressFunc
	Workers    int
}

// Pool manages parallel slice rendering.
type Pool struct {
	renderer   Renderer
	onProgress ProgressFunc
	workers    int
}

// New creates a new worker pool.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:    workers,
		renderer:   cfg.Renderer,
		onProgress: cfg.OnProgress,
	}
}

// Run executes all tasks and returns their results in completion order.
// Tasks are processed in parallel by the configured number of workers.
// The function blocks until all tasks complete or the context is cancelled; tasks that
// were never started after cancellation are absent from the results.
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return nil
	}

	taskCh := make(chan Task, len(tasks))
	resultCh := make(chan Result, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, taskCh, resultCh)
		}()
	}

	go func() {
		defer close(taskCh)
		for _, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Collect results in a separate goroutine
	results := make([]Result, 0, len(tasks))
	done := make(chan struct{})

	go func() {
		var completed, failed int
		for result := range resultCh {
			results = append(results, result)

			completed++
			if result.Err != nil {
				failed++
			}

			if p.onProgress != nil {
				p.onProgress(completed, len(tasks), failed)
			}
		}
		close(done)
	}()

	wg.Wait()
	close(resultCh)
	<-done

	return results
}

// worker processes tasks from the task channel and sends results to the result channel.
func (p *Pool) worker(ctx context.Context, tasks <-chan Task, results chan<- Result) {
	for task := range tasks {
		select {
		case <-ctx.Done():
			results <- Result{
				Task: task,
				Err:  ctx.Err(),
			}
			continue
		default:
		}

		start := time.Now()
		data, err := p.renderer.RenderSlice(ctx, task.Index)

		results <- Result{
			Task:    task,
			Data:    data,
			Err:     err,
			Elapsed: time.Since(start),
		}
	}
}
