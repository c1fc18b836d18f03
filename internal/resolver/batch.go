package resolver

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Simon-Bruno/omen-backend-sub000/internal/fetch"
	"github.com/Simon-Bruno/omen-backend-sub000/internal/reqctx"
	"github.com/Simon-Bruno/omen-backend-sub000/pkg/models"
)

// BatchJob pairs a page URL with the hypothesis to resolve on it.
type BatchJob struct {
	URL        string `json:"url"`
	Hypothesis string `json:"hypothesis"`
}

// BatchResult is the outcome of one job. Points is empty both on error and
// when the hypothesis matched nothing; Err distinguishes the two.
type BatchResult struct {
	Job    BatchJob
	Points []*models.InjectionPoint
	Err    error
}

// BatchRunner resolves many hypotheses concurrently using a worker pool.
type BatchRunner struct {
	resolver    *Resolver
	source      fetch.Source
	concurrency int
}

// NewBatchRunner creates a batch runner with the specified concurrency.
func NewBatchRunner(r *Resolver, source fetch.Source, concurrency int) *BatchRunner {
	if concurrency <= 0 {
		concurrency = 4
	}
	if concurrency > 16 {
		concurrency = 16 // hypotheses often share a host; stay polite
	}
	return &BatchRunner{
		resolver:    r,
		source:      source,
		concurrency: concurrency,
	}
}

// Run processes all jobs and returns results in input order. onDone, when
// non-nil, is called once per finished job for progress reporting. A failed
// job records its error and never aborts the batch; context cancellation
// stops workers after the jobs they hold.
func (b *BatchRunner) Run(ctx context.Context, jobs []BatchJob, onDone func()) []BatchResult {
	results := make([]BatchResult, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	type task struct {
		idx int
		job BatchJob
	}
	tasks := make(chan task, len(jobs))

	var wg sync.WaitGroup
	for w := 1; w <= b.concurrency; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			log.Debug().Int("worker_id", id).Msg("batch worker started")
			for t := range tasks {
				select {
				case <-ctx.Done():
					results[t.idx] = BatchResult{Job: t.job, Err: ctx.Err()}
					if onDone != nil {
						onDone()
					}
					continue
				default:
				}
				results[t.idx] = b.runOne(ctx, t.job)
				if onDone != nil {
					onDone()
				}
			}
		}(w)
	}

	for i, job := range jobs {
		tasks <- task{idx: i, job: job}
	}
	close(tasks)
	wg.Wait()

	return results
}

func (b *BatchRunner) runOne(ctx context.Context, job BatchJob) BatchResult {
	ctx = reqctx.WithRequest(ctx, job.Hypothesis)
	page, err := b.source.Fetch(ctx, job.URL)
	if err != nil {
		return BatchResult{
			Job: job,
			Err: NewResolutionError(ErrCodeNoDocument, "fetch "+job.URL, err),
		}
	}
	points, err := b.resolver.Resolve(ctx, page, job.Hypothesis)
	return BatchResult{Job: job, Points: points, Err: err}
}
