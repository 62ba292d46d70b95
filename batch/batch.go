// Package batch runs many executor calls with bounded concurrency. Each job
// gets its own retry state inside the executor; the runner only schedules.
package batch

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/RassulYunussov/ec3client"
	"github.com/RassulYunussov/ec3client/cache"
	"github.com/RassulYunussov/ec3client/common"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrSkipped marks jobs that never ran because the batch was aborted.
var ErrSkipped = errors.New("job skipped")

type Job struct {
	// Key identifies the job in results and logs, e.g. a sheet row
	Key     string
	Request common.Request
}

type Result struct {
	Key     string
	Outcome *common.Outcome
	Err     error
}

type Runner struct {
	executor common.Executor
	workers  int
	pause    time.Duration
	sleeper  ec3client.Sleeper
	logger   zerolog.Logger
	abortOn  func(error) bool
	cache    *cache.Cache[*common.Outcome]
}

type Option func(*Runner)

func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithPause sleeps a random duration in [0, max) before each job
func WithPause(max time.Duration) Option {
	return func(r *Runner) { r.pause = max }
}

func WithSleeper(s ec3client.Sleeper) Option {
	return func(r *Runner) { r.sleeper = s }
}

func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithAbortOn stops the whole batch on the first error matching fn.
// By default only configuration errors abort, every other failure stays in its Result.
func WithAbortOn(fn func(error) bool) Option {
	return func(r *Runner) { r.abortOn = fn }
}

// WithCache serves repeated GET requests of a run from c
func WithCache(c *cache.Cache[*common.Outcome]) Option {
	return func(r *Runner) { r.cache = c }
}

func NewRunner(executor common.Executor, opts ...Option) *Runner {
	r := &Runner{
		executor: executor,
		workers:  1,
		sleeper:  ec3client.TimerSleeper(),
		logger:   zerolog.Nop(),
		abortOn:  ec3client.IsConfigurationError,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Run executes jobs and returns one Result per job in input order. The error
// is the aborting failure or the context error; per-job failures are only in
// the results.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))
	for i, job := range jobs {
		results[i] = Result{Key: job.Key, Err: ErrSkipped}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, job := range jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := r.wait(gctx); err != nil {
				return nil
			}
			outcome, err := r.execute(gctx, job.Request)
			results[i] = Result{Key: job.Key, Outcome: outcome, Err: err}
			if err != nil {
				r.logger.Warn().Err(err).Str("key", job.Key).Msg("job failed")
				if r.abortOn != nil && r.abortOn(err) {
					return err
				}
				return nil
			}
			r.logger.Info().Str("key", job.Key).Int("status", outcome.StatusCode).Int("attempts", outcome.Attempts).Msg("job done")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

func (r *Runner) execute(ctx context.Context, request common.Request) (*common.Outcome, error) {
	if r.cache == nil || request.Method != common.MethodGet {
		return r.executor.Execute(ctx, request)
	}
	key := request.CredentialOverride + " " + request.URL
	return r.cache.GetOrLoad(ctx, key, func(ctx context.Context, _ string) (*common.Outcome, error) {
		return r.executor.Execute(ctx, request)
	})
}

func (r *Runner) wait(ctx context.Context) error {
	if r.pause <= 0 {
		return ctx.Err()
	}
	return r.sleeper.Sleep(ctx, rand.N(r.pause))
}
