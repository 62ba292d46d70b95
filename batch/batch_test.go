package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RassulYunussov/ec3client"
	"github.com/RassulYunussov/ec3client/cache"
	"github.com/RassulYunussov/ec3client/common"
	local_errors "github.com/RassulYunussov/ec3client/internal/errors"
	"gotest.tools/v3/assert"
)

type fakeExecutor struct {
	calls   atomic.Int32
	active  atomic.Int32
	peak    atomic.Int32
	delay   time.Duration
	respond func(common.Request) (*common.Outcome, error)
}

func (e *fakeExecutor) Execute(ctx context.Context, request common.Request) (*common.Outcome, error) {
	e.calls.Add(1)
	n := e.active.Add(1)
	defer e.active.Add(-1)
	for {
		p := e.peak.Load()
		if n <= p || e.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	if e.respond != nil {
		return e.respond(request)
	}
	return &common.Outcome{Kind: common.Success, StatusCode: 200, Body: []byte(`{"url":"` + request.URL + `"}`), Attempts: 1}, nil
}

func jobs(urls ...string) []Job {
	out := make([]Job, len(urls))
	for i, u := range urls {
		out[i] = Job{Key: u, Request: common.Request{URL: u, Method: common.MethodGet}}
	}
	return out
}

func TestRunKeepsInputOrder(t *testing.T) {
	executor := &fakeExecutor{delay: 5 * time.Millisecond}
	runner := NewRunner(executor, WithWorkers(3))
	results, err := runner.Run(context.Background(), jobs("https://a/1", "https://a/2", "https://a/3", "https://a/4", "https://a/5"))
	assert.NilError(t, err)
	assert.Equal(t, 5, len(results))
	for i, r := range results {
		assert.NilError(t, r.Err)
		assert.Equal(t, jobs("https://a/1", "https://a/2", "https://a/3", "https://a/4", "https://a/5")[i].Key, r.Key)
		assert.Equal(t, `{"url":"`+r.Key+`"}`, string(r.Outcome.Body))
	}
	assert.Check(t, executor.peak.Load() <= 3)
}

func TestRunKeepsPerJobFailures(t *testing.T) {
	executor := &fakeExecutor{respond: func(r common.Request) (*common.Outcome, error) {
		if r.URL == "https://a/2" {
			return nil, local_errors.StatusFailure(local_errors.ClientOrServerError, 404, nil)
		}
		return &common.Outcome{Kind: common.Success, StatusCode: 200}, nil
	}}
	results, err := NewRunner(executor).Run(context.Background(), jobs("https://a/1", "https://a/2", "https://a/3"))
	assert.NilError(t, err)
	assert.NilError(t, results[0].Err)
	assert.Check(t, ec3client.IsClientOrServerError(results[1].Err))
	assert.NilError(t, results[2].Err)
	assert.Equal(t, int32(3), executor.calls.Load())
}

func TestRunAbortsOnConfigurationError(t *testing.T) {
	executor := &fakeExecutor{respond: func(common.Request) (*common.Outcome, error) {
		return nil, local_errors.Newf(local_errors.ConfigurationError, nil, "credential %s is not configured", "EC3_API_KEY")
	}}
	results, err := NewRunner(executor, WithWorkers(1)).Run(context.Background(), jobs("https://a/1", "https://a/2", "https://a/3"))
	assert.Check(t, ec3client.IsConfigurationError(err))
	assert.Check(t, ec3client.IsConfigurationError(results[0].Err))
	assert.ErrorIs(t, results[1].Err, ErrSkipped)
	assert.ErrorIs(t, results[2].Err, ErrSkipped)
	assert.Equal(t, int32(1), executor.calls.Load())
}

func TestRunCustomAbort(t *testing.T) {
	boom := errors.New("boom")
	executor := &fakeExecutor{respond: func(common.Request) (*common.Outcome, error) { return nil, boom }}
	_, err := NewRunner(executor, WithAbortOn(func(err error) bool { return errors.Is(err, boom) })).
		Run(context.Background(), jobs("https://a/1", "https://a/2"))
	assert.ErrorIs(t, err, boom)
}

func TestRunServesRepeatedGetsFromCache(t *testing.T) {
	executor := &fakeExecutor{}
	c := cache.New[*common.Outcome]()
	runner := NewRunner(executor, WithWorkers(2), WithCache(c))
	results, err := runner.Run(context.Background(), jobs("https://a/base", "https://a/base", "https://a/other", "https://a/base"))
	assert.NilError(t, err)
	for _, r := range results {
		assert.NilError(t, r.Err)
	}
	assert.Equal(t, int32(2), executor.calls.Load())
	assert.Equal(t, 2, c.Len())
}

func TestRunPausesBeforeEachJob(t *testing.T) {
	var mu sync.Mutex
	var pauses []time.Duration
	sleeper := ec3client.SleeperFunc(func(ctx context.Context, d time.Duration) error {
		mu.Lock()
		defer mu.Unlock()
		pauses = append(pauses, d)
		return ctx.Err()
	})
	runner := NewRunner(&fakeExecutor{}, WithPause(time.Second), WithSleeper(sleeper))
	_, err := runner.Run(context.Background(), jobs("https://a/1", "https://a/2", "https://a/3"))
	assert.NilError(t, err)
	assert.Equal(t, 3, len(pauses))
	for _, p := range pauses {
		assert.Check(t, p >= 0 && p < time.Second)
	}
}

func TestRunCanceled(t *testing.T) {
	executor := &fakeExecutor{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := NewRunner(executor).Run(ctx, jobs("https://a/1", "https://a/2"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, results[0].Err, ErrSkipped)
	assert.Equal(t, int32(0), executor.calls.Load())
}
