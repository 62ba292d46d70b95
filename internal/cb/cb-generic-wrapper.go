package cb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RassulYunussov/ec3client/common"
	"github.com/sony/gobreaker/v2"
)

type circuitBreaker[V any] struct {
	*gobreaker.CircuitBreaker[*V]
}

func (cb *circuitBreaker[V]) execute(f func() (*V, error)) (*V, error) {
	res, err := cb.CircuitBreaker.Execute(f)
	if err != nil {
		return nil, err
	}
	return res, err
}

func newCircuitBreaker[V any](maxRequests uint32, interval time.Duration, timeout time.Duration, consecutiveFailures uint32, resource string) *circuitBreaker[V] {
	return &circuitBreaker[V]{
		CircuitBreaker: gobreaker.NewCircuitBreaker[*V](gobreaker.Settings{
			Name:        fmt.Sprintf("ec3 client circuit breaker for resource %s", resource),
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= consecutiveFailures
			},
			// caller cancellation and oversized answers say nothing about the remote side's health
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, common.ErrResponseTooLarge)
			},
		}),
	}
}
