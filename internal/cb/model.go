package cb

import "time"

type CircuitBreakerParameters struct {
	MaxRequests         uint32
	ConsecutiveFailures uint32
	Interval            time.Duration
	Timeout             time.Duration
}

// circuitBreakerErrorWrapper counts a received response as a breaker failure
// while still handing it back to the caller
type circuitBreakerErrorWrapper[T any] struct {
	wrapped T
}

func (e *circuitBreakerErrorWrapper[T]) Error() string {
	return "http-5xx status counted as circuit breaker failure"
}
