package cb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/RassulYunussov/ec3client/common"
	"github.com/sony/gobreaker/v2"
	"gotest.tools/v3/assert"
)

type stubSender struct {
	calls  int
	status int
	err    error
}

func (s *stubSender) Send(_ context.Context, _ common.Method, _ string, _ http.Header, _ []byte) (*common.Response, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &common.Response{StatusCode: s.status}, nil
}

func newBreaker(sender common.Sender) common.Sender {
	return CreateCircuitBreakerHttpClient(sender, &CircuitBreakerParameters{
		MaxRequests:         1,
		ConsecutiveFailures: 2,
		Interval:            time.Second,
		Timeout:             time.Second,
	})
}

func TestServerErrorsTripBreaker(t *testing.T) {
	sender := &stubSender{status: http.StatusBadGateway}
	client := newBreaker(sender)
	for i := 0; i < 2; i++ {
		resp, err := client.Send(context.Background(), common.MethodGet, "https://buildingtransparency.org/api/epds", nil, nil)
		assert.NilError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	}
	_, err := client.Send(context.Background(), common.MethodGet, "https://buildingtransparency.org/api/epds", nil, nil)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Check(t, IsRejection(err))
	assert.Equal(t, 2, sender.calls)
}

func TestNetworkErrorsTripBreaker(t *testing.T) {
	sender := &stubSender{err: errors.New("connection reset")}
	client := newBreaker(sender)
	for i := 0; i < 3; i++ {
		_, err := client.Send(context.Background(), common.MethodPost, "https://buildingtransparency.org/api/epds", nil, nil)
		assert.Check(t, err != nil)
	}
	assert.Equal(t, 2, sender.calls)
}

func TestRateLimitAndClientErrorsDoNotTrip(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusNotFound, http.StatusOK} {
		sender := &stubSender{status: status}
		client := newBreaker(sender)
		for i := 0; i < 5; i++ {
			resp, err := client.Send(context.Background(), common.MethodGet, "https://buildingtransparency.org/api/epds", nil, nil)
			assert.NilError(t, err)
			assert.Equal(t, status, resp.StatusCode)
		}
		assert.Equal(t, 5, sender.calls, "status %d", status)
	}
}

func TestCancellationDoesNotTrip(t *testing.T) {
	sender := &stubSender{err: context.Canceled}
	client := newBreaker(sender)
	for i := 0; i < 4; i++ {
		_, err := client.Send(context.Background(), common.MethodGet, "https://buildingtransparency.org/api/epds", nil, nil)
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, 4, sender.calls)
}

func TestOversizedResponsesDoNotTrip(t *testing.T) {
	sender := &stubSender{err: fmt.Errorf("http-200 response exceeds 10 bytes: %w", common.ErrResponseTooLarge)}
	client := newBreaker(sender)
	for i := 0; i < 4; i++ {
		_, err := client.Send(context.Background(), common.MethodGet, "https://buildingtransparency.org/api/epds", nil, nil)
		assert.ErrorIs(t, err, common.ErrResponseTooLarge)
	}
	assert.Equal(t, 4, sender.calls)
}

func TestBreakersArePerMethodAndHost(t *testing.T) {
	sender := &stubSender{status: http.StatusInternalServerError}
	client := newBreaker(sender)
	for i := 0; i < 3; i++ {
		client.Send(context.Background(), common.MethodGet, "https://foo.buildingtransparency.org/api/epds", nil, nil)
	}
	resp, err := client.Send(context.Background(), common.MethodGet, "https://buildingtransparency.org/api/epds", nil, nil)
	assert.NilError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	resp, err = client.Send(context.Background(), common.MethodPost, "https://foo.buildingtransparency.org/api/epds", nil, nil)
	assert.NilError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, 4, sender.calls)
}

func TestIsRejection(t *testing.T) {
	assert.Check(t, IsRejection(gobreaker.ErrTooManyRequests))
	assert.Check(t, !IsRejection(errors.New("any other")))
}
