package resilient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/RassulYunussov/ec3client/common"
	"github.com/RassulYunussov/ec3client/internal/cb"
	"github.com/RassulYunussov/ec3client/internal/credentials"
	local_errors "github.com/RassulYunussov/ec3client/internal/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const HeaderXRequestID = "X-Request-ID"

type state uint8

const (
	stateAttempting state = iota
	stateRetrying
	stateSuccess
	stateExhausted
	stateFatal
)

// retryState lives for one Execute call
type retryState struct {
	attempt     int
	maxAttempts int
	waited      time.Duration
	wait        time.Duration
	outcome     *common.Outcome
	lastFailure *local_errors.Failure
	budgetHit   bool
}

type call struct {
	method  common.Method
	url     string
	headers http.Header
	body    []byte
	log     zerolog.Logger
}

type resilientHttpClient struct {
	client       common.Sender
	credentials  *credentials.Resolver
	sleeper      Sleeper
	logger       zerolog.Logger
	newRequestID func() string

	maxAttempts        int
	waitUnit           time.Duration
	rateLimitWaitUnits int
	maxTotalWait       time.Duration
}

func CreateResilientHttpClient(client common.Sender, resolver *credentials.Resolver, parameters *ExecutorParameters) common.Executor {
	retry := DefaultRetryParameters()
	if parameters.Retry != nil {
		retry = parameters.Retry
	}
	c := resilientHttpClient{
		client:             client,
		credentials:        resolver,
		sleeper:            parameters.Sleeper,
		logger:             parameters.Logger,
		newRequestID:       parameters.NewRequestID,
		maxAttempts:        retry.MaxAttempts,
		waitUnit:           retry.WaitUnit,
		rateLimitWaitUnits: retry.RateLimitWaitUnits,
		maxTotalWait:       retry.MaxTotalWait,
	}
	if c.sleeper == nil {
		c.sleeper = TimerSleeper()
	}
	if c.newRequestID == nil {
		c.newRequestID = uuid.NewString
	}
	if c.maxAttempts < 1 {
		c.maxAttempts = 1
	}
	if c.waitUnit <= 0 {
		c.waitUnit = DefaultWaitUnit
	}
	if c.rateLimitWaitUnits <= 0 {
		c.rateLimitWaitUnits = DefaultRateLimitWaitUnits
	}
	return &c
}

func (c *resilientHttpClient) Execute(ctx context.Context, request common.Request) (*common.Outcome, error) {
	call, err := c.prepare(request)
	if err != nil {
		return nil, err
	}
	rs := &retryState{maxAttempts: c.maxAttempts}
	st := stateAttempting
	for {
		switch st {
		case stateAttempting:
			st = c.attempt(ctx, call, rs)
		case stateRetrying:
			st = c.backoff(ctx, call, rs)
		case stateSuccess:
			rs.outcome.Attempts = rs.attempt
			return rs.outcome, nil
		case stateExhausted:
			return nil, c.exhausted(call, rs)
		case stateFatal:
			rs.lastFailure.Attempts = rs.attempt
			call.log.Error().Err(rs.lastFailure).Int("attempts", rs.attempt).Msg("request failed")
			return nil, rs.lastFailure
		}
	}
}

// prepare resolves everything that must not change between attempts
func (c *resilientHttpClient) prepare(request common.Request) (*call, error) {
	if !request.Method.Valid() {
		return nil, local_errors.Newf(local_errors.InvalidRequest, nil, "unsupported method %s", request.Method)
	}
	credential, err := c.credentials.Resolve(request.CredentialOverride, request.URL)
	if err != nil {
		c.logger.Error().Err(err).Str("url", request.URL).Str("credential", credential.Name).Msg("cannot resolve credential")
		return nil, err
	}
	body, err := encodeBody(request.Method, request.Body)
	if err != nil {
		return nil, local_errors.New(local_errors.InvalidRequest, "request body is not json serializable", err)
	}
	requestID := c.newRequestID()
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+credential.Token)
	headers.Set("Accept", "application/json")
	headers.Set(HeaderXRequestID, requestID)
	if body != nil {
		headers.Set("Content-Type", "application/json")
	}
	return &call{
		method:  request.Method,
		url:     request.URL,
		headers: headers,
		body:    body,
		log: c.logger.With().
			Str("method", request.Method.String()).
			Str("url", request.URL).
			Str("credential", credential.Name).
			Str("request_id", requestID).
			Logger(),
	}, nil
}

func (c *resilientHttpClient) attempt(ctx context.Context, call *call, rs *retryState) state {
	if err := ctx.Err(); err != nil {
		rs.lastFailure = local_errors.New(local_errors.Canceled, "request canceled before dispatch", err)
		return stateFatal
	}
	resp, err := c.client.Send(ctx, call.method, call.url, call.headers, call.body)
	rs.attempt++
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			rs.lastFailure = local_errors.New(local_errors.Canceled, "request canceled", ctxErr)
			return stateFatal
		}
		if errors.Is(err, common.ErrResponseTooLarge) {
			rs.lastFailure = local_errors.New(local_errors.MalformedResponse, err.Error(), err)
			return stateFatal
		}
		message := "request failed"
		if cb.IsRejection(err) {
			message = "circuit breaker rejected request"
		}
		rs.lastFailure = local_errors.New(local_errors.TransientNetworkError, fmt.Sprintf("%s: %v", message, err), err)
		rs.wait = scaleWait(c.waitUnit, int64(1)<<min(rs.attempt, 62))
		call.log.Warn().Err(err).Int("attempt", rs.attempt).Dur("wait", rs.wait).Msg("request failed due to an exception")
		return stateRetrying
	}

	call.log.Debug().Int("status", resp.StatusCode).Int("attempt", rs.attempt).Msg("response status code")
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		value, err := common.ParseJSON(resp.Body)
		if err != nil {
			rs.lastFailure = local_errors.StatusFailure(local_errors.MalformedResponse, resp.StatusCode, resp.Body)
			rs.lastFailure.Message = "response body is not valid json"
			rs.lastFailure.Err = err
			return stateFatal
		}
		rs.outcome = &common.Outcome{Kind: common.Success, StatusCode: resp.StatusCode, Value: value}
		if value != nil {
			rs.outcome.Body = json.RawMessage(resp.Body)
		}
		return stateSuccess
	case http.StatusNoContent:
		rs.outcome = &common.Outcome{Kind: common.SuccessWithStatus, StatusCode: resp.StatusCode}
		return stateSuccess
	case http.StatusTooManyRequests:
		units := rateLimitWaitUnits(resp.Body, c.rateLimitWaitUnits)
		rs.lastFailure = local_errors.StatusFailure(local_errors.RateLimited, resp.StatusCode, resp.Body)
		rs.wait = scaleWait(c.waitUnit, int64(units))
		call.log.Warn().Int("attempt", rs.attempt).Dur("wait", rs.wait).Msg("throttled")
		return stateRetrying
	default:
		rs.lastFailure = local_errors.StatusFailure(local_errors.ClientOrServerError, resp.StatusCode, resp.Body)
		return stateFatal
	}
}

// backoff performs the pending wait. It runs after every retryable failure,
// the last one included. A wait past the budget is skipped; it only counts as
// the cause of exhaustion when attempts remained.
func (c *resilientHttpClient) backoff(ctx context.Context, call *call, rs *retryState) state {
	if c.maxTotalWait > 0 && rs.wait > c.maxTotalWait-rs.waited {
		rs.budgetHit = rs.attempt < rs.maxAttempts
		return stateExhausted
	}
	if err := c.sleeper.Sleep(ctx, rs.wait); err != nil {
		rs.lastFailure = local_errors.New(local_errors.Canceled, "canceled while waiting to retry", err)
		return stateFatal
	}
	rs.waited = addWait(rs.waited, rs.wait)
	if rs.attempt >= rs.maxAttempts {
		return stateExhausted
	}
	return stateAttempting
}

func (c *resilientHttpClient) exhausted(call *call, rs *retryState) *local_errors.Failure {
	message := fmt.Sprintf("failed to %s data from %s after %d attempts", call.method, call.url, rs.attempt)
	if rs.budgetHit {
		message = fmt.Sprintf("%s: next wait %s would exceed retry budget %s", message, rs.wait, c.maxTotalWait)
	}
	failure := &local_errors.Failure{
		Kind:       local_errors.RetriesExhausted,
		StatusCode: rs.lastFailure.StatusCode,
		Body:       rs.lastFailure.Body,
		Message:    message,
		Attempts:   rs.attempt,
		Err:        rs.lastFailure,
	}
	call.log.Error().Err(failure).Dur("waited", rs.waited).Msg("retries exhausted")
	return failure
}

// scaleWait is unit*units, saturating at the largest Duration
func scaleWait(unit time.Duration, units int64) time.Duration {
	if units <= 0 || unit <= 0 {
		return 0
	}
	if units > math.MaxInt64/int64(unit) {
		return math.MaxInt64
	}
	return unit * time.Duration(units)
}

func addWait(a, b time.Duration) time.Duration {
	if b > math.MaxInt64-a {
		return math.MaxInt64
	}
	return a + b
}

func encodeBody(method common.Method, body any) ([]byte, error) {
	if body == nil || !method.AllowsBody() {
		return nil, nil
	}
	switch b := body.(type) {
	case json.RawMessage:
		return b, nil
	case []byte:
		return b, nil
	default:
		return json.Marshal(body)
	}
}
