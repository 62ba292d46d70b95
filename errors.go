package ec3client

import (
	"errors"

	local_errors "github.com/RassulYunussov/ec3client/internal/errors"
)

type (
	Failure     = local_errors.Failure
	FailureKind = local_errors.Kind
)

const (
	ConfigurationError    = local_errors.ConfigurationError
	TransientNetworkError = local_errors.TransientNetworkError
	RateLimited           = local_errors.RateLimited
	ClientOrServerError   = local_errors.ClientOrServerError
	RetriesExhausted      = local_errors.RetriesExhausted
	Canceled              = local_errors.Canceled
	MalformedResponse     = local_errors.MalformedResponse
	InvalidRequest        = local_errors.InvalidRequest
)

// Kind of the failure in err's chain, zero when err is not a *Failure
func Kind(err error) FailureKind {
	return local_errors.KindOf(err)
}

func IsConfigurationError(err error) bool {
	return Kind(err) == ConfigurationError
}

func IsClientOrServerError(err error) bool {
	return Kind(err) == ClientOrServerError
}

func IsRetriesExhausted(err error) bool {
	return Kind(err) == RetriesExhausted
}

func IsCanceled(err error) bool {
	return Kind(err) == Canceled
}

// StatusCode carried by the failure, zero for failures without a response
func StatusCode(err error) int {
	var f *Failure
	if errors.As(err, &f) {
		return f.StatusCode
	}
	return 0
}
