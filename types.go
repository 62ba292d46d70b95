package ec3client

import (
	"github.com/RassulYunussov/ec3client/internal/credentials"
	"github.com/RassulYunussov/ec3client/internal/resilient"
)

type (
	CredentialSource = credentials.Source
	MapSource        = credentials.MapSource
	ChainSource      = credentials.Chain
	Sleeper          = resilient.Sleeper
	SleeperFunc      = resilient.SleeperFunc
)

const (
	DefaultPrimaryCredential = credentials.DefaultPrimaryName
	DefaultHost              = credentials.DefaultHost
	HeaderXRequestID         = resilient.HeaderXRequestID
)

// NewEnvSource snapshots the current process environment
func NewEnvSource() CredentialSource {
	return credentials.NewEnvSource()
}

// TimerSleeper waits on a real timer, returning early with ctx.Err()
func TimerSleeper() Sleeper {
	return resilient.TimerSleeper()
}
