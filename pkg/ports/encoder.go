package ports

import (
	"context"
	"time"
)

// EncoderProcess abstracts the external video encoder binary.
type EncoderProcess interface {
	// Version performs a trivial invocation of the encoder and returns the
	// first line of its version banner.
	Version(ctx context.Context) (string, error)

	// Run invokes the encoder synchronously with the given arguments.
	// A non-nil error is returned when the process cannot start or exits
	// non-zero; the result carries its diagnostic output in both cases.
	Run(ctx context.Context, args []string) (ProcessResult, error)
}

// ProcessResult is the outcome of one encoder invocation.
type ProcessResult struct {
	ExitCode int
	Stderr   string
	Duration time.Duration
}
