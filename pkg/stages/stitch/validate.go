package stitch

import (
	"context"
	"sync"

	"github.com/user/framecast/pkg/pipeline"
	"github.com/user/framecast/pkg/ports"
)

// Validator confirms the encoder binary is usable before capture starts.
// A successful result is cached; failures are retried on the next call.
type Validator struct {
	encoder ports.EncoderProcess
	logger  ports.Logger

	mu      sync.Mutex
	ok      bool
	version string
}

// NewValidator creates a validator for encoder.
func NewValidator(encoder ports.EncoderProcess, logger ports.Logger) *Validator {
	return &Validator{encoder: encoder, logger: logger.WithComponent("ffmpeg")}
}

// Validate runs a trivial encoder invocation.
func (v *Validator) Validate(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.ok {
		return nil
	}

	version, err := v.encoder.Version(ctx)
	if err != nil {
		return &pipeline.EncoderUnavailableError{Cause: err}
	}
	v.ok = true
	v.version = version
	v.logger.Debug("Encoder available: %s", version)
	return nil
}

// Succeeded reports whether a validation has succeeded.
func (v *Validator) Succeeded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ok
}

// Version returns the encoder version banner from the last successful validation.
func (v *Validator) Version() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.version
}
