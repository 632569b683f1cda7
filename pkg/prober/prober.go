// Package prober recommends a safe render concurrency for the host.
package prober

import (
	"os"
	"runtime"
	"strconv"
)

// EnvConcurrency overrides the probed concurrency when set to a positive integer.
const EnvConcurrency = "FRAMECAST_CONCURRENCY"

// Prober inspects available parallel execution units.
type Prober struct {
	// Probe returns the number of available execution units.
	// Defaults to runtime.GOMAXPROCS(0), which follows container CPU quotas.
	Probe func() int

	// Getenv reads environment variables. Defaults to os.Getenv.
	Getenv func(string) string
}

// New creates a Prober backed by the Go runtime and process environment.
func New() *Prober {
	return &Prober{
		Probe:  func() int { return runtime.GOMAXPROCS(0) },
		Getenv: os.Getenv,
	}
}

// Recommend returns a concurrency level in [1, available]. It never fails:
// a non-positive probe falls back to 1. The environment override is capped
// at the probed count.
func (p *Prober) Recommend() int {
	available := 1
	if p.Probe != nil {
		if n := p.Probe(); n > 0 {
			available = n
		}
	}

	if p.Getenv != nil {
		if override := p.Getenv(EnvConcurrency); override != "" {
			if n, err := strconv.Atoi(override); err == nil && n > 0 {
				if n > available {
					return available
				}
				return n
			}
		}
	}

	return available
}

// Recommend is a shortcut for New().Recommend().
func Recommend() int {
	return New().Recommend()
}

// Clamp bounds a requested worker count to the frames left to capture.
// A non-positive request uses the recommendation.
func Clamp(requested, remaining int, recommend func() int) int {
	n := requested
	if n <= 0 {
		n = recommend()
	}
	if remaining > 0 && n > remaining {
		n = remaining
	}
	if n < 1 {
		n = 1
	}
	return n
}
