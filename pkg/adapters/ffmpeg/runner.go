// Package ffmpeg runs the ffmpeg binary as a subprocess.
package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/user/framecast/pkg/ports"
)

// Runner implements ports.EncoderProcess with exec.CommandContext.
// The binary is resolved lazily on first use.
type Runner struct {
	customPath string
	logger     ports.Logger

	mu       sync.Mutex
	resolved string
}

// New creates a Runner. customPath may be empty to search the environment.
func New(customPath string, logger ports.Logger) *Runner {
	return &Runner{customPath: customPath, logger: logger.WithComponent("ffmpeg")}
}

// Path resolves and returns the ffmpeg binary path. A failed lookup is
// not cached, so a binary installed later is found on the next call.
func (r *Runner) Path() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolved != "" {
		return r.resolved, nil
	}
	path, err := FindFFmpeg(r.customPath)
	if err != nil {
		return "", err
	}
	r.resolved = path
	return path, nil
}

// Version runs `ffmpeg -version` and returns the first line of its output.
func (r *Runner) Version(ctx context.Context) (string, error) {
	path, err := r.Path()
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, path, "-version")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg -version: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	line, _ := bufio.NewReader(&stdout).ReadString('\n')
	return strings.TrimSpace(line), nil
}

// Run invokes ffmpeg synchronously and captures stderr.
func (r *Runner) Run(ctx context.Context, args []string) (ports.ProcessResult, error) {
	if len(args) == 0 {
		return ports.ProcessResult{}, ErrEmptyArgs
	}
	path, err := r.Path()
	if err != nil {
		return ports.ProcessResult{}, err
	}

	r.logger.Debug("Running %s %s", path, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = nil
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()
	result := ports.ProcessResult{
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		return result, fmt.Errorf("ffmpeg: %w", err)
	}
	return result, nil
}

var _ ports.EncoderProcess = (*Runner)(nil)
