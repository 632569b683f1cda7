package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fortytw2/leaktest"
	"github.com/wader/osleaktest"

	"github.com/user/framecast/pkg/adapters/logger"
)

// leakChecks verifies no goroutines or child processes outlive a test.
func leakChecks(t *testing.T) func() {
	leakFn := leaktest.Check(t)
	osLeakFn := osleaktest.Check(t)
	return func() {
		leakFn()
		osLeakFn()
	}
}

func TestFindFFmpeg_CustomPath(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := FindFFmpeg(bin)
	if err != nil || got != bin {
		t.Errorf("FindFFmpeg(%q) = %q, %v", bin, got, err)
	}

	_, err = FindFFmpeg(filepath.Join(dir, "missing"))
	if !errors.Is(err, ErrFFmpegNotFound) {
		t.Errorf("missing custom path error = %v, want ErrFFmpegNotFound", err)
	}
}

func TestFindFFmpeg_EnvPath(t *testing.T) {
	t.Setenv(EnvPath, filepath.Join(t.TempDir(), "nope"))
	if _, err := FindFFmpeg(""); !errors.Is(err, ErrFFmpegNotFound) {
		t.Errorf("error = %v, want ErrFFmpegNotFound", err)
	}
}

func TestRunner_PathConcurrent(t *testing.T) {
	defer leaktest.Check(t)()

	dir := t.TempDir()
	bin := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	r := New(bin, logger.NewNoop())

	var wg sync.WaitGroup
	paths := make([]string, 8)
	for i := range paths {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			paths[i], _ = r.Path()
		}(i)
	}
	wg.Wait()

	for i, p := range paths {
		if p != bin {
			t.Errorf("Path() #%d = %q, want %q", i, p, bin)
		}
	}
}

func TestRunner_EmptyArgs(t *testing.T) {
	r := New("", logger.NewNoop())
	if _, err := r.Run(context.Background(), nil); !errors.Is(err, ErrEmptyArgs) {
		t.Errorf("error = %v, want ErrEmptyArgs", err)
	}
}

func TestRunner_Integration(t *testing.T) {
	r := New("", logger.NewNoop())
	if _, err := r.Path(); err != nil {
		t.Skip("ffmpeg not available")
	}
	defer leakChecks(t)()

	version, err := r.Version(context.Background())
	if err != nil {
		t.Fatalf("Version error: %v", err)
	}
	if !strings.HasPrefix(version, "ffmpeg version") {
		t.Errorf("Version = %q", version)
	}

	result, err := r.Run(context.Background(), []string{"-hide_banner", "-i", filepath.Join(t.TempDir(), "missing.png")})
	if err == nil {
		t.Fatal("expected failure for a missing input")
	}
	if result.ExitCode == 0 || result.Stderr == "" {
		t.Errorf("result = %+v, want non-zero exit and stderr", result)
	}
}
