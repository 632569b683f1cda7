package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user/framecast/pkg/pipeline"
	"github.com/user/framecast/pkg/pool"
	"github.com/user/framecast/pkg/ports"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.Composition.URL = "http://localhost:3000/"
	cfg.Composition.Width = 1280
	cfg.Composition.Height = 720
	cfg.Composition.DurationInFrames = 90
	return cfg
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "framecast.yaml")
	data := `
composition:
  id: intro
  url: http://localhost:3000/
  width: 1920
  height: 1080
  fps: 60
  duration_in_frames: 120
output: renders/intro.mp4
capture:
  format: jpeg
  quality: 90
  failure_policy: complete-then-fail
pool:
  concurrency: 3
ledger:
  enabled: true
  resume: true
publish:
  backend: s3
  bucket: renders
  key: intro.mp4
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	if cfg.Composition.ID != "intro" || cfg.Composition.FPS != 60 {
		t.Errorf("unexpected composition: %+v", cfg.Composition)
	}
	// Unset fields keep defaults.
	if cfg.Capture.Selector != "#canvas" {
		t.Errorf("expected default selector, got %q", cfg.Capture.Selector)
	}
	if cfg.Encoder.Codec != "libx264" {
		t.Errorf("expected default codec, got %q", cfg.Encoder.Codec)
	}
	if !cfg.Browser.Headless {
		t.Error("expected headless by default")
	}

	oc := cfg.ToOrchestratorConfig()
	if oc.Capture.Format != ports.FormatJPEG {
		t.Errorf("expected jpeg, got %s", oc.Capture.Format)
	}
	if oc.FailurePolicy != pool.CompleteThenFail {
		t.Errorf("expected complete-then-fail, got %s", oc.FailurePolicy)
	}
	if oc.Concurrency != 3 {
		t.Errorf("expected concurrency 3, got %d", oc.Concurrency)
	}
	if !oc.Resume {
		t.Error("expected resume")
	}
	if oc.PublishKey != "intro.mp4" {
		t.Errorf("expected publish key intro.mp4, got %q", oc.PublishKey)
	}
	if oc.Composition.DurationInFrames != 120 {
		t.Errorf("expected 120 frames, got %d", oc.Composition.DurationInFrames)
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadFromFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("composition: [1, 2"), 0644)
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"valid", func(c *Config) {}, ""},
		{"zero frames", func(c *Config) { c.Composition.DurationInFrames = 0 }, "durationInFrames"},
		{"bad format", func(c *Config) { c.Capture.Format = "webp" }, "capture.format"},
		{"bad quality", func(c *Config) { c.Capture.Quality = 101 }, "capture.quality"},
		{"bad policy", func(c *Config) { c.Capture.FailurePolicy = "best-effort" }, "capture.failure_policy"},
		{"negative concurrency", func(c *Config) { c.Pool.Concurrency = -1 }, "pool.concurrency"},
		{"bad browser", func(c *Config) { c.Browser.Backend = "firefox" }, "browser.backend"},
		{"bad crf", func(c *Config) { c.Encoder.CRF = 64 }, "encoder.crf"},
		{"resume without ledger", func(c *Config) { c.Ledger.Resume = true }, "ledger.resume"},
		{"redis ledger without addr", func(c *Config) { c.Ledger.Enabled = true; c.Ledger.Backend = LedgerRedis }, "ledger.redis_addr"},
		{"unknown ledger backend", func(c *Config) { c.Ledger.Enabled = true; c.Ledger.Backend = "bolt" }, "ledger.backend"},
		{"publish without bucket", func(c *Config) { c.Publish.Backend = "gcs" }, "publish.bucket"},
		{"unknown publish backend", func(c *Config) { c.Publish.Backend = "azure"; c.Publish.Bucket = "b" }, "publish.backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidate_ReportsAll(t *testing.T) {
	cfg := validConfig()
	cfg.Composition.FPS = 0
	cfg.Encoder.CRF = -1

	err := cfg.Validate()
	if !errors.Is(err, pipeline.ErrInvalidComposition) {
		t.Errorf("expected invalid composition, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "encoder.crf") {
		t.Errorf("expected crf error, got %v", err)
	}
}

func TestSurfaceOptions(t *testing.T) {
	cfg := Defaults()
	cfg.Browser.Flags = []string{"disable-gpu"}
	cfg.Browser.LaunchTimeoutMs = 1500

	opts := cfg.SurfaceOptions()
	if !opts.Headless {
		t.Error("expected headless")
	}
	if len(opts.ExtraFlags) != 1 || opts.ExtraFlags[0] != "disable-gpu" {
		t.Errorf("unexpected flags %v", opts.ExtraFlags)
	}
	if opts.LaunchTimeout.Milliseconds() != 1500 {
		t.Errorf("expected 1500ms, got %v", opts.LaunchTimeout)
	}
}
