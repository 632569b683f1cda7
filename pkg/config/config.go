// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/framecast/pkg/adapters/objectstore"
	"github.com/user/framecast/pkg/orchestrator"
	"github.com/user/framecast/pkg/pipeline"
	"github.com/user/framecast/pkg/pool"
	"github.com/user/framecast/pkg/ports"
	"github.com/user/framecast/pkg/stages/resolve"
)

// Browser backends.
const (
	BrowserChromedp   = "chromedp"
	BrowserPlaywright = "playwright"
)

// Config represents the full configuration for framecast.
type Config struct {
	Composition CompositionConfig `yaml:"composition"`
	OutputPath  string            `yaml:"output"`
	AudioPath   string            `yaml:"audio"`

	Capture CaptureConfig `yaml:"capture"`
	Browser BrowserConfig `yaml:"browser"`
	Pool    PoolConfig    `yaml:"pool"`
	Encoder EncoderConfig `yaml:"encoder"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Publish PublishConfig `yaml:"publish"`
	Metrics MetricsConfig `yaml:"metrics"`
	Debug   DebugConfig   `yaml:"debug"`

	// SummaryPath receives a Markdown run summary when set.
	SummaryPath string `yaml:"summary"`
}

// CompositionConfig describes the composition to render.
type CompositionConfig struct {
	ID               string  `yaml:"id"`
	URL              string  `yaml:"url"`
	Width            int     `yaml:"width"`
	Height           int     `yaml:"height"`
	FPS              float64 `yaml:"fps"`
	DurationInFrames int     `yaml:"duration_in_frames"`
}

// CaptureConfig represents per-frame capture settings.
type CaptureConfig struct {
	Format          string `yaml:"format"`
	Quality         int    `yaml:"quality"`
	Selector        string `yaml:"selector"`
	ReadyExpression string `yaml:"ready_expression"`
	ReadyTimeoutMs  int    `yaml:"ready_timeout_ms"`
	MaxRetries      int    `yaml:"max_retries"`
	FailurePolicy   string `yaml:"failure_policy"`
	FramesDir       string `yaml:"frames_dir"`
	KeepFrames      bool   `yaml:"keep_frames"`
}

// BrowserConfig selects and configures the rendering surface.
type BrowserConfig struct {
	Backend           string   `yaml:"backend"`
	Headless          bool     `yaml:"headless"`
	ChromePath        string   `yaml:"chrome_path"`
	UserAgent         string   `yaml:"user_agent"`
	IgnoreHTTPSErrors bool     `yaml:"ignore_https_errors"`
	ProxyServer       string   `yaml:"proxy_server"`
	Flags             []string `yaml:"flags"`
	LaunchTimeoutMs   int      `yaml:"launch_timeout_ms"`
	// InstallBrowsers downloads Chromium for the playwright backend.
	InstallBrowsers bool `yaml:"install_browsers"`
}

// PoolConfig represents worker pool settings.
type PoolConfig struct {
	// Concurrency is the number of surfaces. 0 uses the host recommendation.
	Concurrency int `yaml:"concurrency"`
}

// EncoderConfig represents ffmpeg settings.
type EncoderConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	Codec       string `yaml:"codec"`
	PixelFormat string `yaml:"pixel_format"`
	CRF         int    `yaml:"crf"`
	AudioCodec  string `yaml:"audio_codec"`
}

// Run ledger backends.
const (
	LedgerPebble = "pebble"
	LedgerRedis  = "redis"
)

// LedgerConfig represents the resume ledger.
type LedgerConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Backend   string `yaml:"backend"` // "pebble" or "redis"
	Dir       string `yaml:"dir"`
	RedisAddr string `yaml:"redis_addr"`
	Namespace string `yaml:"namespace"`
	Resume    bool   `yaml:"resume"`
}

// PublishConfig represents upload of the final video.
type PublishConfig struct {
	Backend         string `yaml:"backend"` // "", "s3" or "gcs"
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Key             string `yaml:"key"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKey       string `yaml:"access_key"`
	SecretKey       string `yaml:"secret_key"`
	CredentialsFile string `yaml:"credentials_file"`
}

// MetricsConfig represents the Prometheus endpoint.
type MetricsConfig struct {
	Listen string `yaml:"listen"` // e.g. ":9090"; empty disables the endpoint
}

// DebugConfig represents the debug sink.
type DebugConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	capture := pipeline.DefaultCaptureSettings()
	stitch := pipeline.DefaultStitchInput()
	return Config{
		Composition: CompositionConfig{
			ID:  "main",
			FPS: 30,
		},
		OutputPath: "out.mp4",

		Capture: CaptureConfig{
			Format:          string(capture.Format),
			Quality:         capture.Quality,
			Selector:        capture.Selector,
			ReadyExpression: capture.ReadyExpression,
			ReadyTimeoutMs:  capture.ReadyTimeoutMs,
			MaxRetries:      1,
			FailurePolicy:   string(pool.FailFast),
			FramesDir:       capture.Dir,
		},
		Browser: BrowserConfig{
			Backend:         BrowserChromedp,
			Headless:        true,
			LaunchTimeoutMs: 30000,
		},
		Encoder: EncoderConfig{
			Codec:       stitch.Codec,
			PixelFormat: stitch.PixelFormat,
			CRF:         stitch.CRF,
			AudioCodec:  stitch.AudioCodec,
		},
		Ledger: LedgerConfig{
			Backend: LedgerPebble,
			Dir:     ".framecast/ledger",
		},

		Debug: DebugConfig{
			Dir: "./debug",
		},
	}
}

// LoadFromFile loads configuration from a YAML file. Fields absent from
// the file keep their default values.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if err := resolve.Validate(c.composition()); err != nil {
		errs = append(errs, err)
	}
	if c.OutputPath == "" {
		errs = append(errs, errors.New("output path is required"))
	}
	if _, ok := ports.ParseImageFormat(c.Capture.Format); !ok {
		errs = append(errs, fmt.Errorf("capture.format: unsupported image format %q", c.Capture.Format))
	}
	if c.Capture.Quality < 0 || c.Capture.Quality > 100 {
		errs = append(errs, fmt.Errorf("capture.quality: must be within 0-100, got %d", c.Capture.Quality))
	}
	if c.Capture.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("capture.max_retries: must not be negative, got %d", c.Capture.MaxRetries))
	}
	if _, err := pool.ParseFailurePolicy(c.Capture.FailurePolicy); err != nil {
		errs = append(errs, fmt.Errorf("capture.failure_policy: %w", err))
	}
	if c.Pool.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("pool.concurrency: must not be negative, got %d", c.Pool.Concurrency))
	}
	switch c.Browser.Backend {
	case BrowserChromedp, BrowserPlaywright:
	default:
		errs = append(errs, fmt.Errorf("browser.backend: unknown backend %q", c.Browser.Backend))
	}
	if c.Encoder.CRF < 0 || c.Encoder.CRF > 63 {
		errs = append(errs, fmt.Errorf("encoder.crf: must be within 0-63, got %d", c.Encoder.CRF))
	}
	if c.Ledger.Resume && !c.Ledger.Enabled {
		errs = append(errs, errors.New("ledger.resume: requires ledger.enabled"))
	}
	if c.Ledger.Enabled {
		switch c.Ledger.Backend {
		case LedgerPebble:
		case LedgerRedis:
			if c.Ledger.RedisAddr == "" {
				errs = append(errs, errors.New("ledger.redis_addr: required for the redis backend"))
			}
		default:
			errs = append(errs, fmt.Errorf("ledger.backend: unknown backend %q", c.Ledger.Backend))
		}
	}
	if c.Publish.Backend != "" {
		if c.Publish.Backend != objectstore.BackendS3 && c.Publish.Backend != objectstore.BackendGCS {
			errs = append(errs, fmt.Errorf("publish.backend: unknown backend %q", c.Publish.Backend))
		}
		if c.Publish.Bucket == "" {
			errs = append(errs, errors.New("publish.bucket: required when publishing"))
		}
	}

	return errors.Join(errs...)
}

func (c Config) composition() pipeline.Composition {
	return pipeline.Composition{
		ID:               c.Composition.ID,
		URL:              c.Composition.URL,
		Width:            c.Composition.Width,
		Height:           c.Composition.Height,
		FPS:              c.Composition.FPS,
		DurationInFrames: c.Composition.DurationInFrames,
	}
}

// ToOrchestratorConfig converts Config to orchestrator.Config. Call
// Validate first; unparseable values fall back to defaults.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	format, ok := ports.ParseImageFormat(c.Capture.Format)
	if !ok {
		format = ports.FormatPNG
	}
	policy, err := pool.ParseFailurePolicy(c.Capture.FailurePolicy)
	if err != nil {
		policy = pool.FailFast
	}

	return orchestrator.Config{
		Composition: c.composition(),
		OutputPath:  c.OutputPath,
		AudioPath:   c.AudioPath,

		Capture: pipeline.CaptureSettings{
			Dir:             c.Capture.FramesDir,
			Format:          format,
			Quality:         c.Capture.Quality,
			Selector:        c.Capture.Selector,
			ReadyExpression: c.Capture.ReadyExpression,
			ReadyTimeoutMs:  c.Capture.ReadyTimeoutMs,
		},

		Concurrency:   c.Pool.Concurrency,
		MaxRetries:    c.Capture.MaxRetries,
		FailurePolicy: policy,
		Resume:        c.Ledger.Enabled && c.Ledger.Resume,
		KeepFrames:    c.Capture.KeepFrames,

		Codec:       c.Encoder.Codec,
		PixelFormat: c.Encoder.PixelFormat,
		CRF:         c.Encoder.CRF,
		AudioCodec:  c.Encoder.AudioCodec,

		PublishKey: c.Publish.Key,
	}
}

// SurfaceOptions converts the browser section to ports.SurfaceOptions.
func (c Config) SurfaceOptions() ports.SurfaceOptions {
	return ports.SurfaceOptions{
		Headless:          c.Browser.Headless,
		ChromePath:        c.Browser.ChromePath,
		UserAgent:         c.Browser.UserAgent,
		IgnoreHTTPSErrors: c.Browser.IgnoreHTTPSErrors,
		ProxyServer:       c.Browser.ProxyServer,
		ExtraFlags:        c.Browser.Flags,
		LaunchTimeout:     time.Duration(c.Browser.LaunchTimeoutMs) * time.Millisecond,
	}
}

// ObjectStoreOptions converts the publish section to objectstore.Options.
func (c Config) ObjectStoreOptions() objectstore.Options {
	return objectstore.Options{
		Backend:         c.Publish.Backend,
		Bucket:          c.Publish.Bucket,
		Prefix:          c.Publish.Prefix,
		Region:          c.Publish.Region,
		Endpoint:        c.Publish.Endpoint,
		AccessKey:       c.Publish.AccessKey,
		SecretKey:       c.Publish.SecretKey,
		CredentialsFile: c.Publish.CredentialsFile,
	}
}
