// Package framecast provides a high-level API for configuring render runs.
package framecast

import (
	"fmt"

	"github.com/user/framecast/pkg/config"
	"github.com/user/framecast/pkg/ports"
)

// QualityPreset represents a video quality preset name.
type QualityPreset string

const (
	QualityLow    QualityPreset = "low"
	QualityMedium QualityPreset = "medium"
	QualityHigh   QualityPreset = "high"
)

// QualitySettings contains quality parameters for capture and encoding.
type QualitySettings struct {
	VideoCRF     int               // x264 CRF value (0-51, lower is better)
	FrameFormat  ports.ImageFormat // Intermediate frame format
	FrameQuality int               // JPEG quality (0-100), ignored for PNG
}

// GetQualitySettings returns quality settings for the given preset.
func GetQualitySettings(preset QualityPreset) QualitySettings {
	switch preset {
	case QualityLow:
		return QualitySettings{
			VideoCRF:     28,
			FrameFormat:  ports.FormatJPEG,
			FrameQuality: 75,
		}
	case QualityHigh:
		return QualitySettings{
			VideoCRF:     12,
			FrameFormat:  ports.FormatPNG,
			FrameQuality: 100,
		}
	default: // medium
		return QualitySettings{
			VideoCRF:     18,
			FrameFormat:  ports.FormatPNG,
			FrameQuality: 80,
		}
	}
}

// ParseQualityPreset parses a preset name.
func ParseQualityPreset(s string) (QualityPreset, error) {
	switch p := QualityPreset(s); p {
	case QualityLow, QualityMedium, QualityHigh:
		return p, nil
	}
	return "", fmt.Errorf("unknown quality preset %q", s)
}

// SizePreset names a common output resolution.
type SizePreset string

const (
	SizeHD       SizePreset = "hd"       // 1280x720
	SizeFullHD   SizePreset = "fullhd"   // 1920x1080
	SizeVertical SizePreset = "vertical" // 1080x1920
	SizeSquare   SizePreset = "square"   // 1080x1080
)

// Dimensions returns the width and height of a size preset.
func (p SizePreset) Dimensions() (int, int, bool) {
	switch p {
	case SizeHD:
		return 1280, 720, true
	case SizeFullHD:
		return 1920, 1080, true
	case SizeVertical:
		return 1080, 1920, true
	case SizeSquare:
		return 1080, 1080, true
	}
	return 0, 0, false
}

// ConfigBuilder provides a fluent interface for building config.Config.
type ConfigBuilder struct {
	config config.Config
}

// NewConfigBuilder creates a new ConfigBuilder with HD defaults.
func NewConfigBuilder() *ConfigBuilder {
	cfg := config.Defaults()
	cfg.Composition.Width, cfg.Composition.Height, _ = SizeHD.Dimensions()
	return &ConfigBuilder{config: cfg}
}

// NewConfigBuilderFrom starts from an existing configuration, typically
// one loaded from a file.
func NewConfigBuilderFrom(cfg config.Config) *ConfigBuilder {
	return &ConfigBuilder{config: cfg}
}

// Build returns the final Config after validation.
func (b *ConfigBuilder) Build() (config.Config, error) {
	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Current returns the configuration built so far without validating it.
func (b *ConfigBuilder) Current() config.Config {
	return b.config
}

// WithComposition sets the composition id and page URL.
func (b *ConfigBuilder) WithComposition(id, url string) *ConfigBuilder {
	b.config.Composition.ID = id
	b.config.Composition.URL = url
	return b
}

// WithSize sets the frame dimensions in pixels.
func (b *ConfigBuilder) WithSize(width, height int) *ConfigBuilder {
	b.config.Composition.Width = width
	b.config.Composition.Height = height
	return b
}

// WithSizePreset applies a size preset. Unknown presets are ignored.
func (b *ConfigBuilder) WithSizePreset(preset SizePreset) *ConfigBuilder {
	if w, h, ok := preset.Dimensions(); ok {
		b.config.Composition.Width = w
		b.config.Composition.Height = h
	}
	return b
}

// WithFPS sets the frame rate.
func (b *ConfigBuilder) WithFPS(fps float64) *ConfigBuilder {
	b.config.Composition.FPS = fps
	return b
}

// WithDurationInFrames sets the number of frames to render.
func (b *ConfigBuilder) WithDurationInFrames(frames int) *ConfigBuilder {
	b.config.Composition.DurationInFrames = frames
	return b
}

// WithDurationSeconds sets the frame count from a duration at the current
// frame rate, rounding up.
func (b *ConfigBuilder) WithDurationSeconds(seconds float64) *ConfigBuilder {
	frames := seconds * b.config.Composition.FPS
	n := int(frames)
	if float64(n) < frames {
		n++
	}
	b.config.Composition.DurationInFrames = n
	return b
}

// WithOutput sets the output video path.
func (b *ConfigBuilder) WithOutput(path string) *ConfigBuilder {
	b.config.OutputPath = path
	return b
}

// WithAudio sets an audio track to mux into the output.
func (b *ConfigBuilder) WithAudio(path string) *ConfigBuilder {
	b.config.AudioPath = path
	return b
}

// WithQualityPreset applies a quality preset (low, medium, high).
func (b *ConfigBuilder) WithQualityPreset(preset QualityPreset) *ConfigBuilder {
	settings := GetQualitySettings(preset)
	b.config.Encoder.CRF = settings.VideoCRF
	b.config.Capture.Format = string(settings.FrameFormat)
	b.config.Capture.Quality = settings.FrameQuality
	return b
}

// WithCRF sets the encoder CRF value.
func (b *ConfigBuilder) WithCRF(crf int) *ConfigBuilder {
	b.config.Encoder.CRF = crf
	return b
}

// WithFrameFormat sets the intermediate frame format and JPEG quality.
func (b *ConfigBuilder) WithFrameFormat(format ports.ImageFormat, quality int) *ConfigBuilder {
	b.config.Capture.Format = string(format)
	b.config.Capture.Quality = quality
	return b
}

// WithSelector sets the CSS selector of the element to capture.
func (b *ConfigBuilder) WithSelector(selector string) *ConfigBuilder {
	b.config.Capture.Selector = selector
	return b
}

// WithReadyExpression sets the script polled until it yields true.
func (b *ConfigBuilder) WithReadyExpression(expr string, timeoutMs int) *ConfigBuilder {
	b.config.Capture.ReadyExpression = expr
	if timeoutMs > 0 {
		b.config.Capture.ReadyTimeoutMs = timeoutMs
	}
	return b
}

// WithConcurrency sets the number of surfaces. 0 uses the host recommendation.
func (b *ConfigBuilder) WithConcurrency(n int) *ConfigBuilder {
	b.config.Pool.Concurrency = n
	return b
}

// WithRetries sets the retries per frame and the failure policy name.
func (b *ConfigBuilder) WithRetries(maxRetries int, policy string) *ConfigBuilder {
	b.config.Capture.MaxRetries = maxRetries
	if policy != "" {
		b.config.Capture.FailurePolicy = policy
	}
	return b
}

// WithFramesDir sets where frame images are written.
func (b *ConfigBuilder) WithFramesDir(dir string, keep bool) *ConfigBuilder {
	b.config.Capture.FramesDir = dir
	b.config.Capture.KeepFrames = keep
	return b
}

// WithBrowser selects the browser backend.
func (b *ConfigBuilder) WithBrowser(backend string, headless bool) *ConfigBuilder {
	b.config.Browser.Backend = backend
	b.config.Browser.Headless = headless
	return b
}

// WithChromePath sets the Chrome executable.
func (b *ConfigBuilder) WithChromePath(path string) *ConfigBuilder {
	b.config.Browser.ChromePath = path
	return b
}

// WithIgnoreHTTPSErrors enables ignoring HTTPS certificate errors.
func (b *ConfigBuilder) WithIgnoreHTTPSErrors(ignore bool) *ConfigBuilder {
	b.config.Browser.IgnoreHTTPSErrors = ignore
	return b
}

// WithProxyServer sets the HTTP proxy server.
func (b *ConfigBuilder) WithProxyServer(proxy string) *ConfigBuilder {
	b.config.Browser.ProxyServer = proxy
	return b
}

// WithFFmpegPath sets the ffmpeg executable.
func (b *ConfigBuilder) WithFFmpegPath(path string) *ConfigBuilder {
	b.config.Encoder.FFmpegPath = path
	return b
}

// WithResume enables the run ledger in dir and resumes from it.
func (b *ConfigBuilder) WithResume(dir string) *ConfigBuilder {
	b.config.Ledger.Enabled = true
	b.config.Ledger.Resume = true
	if dir != "" {
		b.config.Ledger.Dir = dir
	}
	return b
}

// WithRedisLedger keeps the run ledger in Redis at addr.
func (b *ConfigBuilder) WithRedisLedger(addr string) *ConfigBuilder {
	b.config.Ledger.Enabled = true
	b.config.Ledger.Backend = config.LedgerRedis
	b.config.Ledger.RedisAddr = addr
	return b
}

// WithPublish uploads the video to bucket on backend ("s3" or "gcs").
func (b *ConfigBuilder) WithPublish(backend, bucket, key string) *ConfigBuilder {
	b.config.Publish.Backend = backend
	b.config.Publish.Bucket = bucket
	b.config.Publish.Key = key
	return b
}

// WithDebug enables the debug sink in dir.
func (b *ConfigBuilder) WithDebug(dir string) *ConfigBuilder {
	b.config.Debug.Enabled = true
	if dir != "" {
		b.config.Debug.Dir = dir
	}
	return b
}

// WithSummary writes a Markdown run summary to path.
func (b *ConfigBuilder) WithSummary(path string) *ConfigBuilder {
	b.config.SummaryPath = path
	return b
}
