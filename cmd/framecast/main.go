// Package main provides the CLI entry point for framecast.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/ideamans/go-l10n"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/user/framecast/pkg/adapters/chromebrowser"
	"github.com/user/framecast/pkg/adapters/eventlog"
	"github.com/user/framecast/pkg/adapters/ffmpeg"
	"github.com/user/framecast/pkg/adapters/filesink"
	"github.com/user/framecast/pkg/adapters/ggrenderer"
	"github.com/user/framecast/pkg/adapters/logger"
	"github.com/user/framecast/pkg/adapters/mp4probe"
	"github.com/user/framecast/pkg/adapters/nullsink"
	"github.com/user/framecast/pkg/adapters/objectstore"
	"github.com/user/framecast/pkg/adapters/osfilesystem"
	"github.com/user/framecast/pkg/adapters/pebbleledger"
	"github.com/user/framecast/pkg/adapters/playwrightbrowser"
	"github.com/user/framecast/pkg/adapters/redisledger"
	"github.com/user/framecast/pkg/config"
	"github.com/user/framecast/pkg/framecast"
	"github.com/user/framecast/pkg/orchestrator"
	"github.com/user/framecast/pkg/pipeline"
	"github.com/user/framecast/pkg/ports"
	"github.com/user/framecast/pkg/prober"
	"github.com/user/framecast/pkg/stages/contactsheet"
	"github.com/user/framecast/pkg/stages/resolve"
	"github.com/user/framecast/pkg/stages/stitch"
	"github.com/user/framecast/pkg/summarizer"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:           "framecast",
		Usage:          l10n.T("Render web compositions to video frame by frame"),
		Description:    l10n.T("framecast captures every frame of a composition in headless browsers and stitches them into a video with ffmpeg."),
		Version:        version,
		DefaultCommand: "render",
		Commands: []*cli.Command{
			renderCommand(),
			stitchCommand(),
			probeCommand(),
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Println(l10n.F("framecast version %s", version))
					return nil
				},
			},
		},
	}
}

func loggingFlags() []cli.Flag {
	category := l10n.T("Logging")
	return []cli.Flag{
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info", Category: category, Usage: l10n.T("Log level (debug, info, warn, error)")},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Category: category, Usage: l10n.T("Suppress all log output")},
	}
}

func newLogger(c *cli.Context) ports.Logger {
	if c.Bool("quiet") {
		return logger.NewNoop()
	}
	return logger.NewConsole(ports.ParseLogLevel(c.String("log-level")))
}

// signalContext cancels the returned context on SIGINT or SIGTERM.
func signalContext(log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func renderCommand() *cli.Command {
	output := l10n.T("Output")
	composition := l10n.T("Composition")
	capture := l10n.T("Capture")
	browser := l10n.T("Browser")
	video := l10n.T("Video and Quality")
	resume := l10n.T("Resume and Publishing")
	debug := l10n.T("Debug")

	flags := []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Category: output, Usage: l10n.T("YAML configuration file")},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Category: output, Usage: l10n.T("Output video file path")},
		&cli.StringFlag{Name: "audio", Category: output, Usage: l10n.T("Audio track to mux into the video")},
		&cli.StringFlag{Name: "summary", Category: output, Usage: l10n.T("Output execution summary to file (Markdown format)")},

		&cli.StringFlag{Name: "id", Category: composition, Usage: l10n.T("Composition id")},
		&cli.StringFlag{Name: "size", Category: composition, Usage: l10n.T("Size preset (hd, fullhd, vertical, square)")},
		&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Category: composition, Usage: l10n.T("Frame width in pixels")},
		&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Category: composition, Usage: l10n.T("Frame height in pixels")},
		&cli.Float64Flag{Name: "fps", Category: composition, Usage: l10n.T("Frames per second")},
		&cli.IntFlag{Name: "frames", Aliases: []string{"n"}, Category: composition, Usage: l10n.T("Number of frames to render")},
		&cli.Float64Flag{Name: "duration", Category: composition, Usage: l10n.T("Duration in seconds (alternative to --frames)")},

		&cli.StringFlag{Name: "format", Category: capture, Usage: l10n.T("Frame image format (png, jpeg)")},
		&cli.IntFlag{Name: "jpeg-quality", Category: capture, Usage: l10n.T("JPEG quality (0-100)")},
		&cli.StringFlag{Name: "selector", Category: capture, Usage: l10n.T("CSS selector of the element to capture")},
		&cli.StringFlag{Name: "ready", Category: capture, Usage: l10n.T("Script polled until it returns true")},
		&cli.IntFlag{Name: "ready-timeout", Category: capture, Usage: l10n.T("Readiness timeout in milliseconds")},
		&cli.IntFlag{Name: "concurrency", Aliases: []string{"j"}, Category: capture, Usage: l10n.T("Number of browser instances (0 = auto)")},
		&cli.IntFlag{Name: "retries", Category: capture, Usage: l10n.T("Retries per frame on a fresh browser instance")},
		&cli.StringFlag{Name: "failure-policy", Category: capture, Usage: l10n.T("Failure policy (fail-fast, complete-then-fail)")},
		&cli.StringFlag{Name: "frames-dir", Category: capture, Usage: l10n.T("Directory for frame images")},
		&cli.BoolFlag{Name: "keep-frames", Category: capture, Usage: l10n.T("Keep frame images after stitching")},

		&cli.StringFlag{Name: "browser", Category: browser, Usage: l10n.T("Browser backend (chromedp, playwright)")},
		&cli.BoolFlag{Name: "no-headless", Category: browser, Usage: l10n.T("Run browser in non-headless mode")},
		&cli.StringFlag{Name: "chrome-path", Category: browser, EnvVars: []string{chromebrowser.EnvChromePath}, Usage: l10n.T("Path to Chrome executable")},
		&cli.BoolFlag{Name: "ignore-https-errors", Category: browser, Usage: l10n.T("Ignore HTTPS certificate errors")},
		&cli.StringFlag{Name: "proxy-server", Category: browser, Usage: l10n.T("HTTP proxy server (e.g., http://proxy:8080)")},
		&cli.BoolFlag{Name: "install-browsers", Category: browser, Usage: l10n.T("Download Chromium for the playwright backend")},

		&cli.StringFlag{Name: "quality", Aliases: []string{"q"}, Category: video, Usage: l10n.T("Quality preset (low, medium, high)")},
		&cli.IntFlag{Name: "crf", Category: video, Usage: l10n.T("Video CRF value (lower is better, overrides quality preset)")},
		&cli.StringFlag{Name: "codec", Category: video, Usage: l10n.T("Video codec passed to ffmpeg")},
		&cli.StringFlag{Name: "ffmpeg-path", Category: video, EnvVars: []string{ffmpeg.EnvPath}, Usage: l10n.T("Path to ffmpeg executable")},

		&cli.BoolFlag{Name: "resume", Category: resume, Usage: l10n.T("Reuse frames captured by an interrupted run")},
		&cli.StringFlag{Name: "ledger-dir", Category: resume, Usage: l10n.T("Directory of the run ledger")},
		&cli.StringFlag{Name: "ledger-redis", Category: resume, EnvVars: []string{"FRAMECAST_REDIS_ADDR"}, Usage: l10n.T("Keep the run ledger in Redis at this address")},
		&cli.StringFlag{Name: "publish", Category: resume, Usage: l10n.T("Publish backend (s3, gcs)")},
		&cli.StringFlag{Name: "bucket", Category: resume, Usage: l10n.T("Bucket to publish to")},
		&cli.StringFlag{Name: "key", Category: resume, Usage: l10n.T("Object key of the published video")},

		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Category: debug, Usage: l10n.T("Enable debug output")},
		&cli.StringFlag{Name: "debug-dir", Category: debug, Usage: l10n.T("Directory for debug output")},
		&cli.StringFlag{Name: "metrics-listen", Category: debug, Usage: l10n.T("Serve Prometheus metrics on this address (e.g., :9090)")},
	}

	return &cli.Command{
		Name:      "render",
		Usage:     l10n.T("Render a composition to video"),
		ArgsUsage: "URL",
		Flags:     append(flags, loggingFlags()...),
		Action:    runRender,
	}
}

// buildConfig loads the configuration file, if any, and applies flags
// that were set explicitly.
func buildConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	b := framecast.NewConfigBuilderFrom(cfg)
	if cfg.Composition.Width == 0 && cfg.Composition.Height == 0 {
		b.WithSizePreset(framecast.SizeHD)
	}

	if url := c.Args().First(); url != "" {
		id := cfg.Composition.ID
		if c.IsSet("id") {
			id = c.String("id")
		}
		b.WithComposition(id, url)
	} else if c.IsSet("id") {
		b.WithComposition(c.String("id"), cfg.Composition.URL)
	}

	if c.IsSet("size") {
		preset := framecast.SizePreset(c.String("size"))
		if _, _, ok := preset.Dimensions(); !ok {
			return cfg, fmt.Errorf("unknown size preset %q", preset)
		}
		b.WithSizePreset(preset)
	}
	if c.IsSet("width") || c.IsSet("height") {
		current := b.Current()
		w, h := current.Composition.Width, current.Composition.Height
		if c.IsSet("width") {
			w = c.Int("width")
		}
		if c.IsSet("height") {
			h = c.Int("height")
		}
		b.WithSize(w, h)
	}
	if c.IsSet("fps") {
		b.WithFPS(c.Float64("fps"))
	}
	if c.IsSet("frames") {
		b.WithDurationInFrames(c.Int("frames"))
	} else if c.IsSet("duration") {
		b.WithDurationSeconds(c.Float64("duration"))
	}

	if c.IsSet("output") {
		b.WithOutput(c.String("output"))
	}
	if c.IsSet("audio") {
		b.WithAudio(c.String("audio"))
	}
	if c.IsSet("summary") {
		b.WithSummary(c.String("summary"))
	}

	if c.IsSet("quality") {
		preset, err := framecast.ParseQualityPreset(c.String("quality"))
		if err != nil {
			return cfg, err
		}
		b.WithQualityPreset(preset)
	}
	if c.IsSet("format") || c.IsSet("jpeg-quality") {
		current := b.Current()
		format := ports.ImageFormat(current.Capture.Format)
		if c.IsSet("format") {
			parsed, ok := ports.ParseImageFormat(c.String("format"))
			if !ok {
				return cfg, fmt.Errorf("unsupported image format %q", c.String("format"))
			}
			format = parsed
		}
		quality := current.Capture.Quality
		if c.IsSet("jpeg-quality") {
			quality = c.Int("jpeg-quality")
		}
		b.WithFrameFormat(format, quality)
	}
	if c.IsSet("crf") {
		b.WithCRF(c.Int("crf"))
	}
	if c.IsSet("selector") {
		b.WithSelector(c.String("selector"))
	}
	if c.IsSet("ready") || c.IsSet("ready-timeout") {
		current := b.Current()
		expr := current.Capture.ReadyExpression
		if c.IsSet("ready") {
			expr = c.String("ready")
		}
		b.WithReadyExpression(expr, c.Int("ready-timeout"))
	}
	if c.IsSet("concurrency") {
		b.WithConcurrency(c.Int("concurrency"))
	}
	if c.IsSet("retries") || c.IsSet("failure-policy") {
		current := b.Current()
		retries := current.Capture.MaxRetries
		if c.IsSet("retries") {
			retries = c.Int("retries")
		}
		b.WithRetries(retries, c.String("failure-policy"))
	}
	if c.IsSet("frames-dir") || c.IsSet("keep-frames") {
		current := b.Current()
		dir := current.Capture.FramesDir
		if c.IsSet("frames-dir") {
			dir = c.String("frames-dir")
		}
		keep := current.Capture.KeepFrames || c.Bool("keep-frames")
		b.WithFramesDir(dir, keep)
	}

	if c.IsSet("browser") || c.IsSet("no-headless") {
		current := b.Current()
		backend := current.Browser.Backend
		if c.IsSet("browser") {
			backend = c.String("browser")
		}
		b.WithBrowser(backend, current.Browser.Headless && !c.Bool("no-headless"))
	}
	if c.IsSet("chrome-path") {
		b.WithChromePath(c.String("chrome-path"))
	}
	if c.IsSet("ignore-https-errors") {
		b.WithIgnoreHTTPSErrors(c.Bool("ignore-https-errors"))
	}
	if c.IsSet("proxy-server") {
		b.WithProxyServer(c.String("proxy-server"))
	}
	if c.IsSet("ffmpeg-path") {
		b.WithFFmpegPath(c.String("ffmpeg-path"))
	}

	if c.Bool("resume") {
		b.WithResume(c.String("ledger-dir"))
	}
	if c.IsSet("ledger-redis") {
		b.WithRedisLedger(c.String("ledger-redis"))
	}
	if c.IsSet("publish") {
		b.WithPublish(c.String("publish"), c.String("bucket"), c.String("key"))
	}
	if c.Bool("debug") {
		b.WithDebug(c.String("debug-dir"))
	}

	cfg, err := b.Build()
	if err != nil {
		return cfg, err
	}
	if c.IsSet("install-browsers") {
		cfg.Browser.InstallBrowsers = c.Bool("install-browsers")
	}
	if c.IsSet("metrics-listen") {
		cfg.Metrics.Listen = c.String("metrics-listen")
	}
	return cfg, nil
}

func runRender(c *cli.Context) error {
	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}

	log := newLogger(c)
	ctx, cancel := signalContext(log)
	defer cancel()

	if cfg.Metrics.Listen != "" {
		stop := serveMetrics(cfg.Metrics.Listen, log)
		defer stop()
	}

	fs := osfilesystem.New()
	renderer := ggrenderer.New()

	// Create debug sink
	var sink ports.DebugSink
	if cfg.Debug.Enabled {
		if err := fs.MkdirAll(cfg.Debug.Dir); err != nil {
			return fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cfg.Debug.Dir, fs, renderer)
	} else {
		sink = nullsink.New()
	}

	encoder := ffmpeg.New(cfg.Encoder.FFmpegPath, log)
	validator := stitch.NewValidator(encoder, log)

	deps := orchestrator.Dependencies{
		Validator:    validator,
		Resolve:      resolve.NewStage(),
		Stitch:       stitch.NewStage(validator, encoder, fs, log),
		ContactSheet: contactsheet.NewStage(fs, renderer, log),
		Observer:     eventlog.New(sink, log),
		Recommend:    prober.New().Recommend,
		FS:           fs,
		Sink:         sink,
		Logger:       log,
	}

	switch cfg.Browser.Backend {
	case config.BrowserPlaywright:
		launcher := playwrightbrowser.NewLauncher(cfg.SurfaceOptions(), cfg.Browser.InstallBrowsers, log)
		defer launcher.Close()
		deps.Launcher = launcher
	default:
		deps.Launcher = chromebrowser.NewLauncher(cfg.SurfaceOptions(), log)
	}

	if cfg.Ledger.Enabled {
		ledger, err := openLedger(ctx, cfg.Ledger)
		if err != nil {
			return fmt.Errorf("open run ledger: %w", err)
		}
		defer ledger.Close()
		deps.Ledger = ledger
	}

	if cfg.Publish.Backend != "" {
		publisher, err := objectstore.New(ctx, cfg.ObjectStoreOptions(), log)
		if err != nil {
			return fmt.Errorf("create publisher: %w", err)
		}
		defer publisher.Close()
		deps.Publisher = publisher
	}

	if mp4probe.Supports(cfg.OutputPath) {
		deps.Inspector = mp4probe.New()
	}

	orchCfg := cfg.ToOrchestratorConfig()
	result, runErr := orchestrator.New(deps).Run(ctx, orchCfg)

	if cfg.SummaryPath != "" {
		writeSummary(c, cfg, result, runErr, fs, log)
	}
	if runErr != nil {
		return runErr
	}

	log.Info("Output saved to %s", cfg.OutputPath)
	return nil
}

func writeSummary(c *cli.Context, cfg config.Config, result orchestrator.RunResult, runErr error, fs ports.FileSystem, log ports.Logger) {
	b := summarizer.NewBuilder().
		WithComposition(summarizer.CompositionInfo{
			ID:               cfg.Composition.ID,
			URL:              cfg.Composition.URL,
			Width:            cfg.Composition.Width,
			Height:           cfg.Composition.Height,
			FPS:              cfg.Composition.FPS,
			DurationInFrames: cfg.Composition.DurationInFrames,
		}).
		WithSettings(summarizer.Settings{
			Quality:       c.String("quality"),
			Browser:       cfg.Browser.Backend,
			FrameFormat:   cfg.Capture.Format,
			FrameQuality:  cfg.Capture.Quality,
			Codec:         cfg.Encoder.Codec,
			PixelFormat:   cfg.Encoder.PixelFormat,
			CRF:           cfg.Encoder.CRF,
			MaxRetries:    cfg.Capture.MaxRetries,
			FailurePolicy: cfg.Capture.FailurePolicy,
		}).
		WithResult(result, runErr)
	if info, err := os.Stat(cfg.OutputPath); err == nil && runErr == nil {
		b.WithFileSize(info.Size())
	}

	formatter := summarizer.NewMarkdownFormatter(
		summarizer.WithTranslator(l10n.T),
		summarizer.WithVersion(version),
	)
	if err := summarizer.NewWriter(formatter, fs).Write(cfg.SummaryPath, b.Build()); err != nil {
		log.Error("Failed to write summary: %s", err)
		return
	}
	log.Info("Summary written to %s", cfg.SummaryPath)
}

// openLedger opens the run ledger backend named by cfg.
func openLedger(ctx context.Context, cfg config.LedgerConfig) (ports.RunLedger, error) {
	if cfg.Backend == config.LedgerRedis {
		l, err := redisledger.Dial(ctx, cfg.RedisAddr, cfg.Namespace)
		if err != nil {
			return nil, err
		}
		return l, nil
	}
	l, err := pebbleledger.Open(cfg.Dir)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// metricsRouter serves the Prometheus registry and a liveness probe.
func metricsRouter() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")
	return r
}

// serveMetrics exposes metricsRouter on addr and returns a stop function.
func serveMetrics(addr string, log ports.Logger) func() {
	srv := &http.Server{Addr: addr, Handler: metricsRouter(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("Serving metrics on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("Metrics server stopped: %v", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func stitchCommand() *cli.Command {
	return &cli.Command{
		Name:  "stitch",
		Usage: l10n.T("Stitch previously captured frames into a video"),
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "frames-dir", Value: "frames", Usage: l10n.T("Directory for frame images")},
			&cli.StringFlag{Name: "format", Value: "png", Usage: l10n.T("Frame image format (png, jpeg)")},
			&cli.Float64Flag{Name: "fps", Value: 30, Usage: l10n.T("Frames per second")},
			&cli.IntFlag{Name: "frames", Aliases: []string{"n"}, Usage: l10n.T("Expected number of frames (0 = highest index + 1)")},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "out.mp4", Usage: l10n.T("Output video file path")},
			&cli.StringFlag{Name: "audio", Usage: l10n.T("Audio track to mux into the video")},
			&cli.StringFlag{Name: "codec", Value: "libx264", Usage: l10n.T("Video codec passed to ffmpeg")},
			&cli.StringFlag{Name: "pixel-format", Value: "yuv420p", Usage: l10n.T("Pixel format passed to ffmpeg")},
			&cli.IntFlag{Name: "crf", Value: 18, Usage: l10n.T("Video CRF value (lower is better)")},
			&cli.StringFlag{Name: "ffmpeg-path", EnvVars: []string{ffmpeg.EnvPath}, Usage: l10n.T("Path to ffmpeg executable")},
		}, loggingFlags()...),
		Action: runStitch,
	}
}

func runStitch(c *cli.Context) error {
	format, ok := ports.ParseImageFormat(c.String("format"))
	if !ok {
		return fmt.Errorf("unsupported image format %q", c.String("format"))
	}

	log := newLogger(c)
	ctx, cancel := signalContext(log)
	defer cancel()

	fs := osfilesystem.New()
	encoder := ffmpeg.New(c.String("ffmpeg-path"), log)
	validator := stitch.NewValidator(encoder, log)
	orch := orchestrator.New(orchestrator.Dependencies{
		Validator: validator,
		Stitch:    stitch.NewStage(validator, encoder, fs, log),
		FS:        fs,
		Sink:      nullsink.New(),
		Logger:    log,
	})

	defaults := pipeline.DefaultStitchInput()
	_, err := orch.Stitch(ctx, orchestrator.StitchConfig{
		FramesDir:   c.String("frames-dir"),
		Format:      format,
		FPS:         c.Float64("fps"),
		Total:       c.Int("frames"),
		OutputPath:  c.String("output"),
		AudioPath:   c.String("audio"),
		Codec:       c.String("codec"),
		PixelFormat: c.String("pixel-format"),
		CRF:         c.Int("crf"),
		AudioCodec:  defaults.AudioCodec,
	})
	return err
}

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:  "probe",
		Usage: l10n.T("Show host capabilities and tool locations"),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "ffmpeg-path", EnvVars: []string{ffmpeg.EnvPath}, Usage: l10n.T("Path to ffmpeg executable")},
			&cli.StringFlag{Name: "chrome-path", EnvVars: []string{chromebrowser.EnvChromePath}, Usage: l10n.T("Path to Chrome executable")},
		},
		Action: runProbe,
	}
}

func runProbe(c *cli.Context) error {
	fmt.Println(l10n.F("Recommended concurrency: %d", prober.New().Recommend()))

	if chrome := chromebrowser.ResolveChromePath(c.String("chrome-path")); chrome != "" {
		fmt.Println(l10n.F("Chrome: %s", chrome))
	} else {
		fmt.Println(l10n.F("Chrome: %s", l10n.T("not found")))
	}

	runner := ffmpeg.New(c.String("ffmpeg-path"), logger.NewNoop())
	path, err := runner.Path()
	if err != nil {
		fmt.Println(l10n.F("ffmpeg: %s", l10n.T("not found")))
		return nil
	}
	fmt.Println(l10n.F("ffmpeg: %s", path))

	ctx, cancel := context.WithTimeout(c.Context, 10*time.Second)
	defer cancel()
	if v, err := runner.Version(ctx); err == nil {
		fmt.Println(l10n.F("ffmpeg version: %s", v))
	}
	return nil
}
