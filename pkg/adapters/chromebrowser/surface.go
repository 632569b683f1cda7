// Package chromebrowser provides rendering surfaces backed by chromedp.
package chromebrowser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/inspector"
	"github.com/chromedp/cdproto/page"
	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/user/framecast/pkg/ports"
)

const defaultLaunchTimeout = 30 * time.Second

// Launcher starts one Chrome process per surface.
type Launcher struct {
	opts   ports.SurfaceOptions
	logger ports.Logger
}

// NewLauncher creates a chromedp launcher.
func NewLauncher(opts ports.SurfaceOptions, logger ports.Logger) *Launcher {
	return &Launcher{opts: opts, logger: logger.WithComponent("browser")}
}

// allocatorOptions builds the fixed sandboxed flag set.
func (l *Launcher) allocatorOptions(chromePath string) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.ExecPath(chromePath),
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("metrics-recording-only", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("font-render-hinting", "none"),
	}

	if l.opts.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	}
	if l.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(l.opts.UserAgent))
	}
	if l.opts.IgnoreHTTPSErrors {
		opts = append(opts,
			chromedp.Flag("ignore-certificate-errors", true),
			chromedp.Flag("allow-insecure-localhost", true))
	}
	if l.opts.ProxyServer != "" {
		opts = append(opts, chromedp.ProxyServer(l.opts.ProxyServer))
	}
	for _, flag := range l.opts.ExtraFlags {
		name, value, hasValue := strings.Cut(strings.TrimLeft(flag, "-"), "=")
		if hasValue {
			opts = append(opts, chromedp.Flag(name, value))
		} else {
			opts = append(opts, chromedp.Flag(name, true))
		}
	}
	return opts
}

// Launch starts Chrome and opens a blank tab. The surface lives until
// Close; ctx bounds only the startup.
func (l *Launcher) Launch(ctx context.Context) (ports.Surface, error) {
	chromePath := ResolveChromePath(l.opts.ChromePath)
	if chromePath == "" {
		return nil, ErrChromeNotFound
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), l.allocatorOptions(chromePath)...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	s := &Surface{
		ctx:         tabCtx,
		cancel:      tabCancel,
		allocCancel: allocCancel,
		handlers:    make(map[int]func(ports.PageEvent)),
	}
	chromedp.ListenTarget(tabCtx, s.onEvent)

	timeout := l.opts.LaunchTimeout
	if timeout <= 0 {
		timeout = defaultLaunchTimeout
	}

	// The first Run allocates the browser and must use the tab context
	// itself; a deadline on it would kill the browser later.
	started := make(chan error, 1)
	go func() { started <- chromedp.Run(tabCtx) }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case err := <-started:
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("start chrome %s: %w", chromePath, err)
		}
	case <-timer.C:
		s.Close()
		return nil, fmt.Errorf("start chrome %s: timed out after %s", chromePath, timeout)
	case <-ctx.Done():
		s.Close()
		return nil, ctx.Err()
	}

	l.logger.Debug("Launched chrome %s", chromePath)
	return s, nil
}

var _ ports.SurfaceLauncher = (*Launcher)(nil)

// Surface is one Chrome process with a single tab.
type Surface struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	mu          sync.Mutex
	handlers    map[int]func(ports.PageEvent)
	nextHandler int

	closeOnce sync.Once
	closeErr  error
}

// run executes actions on the tab, canceled when either the tab or ctx ends.
func (s *Surface) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// SetViewport sets the emulated viewport size and scale.
func (s *Surface) SetViewport(ctx context.Context, width, height int, deviceScaleFactor float64) error {
	err := s.run(ctx, emulation.SetDeviceMetricsOverride(int64(width), int64(height), deviceScaleFactor, false))
	if err != nil {
		return fmt.Errorf("set device metrics: %w", err)
	}
	return nil
}

// Navigate loads url and waits for the load event.
func (s *Surface) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

// Evaluate runs expression and decodes its value into out.
func (s *Surface) Evaluate(ctx context.Context, expression string, out interface{}) error {
	return s.run(ctx, chromedp.Evaluate(expression, out))
}

// Screenshot captures opts.Clip at scale 1.
func (s *Surface) Screenshot(ctx context.Context, opts ports.ScreenshotOptions) ([]byte, error) {
	var data []byte
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		if opts.OmitBackground {
			transparent := &cdp.RGBA{R: 0, G: 0, B: 0, A: 0}
			if err := emulation.SetDefaultBackgroundColorOverride().WithColor(transparent).Do(ctx); err != nil {
				return fmt.Errorf("set transparent background: %w", err)
			}
			defer emulation.SetDefaultBackgroundColorOverride().Do(ctx)
		}

		capture := page.CaptureScreenshot().
			WithClip(&page.Viewport{
				X:      opts.Clip.X,
				Y:      opts.Clip.Y,
				Width:  opts.Clip.Width,
				Height: opts.Clip.Height,
				Scale:  1,
			}).
			WithFromSurface(true)
		if opts.Format == ports.FormatJPEG {
			capture = capture.WithFormat(page.CaptureScreenshotFormatJpeg).WithQuality(int64(opts.Quality))
		} else {
			capture = capture.WithFormat(page.CaptureScreenshotFormatPng)
		}

		var err error
		data, err = capture.Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return data, nil
}

// Subscribe registers fn for page events.
func (s *Surface) Subscribe(fn func(ports.PageEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextHandler
	s.nextHandler++
	s.handlers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handlers, id)
	}
}

func (s *Surface) emit(ev ports.PageEvent) {
	s.mu.Lock()
	handlers := make([]func(ports.PageEvent), 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}

// onEvent translates CDP events into page events.
func (s *Surface) onEvent(ev interface{}) {
	switch e := ev.(type) {
	case *cdpruntime.EventExceptionThrown:
		s.emit(ports.PageEvent{
			Kind:    ports.EventPageError,
			Message: exceptionMessage(e.ExceptionDetails),
			Time:    time.Now(),
		})
	case *cdpruntime.EventConsoleAPICalled:
		s.emit(ports.PageEvent{
			Kind:    ports.EventConsole,
			Level:   string(e.Type),
			Message: consoleMessage(e.Args),
			Time:    time.Now(),
		})
	case *inspector.EventTargetCrashed:
		s.emit(ports.PageEvent{
			Kind:    ports.EventCrash,
			Message: "target crashed",
			Time:    time.Now(),
		})
	}
}

func exceptionMessage(details *cdpruntime.ExceptionDetails) string {
	if details == nil {
		return "uncaught exception"
	}
	if details.Exception != nil && details.Exception.Description != "" {
		return details.Exception.Description
	}
	return details.Text
}

func consoleMessage(args []*cdpruntime.RemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case arg.Description != "":
			parts = append(parts, arg.Description)
		case len(arg.Value) > 0:
			parts = append(parts, strings.Trim(string(arg.Value), `"`))
		default:
			parts = append(parts, string(arg.Type))
		}
	}
	return strings.Join(parts, " ")
}

// Close shuts down the tab and the browser process.
func (s *Surface) Close() error {
	s.closeOnce.Do(func() {
		if err := chromedp.Cancel(s.ctx); err != nil && err != context.Canceled {
			s.closeErr = err
		}
		s.cancel()
		s.allocCancel()
	})
	return s.closeErr
}

var _ ports.Surface = (*Surface)(nil)
