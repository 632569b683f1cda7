// Package playwrightbrowser provides rendering surfaces backed by playwright-go.
package playwrightbrowser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/user/framecast/pkg/ports"
)

// launchArgs is the fixed sandboxed flag set passed to Chromium.
var launchArgs = []string{
	"--no-sandbox",
	"--disable-setuid-sandbox",
	"--disable-dev-shm-usage",
	"--disable-background-timer-throttling",
	"--disable-renderer-backgrounding",
	"--hide-scrollbars",
	"--mute-audio",
	"--font-render-hinting=none",
}

// Launcher starts one Chromium process per surface through a shared
// Playwright driver.
type Launcher struct {
	opts    ports.SurfaceOptions
	install bool
	logger  ports.Logger

	once   sync.Once
	pw     *playwright.Playwright
	runErr error
}

// NewLauncher creates a Playwright launcher. When install is true the
// driver and Chromium are downloaded on first use if missing.
func NewLauncher(opts ports.SurfaceOptions, install bool, logger ports.Logger) *Launcher {
	return &Launcher{opts: opts, install: install, logger: logger.WithComponent("browser")}
}

func (l *Launcher) driver() (*playwright.Playwright, error) {
	l.once.Do(func() {
		runOpts := &playwright.RunOptions{Browsers: []string{"chromium"}, Verbose: false}
		if l.install {
			if err := playwright.Install(runOpts); err != nil {
				l.runErr = fmt.Errorf("install playwright: %w", err)
				return
			}
		}
		l.pw, l.runErr = playwright.Run(runOpts)
		if l.runErr != nil {
			l.runErr = fmt.Errorf("start playwright: %w", l.runErr)
		}
	})
	return l.pw, l.runErr
}

// LaunchArgs returns the Chromium arguments for the configured options.
func (l *Launcher) LaunchArgs() []string {
	args := append([]string(nil), launchArgs...)
	if l.opts.ProxyServer != "" {
		args = append(args, "--proxy-server="+l.opts.ProxyServer)
	}
	for _, flag := range l.opts.ExtraFlags {
		args = append(args, "--"+strings.TrimLeft(flag, "-"))
	}
	return args
}

// Launch starts a browser with one context and one page.
func (l *Launcher) Launch(ctx context.Context) (ports.Surface, error) {
	pw, err := l.driver()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless:        playwright.Bool(l.opts.Headless),
		Args:            l.LaunchArgs(),
		ChromiumSandbox: playwright.Bool(false),
		HandleSIGINT:    playwright.Bool(false),
		HandleSIGTERM:   playwright.Bool(false),
		HandleSIGHUP:    playwright.Bool(false),
	}
	if l.opts.ChromePath != "" {
		launchOpts.ExecutablePath = playwright.String(l.opts.ChromePath)
	}
	if l.opts.LaunchTimeout > 0 {
		launchOpts.Timeout = playwright.Float(float64(l.opts.LaunchTimeout.Milliseconds()))
	}

	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	s := &Surface{
		browser:  browser,
		opts:     l.opts,
		scale:    1,
		width:    1280,
		height:   720,
		handlers: make(map[int]func(ports.PageEvent)),
	}
	if err := s.openPage(); err != nil {
		browser.Close()
		return nil, err
	}
	l.logger.Debug("Launched chromium %s", browser.Version())
	return s, nil
}

// Close stops the Playwright driver.
func (l *Launcher) Close() error {
	if l.pw == nil {
		return nil
	}
	return l.pw.Stop()
}

var _ ports.SurfaceLauncher = (*Launcher)(nil)

// Surface is one Chromium process with a single context and page.
type Surface struct {
	browser playwright.Browser
	opts    ports.SurfaceOptions

	bctx   playwright.BrowserContext
	page   playwright.Page
	scale  float64
	width  int
	height int

	mu          sync.Mutex
	handlers    map[int]func(ports.PageEvent)
	nextHandler int

	closeOnce sync.Once
	closeErr  error
}

// openPage creates a fresh context at the current scale and wires page events.
func (s *Surface) openPage() error {
	ctxOpts := playwright.BrowserNewContextOptions{
		Viewport:          &playwright.Size{Width: s.width, Height: s.height},
		DeviceScaleFactor: playwright.Float(s.scale),
		IgnoreHttpsErrors: playwright.Bool(s.opts.IgnoreHTTPSErrors),
	}
	if s.opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(s.opts.UserAgent)
	}
	bctx, err := s.browser.NewContext(ctxOpts)
	if err != nil {
		return fmt.Errorf("new browser context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		return fmt.Errorf("new page: %w", err)
	}

	page.OnConsole(func(msg playwright.ConsoleMessage) {
		s.emit(ports.PageEvent{Kind: ports.EventConsole, Level: msg.Type(), Message: msg.Text(), Time: time.Now()})
	})
	page.OnPageError(func(err error) {
		s.emit(ports.PageEvent{Kind: ports.EventPageError, Message: err.Error(), Time: time.Now()})
	})
	page.OnCrash(func(playwright.Page) {
		s.emit(ports.PageEvent{Kind: ports.EventCrash, Message: "page crashed", Time: time.Now()})
	})

	s.bctx = bctx
	s.page = page
	return nil
}

// SetViewport resizes the page. The device scale factor is fixed per
// context, so a different scale recreates the context.
func (s *Surface) SetViewport(ctx context.Context, width, height int, deviceScaleFactor float64) error {
	s.width, s.height = width, height
	if deviceScaleFactor != s.scale {
		s.scale = deviceScaleFactor
		s.bctx.Close()
		return s.openPage()
	}
	if err := s.page.SetViewportSize(width, height); err != nil {
		return fmt.Errorf("set viewport size: %w", err)
	}
	return nil
}

// Navigate loads url and waits for the load event.
func (s *Surface) Navigate(ctx context.Context, url string) error {
	opts := playwright.PageGotoOptions{WaitUntil: playwright.WaitUntilStateLoad}
	if deadline, ok := ctx.Deadline(); ok {
		opts.Timeout = playwright.Float(float64(time.Until(deadline).Milliseconds()))
	}
	if _, err := s.page.Goto(url, opts); err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	return ctx.Err()
}

// Evaluate runs expression and decodes its value into out via JSON.
func (s *Surface) Evaluate(ctx context.Context, expression string, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	result, err := s.page.Evaluate(expression)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	if out == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode evaluate result: %w", err)
	}
	return json.Unmarshal(data, out)
}

// Screenshot captures opts.Clip.
func (s *Surface) Screenshot(ctx context.Context, opts ports.ScreenshotOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	shot := playwright.PageScreenshotOptions{
		Clip: &playwright.Rect{
			X:      opts.Clip.X,
			Y:      opts.Clip.Y,
			Width:  opts.Clip.Width,
			Height: opts.Clip.Height,
		},
		OmitBackground: playwright.Bool(opts.OmitBackground),
		Type:           playwright.ScreenshotTypePng,
	}
	if opts.Format == ports.FormatJPEG {
		shot.Type = playwright.ScreenshotTypeJpeg
		shot.Quality = playwright.Int(opts.Quality)
	}
	data, err := s.page.Screenshot(shot)
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

// Close shuts down the browser process.
func (s *Surface) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.browser.Close()
	})
	return s.closeErr
}

var _ ports.Surface = (*Surface)(nil)
