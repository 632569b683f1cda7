// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
	"time"
)

// Surface is one isolated rendering surface (a headless browser instance).
// A Surface is not safe for concurrent use; callers serialize access.
type Surface interface {
	// SetViewport sets the viewport size in CSS pixels and the device scale factor.
	SetViewport(ctx context.Context, width, height int, deviceScaleFactor float64) error

	// Navigate loads the specified URL.
	Navigate(ctx context.Context, url string) error

	// Evaluate runs a script expression in the page and decodes its JSON
	// result into out. out may be nil when the result is not needed.
	Evaluate(ctx context.Context, expression string, out interface{}) error

	// Screenshot captures the given region of the page as an encoded image.
	Screenshot(ctx context.Context, opts ScreenshotOptions) ([]byte, error)

	// Subscribe registers fn for page events and returns a function that
	// removes the subscription.
	Subscribe(fn func(PageEvent)) (unsubscribe func())

	// Close shuts down the surface and its browser process.
	Close() error
}

// SurfaceLauncher starts isolated surfaces.
type SurfaceLauncher interface {
	// Launch starts one surface. Each call yields a separate browser process.
	Launch(ctx context.Context) (Surface, error)
}

// SurfaceOptions configures how surfaces are launched.
type SurfaceOptions struct {
	Headless          bool
	ChromePath        string
	UserAgent         string
	IgnoreHTTPSErrors bool     // Ignore HTTPS certificate errors
	ProxyServer       string   // HTTP proxy server (e.g., "http://proxy:8080")
	ExtraFlags        []string // Additional browser flags in "name" or "name=value" form
	LaunchTimeout     time.Duration
}

// Rect is a region of the page in CSS pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ScreenshotOptions configures a capture.
type ScreenshotOptions struct {
	Clip           Rect
	Format         ImageFormat
	Quality        int  // JPEG quality (0-100), ignored for PNG
	OmitBackground bool // Render with a transparent default background
}

// PageEventKind classifies a page event.
type PageEventKind string

const (
	// EventConsole is a console API call (console.log, console.warn, ...).
	EventConsole PageEventKind = "console"
	// EventPageError is an uncaught exception thrown in the page.
	EventPageError PageEventKind = "pageerror"
	// EventCrash means the page or browser process crashed.
	EventCrash PageEventKind = "crash"
)

// PageEvent is a single event emitted by a page.
type PageEvent struct {
	Kind    PageEventKind `json:"kind"`
	Level   string        `json:"level,omitempty"` // console level (log, warning, error, ...)
	Message string        `json:"message"`
	Time    time.Time     `json:"time"`
}

// IsError reports whether the event indicates a failure in the page.
func (e PageEvent) IsError() bool {
	switch e.Kind {
	case EventPageError, EventCrash:
		return true
	case EventConsole:
		return e.Level == "error"
	}
	return false
}

// EventObserver consumes page events from pool workers.
type EventObserver interface {
	ObservePageEvent(workerID int, frame int, event PageEvent)
}
