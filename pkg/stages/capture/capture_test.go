package capture

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/user/framecast/pkg/adapters/logger"
	"github.com/user/framecast/pkg/mocks"
	"github.com/user/framecast/pkg/pipeline"
	"github.com/user/framecast/pkg/ports"
)

func testJob(index int) pipeline.FrameJob {
	return pipeline.FrameJob{
		Index: index,
		Composition: pipeline.Composition{
			ID: "intro", URL: "http://localhost:3000/", Width: 640, Height: 360, FPS: 30, DurationInFrames: 10,
		},
	}
}

func newTestRenderer(fs *mocks.FileSystem, settings pipeline.CaptureSettings) *Renderer {
	r := New(fs, logger.NewNoop(), settings)
	r.sleep = func(ctx context.Context, d time.Duration) error {
		return ctx.Err()
	}
	return r
}

func TestRenderer_CaptureFrame(t *testing.T) {
	fs := mocks.NewFileSystem()
	settings := pipeline.DefaultCaptureSettings()
	settings.Dir = "frames"
	r := newTestRenderer(fs, settings)

	surface := &mocks.Surface{EvaluateFunc: mocks.ReadyPage(640, 360)}

	frame, err := r.CaptureFrame(context.Background(), surface, testJob(4))
	if err != nil {
		t.Fatalf("CaptureFrame error: %v", err)
	}

	wantPath := filepath.Join("frames", "4.png")
	if frame.Path != wantPath || frame.Index != 4 || frame.Format != ports.FormatPNG {
		t.Errorf("frame = %+v, want path %s", frame, wantPath)
	}
	if _, ok := fs.GetFile(wantPath); !ok {
		t.Error("frame file was not written")
	}
	if len(fs.GetAllFiles()) != 1 {
		t.Errorf("expected only the final file, got %v", fs.GetAllFiles())
	}

	if len(surface.Viewports) != 1 || surface.Viewports[0] != (mocks.ViewportCall{Width: 640, Height: 360, Scale: 1}) {
		t.Errorf("viewport calls = %+v", surface.Viewports)
	}
	if len(surface.NavigateURLs) != 1 || !strings.Contains(surface.NavigateURLs[0], "frame=4") ||
		!strings.Contains(surface.NavigateURLs[0], "composition=intro") {
		t.Errorf("navigate URLs = %v", surface.NavigateURLs)
	}

	if len(surface.Screenshots) != 1 {
		t.Fatalf("screenshots = %d, want 1", len(surface.Screenshots))
	}
	shot := surface.Screenshots[0]
	if !shot.OmitBackground || shot.Clip.Width != 640 || shot.Clip.Height != 360 {
		t.Errorf("screenshot options = %+v", shot)
	}

	// Background is forced transparent before the screenshot.
	foundBackground := false
	for _, expr := range surface.Expressions {
		if strings.Contains(expr, "transparent") {
			foundBackground = true
		}
	}
	if !foundBackground {
		t.Error("transparent background was not set")
	}

	if surface.Subscribers() != 0 {
		t.Errorf("subscription leaked: %d subscribers", surface.Subscribers())
	}
}

func TestRenderer_JPEGQuality(t *testing.T) {
	fs := mocks.NewFileSystem()
	settings := pipeline.DefaultCaptureSettings()
	settings.Format = ports.FormatJPEG
	settings.Quality = 65
	r := newTestRenderer(fs, settings)

	surface := &mocks.Surface{EvaluateFunc: mocks.ReadyPage(10, 10)}
	frame, err := r.CaptureFrame(context.Background(), surface, testJob(0))
	if err != nil {
		t.Fatal(err)
	}
	if frame.Quality != 65 || surface.Screenshots[0].Quality != 65 {
		t.Errorf("quality = %d / %d, want 65", frame.Quality, surface.Screenshots[0].Quality)
	}
	if !strings.HasSuffix(frame.Path, "0.jpeg") {
		t.Errorf("path = %s", frame.Path)
	}
}

func TestRenderer_ReadinessPolling(t *testing.T) {
	fs := mocks.NewFileSystem()
	r := newTestRenderer(fs, pipeline.DefaultCaptureSettings())

	var slept []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	polls := 0
	ready := mocks.ReadyPage(10, 10)
	surface := &mocks.Surface{EvaluateFunc: func(ctx context.Context, expr string) (interface{}, error) {
		if expr == "window.ready === true" {
			polls++
			return polls > 6, nil
		}
		return ready(ctx, expr)
	}}

	if _, err := r.CaptureFrame(context.Background(), surface, testJob(1)); err != nil {
		t.Fatalf("CaptureFrame error: %v", err)
	}

	want := []time.Duration{10, 20, 40, 80, 160, 250}
	if len(slept) != len(want) {
		t.Fatalf("slept %v, want %d intervals", slept, len(want))
	}
	for i, d := range want {
		if slept[i] != d*time.Millisecond {
			t.Errorf("interval %d = %v, want %v", i, slept[i], d*time.Millisecond)
		}
	}
}

func TestRenderer_ReadinessTimeout(t *testing.T) {
	fs := mocks.NewFileSystem()
	settings := pipeline.DefaultCaptureSettings()
	settings.ReadyTimeoutMs = 20
	r := newTestRenderer(fs, settings)
	r.sleep = sleepContext

	surface := &mocks.Surface{
		EvaluateFunc: func(ctx context.Context, expr string) (interface{}, error) { return false, nil },
	}
	surface.NavigateFunc = func(ctx context.Context, url string) error {
		surface.Emit(ports.PageEvent{Kind: ports.EventPageError, Message: "ReferenceError: foo is not defined"})
		return nil
	}

	_, err := r.CaptureFrame(context.Background(), surface, testJob(1))
	var timeout *pipeline.ReadinessTimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("error = %v, want ReadinessTimeoutError", err)
	}
	if timeout.Frame != 1 {
		t.Errorf("Frame = %d, want 1", timeout.Frame)
	}
	if len(timeout.PageErrors) != 1 || !strings.Contains(timeout.PageErrors[0], "ReferenceError") {
		t.Errorf("PageErrors = %v", timeout.PageErrors)
	}
	if len(fs.GetAllFiles()) != 0 {
		t.Errorf("files left on failure: %v", fs.GetAllFiles())
	}
}

func TestRenderer_ContextCanceledDuringWait(t *testing.T) {
	r := newTestRenderer(mocks.NewFileSystem(), pipeline.DefaultCaptureSettings())
	ctx, cancel := context.WithCancel(context.Background())
	surface := &mocks.Surface{
		EvaluateFunc: func(context.Context, string) (interface{}, error) {
			cancel()
			return false, nil
		},
	}

	_, err := r.CaptureFrame(ctx, surface, testJob(0))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	var timeout *pipeline.ReadinessTimeoutError
	if errors.As(err, &timeout) {
		t.Error("cancellation should not be reported as a readiness timeout")
	}
}

func TestRenderer_ElementNotFound(t *testing.T) {
	fs := mocks.NewFileSystem()
	r := newTestRenderer(fs, pipeline.DefaultCaptureSettings())

	surface := &mocks.Surface{EvaluateFunc: func(ctx context.Context, expr string) (interface{}, error) {
		if strings.Contains(expr, "getBoundingClientRect") {
			return map[string]interface{}{"found": false}, nil
		}
		return true, nil
	}}

	_, err := r.CaptureFrame(context.Background(), surface, testJob(2))
	var notFound *pipeline.ElementNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want ElementNotFoundError", err)
	}
	if notFound.Selector != "#canvas" || notFound.Frame != 2 {
		t.Errorf("error = %+v", notFound)
	}
	if len(surface.Screenshots) != 0 {
		t.Error("screenshot should not be taken when the element is missing")
	}
}

func TestRenderer_ScreenshotFailure(t *testing.T) {
	fs := mocks.NewFileSystem()
	r := newTestRenderer(fs, pipeline.DefaultCaptureSettings())

	surface := &mocks.Surface{
		EvaluateFunc: mocks.ReadyPage(10, 10),
		ScreenshotFunc: func(ctx context.Context, opts ports.ScreenshotOptions) ([]byte, error) {
			return nil, errors.New("target crashed")
		},
	}

	_, err := r.CaptureFrame(context.Background(), surface, testJob(3))
	var renderErr *pipeline.FrameRenderError
	if !errors.As(err, &renderErr) || renderErr.Step != "screenshot" {
		t.Fatalf("error = %v, want FrameRenderError at screenshot", err)
	}
	if len(fs.GetAllFiles()) != 0 {
		t.Errorf("files left on failure: %v", fs.GetAllFiles())
	}
}

func TestRenderer_RenameFailureRemovesTemp(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.RenameFunc = func(oldPath, newPath string) error { return errors.New("disk full") }
	r := newTestRenderer(fs, pipeline.DefaultCaptureSettings())

	surface := &mocks.Surface{EvaluateFunc: mocks.ReadyPage(10, 10)}
	_, err := r.CaptureFrame(context.Background(), surface, testJob(5))
	if !errors.Is(err, pipeline.ErrFrameRender) {
		t.Fatalf("error = %v, want ErrFrameRender", err)
	}
	if len(fs.GetAllFiles()) != 0 {
		t.Errorf("temp file left on failure: %v", fs.GetAllFiles())
	}
}

func TestRenderer_Idempotent(t *testing.T) {
	fs := mocks.NewFileSystem()
	r := newTestRenderer(fs, pipeline.DefaultCaptureSettings())
	shot := func(ctx context.Context, opts ports.ScreenshotOptions) ([]byte, error) {
		return []byte("frame-7-pixels"), nil
	}

	first := &mocks.Surface{EvaluateFunc: mocks.ReadyPage(10, 10), ScreenshotFunc: shot}
	f1, err := r.CaptureFrame(context.Background(), first, testJob(7))
	if err != nil {
		t.Fatal(err)
	}
	data1, _ := fs.GetFile(f1.Path)

	second := &mocks.Surface{EvaluateFunc: mocks.ReadyPage(10, 10), ScreenshotFunc: shot}
	f2, err := r.CaptureFrame(context.Background(), second, testJob(7))
	if err != nil {
		t.Fatal(err)
	}
	data2, _ := fs.GetFile(f2.Path)

	if f1.Path != f2.Path || string(data1) != string(data2) {
		t.Errorf("recapture differs: %s=%q vs %s=%q", f1.Path, data1, f2.Path, data2)
	}
}

func TestNew_Defaults(t *testing.T) {
	r := New(mocks.NewFileSystem(), logger.NewNoop(), pipeline.CaptureSettings{Dir: "out"})
	s := r.Settings()
	if s.Selector != "#canvas" || s.ReadyExpression != "window.ready === true" || s.ReadyTimeoutMs != 30000 || s.Format != ports.FormatPNG {
		t.Errorf("Settings = %+v", s)
	}
}

func TestRectScript_QuotesSelector(t *testing.T) {
	script := rectScript(`div[data-id="a"]`)
	if !strings.Contains(script, `"div[data-id=\"a\"]"`) {
		t.Errorf("selector not quoted: %s", script)
	}
}
