package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/user/framecast/pkg/adapters/chromebrowser"
	"github.com/user/framecast/pkg/adapters/ffmpeg"
	"github.com/user/framecast/pkg/adapters/mp4probe"
	"github.com/user/framecast/pkg/config"
)

// parseRender runs the render command's flag parsing and returns the
// resulting configuration.
func parseRender(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	cmd := renderCommand()
	var cfg config.Config
	var buildErr error
	cmd.Action = func(c *cli.Context) error {
		cfg, buildErr = buildConfig(c)
		return nil
	}
	app := &cli.App{Name: "framecast", Commands: []*cli.Command{cmd}}
	if err := app.Run(append([]string{"framecast", "render"}, args...)); err != nil {
		t.Fatalf("failed to run app: %v", err)
	}
	return cfg, buildErr
}

func TestBuildConfig_Flags(t *testing.T) {
	cfg, err := parseRender(t,
		"-o", "out/intro.mp4",
		"--size", "square",
		"--fps", "24",
		"--frames", "48",
		"--quality", "low",
		"--crf", "30",
		"-j", "3",
		"--retries", "2",
		"--failure-policy", "complete-then-fail",
		"--no-headless",
		"http://localhost:3000/",
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Composition.URL != "http://localhost:3000/" {
		t.Errorf("expected URL from argument, got %q", cfg.Composition.URL)
	}
	if cfg.Composition.Width != 1080 || cfg.Composition.Height != 1080 {
		t.Errorf("expected 1080x1080, got %dx%d", cfg.Composition.Width, cfg.Composition.Height)
	}
	if cfg.Composition.FPS != 24 || cfg.Composition.DurationInFrames != 48 {
		t.Errorf("unexpected timing %g fps, %d frames", cfg.Composition.FPS, cfg.Composition.DurationInFrames)
	}
	// --crf overrides the preset, the preset still selects jpeg frames.
	if cfg.Encoder.CRF != 30 {
		t.Errorf("expected CRF 30, got %d", cfg.Encoder.CRF)
	}
	if cfg.Capture.Format != "jpeg" {
		t.Errorf("expected jpeg frames from low preset, got %s", cfg.Capture.Format)
	}
	if cfg.Pool.Concurrency != 3 || cfg.Capture.MaxRetries != 2 {
		t.Errorf("unexpected pool settings %d/%d", cfg.Pool.Concurrency, cfg.Capture.MaxRetries)
	}
	if cfg.Capture.FailurePolicy != "complete-then-fail" {
		t.Errorf("unexpected policy %s", cfg.Capture.FailurePolicy)
	}
	if cfg.Browser.Headless {
		t.Error("expected visible browser")
	}
}

func TestBuildConfig_FileWithOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "framecast.yaml")
	data := `
composition:
  id: intro
  url: http://localhost:3000/
  width: 640
  height: 360
  fps: 30
  duration_in_frames: 90
pool:
  concurrency: 2
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := parseRender(t, "-c", path, "--width", "800", "--resume")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Composition.Width != 800 || cfg.Composition.Height != 360 {
		t.Errorf("expected 800x360, got %dx%d", cfg.Composition.Width, cfg.Composition.Height)
	}
	if cfg.Pool.Concurrency != 2 {
		t.Errorf("expected concurrency from file, got %d", cfg.Pool.Concurrency)
	}
	if !cfg.Ledger.Enabled || !cfg.Ledger.Resume {
		t.Error("expected resume enabled")
	}
}

func TestBuildConfig_RedisLedger(t *testing.T) {
	cfg, err := parseRender(t, "--frames", "10", "--resume", "--ledger-redis", "localhost:6379", "http://localhost/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Ledger.Backend != config.LedgerRedis || cfg.Ledger.RedisAddr != "localhost:6379" {
		t.Errorf("ledger = %+v, want redis at localhost:6379", cfg.Ledger)
	}
}

func TestBuildConfig_Invalid(t *testing.T) {
	if _, err := parseRender(t, "--frames", "10"); err == nil {
		t.Error("expected error without a URL")
	}
	if _, err := parseRender(t, "--size", "cinema", "--frames", "10", "http://localhost/"); err == nil {
		t.Error("expected error for unknown size preset")
	}
	if _, err := parseRender(t, "--quality", "ultra", "--frames", "10", "http://localhost/"); err == nil {
		t.Error("expected error for unknown quality preset")
	}
}

const testComposition = `<!doctype html>
<html><body style="margin:0">
<div id="canvas" style="width:160px;height:90px;background:#223"></div>
<script>
const frame = Number(new URLSearchParams(location.search).get("frame"));
const el = document.getElementById("canvas");
el.style.background = "hsl(" + (frame * 30) + ",70%,50%)";
el.textContent = frame;
requestAnimationFrame(() => { window.ready = true; });
</script>
</body></html>`

// TestRender_EndToEnd renders a small composition with a real browser and
// ffmpeg.
func TestRender_EndToEnd(t *testing.T) {
	if os.Getenv("FRAMECAST_E2E") != "1" {
		t.Skip("Skipping E2E test (set FRAMECAST_E2E=1 to run)")
	}
	if chromebrowser.ResolveChromePath("") == "" {
		t.Skip("Chrome not found")
	}
	if _, err := ffmpeg.FindFFmpeg(""); err != nil {
		t.Skip("ffmpeg not found")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, testComposition)
	}))
	defer srv.Close()

	dir := t.TempDir()
	output := filepath.Join(dir, "out.mp4")
	summary := filepath.Join(dir, "summary.md")

	err := newApp().Run([]string{
		"framecast", "render",
		"-o", output,
		"--width", "160", "--height", "90",
		"--frames", "6", "--fps", "12",
		"-j", "2",
		"--frames-dir", filepath.Join(dir, "frames"),
		"--summary", summary,
		"--quiet",
		srv.URL + "/",
	})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	info, err := mp4probe.New().Inspect(output)
	if err != nil {
		t.Fatalf("failed to inspect output: %v", err)
	}
	if info.FrameCount != 6 {
		t.Errorf("expected 6 frames, got %d", info.FrameCount)
	}
	if info.Width != 160 || info.Height != 90 {
		t.Errorf("expected 160x90, got %dx%d", info.Width, info.Height)
	}
	if _, err := os.Stat(summary); err != nil {
		t.Errorf("expected summary file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "frames", "0.png")); !os.IsNotExist(err) {
		t.Error("expected frames removed after stitching")
	}
}

func TestMetricsRouter(t *testing.T) {
	srv := httptest.NewServer(metricsRouter())
	defer srv.Close()

	for _, path := range []string{"/healthz", "/metrics"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, resp.StatusCode)
		}
	}

	resp, err := http.Post(srv.URL+"/healthz", "text/plain", nil)
	if err != nil {
		t.Fatalf("POST /healthz failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST /healthz = %d, want 405", resp.StatusCode)
	}
}
