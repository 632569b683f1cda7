package summarizer

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		RunID:       "6f1c",
		Composition: CompositionInfo{
			ID: "intro", URL: "http://localhost:3000/", Width: 1280, Height: 720, FPS: 29.97, DurationInFrames: 90,
		},
		Capture: CaptureInfo{
			Concurrency: 4,
			Captured:    90,
			CaptureMs:   4200,
			StitchMs:    800,
		},
		Settings: Settings{
			Quality:       "medium",
			Browser:       "chromedp",
			FrameFormat:   "jpeg",
			FrameQuality:  85,
			Codec:         "libx264",
			PixelFormat:   "yuv420p",
			CRF:           18,
			MaxRetries:    1,
			FailurePolicy: "fail-fast",
		},
		Video: VideoInfo{
			OutputPath:  "out/intro.mp4",
			FrameCount:  90,
			DurationMs:  3003,
			FileSize:    1024 * 1024,
			Width:       1280,
			Height:      720,
			Codec:       "avc1",
			SampleCount: 90,
		},
	}
}

func TestMarkdownFormatter_Format_Basic(t *testing.T) {
	result := NewMarkdownFormatter().Format(testSummary())

	checks := []string{
		"# Render Summary",
		"intro",
		"http://localhost:3000/",
		"Succeeded",
		"1280x720",
		"29.97 fps",
		"4200 ms",
		"jpeg (q=85)",
		"libx264",
		"1.00 MB",
		"avc1",
		"out/intro.mp4",
		"2024-01-15 10:30:00 UTC",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}
	if strings.Contains(result, "Failures") {
		t.Error("expected no failures section")
	}
	if strings.Contains(result, "Resumed") {
		t.Error("expected no resumed row without resumed frames")
	}
}

func TestMarkdownFormatter_Format_Failed(t *testing.T) {
	s := testSummary()
	s.Capture.FailedFrames = []int{4, 17}
	s.Err = errors.New("render run aborted: 2 frames failed")

	result := NewMarkdownFormatter().Format(s)

	for _, check := range []string{"Failed", "## Failures", "4, 17", "`render run aborted: 2 frames failed`"} {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q", check)
		}
	}
	if strings.Contains(result, "## Video") {
		t.Error("expected no video section for a failed run")
	}
}

func TestMarkdownFormatter_Format_PNGHidesQuality(t *testing.T) {
	s := testSummary()
	s.Settings.FrameFormat = "png"

	result := NewMarkdownFormatter().Format(s)
	if strings.Contains(result, "q=") {
		t.Error("expected no quality for png frames")
	}
}

func TestMarkdownFormatter_EscapesPipes(t *testing.T) {
	s := testSummary()
	s.Composition.URL = "http://localhost:3000/?a=b|c"

	result := NewMarkdownFormatter().Format(s)
	if !strings.Contains(result, `b\|c`) {
		t.Error("expected pipe escaped in table cell")
	}
}

func TestMarkdownFormatter_WithTranslator(t *testing.T) {
	translator := func(key string) string {
		translations := map[string]string{
			"Render Summary": "レンダリングサマリー",
			"Composition":    "コンポジション",
			"Failed":         "失敗",
		}
		if v, ok := translations[key]; ok {
			return v
		}
		return key
	}

	s := testSummary()
	s.Err = errors.New("boom")
	result := NewMarkdownFormatter(WithTranslator(translator)).Format(s)

	for _, check := range []string{"レンダリングサマリー", "コンポジション", "失敗"} {
		if !strings.Contains(result, check) {
			t.Errorf("expected translated %q", check)
		}
	}
}

func TestMarkdownFormatter_WithVersion(t *testing.T) {
	result := NewMarkdownFormatter(WithVersion("v1.2.0")).Format(testSummary())

	if !strings.Contains(result, "v1.2.0") {
		t.Error("expected output to contain version 'v1.2.0'")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{100, "100 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
		{1024 * 1024 * 1024, "1.00 GB"},
		{1536 * 1024 * 1024, "1.50 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := formatBytes(tt.bytes)
			if got != tt.want {
				t.Errorf("formatBytes(%d) = %q, want %q", tt.bytes, got, tt.want)
			}
		})
	}
}
