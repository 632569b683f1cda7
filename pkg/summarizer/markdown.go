package summarizer

import (
	"fmt"
	"strconv"
	"strings"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate labels.
func WithTranslator(fn func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = fn
	}
}

// WithVersion sets the framecast version shown in the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		translate: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements the Formatter interface.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Render Summary"))

	status := t("Succeeded")
	if s.Err != nil {
		status = t("Failed")
	}
	f.table(&b, [][2]string{
		{t("Composition"), s.Composition.ID},
		{t("URL"), s.Composition.URL},
		{t("Run ID"), s.RunID},
		{t("Status"), status},
	})

	fmt.Fprintf(&b, "## %s\n\n", t("Composition"))
	f.table(&b, [][2]string{
		{t("Size"), fmt.Sprintf("%dx%d", s.Composition.Width, s.Composition.Height)},
		{t("Frame Rate"), strconv.FormatFloat(s.Composition.FPS, 'g', -1, 64) + " fps"},
		{t("Frames"), strconv.Itoa(s.Composition.DurationInFrames)},
	})

	fmt.Fprintf(&b, "## %s\n\n", t("Capture"))
	capture := [][2]string{
		{t("Concurrency"), strconv.Itoa(s.Capture.Concurrency)},
		{t("Captured"), strconv.Itoa(s.Capture.Captured)},
	}
	if s.Capture.Resumed > 0 {
		capture = append(capture, [2]string{t("Resumed"), strconv.Itoa(s.Capture.Resumed)})
	}
	capture = append(capture,
		[2]string{t("Capture Time"), fmt.Sprintf("%d ms", s.Capture.CaptureMs)},
		[2]string{t("Stitch Time"), fmt.Sprintf("%d ms", s.Capture.StitchMs)},
	)
	f.table(&b, capture)

	if len(s.Capture.FailedFrames) > 0 || s.Err != nil {
		fmt.Fprintf(&b, "## %s\n\n", t("Failures"))
		if len(s.Capture.FailedFrames) > 0 {
			fmt.Fprintf(&b, "- %s: %s\n", t("Failed Frames"), joinInts(s.Capture.FailedFrames))
		}
		if s.Err != nil {
			fmt.Fprintf(&b, "- %s: `%s`\n", t("Error"), s.Err.Error())
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
	settings := [][2]string{}
	if s.Settings.Quality != "" {
		settings = append(settings, [2]string{t("Quality"), s.Settings.Quality})
	}
	if s.Settings.Browser != "" {
		settings = append(settings, [2]string{t("Browser"), s.Settings.Browser})
	}
	frameFormat := s.Settings.FrameFormat
	if frameFormat == "jpeg" {
		frameFormat = fmt.Sprintf("jpeg (q=%d)", s.Settings.FrameQuality)
	}
	settings = append(settings,
		[2]string{t("Frame Format"), frameFormat},
		[2]string{t("Codec"), s.Settings.Codec},
		[2]string{t("Pixel Format"), s.Settings.PixelFormat},
		[2]string{"CRF", strconv.Itoa(s.Settings.CRF)},
		[2]string{t("Retries"), strconv.Itoa(s.Settings.MaxRetries)},
		[2]string{t("Failure Policy"), s.Settings.FailurePolicy},
	)
	f.table(&b, settings)

	if s.Err == nil {
		fmt.Fprintf(&b, "## %s\n\n", t("Video"))
		video := [][2]string{
			{t("Output"), s.Video.OutputPath},
			{t("Frames"), strconv.Itoa(s.Video.FrameCount)},
			{t("Duration"), fmt.Sprintf("%d ms", s.Video.DurationMs)},
		}
		if s.Video.FileSize > 0 {
			video = append(video, [2]string{t("File Size"), formatBytes(s.Video.FileSize)})
		}
		if s.Video.Codec != "" {
			video = append(video,
				[2]string{t("Container Size"), fmt.Sprintf("%dx%d", s.Video.Width, s.Video.Height)},
				[2]string{t("Container Codec"), s.Video.Codec},
				[2]string{t("Samples"), strconv.Itoa(s.Video.SampleCount)},
			)
		}
		if s.Video.Location != "" {
			video = append(video, [2]string{t("Published"), s.Video.Location})
		}
		f.table(&b, video)
	}

	footer := fmt.Sprintf("%s %s", t("Generated at"), s.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if f.version != "" {
		footer += fmt.Sprintf(" · framecast %s", f.version)
	}
	fmt.Fprintf(&b, "---\n\n_%s_\n", footer)

	return b.String()
}

func (f *MarkdownFormatter) table(b *strings.Builder, rows [][2]string) {
	fmt.Fprintf(b, "| %s | %s |\n|---|---|\n", f.translate("Item"), f.translate("Value"))
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", r[0], escapeCell(r[1]))
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

// formatBytes formats a byte count with binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMG"[exp])
}
