// Package stitch implements the video assembly stage.
package stitch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/user/framecast/pkg/metrics"
	"github.com/user/framecast/pkg/pipeline"
	"github.com/user/framecast/pkg/ports"
)

// concatListName is written next to the frames when a pattern cannot be used.
const concatListName = "frames.ffconcat"

// Stage assembles an ordered frame sequence into a video with one encoder invocation.
type Stage struct {
	validator *Validator
	encoder   ports.EncoderProcess
	fs        ports.FileSystem
	logger    ports.Logger
}

// NewStage creates a stitch stage. The validator must succeed before Execute.
func NewStage(validator *Validator, encoder ports.EncoderProcess, fs ports.FileSystem, logger ports.Logger) *Stage {
	return &Stage{
		validator: validator,
		encoder:   encoder,
		fs:        fs,
		logger:    logger.WithComponent("stitch"),
	}
}

// Execute verifies the frame set and runs the encoder.
func (s *Stage) Execute(ctx context.Context, input pipeline.StitchInput) (pipeline.StitchResult, error) {
	if !s.validator.Succeeded() {
		return pipeline.StitchResult{}, &pipeline.EncoderUnavailableError{}
	}
	if input.FPS <= 0 {
		return pipeline.StitchResult{}, &pipeline.StitchError{Reason: "frame rate must be positive"}
	}
	if input.OutputPath == "" {
		return pipeline.StitchResult{}, &pipeline.StitchError{Reason: "output path is required"}
	}

	frames, err := s.checkFrames(input)
	if err != nil {
		return pipeline.StitchResult{}, err
	}

	if input.AudioPath != "" {
		exists, err := s.fs.Exists(input.AudioPath)
		if err != nil {
			return pipeline.StitchResult{}, fmt.Errorf("check audio track: %w", err)
		}
		if !exists {
			return pipeline.StitchResult{}, &pipeline.StitchError{Reason: "audio track not found: " + input.AudioPath}
		}
	}

	source, usedConcat, err := s.frameSource(frames, input.FPS)
	if err != nil {
		return pipeline.StitchResult{}, err
	}
	if usedConcat {
		defer s.fs.Remove(source[len(source)-1])
	}

	if dir := filepath.Dir(input.OutputPath); dir != "." {
		if err := s.fs.MkdirAll(dir); err != nil {
			return pipeline.StitchResult{}, fmt.Errorf("create output directory: %w", err)
		}
	}

	args := BuildArgs(source, input)
	s.logger.Debug("Encoding %d frames at %s fps", len(frames), formatFPS(input.FPS))

	start := time.Now()
	result, err := s.encoder.Run(ctx, args)
	metrics.StitchSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EncoderInvocationsTotal.WithLabelValues(metrics.StatusError).Inc()
		if rmErr := s.fs.Remove(input.OutputPath); rmErr != nil {
			s.logger.Debug("No partial output to remove at %s", input.OutputPath)
		}
		return pipeline.StitchResult{}, &pipeline.EncoderProcessError{
			ExitCode: result.ExitCode,
			Stderr:   result.Stderr,
			Cause:    err,
		}
	}
	metrics.EncoderInvocationsTotal.WithLabelValues(metrics.StatusSuccess).Inc()

	s.logger.Debug("Video written to %s", input.OutputPath)
	return pipeline.StitchResult{
		OutputPath: input.OutputPath,
		FrameCount: len(frames),
		UsedConcat: usedConcat,
		DurationMs: int(float64(len(frames)) * 1000 / input.FPS),
	}, nil
}

// checkFrames sorts frames and rejects gaps, duplicates and missing files.
func (s *Stage) checkFrames(input pipeline.StitchInput) ([]pipeline.CapturedFrame, error) {
	if len(input.Frames) == 0 {
		return nil, &pipeline.StitchError{Reason: "no frames"}
	}
	total := input.Total
	if total <= 0 {
		total = len(input.Frames)
	}

	frames := make([]pipeline.CapturedFrame, len(input.Frames))
	copy(frames, input.Frames)
	sort.SliceStable(frames, func(i, j int) bool { return frames[i].Index < frames[j].Index })

	var duplicates, outOfRange []pipeline.FrameIndex
	seen := make(map[pipeline.FrameIndex]bool, len(frames))
	for _, f := range frames {
		if f.Index < 0 || f.Index >= total {
			outOfRange = append(outOfRange, f.Index)
			continue
		}
		if seen[f.Index] {
			duplicates = append(duplicates, f.Index)
		}
		seen[f.Index] = true
	}
	if len(outOfRange) > 0 {
		return nil, &pipeline.StitchError{Reason: fmt.Sprintf("frames outside [0,%d)", total), Frames: outOfRange}
	}
	if len(duplicates) > 0 {
		return nil, &pipeline.StitchError{Reason: "duplicate frames", Frames: duplicates}
	}

	var gaps []pipeline.FrameIndex
	for i := 0; i < total; i++ {
		if !seen[i] {
			gaps = append(gaps, i)
		}
	}
	if len(gaps) > 0 {
		return nil, &pipeline.StitchError{Reason: "missing frames", Frames: gaps}
	}

	var missing []pipeline.FrameIndex
	for _, f := range frames {
		exists, err := s.fs.Exists(f.Path)
		if err != nil {
			return nil, fmt.Errorf("check frame %d: %w", f.Index, err)
		}
		if !exists {
			missing = append(missing, f.Index)
		}
	}
	if len(missing) > 0 {
		return nil, &pipeline.StitchError{Reason: "frame files not found", Frames: missing}
	}

	return frames, nil
}

// frameSource returns the encoder input arguments for the frames. A
// sequence pattern is used when every path follows the deterministic
// naming scheme; otherwise an ffconcat list is written and its path is
// the last element.
func (s *Stage) frameSource(frames []pipeline.CapturedFrame, fps float64) ([]string, bool, error) {
	if dir, format, ok := patternOf(frames); ok {
		pattern := filepath.Join(dir, "%d."+format.Extension())
		return []string{"-framerate", formatFPS(fps), "-start_number", "0", "-i", pattern}, false, nil
	}

	dir := filepath.Dir(frames[0].Path)
	listPath := filepath.Join(dir, concatListName)
	if err := s.fs.WriteFile(listPath, []byte(ConcatList(frames, fps))); err != nil {
		return nil, false, fmt.Errorf("write concat list: %w", err)
	}
	s.logger.Debug("Frame paths do not follow a pattern, using %s", listPath)
	return []string{"-f", "concat", "-safe", "0", "-i", listPath}, true, nil
}

// patternOf reports whether frames share a directory and format and are
// named {index}.{ext}.
func patternOf(frames []pipeline.CapturedFrame) (string, ports.ImageFormat, bool) {
	dir := filepath.Dir(frames[0].Path)
	format := frames[0].Format
	if !format.Valid() {
		return "", "", false
	}
	for _, f := range frames {
		if f.Format != format || f.Path != pipeline.FramePath(dir, f.Index, format) {
			return "", "", false
		}
	}
	return dir, format, true
}

// ConcatList renders an ffconcat script for frames in order. The last
// file is repeated so its duration is honored.
func ConcatList(frames []pipeline.CapturedFrame, fps float64) string {
	duration := strconv.FormatFloat(1/fps, 'f', 6, 64)
	var b strings.Builder
	b.WriteString("ffconcat version 1.0\n")
	for _, f := range frames {
		fmt.Fprintf(&b, "file '%s'\nduration %s\n", escapeConcatPath(f.Path), duration)
	}
	if len(frames) > 0 {
		fmt.Fprintf(&b, "file '%s'\n", escapeConcatPath(frames[len(frames)-1].Path))
	}
	return b.String()
}

func escapeConcatPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return strings.ReplaceAll(p, "'", `'\''`)
}

// BuildArgs assembles the encoder command line. The video stream is capped
// at len(input.Frames) so files past the set in the frames directory are
// never read.
func BuildArgs(source []string, input pipeline.StitchInput) []string {
	defaults := pipeline.DefaultStitchInput()
	codec := valueOr(input.Codec, defaults.Codec)
	pixFmt := valueOr(input.PixelFormat, defaults.PixelFormat)
	audioCodec := valueOr(input.AudioCodec, defaults.AudioCodec)

	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	args = append(args, source...)
	if input.AudioPath != "" {
		args = append(args, "-i", input.AudioPath)
	}
	if n := len(input.Frames); n > 0 {
		args = append(args, "-frames:v", strconv.Itoa(n))
	}
	args = append(args, "-c:v", codec)
	if input.CRF >= 0 {
		args = append(args, "-crf", strconv.Itoa(input.CRF))
	}
	args = append(args, "-pix_fmt", pixFmt, "-r", formatFPS(input.FPS))
	if input.AudioPath != "" {
		args = append(args, "-c:a", audioCodec, "-shortest")
	}
	return append(args, input.OutputPath)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func formatFPS(fps float64) string {
	return strconv.FormatFloat(fps, 'f', -1, 64)
}
