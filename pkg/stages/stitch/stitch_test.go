package stitch

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user/framecast/pkg/adapters/logger"
	"github.com/user/framecast/pkg/mocks"
	"github.com/user/framecast/pkg/pipeline"
	"github.com/user/framecast/pkg/ports"
)

func writeFrames(fs *mocks.FileSystem, dir string, indices ...int) []pipeline.CapturedFrame {
	frames := make([]pipeline.CapturedFrame, 0, len(indices))
	for _, i := range indices {
		path := pipeline.FramePath(dir, i, ports.FormatPNG)
		fs.WriteFile(path, []byte("png"))
		frames = append(frames, pipeline.CapturedFrame{Index: i, Path: path, Format: ports.FormatPNG})
	}
	return frames
}

func newValidatedStage(t *testing.T, enc *mocks.EncoderProcess, fs *mocks.FileSystem) *Stage {
	t.Helper()
	v := NewValidator(enc, logger.NewNoop())
	if err := v.Validate(context.Background()); err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	return NewStage(v, enc, fs, logger.NewNoop())
}

func stitchInput(frames []pipeline.CapturedFrame, total int) pipeline.StitchInput {
	input := pipeline.DefaultStitchInput()
	input.Frames = frames
	input.Total = total
	input.OutputPath = filepath.Join("out", "video.mp4")
	input.FPS = 30
	return input
}

func indexOf(args []string, v string) int {
	for i, a := range args {
		if a == v {
			return i
		}
	}
	return -1
}

func TestStage_ExecuteOrdersFrames(t *testing.T) {
	fs := mocks.NewFileSystem()
	enc := &mocks.EncoderProcess{}
	stage := newValidatedStage(t, enc, fs)

	// Capture completion order is arbitrary.
	frames := writeFrames(fs, "frames", 2, 0, 1)

	result, err := stage.Execute(context.Background(), stitchInput(frames, 3))
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if result.FrameCount != 3 || result.UsedConcat {
		t.Errorf("result = %+v", result)
	}

	if enc.Runs() != 1 {
		t.Fatalf("encoder runs = %d, want 1", enc.Runs())
	}
	args := enc.RunCalls[0]
	i := indexOf(args, "-i")
	if i < 0 || args[i+1] != filepath.Join("frames", "%d.png") {
		t.Errorf("input pattern missing: %v", args)
	}
	if j := indexOf(args, "-start_number"); j < 0 || args[j+1] != "0" {
		t.Errorf("start number missing: %v", args)
	}
	if j := indexOf(args, "-framerate"); j < 0 || args[j+1] != "30" {
		t.Errorf("framerate missing: %v", args)
	}
	if args[len(args)-1] != filepath.Join("out", "video.mp4") {
		t.Errorf("output not last: %v", args)
	}
}

func TestStage_ExecuteIgnoresLeftoverFrames(t *testing.T) {
	fs := mocks.NewFileSystem()
	enc := &mocks.EncoderProcess{}
	stage := newValidatedStage(t, enc, fs)

	frames := writeFrames(fs, "frames", 0, 1, 2)
	// Files left behind by an earlier, longer run.
	writeFrames(fs, "frames", 3, 4)

	if _, err := stage.Execute(context.Background(), stitchInput(frames, 3)); err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	args := enc.RunCalls[0]
	j := indexOf(args, "-frames:v")
	if j < 0 || args[j+1] != "3" {
		t.Fatalf("frame count bound missing: %v", args)
	}
	if j < indexOf(args, "-i") {
		t.Errorf("bound must follow the inputs: %v", args)
	}
}

func TestStage_ExecuteConcatFallback(t *testing.T) {
	fs := mocks.NewFileSystem()
	enc := &mocks.EncoderProcess{}
	stage := newValidatedStage(t, enc, fs)

	frames := []pipeline.CapturedFrame{
		{Index: 0, Path: filepath.Join("frames", "intro-000.png"), Format: ports.FormatPNG},
		{Index: 1, Path: filepath.Join("frames", "intro-001.png"), Format: ports.FormatPNG},
	}
	for _, f := range frames {
		fs.WriteFile(f.Path, []byte("png"))
	}

	var listContent string
	enc.RunFunc = func(ctx context.Context, args []string) (ports.ProcessResult, error) {
		list := args[indexOf(args, "-i")+1]
		data, _ := fs.GetFile(list)
		listContent = string(data)
		return ports.ProcessResult{}, nil
	}

	result, err := stage.Execute(context.Background(), stitchInput(frames, 2))
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if !result.UsedConcat {
		t.Error("expected concat list")
	}
	if !strings.HasPrefix(listContent, "ffconcat version 1.0") {
		t.Errorf("list = %q", listContent)
	}
	if strings.Index(listContent, "intro-000.png") > strings.Index(listContent, "intro-001.png") {
		t.Errorf("list out of order: %q", listContent)
	}
	if _, ok := fs.GetFile(filepath.Join("frames", concatListName)); ok {
		t.Error("concat list should be removed after encoding")
	}
}

func TestStage_ExecutePreconditions(t *testing.T) {
	tests := []struct {
		name    string
		indices []int
		total   int
		extra   func(fs *mocks.FileSystem, frames []pipeline.CapturedFrame) []pipeline.CapturedFrame
		want    []int
	}{
		{name: "gap", indices: []int{0, 2}, total: 3, want: []int{1}},
		{name: "missing tail", indices: []int{0, 1}, total: 4, want: []int{2, 3}},
		{name: "duplicate", indices: []int{0, 1, 1}, total: 2, want: []int{1}},
		{name: "out of range", indices: []int{0, 1, 5}, total: 2, want: []int{5}},
		{
			name: "file removed", indices: []int{0, 1}, total: 2, want: []int{1},
			extra: func(fs *mocks.FileSystem, frames []pipeline.CapturedFrame) []pipeline.CapturedFrame {
				fs.Remove(frames[1].Path)
				return frames
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := mocks.NewFileSystem()
			enc := &mocks.EncoderProcess{}
			stage := newValidatedStage(t, enc, fs)

			frames := writeFrames(fs, "frames", tt.indices...)
			if tt.extra != nil {
				frames = tt.extra(fs, frames)
			}

			_, err := stage.Execute(context.Background(), stitchInput(frames, tt.total))
			var stitchErr *pipeline.StitchError
			if !errors.As(err, &stitchErr) {
				t.Fatalf("error = %v, want StitchError", err)
			}
			if len(stitchErr.Frames) != len(tt.want) {
				t.Fatalf("Frames = %v, want %v", stitchErr.Frames, tt.want)
			}
			for i := range tt.want {
				if stitchErr.Frames[i] != tt.want[i] {
					t.Errorf("Frames = %v, want %v", stitchErr.Frames, tt.want)
				}
			}
			if enc.Runs() != 0 {
				t.Error("encoder must not run when preconditions fail")
			}
		})
	}
}

func TestStage_ExecuteAudio(t *testing.T) {
	fs := mocks.NewFileSystem()
	enc := &mocks.EncoderProcess{}
	stage := newValidatedStage(t, enc, fs)
	frames := writeFrames(fs, "frames", 0, 1)

	input := stitchInput(frames, 2)
	input.AudioPath = "music.mp3"

	_, err := stage.Execute(context.Background(), input)
	if !errors.Is(err, pipeline.ErrStitch) {
		t.Fatalf("missing audio error = %v, want ErrStitch", err)
	}

	fs.WriteFile("music.mp3", []byte("id3"))
	if _, err := stage.Execute(context.Background(), input); err != nil {
		t.Fatalf("Execute with audio error: %v", err)
	}
	args := enc.RunCalls[0]
	if indexOf(args, "music.mp3") < 0 || indexOf(args, "-shortest") < 0 {
		t.Errorf("audio not muxed: %v", args)
	}
	if j := indexOf(args, "-c:a"); j < 0 || args[j+1] != "aac" {
		t.Errorf("audio codec missing: %v", args)
	}
	// An output option placed before the audio -i would apply to that input.
	if indexOf(args, "-frames:v") < indexOf(args, "music.mp3") {
		t.Errorf("frame bound precedes the audio input: %v", args)
	}
}

func TestStage_ExecuteWithoutValidation(t *testing.T) {
	fs := mocks.NewFileSystem()
	enc := &mocks.EncoderProcess{}
	stage := NewStage(NewValidator(enc, logger.NewNoop()), enc, fs, logger.NewNoop())

	_, err := stage.Execute(context.Background(), stitchInput(writeFrames(fs, "frames", 0), 1))
	if !errors.Is(err, pipeline.ErrEncoderUnavailable) {
		t.Errorf("error = %v, want ErrEncoderUnavailable", err)
	}
	if enc.Runs() != 0 {
		t.Error("encoder must not run")
	}
}

func TestStage_ExecuteEncoderFailure(t *testing.T) {
	fs := mocks.NewFileSystem()
	enc := &mocks.EncoderProcess{
		RunFunc: func(ctx context.Context, args []string) (ports.ProcessResult, error) {
			fs.WriteFile(args[len(args)-1], []byte("partial"))
			return ports.ProcessResult{ExitCode: 1, Stderr: "Unknown encoder 'libx265'"}, errors.New("exit status 1")
		},
	}
	stage := newValidatedStage(t, enc, fs)
	frames := writeFrames(fs, "frames", 0, 1)

	input := stitchInput(frames, 2)
	_, err := stage.Execute(context.Background(), input)

	var procErr *pipeline.EncoderProcessError
	if !errors.As(err, &procErr) {
		t.Fatalf("error = %v, want EncoderProcessError", err)
	}
	if procErr.ExitCode != 1 || !strings.Contains(procErr.Stderr, "Unknown encoder") {
		t.Errorf("error = %+v", procErr)
	}
	if _, ok := fs.GetFile(input.OutputPath); ok {
		t.Error("partial output should be removed")
	}
	for _, f := range frames {
		if _, ok := fs.GetFile(f.Path); !ok {
			t.Errorf("frame %d should be preserved", f.Index)
		}
	}
}

func TestValidator(t *testing.T) {
	calls := 0
	enc := &mocks.EncoderProcess{
		VersionFunc: func(ctx context.Context) (string, error) {
			calls++
			if calls == 1 {
				return "", errors.New("executable file not found in $PATH")
			}
			return "ffmpeg version 7.0", nil
		},
	}
	v := NewValidator(enc, logger.NewNoop())

	if err := v.Validate(context.Background()); !errors.Is(err, pipeline.ErrEncoderUnavailable) {
		t.Fatalf("first Validate = %v, want ErrEncoderUnavailable", err)
	}
	if v.Succeeded() {
		t.Error("Succeeded after failure")
	}
	if err := v.Validate(context.Background()); err != nil {
		t.Fatalf("second Validate = %v", err)
	}
	if err := v.Validate(context.Background()); err != nil {
		t.Fatalf("cached Validate = %v", err)
	}
	if calls != 2 {
		t.Errorf("Version calls = %d, want 2 (success is cached)", calls)
	}
	if v.Version() != "ffmpeg version 7.0" {
		t.Errorf("Version = %q", v.Version())
	}
}

func TestBuildArgs(t *testing.T) {
	input := pipeline.StitchInput{OutputPath: "out.webm", FPS: 29.97, Codec: "libvpx-vp9", PixelFormat: "yuva420p", CRF: -1}
	args := BuildArgs([]string{"-i", "f/%d.png"}, input)

	if indexOf(args, "-crf") >= 0 {
		t.Errorf("negative CRF should omit -crf: %v", args)
	}
	if j := indexOf(args, "-c:v"); j < 0 || args[j+1] != "libvpx-vp9" {
		t.Errorf("codec missing: %v", args)
	}
	if j := indexOf(args, "-r"); j < 0 || args[j+1] != "29.97" {
		t.Errorf("rate missing: %v", args)
	}
	if indexOf(args, "-shortest") >= 0 {
		t.Errorf("no audio, no -shortest: %v", args)
	}
	if indexOf(args, "-frames:v") >= 0 {
		t.Errorf("no frames, no bound: %v", args)
	}
}

func TestScanFrames(t *testing.T) {
	fs := mocks.NewFileSystem()
	writeFrames(fs, "frames", 10, 2, 0, 1)
	fs.WriteFile(filepath.Join("frames", "notes.txt"), []byte("x"))
	fs.WriteFile(filepath.Join("frames", "007.png"), []byte("x"))
	fs.WriteFile(filepath.Join("frames", ".3.png.tmp"), []byte("x"))

	frames, err := ScanFrames(fs, "frames", ports.FormatPNG)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{0, 1, 2, 10}
	if len(frames) != len(want) {
		t.Fatalf("frames = %+v, want indices %v", frames, want)
	}
	for i, f := range frames {
		if f.Index != want[i] {
			t.Errorf("frames[%d].Index = %d, want %d", i, f.Index, want[i])
		}
	}
	if HighestIndex(frames) != 10 {
		t.Errorf("HighestIndex = %d", HighestIndex(frames))
	}
}
