// Package contactsheet renders a thumbnail grid of captured frames for
// visual inspection of a run.
package contactsheet

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sort"
	"strconv"
	"sync"

	"github.com/user/framecast/pkg/pipeline"
	"github.com/user/framecast/pkg/ports"
)

const (
	cellPadding = 8
	labelHeight = 18
)

var (
	backgroundColor = color.RGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 0xff}
	labelColor      = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	// Backdrop behind each thumbnail so transparent frames stay visible.
	cellColor = color.RGBA{R: 0x55, G: 0x55, B: 0x66, A: 0xff}
)

// Stage builds a contact sheet from frame files.
type Stage struct {
	fs       ports.FileSystem
	renderer ports.Renderer
	logger   ports.Logger
}

// NewStage creates a contact sheet stage.
func NewStage(fs ports.FileSystem, renderer ports.Renderer, logger ports.Logger) *Stage {
	return &Stage{fs: fs, renderer: renderer, logger: logger.WithComponent("contactsheet")}
}

// Sample picks up to max frames spread evenly over frames sorted by
// index. The first and last frames are always included.
func Sample(frames []pipeline.CapturedFrame, max int) []pipeline.CapturedFrame {
	sorted := make([]pipeline.CapturedFrame, len(frames))
	copy(sorted, frames)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	if max <= 0 || len(sorted) <= max {
		return sorted
	}
	if max == 1 {
		return sorted[:1]
	}
	picked := make([]pipeline.CapturedFrame, max)
	step := float64(len(sorted)-1) / float64(max-1)
	for i := range picked {
		picked[i] = sorted[int(float64(i)*step+0.5)]
	}
	return picked
}

type decoded struct {
	slot int
	img  image.Image
	err  error
}

// Execute decodes the sampled frames in parallel and lays them out in a grid.
func (s *Stage) Execute(ctx context.Context, input pipeline.ContactSheetInput) (image.Image, error) {
	defaults := pipeline.DefaultContactSheetInput()
	if input.Columns <= 0 {
		input.Columns = defaults.Columns
	}
	if input.ThumbWidth <= 0 {
		input.ThumbWidth = defaults.ThumbWidth
	}
	if input.Workers <= 0 {
		input.Workers = defaults.Workers
	}
	if input.MaxFrames <= 0 {
		input.MaxFrames = defaults.MaxFrames
	}

	frames := Sample(input.Frames, input.MaxFrames)
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames for contact sheet")
	}

	images, err := s.decodeAll(ctx, frames, input.Workers)
	if err != nil {
		return nil, err
	}

	b := images[0].Bounds()
	thumbW := input.ThumbWidth
	thumbH := thumbW
	if b.Dx() > 0 {
		thumbH = thumbW * b.Dy() / b.Dx()
	}
	if thumbH < 1 {
		thumbH = 1
	}

	cols := input.Columns
	if cols > len(frames) {
		cols = len(frames)
	}
	rows := (len(frames) + cols - 1) / cols
	cellW := thumbW + cellPadding
	cellH := thumbH + labelHeight + cellPadding

	canvas := s.renderer.CreateCanvas(cols*cellW+cellPadding, rows*cellH+cellPadding, backgroundColor)
	style := ports.TextStyle{FontSize: 12, Color: labelColor, Align: ports.AlignCenter}
	for i, img := range images {
		x := cellPadding + (i%cols)*cellW
		y := cellPadding + (i/cols)*cellH
		canvas.DrawRect(x, y, thumbW, thumbH, cellColor)
		canvas.DrawImageScaled(img, x, y, thumbW, thumbH)
		canvas.DrawText(strconv.Itoa(frames[i].Index), x+thumbW/2, y+thumbH+labelHeight/2, style)
	}

	s.logger.Debug("Contact sheet with %d frames", len(frames))
	return canvas.ToImage(), nil
}

// decodeAll reads and decodes frames with a fixed worker pool, keeping
// results in input order.
func (s *Stage) decodeAll(ctx context.Context, frames []pipeline.CapturedFrame, workers int) ([]image.Image, error) {
	jobs := make(chan int, len(frames))
	results := make(chan decoded, len(frames))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for slot := range jobs {
				if ctx.Err() != nil {
					results <- decoded{slot: slot, err: ctx.Err()}
					continue
				}
				img, err := s.decode(frames[slot])
				results <- decoded{slot: slot, img: img, err: err}
			}
		}()
	}
	for i := range frames {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	close(results)

	images := make([]image.Image, len(frames))
	for r := range results {
		if r.err != nil {
			return nil, r.err
		}
		images[r.slot] = r.img
	}
	return images, nil
}

func (s *Stage) decode(frame pipeline.CapturedFrame) (image.Image, error) {
	data, err := s.fs.ReadFile(frame.Path)
	if err != nil {
		return nil, fmt.Errorf("read frame %d: %w", frame.Index, err)
	}
	img, err := s.renderer.DecodeImage(data, frame.Format)
	if err != nil {
		return nil, fmt.Errorf("decode frame %d: %w", frame.Index, err)
	}
	return img, nil
}
