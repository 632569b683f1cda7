package stitch

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/user/framecast/pkg/pipeline"
	"github.com/user/framecast/pkg/ports"
)

// ScanFrames lists the {index}.{ext} files of format in dir, ascending.
// Other files are ignored; gaps are left for Execute to report.
func ScanFrames(fs ports.FileSystem, dir string, format ports.ImageFormat) ([]pipeline.CapturedFrame, error) {
	names, err := fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frames directory: %w", err)
	}

	suffix := "." + format.Extension()
	var frames []pipeline.CapturedFrame
	for _, name := range names {
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		index, err := strconv.Atoi(strings.TrimSuffix(name, suffix))
		if err != nil || index < 0 || strconv.Itoa(index) != strings.TrimSuffix(name, suffix) {
			continue
		}
		frames = append(frames, pipeline.CapturedFrame{
			Index:  index,
			Path:   filepath.Join(dir, name),
			Format: format,
		})
	}

	sort.Slice(frames, func(i, j int) bool { return frames[i].Index < frames[j].Index })
	return frames, nil
}

// HighestIndex returns the largest frame index in frames, or -1.
func HighestIndex(frames []pipeline.CapturedFrame) int {
	highest := -1
	for _, f := range frames {
		if f.Index > highest {
			highest = f.Index
		}
	}
	return highest
}
