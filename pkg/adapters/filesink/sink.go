// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/user/framecast/pkg/ports"
)

// File names written under the sink's base directory.
const (
	RunFile          = "run.json"
	PageEventsFile   = "page-events.jsonl"
	ContactSheetFile = "contact-sheet.png"
)

// Sink saves debug output to files.
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
}

// New creates a new FileSink.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveRunJSON saves the run manifest.
func (s *Sink) SaveRunJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, RunFile), data)
}

// AppendPageEvent appends one JSON line to the page event log.
func (s *Sink) AppendPageEvent(line []byte) error {
	if len(line) == 0 || line[len(line)-1] != '\n' {
		line = append(line, '\n')
	}
	return s.fs.AppendFile(filepath.Join(s.baseDir, PageEventsFile), line)
}

// SaveContactSheet saves the contact sheet as PNG.
func (s *Sink) SaveContactSheet(img image.Image) error {
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode contact sheet: %w", err)
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, ContactSheetFile), data)
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
