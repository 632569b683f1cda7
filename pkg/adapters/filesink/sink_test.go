package filesink

import (
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/user/framecast/pkg/mocks"
	"github.com/user/framecast/pkg/ports"
)

// testBaseDir is a platform-independent base directory for tests
var testBaseDir = filepath.Join("debug")

func TestSink_Enabled(t *testing.T) {
	sink := New(testBaseDir, mocks.NewFileSystem(), &mocks.Renderer{})
	if !sink.Enabled() {
		t.Error("expected Enabled to return true")
	}
}

func TestSink_SaveRunJSON(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.Renderer{})

	data := []byte(`{"id": "run"}`)
	if err := sink.SaveRunJSON(data); err != nil {
		t.Fatalf("SaveRunJSON failed: %v", err)
	}

	saved, ok := fs.GetFile(filepath.Join(testBaseDir, RunFile))
	if !ok || string(saved) != string(data) {
		t.Errorf("saved = %q, %v", saved, ok)
	}
}

func TestSink_AppendPageEvent(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.Renderer{})

	sink.AppendPageEvent([]byte(`{"kind":"console"}`))
	sink.AppendPageEvent([]byte("{\"kind\":\"pageerror\"}\n"))

	saved, _ := fs.GetFile(filepath.Join(testBaseDir, PageEventsFile))
	want := "{\"kind\":\"console\"}\n{\"kind\":\"pageerror\"}\n"
	if string(saved) != want {
		t.Errorf("saved = %q, want %q", saved, want)
	}
}

func TestSink_SaveContactSheet(t *testing.T) {
	fs := mocks.NewFileSystem()
	var gotFormat ports.ImageFormat
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
			gotFormat = format
			return []byte("png-data"), nil
		},
	}
	sink := New(testBaseDir, fs, renderer)

	if err := sink.SaveContactSheet(image.NewRGBA(image.Rect(0, 0, 10, 10))); err != nil {
		t.Fatalf("SaveContactSheet failed: %v", err)
	}
	if gotFormat != ports.FormatPNG {
		t.Errorf("format = %q, want png", gotFormat)
	}
	if saved, _ := fs.GetFile(filepath.Join(testBaseDir, ContactSheetFile)); string(saved) != "png-data" {
		t.Errorf("saved = %q", saved)
	}
}

func TestSink_SaveContactSheetEncodeError(t *testing.T) {
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
			return nil, errors.New("boom")
		},
	}
	sink := New(testBaseDir, mocks.NewFileSystem(), renderer)
	if err := sink.SaveContactSheet(image.NewRGBA(image.Rect(0, 0, 1, 1))); err == nil {
		t.Error("expected error")
	}
}
