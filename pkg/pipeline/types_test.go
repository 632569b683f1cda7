package pipeline

import (
	"net/url"
	"path/filepath"
	"testing"

	"github.com/user/framecast/pkg/ports"
)

func TestComposition_FrameURL(t *testing.T) {
	comp := Composition{ID: "intro", URL: "http://localhost:3000/render?theme=dark"}

	got, err := comp.FrameURL(12)
	if err != nil {
		t.Fatalf("FrameURL error: %v", err)
	}
	u, err := url.Parse(got)
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	if q.Get("composition") != "intro" || q.Get("frame") != "12" || q.Get("theme") != "dark" {
		t.Errorf("query = %v", q)
	}
}

func TestFramePath(t *testing.T) {
	if got, want := FramePath("out", 3, ports.FormatPNG), filepath.Join("out", "3.png"); got != want {
		t.Errorf("FramePath = %q, want %q", got, want)
	}
	if got, want := FramePath("out", 0, ports.FormatJPEG), filepath.Join("out", "0.jpeg"); got != want {
		t.Errorf("FramePath = %q, want %q", got, want)
	}
}
