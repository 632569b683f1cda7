package chromebrowser

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveChromePath_ExplicitPath(t *testing.T) {
	t.Setenv(EnvChromePath, "/env/chrome")
	if got := ResolveChromePath("/custom/path/to/chrome"); got != "/custom/path/to/chrome" {
		t.Errorf("expected explicit path to take precedence, got %s", got)
	}
}

func TestResolveChromePath_EnvVar(t *testing.T) {
	t.Setenv(EnvChromePath, "/env/chrome")
	if got := ResolveChromePath(""); got != "/env/chrome" {
		t.Errorf("expected CHROME_PATH to be used, got %s", got)
	}
}

func TestResolveChromePath_SystemDefault(t *testing.T) {
	t.Setenv(EnvChromePath, "")
	// Empty is valid when Chrome is not installed.
	t.Logf("System default Chrome path: %q", ResolveChromePath(""))
}

func TestResolveExecutable(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "chrome")
	if err := os.WriteFile(bin, []byte{}, 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"existing absolute path", bin, bin},
		{"missing absolute path", filepath.Join(dir, "missing"), ""},
		{"unknown command", "framecast-no-such-browser", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveExecutable(tt.in); got != tt.want {
				t.Errorf("resolveExecutable(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
