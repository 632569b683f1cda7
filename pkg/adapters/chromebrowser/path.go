package chromebrowser

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// EnvChromePath names the environment variable that points at Chrome.
const EnvChromePath = "CHROME_PATH"

// ErrChromeNotFound is returned when no Chrome or Chromium executable is found.
var ErrChromeNotFound = errors.New("chromebrowser: chrome not found: install Chrome/Chromium, set CHROME_PATH, or use --chrome-path")

// ResolveChromePath resolves the Chrome executable in this order:
// explicit path, CHROME_PATH, then system locations (Chromium before Chrome).
// It returns "" when nothing is found.
func ResolveChromePath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}
	if envPath := os.Getenv(EnvChromePath); envPath != "" {
		return envPath
	}
	for _, candidate := range systemCandidates() {
		if path := resolveExecutable(candidate); path != "" {
			return path
		}
	}
	return ""
}

func systemCandidates() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		}
	case "windows":
		var candidates []string
		for _, env := range []string{"PROGRAMFILES", "PROGRAMFILES(X86)", "LOCALAPPDATA"} {
			base := os.Getenv(env)
			if base == "" {
				continue
			}
			candidates = append(candidates,
				filepath.Join(base, "Chromium", "Application", "chrome.exe"),
				filepath.Join(base, "Google", "Chrome", "Application", "chrome.exe"),
			)
		}
		return candidates
	default:
		return []string{"chromium", "chromium-browser", "google-chrome-stable", "google-chrome", "headless-shell"}
	}
}

// resolveExecutable checks a full path with os.Stat and a bare name with exec.LookPath.
func resolveExecutable(nameOrPath string) string {
	if filepath.IsAbs(nameOrPath) {
		if _, err := os.Stat(nameOrPath); err == nil {
			return nameOrPath
		}
		return ""
	}
	if path, err := exec.LookPath(nameOrPath); err == nil {
		return path
	}
	return ""
}
