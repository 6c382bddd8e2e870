// Package browser launches URLs in the user's web browser.
package browser

import (
	"fmt"
	"os"
	"runtime"

	"github.com/google/shlex"
	"golang.org/x/sys/execabs"
)

// startCommand is a test seam for process creation.
// execabs refuses binaries resolved to relative paths.
var startCommand = func(name string, args ...string) error {
	cmd := execabs.Command(name, args...)
	// Start, don't wait: the browser owns its own lifetime.
	return cmd.Start()
}

// Open launches url in the user's browser and returns once the launcher
// process has started. A non-empty $BROWSER overrides the platform default
// and may contain arguments ("firefox --private-window").
func Open(url string) error {
	name, args, err := launchCommand(url)
	if err != nil {
		return err
	}
	if err := startCommand(name, args...); err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	return nil
}

// launchCommand resolves the launcher argv for url.
func launchCommand(url string) (string, []string, error) {
	if browser := os.Getenv("BROWSER"); browser != "" {
		parts, err := shlex.Split(browser)
		if err != nil {
			return "", nil, fmt.Errorf("invalid BROWSER value %q: %w", browser, err)
		}
		if len(parts) == 0 {
			return "", nil, fmt.Errorf("invalid BROWSER value %q", browser)
		}
		return parts[0], append(parts[1:], url), nil
	}

	switch runtime.GOOS {
	case "darwin":
		return "open", []string{url}, nil
	case "windows":
		return "cmd", []string{"/c", "start", url}, nil
	default:
		return "xdg-open", []string{url}, nil
	}
}
