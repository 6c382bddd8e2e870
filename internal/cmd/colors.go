package cmd

import (
	"os"
	"runtime"
	"strconv"

	"github.com/muesli/termenv"
)

// ANSI color codes for terminal output.
// These are initialized in init() and may be disabled on certain platforms.
var (
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[0;33m"
	colorCyan   = "\033[0;36m"
	colorDim    = "\033[2m"
	colorBold   = "\033[1m"
	colorReset  = "\033[0m"
)

// colorMode holds the --color flag value shared by the plain-output
// commands (history, clicks): auto, always, or never.
var colorMode = "auto"

func init() {
	applyColorMode()
}

// applyColorMode applies the --color flag after flag parsing.
// "auto" detects from the environment and the terminal.
func applyColorMode() {
	switch colorMode {
	case "always":
		enableColors()
	case "never":
		disableColors()
	default:
		if shouldDisableColors() || !stdoutIsTTY() {
			disableColors()
		} else {
			enableColors()
		}
	}
}

// stdoutIsTTY reports whether stdout renders ANSI, via termenv's
// profile detection. Pipes and files come back Ascii.
func stdoutIsTTY() bool {
	return termenv.NewOutput(os.Stdout).ColorProfile() != termenv.Ascii
}

func enableColors() {
	colorRed = "\033[0;31m"
	colorGreen = "\033[0;32m"
	colorYellow = "\033[0;33m"
	colorCyan = "\033[0;36m"
	colorDim = "\033[2m"
	colorBold = "\033[1m"
	colorReset = "\033[0m"
}

func disableColors() {
	colorRed = ""
	colorGreen = ""
	colorYellow = ""
	colorCyan = ""
	colorDim = ""
	colorBold = ""
	colorReset = ""
}

func shouldDisableColors() bool {
	// Check NO_COLOR environment variable (https://no-color.org/)
	if os.Getenv("NO_COLOR") != "" {
		return true
	}

	// Check TERM=dumb
	if os.Getenv("TERM") == "dumb" {
		return true
	}

	// On Windows, check if ANSI is supported
	if runtime.GOOS == "windows" {
		// Windows Terminal and newer terminals support ANSI
		// Check for common indicators
		if os.Getenv("WT_SESSION") != "" {
			return false // Windows Terminal supports ANSI
		}
		if os.Getenv("TERM_PROGRAM") != "" {
			return false // Modern terminal emulator
		}
		// Disable by default on older Windows consoles
		return os.Getenv("ANSICON") == "" && os.Getenv("ConEmuANSI") != "ON"
	}

	return false
}

// termWidth returns the terminal width in columns, preferring the ioctl
// over $COLUMNS, with 80 as the last resort.
func termWidth() int {
	if w := termWidthIoctl(); w > 0 {
		return w
	}
	if w := envColumns(); w > 0 {
		return w
	}
	return 80
}

func envColumns() int {
	cols := os.Getenv("COLUMNS")
	if cols == "" {
		return 0
	}
	w, err := strconv.Atoi(cols)
	if err != nil || w <= 0 {
		return 0
	}
	return w
}
