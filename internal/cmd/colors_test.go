package cmd

import (
	"testing"
)

func TestApplyColorMode_Always(t *testing.T) {
	// Save originals
	origMode := colorMode
	origRed := colorRed
	t.Cleanup(func() {
		colorMode = origMode
		colorRed = origRed
	})

	// Force disable first
	disableColors()
	if colorRed != "" {
		t.Fatal("expected colors disabled")
	}

	// Apply "always" mode — should re-enable
	colorMode = "always"
	applyColorMode()

	if colorRed == "" {
		t.Error("applyColorMode(\"always\") should enable colors even when auto would disable")
	}
}

func TestApplyColorMode_Never(t *testing.T) {
	origMode := colorMode
	origRed := colorRed
	t.Cleanup(func() {
		colorMode = origMode
		colorRed = origRed
	})

	// Force enable first
	enableColors()
	if colorRed == "" {
		t.Fatal("expected colors enabled")
	}

	// Apply "never" mode — should disable
	colorMode = "never"
	applyColorMode()

	if colorRed != "" {
		t.Error("applyColorMode(\"never\") should disable colors")
	}
}

func TestApplyColorMode_Auto(t *testing.T) {
	origMode := colorMode
	origRed := colorRed
	t.Cleanup(func() {
		colorMode = origMode
		colorRed = origRed
	})

	colorMode = "auto"
	applyColorMode()

	// In test, stdout is a pipe, so auto should disable colors
	if colorRed != "" {
		t.Error("applyColorMode(\"auto\") should disable colors when stdout is not a TTY")
	}
}

func TestEnableDisableColors(t *testing.T) {
	origRed := colorRed
	origGreen := colorGreen
	t.Cleanup(func() {
		colorRed = origRed
		colorGreen = origGreen
	})

	disableColors()
	if colorRed != "" || colorGreen != "" {
		t.Error("disableColors should clear all color codes")
	}

	enableColors()
	if colorRed == "" || colorGreen == "" {
		t.Error("enableColors should set color codes")
	}
}

func TestEnvColumns(t *testing.T) {
	tests := []struct {
		value    string
		expected int
	}{
		{"123", 123},
		{"80", 80},
		{"abc", 0},
		{"-5", 0},
		{"0", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Setenv("COLUMNS", tt.value)
		if got := envColumns(); got != tt.expected {
			t.Errorf("envColumns() with COLUMNS=%q = %d, want %d", tt.value, got, tt.expected)
		}
	}
}

func TestTermWidth_AlwaysPositive(t *testing.T) {
	// Whatever the environment (tty, pipe, CI), a usable width comes back.
	if w := termWidth(); w <= 0 {
		t.Errorf("termWidth() = %d, want > 0", w)
	}
}
