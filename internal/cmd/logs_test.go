package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeLogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}
	return path
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"one", []string{"one"}},
		{"one\n", []string{"one"}},
		{"one\ntwo", []string{"one", "two"}},
		{"one\ntwo\n", []string{"one", "two"}},
		{"\n\n", []string{"", ""}},
	}

	for _, tt := range tests {
		got := splitLines(tt.input)
		if len(got) != len(tt.expected) {
			t.Errorf("splitLines(%q) = %v, want %v", tt.input, got, tt.expected)
			continue
		}
		for i := range got {
			if got[i] != tt.expected[i] {
				t.Errorf("splitLines(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.expected[i])
			}
		}
	}
}

func TestCollectTailLines_LastN(t *testing.T) {
	path := writeLogFile(t, "one\ntwo\nthree\nfour\nfive\n")

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open test file: %v", err)
	}
	defer f.Close()

	stat, _ := f.Stat()
	lines, err := collectTailLines(f, stat.Size(), 3)
	if err != nil {
		t.Fatalf("collectTailLines returned error: %v", err)
	}

	want := []string{"three", "four", "five"}
	if len(lines) != len(want) {
		t.Fatalf("collectTailLines = %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestCollectTailLines_SpansChunks(t *testing.T) {
	// More than one 4096-byte chunk so the backwards reader has to carry
	// partial lines across chunk boundaries.
	var b strings.Builder
	for i := 0; i < 300; i++ {
		fmt.Fprintf(&b, "entry number %04d padded out to be reasonably long\n", i)
	}
	path := writeLogFile(t, b.String())

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open test file: %v", err)
	}
	defer f.Close()

	stat, _ := f.Stat()
	lines, err := collectTailLines(f, stat.Size(), 200)
	if err != nil {
		t.Fatalf("collectTailLines returned error: %v", err)
	}

	if len(lines) != 200 {
		t.Fatalf("expected 200 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "0100") {
		t.Errorf("first collected line = %q, want entry 0100", lines[0])
	}
	if !strings.Contains(lines[199], "0299") {
		t.Errorf("last collected line = %q, want entry 0299", lines[199])
	}
}

func TestReadChunkLines_ReadsActualBytesOnShortRead(t *testing.T) {
	path := writeLogFile(t, "line1\nline2\n")

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open test file: %v", err)
	}
	defer f.Close()

	var offset int64 = 11
	lines, _, readErr := readChunkLines(f, &offset, 4096, "")
	if readErr != nil {
		t.Fatalf("readChunkLines returned error: %v", readErr)
	}

	for _, line := range lines {
		for _, ch := range []byte(line) {
			if ch == 0 {
				t.Fatalf("unexpected NUL byte in line %q", line)
			}
		}
	}
}

func TestCollectTailLines_PropagatesReadError(t *testing.T) {
	path := writeLogFile(t, "hello\n")

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open test file: %v", err)
	}
	_ = f.Close() // force read error

	_, gotErr := collectTailLines(f, 6, 1)
	if gotErr == nil {
		t.Fatal("expected error from closed file")
	}
}

func TestFollowLogs_ReturnsOnContextCancel(t *testing.T) {
	path := writeLogFile(t, "hello\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := followLogs(ctx, path); err == nil {
		t.Error("followLogs should return the context error after cancellation")
	}
}
