package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/runger/seek/internal/storage"
)

func TestHistoryCmd_Flags(t *testing.T) {
	// Verify all expected flags are registered
	expectedFlags := []struct {
		name      string
		shorthand string
	}{
		{"limit", "n"},
		{"session", ""},
		{"json", ""},
		{"color", ""},
	}

	for _, f := range expectedFlags {
		flag := historyCmd.Flags().Lookup(f.name)
		if flag == nil {
			t.Errorf("Expected flag --%s to be registered", f.name)
			continue
		}
		if flag.Shorthand != f.shorthand {
			t.Errorf("Flag --%s: expected shorthand %q, got %q", f.name, f.shorthand, flag.Shorthand)
		}
	}
}

func TestHistoryCmd_DefaultLimit(t *testing.T) {
	flag := historyCmd.Flags().Lookup("limit")
	if flag == nil {
		t.Fatal("limit flag not found")
	}
	if flag.DefValue != "20" {
		t.Errorf("Expected default limit=20, got %s", flag.DefValue)
	}
}

func withPlainOutput(t *testing.T) {
	t.Helper()
	origDim, origYellow, origReset := colorDim, colorYellow, colorReset
	t.Cleanup(func() {
		colorDim, colorYellow, colorReset = origDim, origYellow, origReset
	})
	colorDim, colorYellow, colorReset = "", "", ""
}

func TestFormatSearchLine(t *testing.T) {
	withPlainOutput(t)

	s := storage.Search{
		Query:            "golang tui",
		Page:             1,
		ResultCount:      18,
		HiddenCount:      2,
		Altered:          "golang",
		SearchedAtUnixMs: 1700000000000,
	}

	line := formatSearchLine(s, 40)

	for _, want := range []string{
		"golang tui",
		"[page 2]",
		"(18 shown, 2 hidden)",
		"(spellchecked to: golang)",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("formatSearchLine() = %q, should contain %q", line, want)
		}
	}
}

func TestFormatSearchLine_FirstPageOmitsPageTag(t *testing.T) {
	withPlainOutput(t)

	s := storage.Search{Query: "weather", Page: 0, ResultCount: 5}

	line := formatSearchLine(s, 40)

	if strings.Contains(line, "[page") {
		t.Errorf("formatSearchLine() = %q, should not show a page tag for the first page", line)
	}
	if !strings.Contains(line, "(5 shown, 0 hidden)") {
		t.Errorf("formatSearchLine() = %q, missing counts", line)
	}
}

func TestFormatSearchLine_TruncatesLongQueries(t *testing.T) {
	withPlainOutput(t)

	s := storage.Search{Query: strings.Repeat("x", 100)}

	line := formatSearchLine(s, 20)

	if strings.Contains(line, strings.Repeat("x", 30)) {
		t.Errorf("formatSearchLine() = %q, expected the query to be truncated", line)
	}
	if !strings.Contains(line, "…") {
		t.Errorf("formatSearchLine() = %q, expected a truncation marker", line)
	}
}

func TestFormatSearchLine_CollapsesControlCharacters(t *testing.T) {
	withPlainOutput(t)

	s := storage.Search{Query: "weird\nquery\twith\x1b[31mescapes"}

	line := formatSearchLine(s, 60)

	if strings.Contains(line, "\n") || strings.Contains(line, "\x1b[31m") {
		t.Errorf("formatSearchLine() = %q, should be a single clean row", line)
	}
}

func TestHistoryResponse_JSONShape(t *testing.T) {
	resp := historyResponse{
		Searches: []historyOutput{
			{Query: "golang tui", Results: 18, Hidden: 2, SessionID: "s1", Ts: 1700000000000},
		},
		Total: 1,
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	for _, want := range []string{
		`"query":"golang tui"`,
		`"results":18`,
		`"hidden":2`,
		`"session_id":"s1"`,
		`"total":1`,
		`"truncated":false`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON %s should contain %s", data, want)
		}
	}

	// Altered is omitted when the provider did not spellcheck.
	if strings.Contains(string(data), `"altered"`) {
		t.Errorf("JSON %s should omit empty altered field", data)
	}
}
