package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/seek/internal/brave"
)

// mapChecker is a minimal ClickChecker backed by a key -> url set map.
type mapChecker map[string]map[string]bool

func (m mapChecker) IsClicked(key, url string) bool {
	return m[key][url]
}

func urlsOf(results []brave.Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.URL)
	}
	return out
}

func TestFilterClicked_HidesClickedForKey(t *testing.T) {
	// Raw results U1..U5 with U2 and U4 already clicked for "foo".
	results := []brave.Result{
		{Title: "one", URL: "https://example.com/1"},
		{Title: "two", URL: "https://example.com/2"},
		{Title: "three", URL: "https://example.com/3"},
		{Title: "four", URL: "https://example.com/4"},
		{Title: "five", URL: "https://example.com/5"},
	}
	store := mapChecker{
		"foo": {
			"https://example.com/2": true,
			"https://example.com/4": true,
		},
	}

	visible, hidden := FilterClicked(results, store, "foo")

	assert.Equal(t, 2, hidden)
	assert.Equal(t, []string{
		"https://example.com/1",
		"https://example.com/3",
		"https://example.com/5",
	}, urlsOf(visible))
}

func TestFilterClicked_PreservesOrder(t *testing.T) {
	results := []brave.Result{
		{URL: "https://z.example"},
		{URL: "https://a.example"},
		{URL: "https://m.example"},
	}

	visible, hidden := FilterClicked(results, mapChecker{}, "anything")

	assert.Equal(t, 0, hidden)
	assert.Equal(t, []string{"https://z.example", "https://a.example", "https://m.example"}, urlsOf(visible))
}

func TestFilterClicked_EmptyURLNeverFiltered(t *testing.T) {
	results := []brave.Result{
		{Title: "no link"},
		{Title: "linked", URL: "https://example.com/x"},
	}
	store := mapChecker{
		"q": {
			// An empty-string membership must not hide the url-less result.
			"":                      true,
			"https://example.com/x": true,
		},
	}

	visible, hidden := FilterClicked(results, store, "q")

	require.Len(t, visible, 1)
	assert.Equal(t, "no link", visible[0].Title)
	assert.Equal(t, 1, hidden)
}

func TestFilterClicked_CountsAddUp(t *testing.T) {
	tests := []struct {
		name    string
		clicked []string
	}{
		{"none clicked", nil},
		{"some clicked", []string{"https://example.com/1", "https://example.com/3"}},
		{"all clicked", []string{"https://example.com/1", "https://example.com/2", "https://example.com/3"}},
	}

	results := []brave.Result{
		{URL: "https://example.com/1"},
		{URL: "https://example.com/2"},
		{URL: "https://example.com/3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := map[string]bool{}
			for _, u := range tt.clicked {
				set[u] = true
			}
			visible, hidden := FilterClicked(results, mapChecker{"k": set}, "k")
			assert.Equal(t, len(results), hidden+len(visible))
		})
	}
}

func TestFilterClicked_AllClickedReportsFullPage(t *testing.T) {
	results := []brave.Result{
		{URL: "https://example.com/1"},
		{URL: "https://example.com/2"},
	}
	store := mapChecker{
		"k": {"https://example.com/1": true, "https://example.com/2": true},
	}

	visible, hidden := FilterClicked(results, store, "k")

	assert.Empty(t, visible)
	assert.Equal(t, 2, hidden)
}

func TestFilterClicked_AbsentKeyHidesNothing(t *testing.T) {
	results := []brave.Result{
		{URL: "https://example.com/1"},
	}
	store := mapChecker{
		"other": {"https://example.com/1": true},
	}

	visible, hidden := FilterClicked(results, store, "k")

	assert.Len(t, visible, 1)
	assert.Equal(t, 0, hidden)
}

func TestFilterClicked_EmptyResults(t *testing.T) {
	visible, hidden := FilterClicked(nil, mapChecker{}, "k")

	assert.Empty(t, visible)
	assert.Equal(t, 0, hidden)
}

func TestFilterClicked_DuplicateURLsFilteredIndependently(t *testing.T) {
	results := []brave.Result{
		{Title: "a", URL: "https://example.com/dup"},
		{Title: "b", URL: "https://example.com/dup"},
		{Title: "c", URL: "https://example.com/other"},
	}
	store := mapChecker{
		"k": {"https://example.com/dup": true},
	}

	visible, hidden := FilterClicked(results, store, "k")

	// Both copies of the clicked url are hidden.
	assert.Equal(t, 2, hidden)
	require.Len(t, visible, 1)
	assert.Equal(t, "c", visible[0].Title)
}
