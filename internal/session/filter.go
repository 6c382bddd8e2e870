package session

import "github.com/runger/seek/internal/brave"

// ClickChecker reports whether a url was already opened for a query key.
type ClickChecker interface {
	IsClicked(key, url string) bool
}

// FilterClicked removes results whose url is in the click history for key,
// preserving provider order among the survivors. Results without a url are
// always kept: they can never be recorded, so history can never hide them.
// hidden is the number of suppressed results, so
// hidden + len(visible) == len(results) holds for every input.
func FilterClicked(results []brave.Result, store ClickChecker, key string) (visible []brave.Result, hidden int) {
	for _, r := range results {
		if r.URL != "" && store.IsClicked(key, r.URL) {
			hidden++
			continue
		}
		visible = append(visible, r)
	}
	return visible, hidden
}
