// Package clickstore persists which URLs were opened for which query.
//
// The store is a map from a normalized query to the set of URLs already
// opened for that query. It lives in a single JSON file so users can
// inspect or edit their click history by hand.
package clickstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// LegacyKey is the bucket for entries imported from the old on-disk format,
// a bare JSON array of URLs with no query association. Normalization never
// produces this key (live keys are lowercase), so legacy entries never hide
// results for a live query.
const LegacyKey = "__global__"

// Store holds per-query click history and knows how to persist it.
// It is not safe for concurrent use; callers mutate it from a single
// goroutine (the UI event loop).
type Store struct {
	path    string
	logger  *slog.Logger
	clicked map[string]map[string]struct{}
}

// Load reads click history from path. It never fails: a missing file means
// a fresh store, and malformed content is logged and treated as empty so a
// damaged history file cannot prevent searching.
func Load(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Store{
		path:    path,
		logger:  logger,
		clicked: make(map[string]map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("click store unreadable, starting empty", "path", path, "error", err)
		}
		return s
	}

	// Current format: {"normalized query": ["url", ...], ...}.
	var byQuery map[string]json.RawMessage
	if err := json.Unmarshal(data, &byQuery); err == nil {
		for key, raw := range byQuery {
			urls, ok := stringList(raw)
			if !ok {
				logger.Warn("skipping malformed click store entry", "key", key)
				continue
			}
			for _, u := range urls {
				s.add(key, u)
			}
		}
		return s
	}

	// Legacy format: a bare array of URLs with no query association.
	// Imported under LegacyKey so the data survives the next save, but it
	// is intentionally never consulted when filtering live queries.
	var flat json.RawMessage
	if err := json.Unmarshal(data, &flat); err == nil {
		if urls, ok := stringList(flat); ok {
			for _, u := range urls {
				s.add(LegacyKey, u)
			}
			if len(urls) > 0 {
				logger.Info("imported legacy click store", "path", path, "urls", len(urls))
			}
			return s
		}
	}

	logger.Warn("click store malformed, starting empty", "path", path)
	return s
}

// stringList decodes a JSON array, keeping only string elements.
// Returns false if raw is not an array at all.
func stringList(raw json.RawMessage) ([]string, bool) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, false
	}
	urls := make([]string, 0, len(elems))
	for _, e := range elems {
		var u string
		if err := json.Unmarshal(e, &u); err == nil {
			urls = append(urls, u)
		}
	}
	return urls, true
}

func (s *Store) add(key, url string) {
	set, ok := s.clicked[key]
	if !ok {
		set = make(map[string]struct{})
		s.clicked[key] = set
	}
	set[url] = struct{}{}
}

// IsClicked reports whether url was already opened for the given query key.
// An absent key means false; lookups never create entries.
func (s *Store) IsClicked(key, url string) bool {
	set, ok := s.clicked[key]
	if !ok {
		return false
	}
	_, ok = set[url]
	return ok
}

// Record marks url as opened for the given query key, creating the set on
// first use. Recording a URL twice is a no-op for content. Empty keys and
// URLs are ignored: an empty key means no active query, and a result
// without a URL cannot be opened in the first place.
func (s *Store) Record(key, url string) {
	if key == "" || url == "" {
		return
	}
	s.add(key, url)
}

// Save writes the whole store to disk. Keys and URLs are serialized in
// sorted order so the file is deterministic and diffs cleanly. A failed
// save leaves the in-memory state authoritative; callers log and continue.
func (s *Store) Save() error {
	out := make(map[string][]string, len(s.clicked))
	for key, set := range s.clicked {
		urls := make([]string, 0, len(set))
		for u := range set {
			urls = append(urls, u)
		}
		sort.Strings(urls)
		out[key] = urls
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal click store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create click store directory: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write click store: %w", err)
	}

	return nil
}

// Path returns the file this store loads from and saves to.
func (s *Store) Path() string {
	return s.path
}

// Keys returns all query keys in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.clicked))
	for k := range s.clicked {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// URLs returns the sorted URLs recorded for a query key.
func (s *Store) URLs(key string) []string {
	set, ok := s.clicked[key]
	if !ok {
		return nil
	}
	urls := make([]string, 0, len(set))
	for u := range set {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}
