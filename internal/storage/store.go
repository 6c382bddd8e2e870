// Package storage provides SQLite-based persistent storage for seek.
// It records terminal sessions and the searches issued in them so the
// prompt can recall recent queries.
package storage

import (
	"context"
)

// Store defines the interface for all storage operations.
type Store interface {
	// Sessions
	CreateSession(ctx context.Context, s *Session) error
	EndSession(ctx context.Context, sessionID string, endTime int64) error
	GetSession(ctx context.Context, sessionID string) (*Session, error)

	// Searches
	RecordSearch(ctx context.Context, search *Search) error
	QuerySearches(ctx context.Context, q SearchQuery) ([]Search, error)
	RecentQueries(ctx context.Context, limit int) ([]QueryRow, error)

	// Lifecycle
	Close() error
}

// Session represents one run of the interactive client.
type Session struct {
	SessionID       string
	StartedAtUnixMs int64
	EndedAtUnixMs   *int64
	Hostname        string
	Username        string
}

// Search represents a single search request issued during a session.
type Search struct {
	ID        int64
	SessionID string

	// The query as typed and its normalized form used for deduplication.
	Query     string
	QueryNorm string

	// Page is the zero-based page index requested.
	Page int

	// Counts after click filtering: ResultCount is what was shown,
	// HiddenCount is how many results were suppressed as already clicked.
	ResultCount int
	HiddenCount int

	// Altered is the provider's spell-corrected query, if any.
	Altered string

	SearchedAtUnixMs int64
}

// SearchQuery defines parameters for querying recorded searches.
type SearchQuery struct {
	SessionID *string // Include only this session
	Substring string  // Substring match (case-insensitive via query_norm)
	Limit     int
	Offset    int // Skip this many results (for pagination)
}

// QueryRow is a deduplicated recent-query entry.
type QueryRow struct {
	Query       string
	TimestampMs int64
}
