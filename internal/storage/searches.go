package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/runger/seek/internal/query"
)

// RecordSearch inserts a search record.
// It fills in the normalized query form and the timestamp if not
// already set.
func (s *SQLiteStore) RecordSearch(ctx context.Context, search *Search) error {
	if search == nil {
		return errors.New("search cannot be nil")
	}
	if search.SessionID == "" {
		return errors.New(errSessionIDRequired)
	}
	if search.Query == "" {
		return errors.New("query is required")
	}
	if search.Page < 0 {
		return errors.New("page must be >= 0")
	}

	// Normalize query if not already set
	if search.QueryNorm == "" {
		search.QueryNorm = query.Normalize(search.Query)
	}
	if search.SearchedAtUnixMs == 0 {
		search.SearchedAtUnixMs = time.Now().UnixMilli()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO searches (
			session_id, query, query_norm, page,
			result_count, hidden_count, altered, searched_at_unix_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		search.SessionID,
		search.Query,
		search.QueryNorm,
		search.Page,
		search.ResultCount,
		search.HiddenCount,
		nullableString(search.Altered),
		search.SearchedAtUnixMs,
	)
	if err != nil {
		// Check for foreign key violation (invalid session_id)
		if isForeignKeyError(err) {
			return fmt.Errorf("session_id %s does not exist", search.SessionID)
		}
		return fmt.Errorf("failed to record search: %w", err)
	}

	// Get the auto-generated ID
	id, err := result.LastInsertId()
	if err == nil {
		search.ID = id
	}

	return nil
}

// QuerySearches queries recorded searches based on the given criteria.
func (s *SQLiteStore) QuerySearches(ctx context.Context, q SearchQuery) ([]Search, error) {
	// Build query dynamically based on provided filters
	sqlQuery := `
		SELECT id, session_id, query, query_norm, page,
		       result_count, hidden_count, altered, searched_at_unix_ms
		FROM searches
		WHERE 1=1
	`
	args := make([]interface{}, 0)

	if q.SessionID != nil {
		sqlQuery += " AND session_id = ?"
		args = append(args, *q.SessionID)
	}

	if q.Substring != "" {
		sqlQuery += " AND query_norm LIKE ?"
		args = append(args, "%"+query.Normalize(q.Substring)+"%")
	}

	sqlQuery += " ORDER BY searched_at_unix_ms DESC"

	if q.Limit > 0 {
		sqlQuery += " LIMIT ?"
		args = append(args, q.Limit)
	} else {
		// Default limit to prevent unbounded queries
		sqlQuery += " LIMIT 1000"
	}

	if q.Offset > 0 {
		sqlQuery += " OFFSET ?"
		args = append(args, q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query searches: %w", err)
	}
	defer rows.Close()

	var searches []Search
	for rows.Next() {
		var search Search
		var altered sql.NullString

		err := rows.Scan(
			&search.ID,
			&search.SessionID,
			&search.Query,
			&search.QueryNorm,
			&search.Page,
			&search.ResultCount,
			&search.HiddenCount,
			&altered,
			&search.SearchedAtUnixMs,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}

		if altered.Valid {
			search.Altered = altered.String
		}

		searches = append(searches, search)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating searches: %w", err)
	}

	return searches, nil
}

// RecentQueries returns the most recent distinct queries, newest first.
// Queries are deduplicated on their normalized form; the raw text of the
// most recent occurrence is returned.
func (s *SQLiteStore) RecentQueries(ctx context.Context, limit int) ([]QueryRow, error) {
	if limit <= 0 {
		limit = 25
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT query, MAX(searched_at_unix_ms) AS ts
		FROM searches
		GROUP BY query_norm
		ORDER BY ts DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent queries: %w", err)
	}
	defer rows.Close()

	var results []QueryRow
	for rows.Next() {
		var row QueryRow
		if err := rows.Scan(&row.Query, &row.TimestampMs); err != nil {
			return nil, fmt.Errorf("failed to scan query row: %w", err)
		}
		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating query rows: %w", err)
	}

	return results, nil
}

// isForeignKeyError checks if the error is a foreign key constraint violation.
func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return contains(errStr, "FOREIGN KEY constraint failed") ||
		contains(errStr, "foreign key constraint")
}
