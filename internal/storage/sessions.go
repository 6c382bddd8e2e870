package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session is not found.
var ErrSessionNotFound = errors.New("session not found")

// errSessionIDRequired is the validation message for a missing session_id.
const errSessionIDRequired = "session_id is required"

// CreateSession creates a new session record.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *Session) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	if session.SessionID == "" {
		return errors.New(errSessionIDRequired)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (
			session_id, started_at_unix_ms, ended_at_unix_ms,
			hostname, username
		) VALUES (?, ?, ?, ?, ?)
	`,
		session.SessionID,
		session.StartedAtUnixMs,
		session.EndedAtUnixMs,
		nullableString(session.Hostname),
		nullableString(session.Username),
	)
	if err != nil {
		// Check for duplicate key error
		if isDuplicateKeyError(err) {
			return fmt.Errorf("session with id %s already exists", session.SessionID)
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// EndSession updates a session's end time.
func (s *SQLiteStore) EndSession(ctx context.Context, sessionID string, endTime int64) error {
	if sessionID == "" {
		return errors.New(errSessionIDRequired)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET ended_at_unix_ms = ? WHERE session_id = ?
	`, endTime, sessionID)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, errors.New(errSessionIDRequired)
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, started_at_unix_ms, ended_at_unix_ms,
		       hostname, username
		FROM sessions WHERE session_id = ?
	`, sessionID)

	var session Session
	var endedAt sql.NullInt64
	var hostname, username sql.NullString

	err := row.Scan(
		&session.SessionID,
		&session.StartedAtUnixMs,
		&endedAt,
		&hostname,
		&username,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if endedAt.Valid {
		session.EndedAtUnixMs = &endedAt.Int64
	}
	if hostname.Valid {
		session.Hostname = hostname.String
	}
	if username.Valid {
		session.Username = username.String
	}

	return &session, nil
}

// nullableString converts an empty string to a nil sql.NullString.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

// isDuplicateKeyError checks if the error is a duplicate key constraint violation.
func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return contains(errStr, "UNIQUE constraint failed") ||
		contains(errStr, "duplicate key") ||
		contains(errStr, "already exists")
}
