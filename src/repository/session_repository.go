package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/2003abishek/sms-tracker/src/db"
	"github.com/2003abishek/sms-tracker/src/models"

	"github.com/google/uuid"
)

// SessionRepository handles all database operations for tracking sessions
type SessionRepository struct {
	db *db.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(database *db.DB) *SessionRepository {
	return &SessionRepository{
		db: database,
	}
}

// CreateSession inserts a new pending tracking session with a 24h expiry.
func (r *SessionRepository) CreateSession(ctx context.Context, senderPhone, recipientPhone, message string) (*models.TrackingSession, error) {
	sessionID := uuid.New().String()
	now := time.Now().UTC()

	query := `
		INSERT INTO tracking_sessions
		(id, sender_phone, recipient_phone, message, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, sender_phone, recipient_phone, message, status, created_at, expires_at
	`

	var session models.TrackingSession
	var sender, msg sql.NullString
	err := r.db.GetConnection().QueryRowContext(
		ctx,
		query,
		sessionID,
		nullable(senderPhone),
		recipientPhone,
		nullable(message),
		models.StatusPending,
		now,                        // created_at
		now.Add(models.SessionTTL), // expires_at
	).Scan(
		&session.ID,
		&sender,
		&session.RecipientPhone,
		&msg,
		&session.Status,
		&session.CreatedAt,
		&session.ExpiresAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	session.SenderPhone = sender.String
	session.Message = msg.String

	slog.Info("Created new tracking session",
		"session_id", session.ID,
		"recipient_phone", session.RecipientPhone)

	return &session, nil
}

// GetSessionByID retrieves a tracking session by its ID.
// Returns models.ErrSessionNotFound if no session exists.
func (r *SessionRepository) GetSessionByID(ctx context.Context, sessionID string) (*models.TrackingSession, error) {
	query := `
		SELECT id, sender_phone, recipient_phone, message, status, created_at, expires_at
		FROM tracking_sessions
		WHERE id = $1
	`

	var session models.TrackingSession
	var sender, msg sql.NullString
	err := r.db.GetConnection().QueryRowContext(ctx, query, sessionID).Scan(
		&session.ID,
		&sender,
		&session.RecipientPhone,
		&msg,
		&session.Status,
		&session.CreatedAt,
		&session.ExpiresAt,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrSessionNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	session.SenderPhone = sender.String
	session.Message = msg.String

	return &session, nil
}

// ListSessions returns all tracking sessions, newest first.
func (r *SessionRepository) ListSessions(ctx context.Context) ([]models.TrackingSession, error) {
	query := `
		SELECT id, sender_phone, recipient_phone, message, status, created_at, expires_at
		FROM tracking_sessions
		ORDER BY created_at DESC
	`

	rows, err := r.db.GetConnection().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.TrackingSession
	for rows.Next() {
		var session models.TrackingSession
		var sender, msg sql.NullString
		if err := rows.Scan(
			&session.ID,
			&sender,
			&session.RecipientPhone,
			&msg,
			&session.Status,
			&session.CreatedAt,
			&session.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		session.SenderPhone = sender.String
		session.Message = msg.String
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return sessions, nil
}

// RecordLocation appends a location update and, if the session is still
// pending, flips it to active. Both happen in one transaction: either the
// status change and the new row commit together, or neither does.
func (r *SessionRepository) RecordLocation(ctx context.Context, sessionID string, latitude, longitude float64, accuracy *float64) (*models.LocationUpdate, error) {
	tx, err := r.db.GetConnection().BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	statusQuery := `
		UPDATE tracking_sessions
		SET status = $1
		WHERE id = $2 AND status = $3
	`
	if _, err := tx.ExecContext(ctx, statusQuery, models.StatusActive, sessionID, models.StatusPending); err != nil {
		return nil, fmt.Errorf("failed to update session status: %w", err)
	}

	now := time.Now().UTC()
	insertQuery := `
		INSERT INTO location_updates (session_id, latitude, longitude, accuracy, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, session_id, latitude, longitude, accuracy, timestamp
	`

	var update models.LocationUpdate
	var acc sql.NullFloat64
	err = tx.QueryRowContext(ctx, insertQuery, sessionID, latitude, longitude, nullFloat(accuracy), now).Scan(
		&update.ID,
		&update.SessionID,
		&update.Latitude,
		&update.Longitude,
		&acc,
		&update.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert location update: %w", err)
	}
	if acc.Valid {
		update.Accuracy = &acc.Float64
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit location update: %w", err)
	}

	slog.Info("Recorded location update",
		"session_id", sessionID,
		"location_id", update.ID)

	return &update, nil
}

// GetLocations returns all location updates for a session in chronological
// order; insertion order breaks timestamp ties.
func (r *SessionRepository) GetLocations(ctx context.Context, sessionID string) ([]models.LocationUpdate, error) {
	query := `
		SELECT id, session_id, latitude, longitude, accuracy, timestamp, address
		FROM location_updates
		WHERE session_id = $1
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := r.db.GetConnection().QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get locations: %w", err)
	}
	defer rows.Close()

	var updates []models.LocationUpdate
	for rows.Next() {
		var update models.LocationUpdate
		var acc sql.NullFloat64
		var addr sql.NullString
		if err := rows.Scan(
			&update.ID,
			&update.SessionID,
			&update.Latitude,
			&update.Longitude,
			&acc,
			&update.Timestamp,
			&addr,
		); err != nil {
			return nil, fmt.Errorf("failed to scan location update: %w", err)
		}
		if acc.Valid {
			update.Accuracy = &acc.Float64
		}
		if addr.Valid {
			update.Address = &addr.String
		}
		updates = append(updates, update)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate locations: %w", err)
	}

	return updates, nil
}

// DeleteSession removes a session; its location updates go with it via the
// ON DELETE CASCADE constraint.
func (r *SessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	result, err := r.db.GetConnection().ExecContext(ctx,
		`DELETE FROM tracking_sessions WHERE id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrSessionNotFound
	}

	slog.Info("Deleted tracking session", "session_id", sessionID)
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
