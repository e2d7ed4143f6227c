package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/2003abishek/sms-tracker/src/config"

	_ "github.com/lib/pq"
)

// DB represents the database connection and operations
type DB struct {
	conn *sql.DB
}

// NewDB creates a new database connection
func NewDB(cfg *config.GlobalConfig) (*DB, error) {
	conn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Set connection pool settings
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Connected to PostgreSQL database")

	if err := bootstrapSchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to bootstrap schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// GetConnection returns the underlying sql.DB connection
func (db *DB) GetConnection() *sql.DB {
	return db.conn
}

// Ping verifies the connection is still alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// schemaDDL creates the two tables and their indexes. A location update cannot
// exist without its parent session; deleting a session deletes its updates.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS tracking_sessions (
    id              VARCHAR(36) PRIMARY KEY,
    sender_phone    VARCHAR(20),
    recipient_phone VARCHAR(20) NOT NULL,
    message         TEXT,
    status          VARCHAR(20) NOT NULL DEFAULT 'pending',
    created_at      TIMESTAMPTZ NOT NULL,
    expires_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS location_updates (
    id         SERIAL PRIMARY KEY,
    session_id VARCHAR(36) NOT NULL REFERENCES tracking_sessions(id) ON DELETE CASCADE,
    latitude   DOUBLE PRECISION NOT NULL,
    longitude  DOUBLE PRECISION NOT NULL,
    accuracy   DOUBLE PRECISION,
    timestamp  TIMESTAMPTZ NOT NULL,
    address    TEXT
);

CREATE INDEX IF NOT EXISTS idx_tracking_sessions_created_at
    ON tracking_sessions (created_at DESC);

CREATE INDEX IF NOT EXISTS idx_location_updates_session_time
    ON location_updates (session_id, timestamp);
`

// bootstrapSchema executes the embedded DDL to create tables and indexes.
func bootstrapSchema(conn *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := conn.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}

	slog.Info("Schema bootstrap complete - tables and indexes created/verified")
	return nil
}
