// Package storage persists chat exchanges in SQLite so served
// conversations can be reviewed and fed back into the corpus later.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

// Exchange is one served chat request/response pair.
type Exchange struct {
	ID        int64
	RequestID string
	Message   string
	Intent    string
	Response  string
	Algorithm string
	CreatedAt time.Time
}

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
	path string
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	// Ensure directory exists (skip for in-memory database)
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(time.Hour)

	// WAL keeps readers unblocked while the handler writes exchanges.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=30000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to apply %s: %w", pragma, err)
		}
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn, path: dbPath}
	if err := db.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return db, nil
}

func (db *DB) initSchema() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS chat_exchanges (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			request_id TEXT NOT NULL,
			message TEXT NOT NULL,
			intent TEXT NOT NULL,
			response TEXT NOT NULL,
			algorithm TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_chat_exchanges_intent ON chat_exchanges(intent);
		CREATE INDEX IF NOT EXISTS idx_chat_exchanges_created_at ON chat_exchanges(created_at);
	`)
	return err
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// InsertExchange records one served exchange.
func (db *DB) InsertExchange(ctx context.Context, e Exchange) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO chat_exchanges (request_id, message, intent, response, algorithm)
		VALUES (?, ?, ?, ?, ?)`,
		e.RequestID, e.Message, e.Intent, e.Response, e.Algorithm,
	)
	if err != nil {
		return fmt.Errorf("insert exchange: %w", err)
	}
	return nil
}

// CountExchanges returns the total number of stored exchanges.
func (db *DB) CountExchanges(ctx context.Context) (int64, error) {
	var count int64
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM chat_exchanges").Scan(&count); err != nil {
		return 0, fmt.Errorf("count exchanges: %w", err)
	}
	return count, nil
}

// RecentExchanges returns up to limit exchanges, newest first.
func (db *DB) RecentExchanges(ctx context.Context, limit int) ([]Exchange, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, request_id, message, intent, response, algorithm, created_at
		FROM chat_exchanges
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query exchanges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Exchange
	for rows.Next() {
		var e Exchange
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Message, &e.Intent, &e.Response, &e.Algorithm, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exchange: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
