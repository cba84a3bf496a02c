package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// TurnRecord is the metadata kept for one turn. Message content is never stored.
type TurnRecord struct {
	SessionID  string
	Backend    string
	Model      string
	Outcome    string
	HistoryLen int
	Latency    time.Duration
	At         time.Time
}

// Ledger records turn metadata in SQLite
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens (creating if needed) the ledger database at path
func OpenLedger(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	createTurnsTable := `
	CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		backend TEXT,
		model TEXT,
		outcome TEXT,
		history_len INTEGER,
		latency_ms INTEGER,
		timestamp DATETIME
	);`

	if _, err := db.Exec(createTurnsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create turns table: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Record inserts one turn
func (l *Ledger) Record(ctx context.Context, rec TurnRecord) error {
	_, err := l.db.ExecContext(ctx,
		"INSERT INTO turns (session_id, backend, model, outcome, history_len, latency_ms, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.SessionID, rec.Backend, rec.Model, rec.Outcome, rec.HistoryLen, rec.Latency.Milliseconds(), rec.At,
	)
	if err != nil {
		return fmt.Errorf("failed to record turn: %w", err)
	}
	return nil
}

// Close closes the database
func (l *Ledger) Close() error {
	return l.db.Close()
}
