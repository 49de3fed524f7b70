package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wricardo/roadlink/game/service"
)

// SQLitePersistence implements SessionPersistence on a SQLite database.
// Levels and states are stored as JSON columns next to indexed metadata.
type SQLitePersistence struct {
	db *sql.DB
}

// NewSQLitePersistence opens or creates the database at path
func NewSQLitePersistence(path string) (*SQLitePersistence, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps :memory: databases shared and serializes writers
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	sp := &SQLitePersistence{db: db}
	if err := sp.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return sp, nil
}

// Close closes the database connection
func (sp *SQLitePersistence) Close() error {
	return sp.db.Close()
}

func (sp *SQLitePersistence) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY COLLATE NOCASE,
			level_id TEXT NOT NULL,
			level_name TEXT NOT NULL DEFAULT '',
			complete INTEGER NOT NULL DEFAULT 0,
			total_rotations INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			last_accessed_at TIMESTAMP NOT NULL,
			accessed_unix INTEGER NOT NULL DEFAULT 0,
			level_json TEXT NOT NULL,
			state_json TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_last_accessed ON sessions(accessed_unix)`,
	}

	for _, m := range migrations {
		if _, err := sp.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// Save upserts a session row
func (sp *SQLitePersistence) Save(session *service.Session) error {
	data, err := persistedFrom(session)
	if err != nil {
		return err
	}

	levelJSON, err := json.Marshal(data.Level)
	if err != nil {
		return fmt.Errorf("failed to marshal level: %w", err)
	}
	stateJSON, err := json.Marshal(data.GameState)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}

	_, err = sp.db.Exec(`
		INSERT INTO sessions (id, level_id, level_name, complete, total_rotations, created_at, last_accessed_at, accessed_unix, level_json, state_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			level_id = excluded.level_id,
			level_name = excluded.level_name,
			complete = excluded.complete,
			total_rotations = excluded.total_rotations,
			last_accessed_at = excluded.last_accessed_at,
			accessed_unix = excluded.accessed_unix,
			level_json = excluded.level_json,
			state_json = excluded.state_json`,
		strings.ToLower(data.ID), data.LevelID, data.Level.Name, data.GameState.Complete, data.GameState.TotalRotations,
		data.CreatedAt.UTC(), data.LastAccessedAt.UTC(), data.LastAccessedAt.UnixNano(), string(levelJSON), string(stateJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", data.ID, err)
	}
	return nil
}

// Load retrieves a session row and rebuilds its engine
func (sp *SQLitePersistence) Load(id string) (*service.Session, error) {
	var (
		data                  PersistedSessionData
		createdAt, accessedAt time.Time
		levelJSON, stateJSON  string
	)

	err := sp.db.QueryRow(
		`SELECT id, level_id, created_at, last_accessed_at, level_json, state_json FROM sessions WHERE id = ?`,
		strings.ToLower(id),
	).Scan(&data.ID, &data.LevelID, &createdAt, &accessedAt, &levelJSON, &stateJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(levelJSON), &data.Level); err != nil {
		return nil, fmt.Errorf("failed to unmarshal level: %w", err)
	}
	if err := json.Unmarshal([]byte(stateJSON), &data.GameState); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}
	data.CreatedAt = createdAt
	data.LastAccessedAt = accessedAt

	return data.restore()
}

// Delete removes a session row
func (sp *SQLitePersistence) Delete(id string) error {
	res, err := sp.db.Exec(`DELETE FROM sessions WHERE id = ?`, strings.ToLower(id))
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all persisted session IDs, most recently used first
func (sp *SQLitePersistence) ListAll() ([]string, error) {
	rows, err := sp.db.Query(`SELECT id FROM sessions ORDER BY accessed_unix DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a session row exists
func (sp *SQLitePersistence) Exists(id string) bool {
	var one int
	err := sp.db.QueryRow(`SELECT 1 FROM sessions WHERE id = ?`, strings.ToLower(id)).Scan(&one)
	return err == nil
}

// PurgeBefore deletes sessions not accessed since cutoff and returns how
// many rows were removed
func (sp *SQLitePersistence) PurgeBefore(cutoff time.Time) (int64, error) {
	res, err := sp.db.Exec(`DELETE FROM sessions WHERE accessed_unix < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return res.RowsAffected()
}
