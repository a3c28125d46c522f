// Package store keeps the settings singleton and the presentation history in
// a local SQLite database. Every failure here is a warning, never a fatal
// error: the interactive flow continues on built-in defaults.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/taqdimot/slide-generation-service/internal/deck"
)

const settingsRowID = "default"

var ErrNotFound = errors.New("record not found")

type HistoryEntry struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Data      deck.Presentation `json:"data"`
	FileName  string            `json:"file_name"`
	CreatedAt time.Time         `json:"created_at"`
}

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=1")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) createTables() error {
	const settingsDDL = `
	CREATE TABLE IF NOT EXISTS site_settings (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL
	);`
	if _, err := s.db.Exec(settingsDDL); err != nil {
		return fmt.Errorf("create site_settings table: %w", err)
	}

	const historyDDL = `
	CREATE TABLE IF NOT EXISTS presentations (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		data TEXT NOT NULL,
		file_name TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := s.db.Exec(historyDDL); err != nil {
		return fmt.Errorf("create presentations table: %w", err)
	}

	const historyIdx = `CREATE INDEX IF NOT EXISTS idx_presentations_created_at ON presentations(created_at);`
	if _, err := s.db.Exec(historyIdx); err != nil {
		return fmt.Errorf("create created_at index: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Settings reads the singleton settings record.
func (s *Store) Settings() (SiteSettings, error) {
	var raw string
	err := s.db.QueryRow(`SELECT data FROM site_settings WHERE id = ?`, settingsRowID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return SiteSettings{}, ErrNotFound
	}
	if err != nil {
		return SiteSettings{}, fmt.Errorf("read settings: %w", err)
	}

	var out SiteSettings
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return SiteSettings{}, fmt.Errorf("decode settings: %w", err)
	}
	return out, nil
}

// SaveSettings upserts the singleton. Last write wins; no conflict handling
// by design (single-admin scope).
func (s *Store) SaveSettings(settings SiteSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO site_settings (id, data) VALUES (?, ?) ON CONFLICT(id) DO UPDATE SET data = excluded.data`,
		settingsRowID, string(raw))
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// SaveHistory stores a generated presentation. The stored payload round-trips
// byte-identically: the full Presentation JSON is written as-is.
func (s *Store) SaveHistory(p deck.Presentation, fileName string) (HistoryEntry, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return HistoryEntry{}, fmt.Errorf("encode presentation: %w", err)
	}

	entry := HistoryEntry{
		ID:        uuid.NewString(),
		Title:     p.Title,
		Data:      p,
		FileName:  fileName,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.Exec(
		`INSERT INTO presentations (id, title, data, file_name, created_at) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.Title, string(raw), entry.FileName, entry.CreatedAt)
	if err != nil {
		return HistoryEntry{}, fmt.Errorf("save history: %w", err)
	}
	return entry, nil
}

// History lists prior presentations, newest first.
func (s *Store) History() ([]HistoryEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, title, data, file_name, created_at FROM presentations ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var raw string
		if err := rows.Scan(&e.ID, &e.Title, &raw, &e.FileName, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &e.Data); err != nil {
			return nil, fmt.Errorf("decode history entry %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// HistoryByID loads one stored presentation.
func (s *Store) HistoryByID(id string) (HistoryEntry, error) {
	var e HistoryEntry
	var raw string
	err := s.db.QueryRow(
		`SELECT id, title, data, file_name, created_at FROM presentations WHERE id = ?`, id).
		Scan(&e.ID, &e.Title, &raw, &e.FileName, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return HistoryEntry{}, ErrNotFound
	}
	if err != nil {
		return HistoryEntry{}, fmt.Errorf("read history entry: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &e.Data); err != nil {
		return HistoryEntry{}, fmt.Errorf("decode history entry %s: %w", id, err)
	}
	return e, nil
}

// DeleteHistory removes one record by id.
func (s *Store) DeleteHistory(id string) error {
	res, err := s.db.Exec(`DELETE FROM presentations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete history entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
