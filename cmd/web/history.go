package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Conversion is one history entry shown on the index page and the API.
type Conversion struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Sequences int       `json:"sequences"`
	Warnings  []string  `json:"warnings,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// History store configuration. historyStore selects the backend ("json" or
// "sqlite"); historyDB is the open handle when the sqlite backend is active.
var (
	historyMu    sync.Mutex
	historyStore = "json"
	historyPath  = "history.json"
	historyDB    *sql.DB
)

// historyLimit caps how many conversions are kept.
const historyLimit = 50

func ensureHistoryDB(path string) error {
	if historyDB != nil {
		return nil
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS conversions (
        id TEXT PRIMARY KEY,
        source TEXT,
        sequences INTEGER,
        warnings TEXT,
        created_at TEXT
    )`); err != nil {
		db.Close()
		return err
	}
	historyDB = db
	return nil
}

// saveHistory persists the full history snapshot (simple read-modify-write;
// the history is small and capped).
func saveHistory(path string, conversions []Conversion) error {
	if historyStore == "sqlite" {
		if err := ensureHistoryDB(path); err != nil {
			return err
		}
		tx, err := historyDB.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM conversions`); err != nil {
			tx.Rollback()
			return err
		}
		for _, c := range conversions {
			warnings, _ := json.Marshal(c.Warnings)
			if _, err := tx.Exec(`INSERT INTO conversions (id, source, sequences, warnings, created_at) VALUES (?, ?, ?, ?, ?)`,
				c.ID, c.Source, c.Sequences, string(warnings), c.CreatedAt.UTC().Format(time.RFC3339)); err != nil {
				tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	}
	b, err := json.MarshalIndent(conversions, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func loadHistory(path string) ([]Conversion, error) {
	if historyStore == "sqlite" {
		if err := ensureHistoryDB(path); err != nil {
			return nil, err
		}
		rows, err := historyDB.Query(`SELECT id, source, sequences, warnings, created_at FROM conversions ORDER BY created_at DESC`)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		var out []Conversion
		for rows.Next() {
			var c Conversion
			var warnings, createdAt string
			if err := rows.Scan(&c.ID, &c.Source, &c.Sequences, &warnings, &createdAt); err != nil {
				return nil, err
			}
			if warnings != "" {
				_ = json.Unmarshal([]byte(warnings), &c.Warnings)
			}
			if ts, perr := time.Parse(time.RFC3339, createdAt); perr == nil {
				c.CreatedAt = ts
			}
			out = append(out, c)
		}
		return out, rows.Err()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []Conversion
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// addConversion prepends a history entry and persists the capped list.
// History is best effort: a store failure is logged, never surfaced to the
// client whose conversion already succeeded.
func addConversion(source string, sequences int, warnings []string) Conversion {
	c := Conversion{
		ID:        uuid.NewString(),
		Source:    source,
		Sequences: sequences,
		Warnings:  warnings,
		CreatedAt: time.Now().UTC(),
	}
	historyMu.Lock()
	defer historyMu.Unlock()
	existing, err := loadHistory(historyPath)
	if err != nil {
		log.Printf("warning: failed to load history: %v", err)
		existing = nil
	}
	updated := append([]Conversion{c}, existing...)
	if len(updated) > historyLimit {
		updated = updated[:historyLimit]
	}
	if err := saveHistory(historyPath, updated); err != nil {
		log.Printf("warning: failed to save history: %v", err)
	}
	return c
}
