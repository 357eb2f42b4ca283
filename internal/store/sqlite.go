// Package store persists enriched job records and run history in
// SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"fdescout/internal/model"
)

// SQLiteStore holds jobs, per-source run logs, and the skill frequency
// rollup.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	job_url         TEXT PRIMARY KEY,
	title           TEXT NOT NULL,
	company         TEXT,
	location        TEXT,
	apply_url       TEXT,
	source          TEXT,
	posted_at       DATETIME,
	scraped_at      DATETIME NOT NULL,
	raw_description TEXT,
	salary_range    TEXT,
	employment_type TEXT,
	sections        TEXT,
	skills          TEXT,
	relevance       REAL NOT NULL DEFAULT 0,
	active          INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS scrape_runs (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL,
	source     TEXT NOT NULL,
	found      INTEGER NOT NULL,
	added      INTEGER NOT NULL,
	errors     TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS skill_frequencies (
	category   TEXT NOT NULL,
	skill      TEXT NOT NULL,
	frequency  INTEGER NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (category, skill)
);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and
// ensures the schema exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Exists reports whether a job with the given URL has been saved. The
// lookup uses the URL exactly as stored, with no normalization.
func (s *SQLiteStore) Exists(jobURL string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM jobs WHERE job_url = ?", jobURL).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking existence of %s: %w", jobURL, err)
	}
	return true, nil
}

// SaveBatch inserts records in one transaction. Records whose URL is
// already present are ignored rather than overwritten.
func (s *SQLiteStore) SaveBatch(records []model.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning save batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO jobs
		(job_url, title, company, location, apply_url, source, posted_at,
		 scraped_at, raw_description, salary_range, employment_type,
		 sections, skills, relevance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing save batch: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		sections, err := json.Marshal(rec.Sections)
		if err != nil {
			return fmt.Errorf("encoding sections for %s: %w", rec.JobURL, err)
		}
		skills, err := json.Marshal(rec.Skills)
		if err != nil {
			return fmt.Errorf("encoding skills for %s: %w", rec.JobURL, err)
		}

		if _, err := stmt.Exec(
			rec.JobURL, rec.Title, rec.Company, rec.Location, rec.ApplyURL,
			rec.Source, rec.PostedAt, rec.ScrapedAt, rec.RawDescription,
			rec.SalaryRange, rec.EmploymentType, string(sections),
			string(skills), rec.Relevance,
		); err != nil {
			return fmt.Errorf("saving %s: %w", rec.JobURL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save batch: %w", err)
	}
	return nil
}

// RecordRunLog appends one per-source row to the run history.
func (s *SQLiteStore) RecordRunLog(runID, source string, found, added int, errs []string) error {
	encoded, err := json.Marshal(errs)
	if err != nil {
		return fmt.Errorf("encoding run errors: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT INTO scrape_runs (run_id, source, found, added, errors) VALUES (?, ?, ?, ?, ?)",
		runID, source, found, added, string(encoded),
	)
	if err != nil {
		return fmt.Errorf("recording run log for %s: %w", source, err)
	}
	return nil
}

// RunLog is one row of run history.
type RunLog struct {
	RunID     string
	Source    string
	Found     int
	Added     int
	Errors    []string
	CreatedAt time.Time
}

// RecentRuns returns the most recent run log rows, newest first.
func (s *SQLiteStore) RecentRuns(limit int) ([]RunLog, error) {
	rows, err := s.db.Query(
		"SELECT run_id, source, found, added, errors, created_at FROM scrape_runs ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent runs: %w", err)
	}
	defer rows.Close()

	var logs []RunLog
	for rows.Next() {
		var rl RunLog
		var errsJSON string
		if err := rows.Scan(&rl.RunID, &rl.Source, &rl.Found, &rl.Added, &errsJSON, &rl.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning run log: %w", err)
		}
		if errsJSON != "" {
			if err := json.Unmarshal([]byte(errsJSON), &rl.Errors); err != nil {
				return nil, fmt.Errorf("decoding run errors: %w", err)
			}
		}
		logs = append(logs, rl)
	}
	return logs, rows.Err()
}

// ActiveDescriptions returns the raw descriptions of all active jobs,
// for the skill frequency rollup.
func (s *SQLiteStore) ActiveDescriptions() ([]string, error) {
	rows, err := s.db.Query("SELECT raw_description FROM jobs WHERE active = 1 AND raw_description != ''")
	if err != nil {
		return nil, fmt.Errorf("querying active descriptions: %w", err)
	}
	defer rows.Close()

	var descriptions []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning description: %w", err)
		}
		descriptions = append(descriptions, d)
	}
	return descriptions, rows.Err()
}

// UpsertSkillFrequencies replaces the stored frequency for every skill
// in counts. Skills absent from counts keep their old rows.
func (s *SQLiteStore) UpsertSkillFrequencies(counts map[string]map[string]int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning frequency upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO skill_frequencies (category, skill, frequency, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (category, skill) DO UPDATE SET
			frequency = excluded.frequency,
			updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("preparing frequency upsert: %w", err)
	}
	defer stmt.Close()

	for category, skills := range counts {
		for skill, freq := range skills {
			if _, err := stmt.Exec(category, skill, freq); err != nil {
				return fmt.Errorf("upserting %s/%s: %w", category, skill, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing frequency upsert: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
