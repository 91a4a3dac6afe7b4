package storage

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"certroster/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS deal_runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  dealId TEXT NOT NULL,
  trainingName TEXT,
  trainingLocation TEXT,
  trainingDate TEXT,
  secondaryTrainingDate TEXT,
  studentCount INTEGER NOT NULL,
  totalMs REAL NOT NULL,
  rosterJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_deal_runs_dealId ON deal_runs(dealId);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// InsertDealRun records one processed deal for auditing. Callers treat
// failures as non-fatal.
func (d *DB) InsertDealRun(dealID string, result internal.RosterResult, totalMs float64) (int64, error) {
	rosterJSON, err := json.Marshal(result)
	if err != nil {
		return 0, err
	}

	res, err := d.conn.Exec(`
INSERT INTO deal_runs (dealId, trainingName, trainingLocation, trainingDate, secondaryTrainingDate, studentCount, totalMs, rosterJson)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		dealID, result.TrainingName, result.TrainingLocation, result.TrainingDate,
		result.SecondaryTrainingDate, len(result.Students), totalMs, string(rosterJSON))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (d *DB) ListRecentRuns(limit int) ([]internal.DealRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.conn.Query(`
SELECT id, dealId, COALESCE(trainingName, ''), COALESCE(trainingLocation, ''),
       COALESCE(trainingDate, ''), COALESCE(secondaryTrainingDate, ''),
       studentCount, totalMs, createdAt
FROM deal_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]internal.DealRun, 0, limit)
	for rows.Next() {
		var run internal.DealRun
		if err := rows.Scan(&run.ID, &run.DealID, &run.TrainingName, &run.TrainingLocation,
			&run.TrainingDate, &run.SecondaryDate, &run.StudentCount, &run.TotalMs, &run.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (d *DB) LastRosterForDeal(dealID string) (*internal.RosterResult, error) {
	row := d.conn.QueryRow(`SELECT rosterJson FROM deal_runs WHERE dealId = ? ORDER BY id DESC LIMIT 1`, dealID)

	var rosterJSON string
	if err := row.Scan(&rosterJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	var result internal.RosterResult
	if err := json.Unmarshal([]byte(rosterJSON), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value, updatedAt) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	row := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &value, nil
}
