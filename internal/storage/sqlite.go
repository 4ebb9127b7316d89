package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/aquatox/debsim/internal/fit"
)

// FitIndex records calibration outcomes in a sqlite database so fits
// across many sessions stay queryable.
type FitIndex struct {
	mu sync.Mutex
	db *sql.DB
}

// FitRecord is one indexed calibration.
type FitRecord struct {
	ID          string
	Name        string
	When        time.Time
	SSQStart    float64
	SSQ         float64
	Evaluations int
	// Fitted is the name -> value map of calibrated parameters.
	Fitted map[string]float64
}

// OpenFitIndex opens (and on first use creates) the index at path.
func OpenFitIndex(ctx context.Context, path string) (*FitIndex, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS fits (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			at TIMESTAMP NOT NULL,
			ssq_start REAL NOT NULL,
			ssq REAL NOT NULL,
			evaluations INTEGER NOT NULL,
			fitted TEXT NOT NULL
		);
	`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &FitIndex{db: db}, nil
}

func (ix *FitIndex) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.db.Close()
}

// Add indexes one report and returns its record id.
func (ix *FitIndex) Add(ctx context.Context, report *fit.Report) (string, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	fitted, err := json.Marshal(report.Fitted())
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	when := report.When
	if when.IsZero() {
		when = time.Now()
	}
	_, err = ix.db.ExecContext(ctx, `
		INSERT INTO fits (id, name, at, ssq_start, ssq, evaluations, fitted)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, report.Name, when, report.SSQStart, report.SSQ, report.Evaluations, string(fitted))
	if err != nil {
		return "", err
	}
	return id, nil
}

// List returns every indexed fit, newest first.
func (ix *FitIndex) List(ctx context.Context) ([]FitRecord, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	rows, err := ix.db.QueryContext(ctx, `
		SELECT id, name, at, ssq_start, ssq, evaluations, fitted
		FROM fits ORDER BY at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FitRecord
	for rows.Next() {
		var rec FitRecord
		var fitted string
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.When, &rec.SSQStart, &rec.SSQ, &rec.Evaluations, &fitted); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(fitted), &rec.Fitted); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
