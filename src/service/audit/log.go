// Package audit records training runs and their samples in a SQLite database.
package audit

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"smell-bot/src/model"
	"smell-bot/src/util"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id               TEXT PRIMARY KEY,
	trained_at       TEXT NOT NULL,
	feature_version  TEXT NOT NULL,
	synthetic        INTEGER NOT NULL,
	grid_search      INTEGER NOT NULL,
	samples          INTEGER NOT NULL,
	clean            INTEGER NOT NULL,
	smelly           INTEGER NOT NULL,
	holdout_accuracy REAL NOT NULL,
	cv_mean          REAL NOT NULL,
	cv_std           REAL NOT NULL,
	report           TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS samples (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	idx         INTEGER NOT NULL,
	label       INTEGER NOT NULL CHECK (label IN (0, 1)),
	description TEXT,
	features    TEXT NOT NULL,
	PRIMARY KEY (run_id, idx)
);
CREATE INDEX IF NOT EXISTS idx_runs_trained_at ON runs(trained_at);
`

// Run is one recorded training run
type Run struct {
	ID              string
	TrainedAt       time.Time
	Synthetic       bool
	Samples         int
	Clean           int
	Smelly          int
	HoldoutAccuracy float64
	CVMean          float64
	CVStd           float64
}

// Log is a training audit log backed by a single SQLite connection
type Log struct {
	mu   sync.Mutex
	conn *sqlite.Conn
	path string
}

// Open opens or creates the audit database at path
func Open(path string) (*Log, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate, sqlite.OpenReadWrite, sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("create audit schema: %w", err)
	}
	util.Debug("Audit log opened at %s", path)
	return &Log{conn: conn, path: path}, nil
}

// Close closes the database
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn.Close()
}

// Record stores a training run and the samples it was trained on in one transaction
func (l *Log) Record(report *model.TrainingReport, samples []model.TrainingSample) (err error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding training report: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	endFn, err := sqlitex.ImmediateTransaction(l.conn)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer endFn(&err)

	err = sqlitex.Execute(l.conn,
		`INSERT INTO runs (id, trained_at, feature_version, synthetic, grid_search, samples, clean, smelly,
		                   holdout_accuracy, cv_mean, cv_std, report)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{
			report.ModelID,
			report.TrainedAt.UTC().Format(time.RFC3339Nano),
			report.FeatureVersion,
			report.Synthetic,
			report.GridSearch,
			report.Samples,
			report.LabelCounts[model.LabelClean],
			report.LabelCounts[model.LabelSmelly],
			report.HoldoutAccuracy,
			report.CV.Mean,
			report.CV.Std,
			string(reportJSON),
		}})
	if err != nil {
		return fmt.Errorf("insert run %s: %w", report.ModelID, err)
	}

	stmt, err := l.conn.Prepare(`INSERT INTO samples (run_id, idx, label, description, features) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare sample insert: %w", err)
	}
	// cached by the connection, so it must be left reset even when a step fails
	defer stmt.Reset()
	for i, s := range samples {
		features, err := json.Marshal(s.Features)
		if err != nil {
			return fmt.Errorf("encoding sample %d: %w", i, err)
		}
		stmt.BindText(1, report.ModelID)
		stmt.BindInt64(2, int64(i))
		stmt.BindInt64(3, int64(s.Label))
		stmt.BindText(4, s.Description)
		stmt.BindText(5, string(features))
		if _, err := stmt.Step(); err != nil {
			return fmt.Errorf("insert sample %d: %w", i, err)
		}
		if err := stmt.Reset(); err != nil {
			return fmt.Errorf("reset sample insert: %w", err)
		}
	}

	util.Debug("Audit: recorded run %s with %d samples", report.ModelID, len(samples))
	return nil
}

// Runs returns the most recent runs, newest first
func (l *Log) Runs(limit int) ([]Run, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var runs []Run
	err := sqlitex.Execute(l.conn,
		`SELECT id, trained_at, synthetic, samples, clean, smelly, holdout_accuracy, cv_mean, cv_std
		 FROM runs ORDER BY trained_at DESC, id LIMIT ?`,
		&sqlitex.ExecOptions{
			Args: []any{limit},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				trainedAt, err := time.Parse(time.RFC3339Nano, stmt.ColumnText(1))
				if err != nil {
					return fmt.Errorf("parsing trained_at: %w", err)
				}
				runs = append(runs, Run{
					ID:              stmt.ColumnText(0),
					TrainedAt:       trainedAt,
					Synthetic:       stmt.ColumnBool(2),
					Samples:         stmt.ColumnInt(3),
					Clean:           stmt.ColumnInt(4),
					Smelly:          stmt.ColumnInt(5),
					HoldoutAccuracy: stmt.ColumnFloat(6),
					CVMean:          stmt.ColumnFloat(7),
					CVStd:           stmt.ColumnFloat(8),
				})
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return runs, nil
}

// Samples returns the samples recorded for a run in their original order
func (l *Log) Samples(runID string) ([]model.TrainingSample, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var samples []model.TrainingSample
	err := sqlitex.Execute(l.conn,
		`SELECT label, description, features FROM samples WHERE run_id = ? ORDER BY idx`,
		&sqlitex.ExecOptions{
			Args: []any{runID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				s := model.TrainingSample{
					Label:       stmt.ColumnInt(0),
					Description: stmt.ColumnText(1),
				}
				if err := json.Unmarshal([]byte(stmt.ColumnText(2)), &s.Features); err != nil {
					return fmt.Errorf("decoding features: %w", err)
				}
				samples = append(samples, s)
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("query samples of %s: %w", runID, err)
	}
	return samples, nil
}
