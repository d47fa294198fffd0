package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/revigodl/internal/model"
)

// FileName is the name of the database file inside the history directory.
const FileName = "revigodl.db"

// ErrNotFound is returned by Open when the database does not exist and
// creation was not requested.
var ErrNotFound = errors.New("history database not found")

// HistoryDB stores past runs.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the options used when recording a run.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	dsn := dbPath + "?mode=rwc"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		input_path TEXT NOT NULL,
		input_digest TEXT NOT NULL,
		prefix TEXT NOT NULL DEFAULT '',
		service_url TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_digest ON runs(input_digest);

	CREATE TABLE IF NOT EXISTS artifacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		kind TEXT NOT NULL,
		path TEXT NOT NULL DEFAULT '',
		size INTEGER NOT NULL DEFAULT 0,
		mime_type TEXT NOT NULL DEFAULT '',
		suppressed INTEGER NOT NULL DEFAULT 0,
		rendered INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_artifacts_run ON artifacts(run_id);
	`
	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is a stored run.
type RunRecord struct {
	ID  int64
	Run *model.Run
}

// SaveRun stores run and its artifacts, returning the new run ID.
func (h *HistoryDB) SaveRun(ctx context.Context, run *model.Run) (int64, error) {
	if run == nil || run.Document == nil {
		return 0, errors.New("run has no document")
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO runs (input_path, input_digest, prefix, service_url, started_at, finished_at, status, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.Document.Path,
		run.Document.Digest,
		run.Prefix,
		run.ServiceURL,
		formatTimestamp(run.StartedAt),
		formatTimestamp(run.FinishedAt),
		string(run.Status),
		run.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}

	for i, a := range run.Artifacts {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO artifacts (run_id, position, kind, path, size, mime_type, suppressed, rendered)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, id, i, string(a.Kind), a.Path, a.Size, a.MIMEType, a.Suppressed, a.Rendered)
		if err != nil {
			return 0, fmt.Errorf("failed to save artifact %s: %w", a.Kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less returns all runs.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
	SELECT id, input_path, input_digest, prefix, service_url, started_at, finished_at, status, error
	FROM runs
	ORDER BY started_at DESC, id DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var (
			rec      RunRecord
			doc      model.Document
			run      model.Run
			started  string
			finished sql.NullString
			status   string
		)
		if err := rows.Scan(&rec.ID, &doc.Path, &doc.Digest, &run.Prefix, &run.ServiceURL,
			&started, &finished, &status, &run.Error); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.Document = &doc
		run.StartedAt = parseTimestamp(started)
		if finished.Valid {
			run.FinishedAt = parseTimestamp(finished.String)
		}
		run.Status = model.RunStatus(status)
		rec.Run = &run
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// rows must be drained before the artifact queries on the single connection.
	rows.Close()

	for i := range records {
		artifacts, err := h.listArtifacts(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].Run.Artifacts = artifacts
	}
	return records, nil
}

// GetRun returns the run with the given ID, or nil if there is none.
func (h *HistoryDB) GetRun(ctx context.Context, id int64) (*model.Run, error) {
	var (
		doc      model.Document
		run      model.Run
		started  string
		finished sql.NullString
		status   string
	)
	err := h.db.QueryRowContext(ctx, `
	SELECT input_path, input_digest, prefix, service_url, started_at, finished_at, status, error
	FROM runs WHERE id = ?
	`, id).Scan(&doc.Path, &doc.Digest, &run.Prefix, &run.ServiceURL, &started, &finished, &status, &run.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	run.Document = &doc
	run.StartedAt = parseTimestamp(started)
	if finished.Valid {
		run.FinishedAt = parseTimestamp(finished.String)
	}
	run.Status = model.RunStatus(status)

	run.Artifacts, err = h.listArtifacts(ctx, id)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (h *HistoryDB) listArtifacts(ctx context.Context, runID int64) ([]model.ArtifactResult, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT kind, path, size, mime_type, suppressed, rendered
	FROM artifacts WHERE run_id = ?
	ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	artifacts := make([]model.ArtifactResult, 0, len(model.AllArtifactKinds()))
	for rows.Next() {
		var (
			a    model.ArtifactResult
			kind string
		)
		if err := rows.Scan(&kind, &a.Path, &a.Size, &a.MIMEType, &a.Suppressed, &a.Rendered); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		a.Kind = model.ArtifactKind(kind)
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

// timestampLayout is fixed width so that lexical order is time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats that SQLite may return.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp parses s with the known formats, returning zero time on failure.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
