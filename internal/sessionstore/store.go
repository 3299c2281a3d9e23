package sessionstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"signalgen/internal/config"
	"signalgen/internal/signal"
	"signalgen/internal/workflow"
)

// ErrNotFound is returned when no snapshot exists for an instance id.
var ErrNotFound = errors.New("workflow snapshot not found")

// Store manages snapshot persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// OpenFromConfig opens the store at the configured state directory.
func OpenFromConfig(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return Open(cfg.SessionDBPath())
}

// Open initializes or connects to the snapshot database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save inserts or replaces the snapshot for snap.InstanceID.
func (s *Store) Save(ctx context.Context, snap workflow.Snapshot) error {
	if snap.InstanceID == "" {
		return errors.New("snapshot instance id is required")
	}
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now()
	}
	var resultJSON, sessionID any
	if snap.Result != nil {
		encoded, err := json.Marshal(snap.Result)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		resultJSON = string(encoded)
		sessionID = nullableString(snap.Result.SessionID)
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO workflow_snapshots (
            instance_id, step, family, category, pattern_id,
            duration_seconds, sampling_rate_hz, session_id, result_json, saved_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(instance_id) DO UPDATE SET
            step = excluded.step,
            family = excluded.family,
            category = excluded.category,
            pattern_id = excluded.pattern_id,
            duration_seconds = excluded.duration_seconds,
            sampling_rate_hz = excluded.sampling_rate_hz,
            session_id = excluded.session_id,
            result_json = excluded.result_json,
            saved_at = excluded.saved_at`,
		snap.InstanceID,
		string(snap.Step),
		nullableString(string(snap.Family)),
		nullableString(string(snap.Category)),
		nullableString(snap.PatternID),
		snap.Settings.DurationSeconds,
		snap.Settings.SamplingRateHz,
		sessionID,
		resultJSON,
		snap.SavedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

const selectColumns = `instance_id, step, family, category, pattern_id,
    duration_seconds, sampling_rate_hz, result_json, saved_at`

// Load returns the snapshot for instanceID.
func (s *Store) Load(ctx context.Context, instanceID string) (workflow.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM workflow_snapshots WHERE instance_id = ?", instanceID)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return workflow.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, instanceID)
	}
	return snap, err
}

// List returns every snapshot, most recently saved first.
func (s *Store) List(ctx context.Context) ([]workflow.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM workflow_snapshots ORDER BY saved_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []workflow.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}

// Delete removes the snapshot for instanceID. Missing rows are not an error.
func (s *Store) Delete(ctx context.Context, instanceID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM workflow_snapshots WHERE instance_id = ?", instanceID); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// Clear removes every snapshot and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM workflow_snapshots")
	if err != nil {
		return 0, fmt.Errorf("clear snapshots: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (workflow.Snapshot, error) {
	var (
		snap                        workflow.Snapshot
		step                        string
		family, category, patternID sql.NullString
		resultJSON                  sql.NullString
		savedAt                     string
	)
	if err := row.Scan(
		&snap.InstanceID,
		&step,
		&family,
		&category,
		&patternID,
		&snap.Settings.DurationSeconds,
		&snap.Settings.SamplingRateHz,
		&resultJSON,
		&savedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return workflow.Snapshot{}, err
		}
		return workflow.Snapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}
	snap.Step = workflow.Step(step)
	snap.Family = signal.Family(family.String)
	snap.Category = signal.Category(category.String)
	snap.PatternID = patternID.String
	if resultJSON.Valid && resultJSON.String != "" {
		var result signal.GenerationResult
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
			return workflow.Snapshot{}, fmt.Errorf("decode result for %s: %w", snap.InstanceID, err)
		}
		snap.Result = &result
	}
	parsed, err := time.Parse(time.RFC3339Nano, savedAt)
	if err != nil {
		return workflow.Snapshot{}, fmt.Errorf("parse saved_at for %s: %w", snap.InstanceID, err)
	}
	snap.SavedAt = parsed
	return snap, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
