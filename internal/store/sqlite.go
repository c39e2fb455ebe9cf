package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/me/gosched/internal/logging"
	"github.com/me/gosched/pkg/model"

	_ "modernc.org/sqlite"
)

// timeFormat is fixed width so created_at sorts chronologically as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// An in-memory database lives per connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logging.OrDiscard(logger).With("component", "store"),
	}, nil
}

// Open opens the database at dbPath and applies migrations.
func Open(ctx context.Context, dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	st, err := NewSQLiteStore(dbPath, logger)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("migrate %s: %w", dbPath, err)
	}
	return st, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// --- Run history ---

// CreateRun implements engine.Recorder.
func (s *SQLiteStore) CreateRun(ctx context.Context, rec *model.RunRecord) error {
	s.logger.Debug("sql", "op", "insert", "table", "runs", "id", rec.ID)

	summaryJSON, err := json.Marshal(rec.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	eventsJSON, err := marshalList(rec.Events)
	if err != nil {
		return fmt.Errorf("marshal events: %w", err)
	}
	jobsJSON, err := marshalList(rec.Jobs)
	if err != nil {
		return fmt.Errorf("marshal jobs: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, simulation_id, policy, workload, quantum, job_count, clock, summary, events, jobs, duration_ns, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SimulationID, string(rec.Policy), rec.Workload, rec.Quantum, rec.JobCount, rec.Clock,
		string(summaryJSON), eventsJSON, jobsJSON, int64(rec.Duration),
		rec.CreatedAt.UTC().Format(timeFormat),
	)
	return err
}

const runColumns = `id, simulation_id, policy, workload, quantum, job_count, clock, summary, events, jobs, duration_ns, created_at`

// GetRun returns the run with the given id, or nil when it does not exist.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.RunRecord, error) {
	s.logger.Debug("sql", "op", "select", "table", "runs", "id", id)

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	rec, err := scanRun(row, true)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListRuns returns recorded runs, newest first, without their timelines, and
// the total count matching opts.
func (s *SQLiteStore) ListRuns(ctx context.Context, opts model.ListOptions) ([]*model.RunRecord, int, error) {
	s.logger.Debug("sql", "op", "list", "table", "runs", "limit", opts.Limit, "offset", opts.Offset)
	opts.Clamp()

	var whereClauses []string
	var countArgs []any
	if opts.Policy != "" {
		whereClauses = append(whereClauses, "policy = ?")
		countArgs = append(countArgs, string(opts.Policy))
	}
	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`+whereSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := `SELECT ` + runColumns + ` FROM runs` + whereSQL + ` ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`
	listArgs := append(countArgs, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []*model.RunRecord
	for rows.Next() {
		rec, err := scanRun(rows, false)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, rec)
	}
	return runs, total, rows.Err()
}

// ListRunsBySimulation returns the runs of one simulation in the order they
// were recorded.
func (s *SQLiteStore) ListRunsBySimulation(ctx context.Context, simulationID string) ([]*model.RunRecord, error) {
	s.logger.Debug("sql", "op", "list_by_simulation", "table", "runs", "simulation_id", simulationID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE simulation_id = ? ORDER BY rowid`, simulationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*model.RunRecord
	for rows.Next() {
		rec, err := scanRun(rows, true)
		if err != nil {
			return nil, err
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run.
func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	s.logger.Debug("sql", "op", "delete", "table", "runs", "id", id)

	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner, withTimeline bool) (*model.RunRecord, error) {
	var rec model.RunRecord
	var policy, summaryJSON, eventsJSON, jobsJSON, createdAt string
	var duration int64

	if err := row.Scan(&rec.ID, &rec.SimulationID, &policy, &rec.Workload, &rec.Quantum, &rec.JobCount, &rec.Clock,
		&summaryJSON, &eventsJSON, &jobsJSON, &duration, &createdAt); err != nil {
		return nil, err
	}

	rec.Policy = model.PolicyKind(policy)
	rec.Duration = time.Duration(duration)
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if err := json.Unmarshal([]byte(summaryJSON), &rec.Summary); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}
	if !withTimeline {
		return &rec, nil
	}
	if err := json.Unmarshal([]byte(eventsJSON), &rec.Events); err != nil {
		return nil, fmt.Errorf("unmarshal events: %w", err)
	}
	if err := json.Unmarshal([]byte(jobsJSON), &rec.Jobs); err != nil {
		return nil, fmt.Errorf("unmarshal jobs: %w", err)
	}
	return &rec, nil
}

// marshalList encodes v as JSON, writing nil slices as [].
func marshalList[T any](v []T) (string, error) {
	if v == nil {
		v = []T{}
	}
	b, err := json.Marshal(v)
	return string(b), err
}
