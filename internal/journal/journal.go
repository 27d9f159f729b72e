package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"sortline/internal/figure"
	"sortline/internal/queue"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// ErrClosed is returned after Close.
var ErrClosed = errors.New("journal closed")

// Entry is one finished figure.
type Entry struct {
	ID           int64
	ItemID       int64
	RequestID    string
	Kind         figure.Kind
	Status       queue.Status
	Stage        string
	TargetX      float64
	CounterValue int
	ErrorKind    string
	ErrorMessage string
	DroppedAt    time.Duration
	FinishedAt   time.Duration
	RecordedAt   time.Time
}

// Duration returns the time the figure spent on the line.
func (e Entry) Duration() time.Duration { return e.FinishedAt - e.DroppedAt }

// Journal is an in-memory SQLite outcome log.
type Journal struct {
	db *sql.DB
}

// Open creates an empty in-memory journal.
func Open(ctx context.Context) (*Journal, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	// each connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	j := &Journal{db: db}
	if err := j.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) initSchema(ctx context.Context) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Close discards the journal.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

// Record appends an entry and returns it with ID and RecordedAt set.
func (j *Journal) Record(ctx context.Context, entry Entry) (Entry, error) {
	if j == nil || j.db == nil {
		return Entry{}, ErrClosed
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}
	res, err := j.db.ExecContext(
		ctx,
		`INSERT INTO outcomes (
            item_id, request_id, figure_kind, status, stage, target_x, counter_value,
            error_kind, error_message, dropped_at_ms, finished_at_ms, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ItemID,
		nullableString(entry.RequestID),
		string(entry.Kind),
		string(entry.Status),
		nullableString(entry.Stage),
		entry.TargetX,
		entry.CounterValue,
		nullableString(entry.ErrorKind),
		nullableString(entry.ErrorMessage),
		entry.DroppedAt.Milliseconds(),
		entry.FinishedAt.Milliseconds(),
		entry.RecordedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert outcome: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Entry{}, fmt.Errorf("outcome id: %w", err)
	}
	entry.ID = id
	return entry, nil
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Kind   figure.Kind
	Status queue.Status
	Limit  int
}

// List returns entries in recording order.
func (j *Journal) List(ctx context.Context, filter Filter) ([]Entry, error) {
	if j == nil || j.db == nil {
		return nil, ErrClosed
	}
	query := `SELECT id, item_id, request_id, figure_kind, status, stage, target_x, counter_value,
        error_kind, error_message, dropped_at_ms, finished_at_ms, recorded_at
        FROM outcomes WHERE 1=1`
	var args []any
	if filter.Kind != "" {
		query += " AND figure_kind = ?"
		args = append(args, string(filter.Kind))
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	query += " ORDER BY id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// KindSummary aggregates outcomes for one kind.
type KindSummary struct {
	Kind        figure.Kind
	Sorted      int
	Failed      int
	AvgDuration time.Duration
}

// Summary aggregates outcomes per kind, ordered by kind.
func (j *Journal) Summary(ctx context.Context) ([]KindSummary, error) {
	if j == nil || j.db == nil {
		return nil, ErrClosed
	}
	rows, err := j.db.QueryContext(ctx, `SELECT figure_kind,
        SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),
        SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),
        AVG(finished_at_ms - dropped_at_ms)
        FROM outcomes GROUP BY figure_kind ORDER BY figure_kind`,
		string(queue.StatusSorted), string(queue.StatusFailed))
	if err != nil {
		return nil, fmt.Errorf("summarize outcomes: %w", err)
	}
	defer rows.Close()

	var out []KindSummary
	for rows.Next() {
		var (
			kind   string
			sorted int
			failed int
			avgMS  sql.NullFloat64
		)
		if err := rows.Scan(&kind, &sorted, &failed, &avgMS); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		summary := KindSummary{Kind: figure.Kind(kind), Sorted: sorted, Failed: failed}
		if avgMS.Valid {
			summary.AvgDuration = time.Duration(avgMS.Float64 * float64(time.Millisecond))
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

// Stats returns entry counts per status.
func (j *Journal) Stats(ctx context.Context) (map[queue.Status]int, error) {
	if j == nil || j.db == nil {
		return nil, ErrClosed
	}
	rows, err := j.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM outcomes GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("journal stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[queue.Status]int)
	for rows.Next() {
		var status queue.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}
