package journal

import (
	"database/sql"
	"fmt"
	"time"

	"sortline/internal/figure"
	"sortline/internal/queue"
)

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		entry        Entry
		requestID    sql.NullString
		kind         string
		status       string
		stage        sql.NullString
		errorKind    sql.NullString
		errorMessage sql.NullString
		droppedMS    int64
		finishedMS   int64
		recordedAt   string
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.ItemID,
		&requestID,
		&kind,
		&status,
		&stage,
		&entry.TargetX,
		&entry.CounterValue,
		&errorKind,
		&errorMessage,
		&droppedMS,
		&finishedMS,
		&recordedAt,
	); err != nil {
		return Entry{}, fmt.Errorf("scan outcome: %w", err)
	}
	entry.RequestID = requestID.String
	entry.Kind = figure.Kind(kind)
	entry.Status = queue.Status(status)
	entry.Stage = stage.String
	entry.ErrorKind = errorKind.String
	entry.ErrorMessage = errorMessage.String
	entry.DroppedAt = time.Duration(droppedMS) * time.Millisecond
	entry.FinishedAt = time.Duration(finishedMS) * time.Millisecond
	if ts, err := time.Parse(time.RFC3339Nano, recordedAt); err == nil {
		entry.RecordedAt = ts
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
