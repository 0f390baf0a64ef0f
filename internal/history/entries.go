package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"tes3conv/internal/convert"
	"tes3conv/internal/services"
)

// timestampLayout has fixed width so stored timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

var _ convert.Recorder = (*Store)(nil)

const entryColumns = "id, request_id, input_path, output_path, backup_path, direction, localized, compact, status, error_kind, error_message, progress, started_at, finished_at, duration_ms"

// Record inserts entry and returns its row ID.
func (s *Store) Record(ctx context.Context, entry Entry) (int64, error) {
	if strings.TrimSpace(entry.RequestID) == "" {
		return 0, errors.New("history: request id is required")
	}
	if entry.Status == "" {
		entry.Status = StatusSucceeded
	}
	if entry.FinishedAt.IsZero() {
		entry.FinishedAt = time.Now().UTC()
	}
	if entry.StartedAt.IsZero() {
		entry.StartedAt = entry.FinishedAt
	}
	if entry.Duration == 0 {
		entry.Duration = entry.FinishedAt.Sub(entry.StartedAt)
	}

	res, err := s.execWithRetry(ctx,
		`INSERT INTO conversions (
            request_id, input_path, output_path, backup_path, direction, localized, compact,
            status, error_kind, error_message, progress, started_at, finished_at, duration_ms
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RequestID,
		entry.InputPath,
		entry.OutputPath,
		nullableString(entry.BackupPath),
		entry.Direction,
		boolToInt(entry.Localized),
		boolToInt(entry.Compact),
		string(entry.Status),
		nullableString(entry.ErrorKind),
		nullableString(entry.ErrorMessage),
		formatProgress(entry.Progress),
		entry.StartedAt.UTC().Format(timestampLayout),
		entry.FinishedAt.UTC().Format(timestampLayout),
		entry.Duration.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert conversion: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// RecordConversion journals one pipeline outcome.
func (s *Store) RecordConversion(ctx context.Context, req convert.Request, res convert.Result, convErr error) error {
	_, err := s.Record(ctx, EntryFromResult(res, convErr))
	return err
}

// EntryFromResult converts a pipeline outcome into a journal entry.
func EntryFromResult(res convert.Result, convErr error) Entry {
	entry := Entry{
		RequestID:  res.RequestID,
		InputPath:  res.InputPath,
		OutputPath: res.OutputPath,
		BackupPath: res.BackupPath,
		Direction:  res.Direction.String(),
		Localized:  res.Localized,
		Compact:    res.Compact,
		Status:     StatusSucceeded,
		Progress:   res.Progress,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Duration:   res.Duration(),
	}
	if convErr != nil {
		entry.Status = StatusFailed
		entry.ErrorKind = services.Kind(convErr)
		entry.ErrorMessage = convErr.Error()
	}
	return entry
}

// Get returns the entry with requestID, or nil when there is none.
func (s *Store) Get(ctx context.Context, requestID string) (*Entry, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+entryColumns+` FROM conversions WHERE request_id = ?`, requestID)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversion: %w", err)
	}
	return entry, nil
}

// Recent returns the newest entries first.
func (s *Store) Recent(ctx context.Context, filter Filter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Direction != "" {
		clauses = append(clauses, "direction = ?")
		args = append(args, filter.Direction)
	}
	query := `SELECT ` + entryColumns + ` FROM conversions`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY finished_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversions: %w", err)
	}
	return entries, nil
}

// Stats counts entries by status and failure kind.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{ByKind: map[string]int{}}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT status, COALESCE(error_kind, ''), COUNT(1) FROM conversions GROUP BY status, error_kind`)
	if err != nil {
		return stats, fmt.Errorf("count conversions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			kind   string
			count  int
		)
		if err := rows.Scan(&status, &kind, &count); err != nil {
			return stats, fmt.Errorf("scan stats: %w", err)
		}
		stats.Total += count
		switch Status(status) {
		case StatusSucceeded:
			stats.Succeeded += count
		case StatusFailed:
			stats.Failed += count
			if kind != "" {
				stats.ByKind[kind] += count
			}
		}
	}
	return stats, rows.Err()
}

// Prune deletes entries that finished before cutoff and returns how many
// were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM conversions WHERE finished_at < ?`,
		cutoff.UTC().Format(timestampLayout))
	if err != nil {
		return 0, fmt.Errorf("prune conversions: %w", err)
	}
	return res.RowsAffected()
}

// PruneOlderThan deletes entries older than retentionDays. Zero disables
// pruning.
func (s *Store) PruneOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	return s.Prune(ctx, time.Now().AddDate(0, 0, -retentionDays))
}

// Clear removes every entry.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM conversions`)
	if err != nil {
		return 0, fmt.Errorf("clear conversions: %w", err)
	}
	return res.RowsAffected()
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		entry        Entry
		backupPath   sql.NullString
		localized    int
		compact      int
		status       string
		errorKind    sql.NullString
		errorMessage sql.NullString
		progress     string
		startedRaw   string
		finishedRaw  string
		durationMS   int64
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.RequestID,
		&entry.InputPath,
		&entry.OutputPath,
		&backupPath,
		&entry.Direction,
		&localized,
		&compact,
		&status,
		&errorKind,
		&errorMessage,
		&progress,
		&startedRaw,
		&finishedRaw,
		&durationMS,
	); err != nil {
		return nil, err
	}
	entry.BackupPath = backupPath.String
	entry.Localized = localized != 0
	entry.Compact = compact != 0
	entry.Status = Status(status)
	entry.ErrorKind = errorKind.String
	entry.ErrorMessage = errorMessage.String
	entry.Progress = parseProgress(progress)
	entry.StartedAt = parseTime(startedRaw)
	entry.FinishedAt = parseTime(finishedRaw)
	entry.Duration = time.Duration(durationMS) * time.Millisecond
	return &entry, nil
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(timestampLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
