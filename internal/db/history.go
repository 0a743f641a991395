package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/job-tracker/internal/types"
)

// AppendHistory inserts a ledger entry, assigning the next sequence number
// for the application. The application row is locked first so concurrent
// appends cannot produce duplicate or gapped sequence numbers.
func (s *Store) AppendHistory(ctx context.Context, entry types.HistoryEntry) (types.HistoryEntry, error) {
	tx, err := s.q.Begin(ctx)
	if err != nil {
		return types.HistoryEntry{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	var id uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM applications WHERE id = $1 FOR UPDATE`, entry.ApplicationID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.HistoryEntry{}, &ErrNotFound{ID: entry.ApplicationID}
	}
	if err != nil {
		return types.HistoryEntry{}, fmt.Errorf("failed to lock application %s: %w", entry.ApplicationID, err)
	}

	stored, err := insertHistoryTx(ctx, tx, entry)
	if err != nil {
		return types.HistoryEntry{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return types.HistoryEntry{}, fmt.Errorf("failed to commit history append: %w", err)
	}
	return stored, nil
}

// ListHistory returns an application's ledger entries in ascending sequence
// order, optionally bounded by changed_at timestamps.
func (s *Store) ListHistory(ctx context.Context, applicationID uuid.UUID, since, until *time.Time) ([]types.HistoryEntry, error) {
	query := psql.Select(
		"application_id", "sequence_number", "old_status", "new_status",
		"changed_at", "changed_by", "notes",
	).
		From("application_history").
		Where(squirrel.Eq{"application_id": applicationID}).
		OrderBy("sequence_number ASC")

	if since != nil {
		query = query.Where(squirrel.GtOrEq{"changed_at": *since})
	}
	if until != nil {
		query = query.Where(squirrel.LtOrEq{"changed_at": *until})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build history query: %w", err)
	}

	rows, err := s.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history for %s: %w", applicationID, err)
	}
	defer rows.Close()

	var entries []types.HistoryEntry
	for rows.Next() {
		entry, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// insertHistoryTx inserts one ledger entry inside an open transaction,
// computing the sequence number from the current maximum. Callers must hold
// the application row lock (a guarded UPDATE or SELECT FOR UPDATE).
func insertHistoryTx(ctx context.Context, tx pgx.Tx, entry types.HistoryEntry) (types.HistoryEntry, error) {
	err := tx.QueryRow(ctx,
		`INSERT INTO application_history
		 (application_id, sequence_number, old_status, new_status, changed_at, changed_by, notes)
		 VALUES ($1,
		         (SELECT COALESCE(MAX(sequence_number), 0) + 1
		          FROM application_history WHERE application_id = $1),
		         $2, $3, $4, $5, $6)
		 RETURNING sequence_number`,
		entry.ApplicationID, entry.OldStatus, entry.NewStatus, entry.ChangedAt, entry.ChangedBy, entry.Notes,
	).Scan(&entry.SequenceNumber)
	if err != nil {
		return types.HistoryEntry{}, fmt.Errorf("failed to insert history entry: %w", err)
	}
	return entry, nil
}

// scanHistoryEntry reads one ledger row.
func scanHistoryEntry(row pgx.Row) (types.HistoryEntry, error) {
	var entry types.HistoryEntry
	err := row.Scan(
		&entry.ApplicationID, &entry.SequenceNumber, &entry.OldStatus, &entry.NewStatus,
		&entry.ChangedAt, &entry.ChangedBy, &entry.Notes,
	)
	return entry, err
}
