package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/job-tracker/internal/types"
)

// applicationColumns is the select list used by every application read.
const applicationColumns = `id, user_id, url, company_name, job_title, status,
	created_at, updated_at, follow_up_date, notes,
	interview_date, salary_offered, rejection_reason, withdrawal_reason`

// Get retrieves an application with its history attached. Returns nil
// without error when the record does not exist.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*types.ApplicationRecord, error) {
	row := s.q.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	record, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application %s: %w", id, err)
	}

	record.History, err = s.ListHistory(ctx, id, nil, nil)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListByUser returns a user's applications matching the filter, most recent
// first, with history attached.
func (s *Store) ListByUser(ctx context.Context, userID uuid.UUID, filter types.ListFilter) ([]types.ApplicationRecord, error) {
	query := psql.Select(
		"id", "user_id", "url", "company_name", "job_title", "status",
		"created_at", "updated_at", "follow_up_date", "notes",
		"interview_date", "salary_offered", "rejection_reason", "withdrawal_reason",
	).
		From("applications").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC")

	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Company != "" {
		query = query.Where(squirrel.ILike{"company_name": "%" + filter.Company + "%"})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := s.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications for user %s: %w", userID, err)
	}
	defer rows.Close()

	var records []types.ApplicationRecord
	for rows.Next() {
		record, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read applications: %w", err)
	}

	if err := s.attachHistory(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// Create persists a new application and its creation ledger entry in one
// transaction.
func (s *Store) Create(ctx context.Context, record *types.ApplicationRecord, entry types.HistoryEntry) (*types.ApplicationRecord, error) {
	notes, err := marshalNotes(record.Notes)
	if err != nil {
		return nil, err
	}

	tx, err := s.q.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.Exec(ctx,
		`INSERT INTO applications
		 (id, user_id, url, company_name, job_title, status, created_at, updated_at, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		record.ID, record.UserID, record.Job.URL, record.Job.CompanyName, record.Job.JobTitle,
		record.Status, record.CreatedAt, record.UpdatedAt, notes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert application: %w", err)
	}

	if _, err := insertHistoryTx(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit application creation: %w", err)
	}
	return s.Get(ctx, record.ID)
}

// Save applies a status transition and appends its ledger entry atomically.
// The UPDATE is guarded by the expected old status: a zero row count means
// either the record is gone or another writer won the race, and nothing is
// changed. The guarded UPDATE also locks the row, so the sequence-number
// subquery in the history insert cannot race a concurrent appender.
func (s *Store) Save(ctx context.Context, record *types.ApplicationRecord, expectedOldStatus string, entry types.HistoryEntry) (*types.ApplicationRecord, error) {
	tx, err := s.q.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	tag, err := tx.Exec(ctx,
		`UPDATE applications
		 SET status = $1, updated_at = $2, interview_date = $3, salary_offered = $4,
		     rejection_reason = $5, withdrawal_reason = $6
		 WHERE id = $7 AND status = $8`,
		record.Status, record.UpdatedAt, record.InterviewDate, record.SalaryOffered,
		record.RejectionReason, record.WithdrawalReason, record.ID, expectedOldStatus,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update application %s: %w", record.ID, err)
	}
	if tag.RowsAffected() == 0 {
		var status string
		err := s.q.QueryRow(ctx, `SELECT status FROM applications WHERE id = $1`, record.ID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{ID: record.ID}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to check application %s: %w", record.ID, err)
		}
		return nil, &ErrConcurrentModification{ID: record.ID, ExpectedStatus: expectedOldStatus}
	}

	if _, err := insertHistoryTx(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transition: %w", err)
	}
	return s.Get(ctx, record.ID)
}

// AppendNote appends a note entry to the record's notes array.
func (s *Store) AppendNote(ctx context.Context, id uuid.UUID, note types.NoteEntry) (*types.ApplicationRecord, error) {
	notes, err := marshalNotes([]types.NoteEntry{note})
	if err != nil {
		return nil, err
	}

	tag, err := s.q.Exec(ctx,
		`UPDATE applications SET notes = notes || $1::jsonb WHERE id = $2`,
		notes, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append note to %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, &ErrNotFound{ID: id}
	}
	return s.Get(ctx, id)
}

// SetFollowUp sets the follow-up date.
func (s *Store) SetFollowUp(ctx context.Context, id uuid.UUID, at time.Time) (*types.ApplicationRecord, error) {
	tag, err := s.q.Exec(ctx,
		`UPDATE applications SET follow_up_date = $1 WHERE id = $2`,
		at, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set follow-up on %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, &ErrNotFound{ID: id}
	}
	return s.Get(ctx, id)
}

// attachHistory loads and attaches ledger entries for all records in one
// query.
func (s *Store) attachHistory(ctx context.Context, records []types.ApplicationRecord) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(records))
	index := make(map[uuid.UUID]int, len(records))
	for i := range records {
		ids[i] = records[i].ID
		index[records[i].ID] = i
	}

	rows, err := s.q.Query(ctx,
		`SELECT application_id, sequence_number, old_status, new_status, changed_at, changed_by, notes
		 FROM application_history
		 WHERE application_id = ANY($1)
		 ORDER BY application_id, sequence_number`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		entry, err := scanHistoryEntry(rows)
		if err != nil {
			return fmt.Errorf("failed to scan history entry: %w", err)
		}
		i := index[entry.ApplicationID]
		records[i].History = append(records[i].History, entry)
	}
	return rows.Err()
}

// scanApplication reads one application row.
func scanApplication(row pgx.Row) (*types.ApplicationRecord, error) {
	var record types.ApplicationRecord
	var notes []byte
	err := row.Scan(
		&record.ID, &record.UserID, &record.Job.URL, &record.Job.CompanyName, &record.Job.JobTitle,
		&record.Status, &record.CreatedAt, &record.UpdatedAt, &record.FollowUpDate, &notes,
		&record.InterviewDate, &record.SalaryOffered, &record.RejectionReason, &record.WithdrawalReason,
	)
	if err != nil {
		return nil, err
	}
	if len(notes) > 0 {
		if err := json.Unmarshal(notes, &record.Notes); err != nil {
			return nil, fmt.Errorf("failed to decode notes: %w", err)
		}
	}
	return &record, nil
}

func marshalNotes(notes []types.NoteEntry) ([]byte, error) {
	if notes == nil {
		notes = []types.NoteEntry{}
	}
	out, err := json.Marshal(notes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode notes: %w", err)
	}
	return out, nil
}
