package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/oakhurst/talentpipe/internal/models"
	"github.com/oakhurst/talentpipe/pkg/repository"
)

const entryColumns = `id, job_id, candidate_id, stage, held_from, priority, assigned_to, notes, created, updated`

func (r *SQLiteRepo) CreateEntry(ctx context.Context, e *models.PipelineEntry) (int64, error) {
	if e == nil {
		return 0, fmt.Errorf("pipeline entry is nil")
	}
	if e.Stage == "" {
		e.Stage = "sourced"
	}
	if e.Priority <= 0 {
		e.Priority = 100
	}
	ts := now()
	e.Created, e.Updated = ts, ts

	res, err := r.conn.Exec(ctx, `INSERT INTO pipeline_entries (job_id, candidate_id, stage, held_from, priority, assigned_to, notes, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.JobID, e.CandidateID, e.Stage, e.HeldFrom, e.Priority, e.AssignedTo, e.Notes, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetEntry(ctx context.Context, id int64) (*models.PipelineEntry, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+entryColumns+` FROM pipeline_entries WHERE id = ?`, id)
	var e models.PipelineEntry
	if err := row.Scan(&e.ID, &e.JobID, &e.CandidateID, &e.Stage, &e.HeldFrom, &e.Priority, &e.AssignedTo, &e.Notes, &e.Created, &e.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *SQLiteRepo) ListEntriesByJob(ctx context.Context, jobID int64) ([]models.PipelineEntry, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+entryColumns+` FROM pipeline_entries WHERE job_id = ? ORDER BY priority ASC, created ASC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PipelineEntry
	for rows.Next() {
		var e models.PipelineEntry
		if err := rows.Scan(&e.ID, &e.JobID, &e.CandidateID, &e.Stage, &e.HeldFrom, &e.Priority, &e.AssignedTo, &e.Notes, &e.Created, &e.Updated); err != nil {
			return nil, err
		}

		out = append(out, e)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) DeleteEntry(ctx context.Context, id int64) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM pipeline_entries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ApplyTransition writes the stage change, its audit record and the optional
// placement in one transaction. The UPDATE is conditional on the updated
// stamp the caller read; a miss means another writer got there first and
// nothing at all is written.
func (r *SQLiteRepo) ApplyTransition(ctx context.Context, e *models.PipelineEntry, rec *models.StageTransitionRecord, placement *models.Placement, expectedUpdated int64) error {
	if e == nil || rec == nil {
		return fmt.Errorf("entry and transition record are required")
	}

	return r.conn.Tx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE pipeline_entries SET stage = ?, held_from = ?, updated = ? WHERE id = ? AND updated = ?`,
			e.Stage, e.HeldFrom, e.Updated, e.ID, expectedUpdated)
		if err != nil {
			return fmt.Errorf("update entry stage: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrConflict
		}

		if _, err := tx.ExecContext(ctx, `INSERT INTO stage_transitions (pipeline_entry_id, from_stage, to_stage, actor_id, occurred_at, supplied_fields) VALUES (?, ?, ?, ?, ?, ?)`,
			rec.PipelineEntryID, rec.FromStage, rec.ToStage, rec.ActorID, rec.OccurredAt, rec.SuppliedFields); err != nil {
			return fmt.Errorf("append transition record: %w", err)
		}

		if placement != nil {
			if _, err := tx.ExecContext(ctx, `INSERT INTO placements (pipeline_entry_id, start_date, salary, fee_percentage, fee_value, guarantee_period_days, guarantee_expiry, created) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				placement.PipelineEntryID, placement.StartDate, placement.Salary, placement.FeePercentage, placement.FeeValue, placement.GuaranteePeriodDays, placement.GuaranteeExpiry, now()); err != nil {
				return fmt.Errorf("create placement: %w", err)
			}
		}

		return nil
	})
}

func (r *SQLiteRepo) ListTransitions(ctx context.Context, entryID int64) ([]models.StageTransitionRecord, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, pipeline_entry_id, from_stage, to_stage, actor_id, occurred_at, supplied_fields FROM stage_transitions WHERE pipeline_entry_id = ? ORDER BY occurred_at ASC, id ASC`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.StageTransitionRecord
	for rows.Next() {
		var t models.StageTransitionRecord
		if err := rows.Scan(&t.ID, &t.PipelineEntryID, &t.FromStage, &t.ToStage, &t.ActorID, &t.OccurredAt, &t.SuppliedFields); err != nil {
			return nil, err
		}

		out = append(out, t)
	}

	return out, rows.Err()
}
