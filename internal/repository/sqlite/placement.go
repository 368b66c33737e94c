package sqlite

import (
	"context"
	"database/sql"

	"github.com/oakhurst/talentpipe/internal/models"
)

const placementColumns = `id, pipeline_entry_id, start_date, salary, fee_percentage, fee_value, guarantee_period_days, guarantee_expiry, created`

func (r *SQLiteRepo) GetPlacementByEntry(ctx context.Context, entryID int64) (*models.Placement, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+placementColumns+` FROM placements WHERE pipeline_entry_id = ?`, entryID)
	var p models.Placement
	if err := row.Scan(&p.ID, &p.PipelineEntryID, &p.StartDate, &p.Salary, &p.FeePercentage, &p.FeeValue, &p.GuaranteePeriodDays, &p.GuaranteeExpiry, &p.Created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *SQLiteRepo) ListPlacements(ctx context.Context, limit, offset int) ([]models.Placement, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.conn.QueryRows(ctx, `SELECT `+placementColumns+` FROM placements ORDER BY created DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Placement
	for rows.Next() {
		var p models.Placement
		if err := rows.Scan(&p.ID, &p.PipelineEntryID, &p.StartDate, &p.Salary, &p.FeePercentage, &p.FeeValue, &p.GuaranteePeriodDays, &p.GuaranteeExpiry, &p.Created); err != nil {
			return nil, err
		}

		out = append(out, p)
	}

	return out, rows.Err()
}
