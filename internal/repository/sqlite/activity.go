package sqlite

import (
	"context"
	"fmt"

	"github.com/oakhurst/talentpipe/internal/models"
)

func (r *SQLiteRepo) CreateActivity(ctx context.Context, a *models.ActivityRecord) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("activity is nil")
	}
	if a.Details == "" {
		a.Details = "{}"
	}

	res, err := r.conn.Exec(ctx, `INSERT INTO activity_log (action, resource_type, resource_id, actor_id, details, created) VALUES (?, ?, ?, ?, ?, ?)`,
		a.Action, a.ResourceType, a.ResourceID, a.ActorID, a.Details, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) ListActivities(ctx context.Context, limit, offset int) ([]models.ActivityRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.conn.QueryRows(ctx, `SELECT id, action, resource_type, resource_id, actor_id, details, created FROM activity_log ORDER BY created DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ActivityRecord
	for rows.Next() {
		var a models.ActivityRecord
		if err := rows.Scan(&a.ID, &a.Action, &a.ResourceType, &a.ResourceID, &a.ActorID, &a.Details, &a.Created); err != nil {
			return nil, err
		}

		out = append(out, a)
	}

	return out, rows.Err()
}
