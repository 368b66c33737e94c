package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/oakhurst/talentpipe/internal/models"
)

func (r *SQLiteRepo) CreateJobReq(ctx context.Context, j *models.JobReq) (int64, error) {
	if j == nil {
		return 0, fmt.Errorf("job req is nil")
	}
	if j.Status == "" {
		j.Status = "open"
	}
	ts := now()

	res, err := r.conn.Exec(ctx, `INSERT INTO job_reqs (title, client_name, status, created, updated) VALUES (?, ?, ?, ?, ?)`,
		j.Title, j.ClientName, j.Status, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetJobReq(ctx context.Context, id int64) (*models.JobReq, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, title, client_name, status, created, updated FROM job_reqs WHERE id = ?`, id)
	var j models.JobReq
	if err := row.Scan(&j.ID, &j.Title, &j.ClientName, &j.Status, &j.Created, &j.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &j, nil
}

func (r *SQLiteRepo) ListJobReqs(ctx context.Context, limit, offset int) ([]models.JobReq, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.conn.QueryRows(ctx, `SELECT id, title, client_name, status, created, updated FROM job_reqs ORDER BY created DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.JobReq
	for rows.Next() {
		var j models.JobReq
		if err := rows.Scan(&j.ID, &j.Title, &j.ClientName, &j.Status, &j.Created, &j.Updated); err != nil {
			return nil, err
		}

		out = append(out, j)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) UpdateJobReqStatus(ctx context.Context, id int64, status string) error {
	_, err := r.conn.Exec(ctx, `UPDATE job_reqs SET status = ?, updated = ? WHERE id = ?`, status, now(), id)
	return err
}
