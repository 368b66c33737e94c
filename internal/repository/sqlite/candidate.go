package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/oakhurst/talentpipe/internal/models"
)

const candidateColumns = `id, public_id, name, email, phone, last_contact, consent_given_at, consent_expires_at, anonymised_at, potential_duplicate_of, duplicate_reasons, confidence_score, suggested_status, ai_reasoning, created, updated`

func (r *SQLiteRepo) CreateCandidate(ctx context.Context, c *models.Candidate) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("candidate is nil")
	}
	if c.PublicID == "" {
		return 0, fmt.Errorf("candidate public id is empty")
	}
	ts := now()

	res, err := r.conn.Exec(ctx, `INSERT INTO candidates (public_id, name, email, phone, last_contact, consent_given_at, consent_expires_at, confidence_score, suggested_status, ai_reasoning, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.PublicID, c.Name, c.Email, c.Phone, c.LastContact, c.ConsentGivenAt, c.ConsentExpiresAt, c.ConfidenceScore, c.SuggestedStatus, c.AIReasoning, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetCandidate(ctx context.Context, id int64) (*models.Candidate, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = ?`, id)
	c, err := scanCandidate(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *SQLiteRepo) ListCandidates(ctx context.Context, limit, offset int) ([]models.Candidate, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.conn.QueryRows(ctx, `SELECT `+candidateColumns+` FROM candidates ORDER BY created DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows.Scan)
		if err != nil {
			return nil, err
		}

		out = append(out, *c)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) TouchContact(ctx context.Context, id int64, at int64) error {
	res, err := r.conn.Exec(ctx, `UPDATE candidates SET last_contact = ?, updated = ? WHERE id = ?`, at, now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// Anonymise is one-way: the WHERE guard keeps identity columns of an already
// anonymised candidate from ever being rewritten, and makes re-runs no-ops.
func (r *SQLiteRepo) Anonymise(ctx context.Context, id int64, at int64) error {
	var exists int
	row := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM candidates WHERE id = ?`, id)
	if err := row.Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return sql.ErrNoRows
	}

	_, err := r.conn.Exec(ctx, `UPDATE candidates SET name = '', email = '', phone = '', ai_reasoning = '', anonymised_at = ?, updated = ? WHERE id = ? AND anonymised_at IS NULL`, at, now(), id)
	return err
}

func (r *SQLiteRepo) DeleteCandidate(ctx context.Context, id int64) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM candidates WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *SQLiteRepo) MarkDuplicate(ctx context.Context, id, ofID int64, reasons string) error {
	res, err := r.conn.Exec(ctx, `UPDATE candidates SET potential_duplicate_of = ?, duplicate_reasons = ?, updated = ? WHERE id = ?`, ofID, reasons, now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanCandidate(scan func(dest ...any) error) (*models.Candidate, error) {
	var c models.Candidate
	if err := scan(&c.ID, &c.PublicID, &c.Name, &c.Email, &c.Phone, &c.LastContact, &c.ConsentGivenAt, &c.ConsentExpiresAt, &c.AnonymisedAt, &c.PotentialDuplicateOf, &c.DuplicateReasons, &c.ConfidenceScore, &c.SuggestedStatus, &c.AIReasoning, &c.Created, &c.Updated); err != nil {
		return nil, err
	}
	return &c, nil
}
