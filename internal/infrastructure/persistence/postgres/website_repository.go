package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/website"
	sharederrors "github.com/abodks10-ai/Pred-Guard/internal/shared/errors"
)

type WebsiteRepository struct {
	pool *pgxpool.Pool
}

func NewWebsiteRepository(pool *pgxpool.Pool) *WebsiteRepository {
	return &WebsiteRepository{pool: pool}
}

const websiteColumns = `id, user_id, url, name, notify_email, active, check_interval,
	status, security_score, last_check_at, created_at, updated_at`

func (r *WebsiteRepository) Save(ctx context.Context, w *website.Website) error {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO websites (user_id, url, name, notify_email, active, check_interval,
			status, security_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		w.UserID(), w.URL(), w.Name(), w.NotifyEmail(), w.Active(), w.CheckInterval(),
		string(w.Status()), w.SecurityScore(), w.CreatedAt(), w.UpdatedAt(),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert website: %w", err)
	}
	w.SetID(id)
	return nil
}

func (r *WebsiteRepository) Update(ctx context.Context, w *website.Website) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE websites
		SET name = $2, notify_email = $3, active = $4, check_interval = $5,
			status = $6, security_score = $7, last_check_at = $8, updated_at = $9
		WHERE id = $1`,
		w.ID(), w.Name(), w.NotifyEmail(), w.Active(), w.CheckInterval(),
		string(w.Status()), w.SecurityScore(), nullTime(w.LastCheckAt()), w.UpdatedAt())
	if err != nil {
		return fmt.Errorf("update website: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sharederrors.ErrWebsiteNotFound
	}
	return nil
}

func (r *WebsiteRepository) FindByID(ctx context.Context, id int64) (*website.Website, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+websiteColumns+` FROM websites WHERE id = $1`, id)
	w, err := scanWebsite(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sharederrors.ErrWebsiteNotFound
	}
	return w, err
}

func (r *WebsiteRepository) FindByUser(ctx context.Context, userID int64) ([]*website.Website, error) {
	return r.query(ctx, `SELECT `+websiteColumns+` FROM websites WHERE user_id = $1 ORDER BY id`, userID)
}

func (r *WebsiteRepository) FindAll(ctx context.Context) ([]*website.Website, error) {
	return r.query(ctx, `SELECT `+websiteColumns+` FROM websites ORDER BY id`)
}

func (r *WebsiteRepository) FindActive(ctx context.Context) ([]*website.Website, error) {
	return r.query(ctx, `SELECT `+websiteColumns+` FROM websites WHERE active ORDER BY id`)
}

func (r *WebsiteRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM websites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete website: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sharederrors.ErrWebsiteNotFound
	}
	return nil
}

func (r *WebsiteRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM websites WHERE id = $1)`, id).Scan(&ok)
	return ok, err
}

func (r *WebsiteRepository) query(ctx context.Context, sqlText string, args ...any) ([]*website.Website, error) {
	rows, err := r.pool.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("query websites: %w", err)
	}
	defer rows.Close()

	var out []*website.Website
	for rows.Next() {
		w, err := scanWebsite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func scanWebsite(row pgx.Row) (*website.Website, error) {
	var (
		id, userID       int64
		url, name, mail  string
		active           bool
		interval         int
		status           string
		score            int
		lastCheck        sql.NullTime
		created, updated time.Time
	)
	if err := row.Scan(&id, &userID, &url, &name, &mail, &active, &interval,
		&status, &score, &lastCheck, &created, &updated); err != nil {
		return nil, err
	}
	return website.Reconstruct(id, userID, url, name, mail, active, interval,
		website.Status(status), score, lastCheck.Time, created, updated), nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
