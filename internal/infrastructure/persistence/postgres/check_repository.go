package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/check"
	sharederrors "github.com/abodks10-ai/Pred-Guard/internal/shared/errors"
)

type CheckRepository struct {
	pool *pgxpool.Pool
}

func NewCheckRepository(pool *pgxpool.Pool) *CheckRepository {
	return &CheckRepository{pool: pool}
}

const checkColumns = `id, website_id, check_type, status, response_time, http_status,
	content_hash, analysis, raw_response, created_at`

func (r *CheckRepository) Save(ctx context.Context, c *check.MonitoringCheck) error {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO monitoring_checks (website_id, check_type, status, response_time,
			http_status, content_hash, analysis, raw_response, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		c.WebsiteID(), string(c.CheckType()), string(c.Status()), c.ResponseTime(),
		c.HTTPStatus(), c.ContentHash(), c.Analysis(), c.RawResponse(), c.CreatedAt(),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert check: %w", err)
	}
	c.SetID(id)
	return nil
}

func (r *CheckRepository) FindByID(ctx context.Context, id int64) (*check.MonitoringCheck, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+checkColumns+` FROM monitoring_checks WHERE id = $1`, id)
	c, err := scanCheck(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sharederrors.ErrCheckNotFound
	}
	return c, err
}

func (r *CheckRepository) FindByWebsite(ctx context.Context, websiteID int64, limit int) ([]*check.MonitoringCheck, error) {
	sqlText := `SELECT ` + checkColumns + ` FROM monitoring_checks
		WHERE website_id = $1 ORDER BY created_at DESC, id DESC`
	args := []any{websiteID}
	if limit > 0 {
		sqlText += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("query checks: %w", err)
	}
	defer rows.Close()

	var out []*check.MonitoringCheck
	for rows.Next() {
		c, err := scanCheck(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CheckRepository) Latest(ctx context.Context, websiteID int64) (*check.MonitoringCheck, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+checkColumns+` FROM monitoring_checks
		WHERE website_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`, websiteID)
	c, err := scanCheck(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// CountRecentFailures counts the run of consecutive newest checks with a 5xx
// status, stopping at the first non-failure.
func (r *CheckRepository) CountRecentFailures(ctx context.Context, websiteID int64) (int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT http_status FROM monitoring_checks
		WHERE website_id = $1 ORDER BY created_at DESC, id DESC LIMIT 20`, websiteID)
	if err != nil {
		return 0, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var status int
		if err := rows.Scan(&status); err != nil {
			return 0, err
		}
		if status < 500 {
			break
		}
		count++
	}
	return count, rows.Err()
}

func scanCheck(row pgx.Row) (*check.MonitoringCheck, error) {
	var (
		id, websiteID               int64
		checkType, status           string
		responseTime, httpStatus    int
		hash, analysis, rawResponse string
		created                     time.Time
	)
	if err := row.Scan(&id, &websiteID, &checkType, &status, &responseTime,
		&httpStatus, &hash, &analysis, &rawResponse, &created); err != nil {
		return nil, err
	}
	return check.Reconstruct(id, websiteID, check.Type(checkType), check.Status(status),
		responseTime, httpStatus, hash, analysis, rawResponse, created), nil
}
