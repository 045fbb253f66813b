package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/alert"
	sharederrors "github.com/abodks10-ai/Pred-Guard/internal/shared/errors"
)

type AlertRepository struct {
	pool *pgxpool.Pool
}

func NewAlertRepository(pool *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{pool: pool}
}

const alertColumns = `id, website_id, check_id, severity, alert_type, title, description,
	details, dedup_key, read, email_sent, email_sent_at, created_at`

func (r *AlertRepository) Save(ctx context.Context, a *alert.Alert) error {
	details, err := alert.EncodeDetails(a.Details())
	if err != nil {
		return fmt.Errorf("encode details: %w", err)
	}

	var detailsArg any
	if details != "" {
		detailsArg = details
	}

	var id int64
	err = r.pool.QueryRow(ctx, `
		INSERT INTO alerts (website_id, check_id, severity, alert_type, title,
			description, details, dedup_key, read, email_sent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		a.WebsiteID(), a.CheckID(), string(a.Severity()), string(a.Type()), a.Title(),
		a.Description(), detailsArg, a.DedupKey(), a.Read(), a.EmailSent(), a.CreatedAt(),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	a.SetID(id)
	return nil
}

func (r *AlertRepository) Update(ctx context.Context, a *alert.Alert) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE alerts SET read = $2, email_sent = $3, email_sent_at = $4
		WHERE id = $1`,
		a.ID(), a.Read(), a.EmailSent(), nullTime(a.EmailSentAt()))
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sharederrors.ErrAlertNotFound
	}
	return nil
}

func (r *AlertRepository) FindByID(ctx context.Context, id int64) (*alert.Alert, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = $1`, id)
	a, err := scanAlert(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sharederrors.ErrAlertNotFound
	}
	return a, err
}

func (r *AlertRepository) FindByWebsite(ctx context.Context, websiteID int64, limit int) ([]*alert.Alert, error) {
	sqlText := `SELECT ` + alertColumns + ` FROM alerts
		WHERE website_id = $1 ORDER BY created_at DESC, id DESC`
	args := []any{websiteID}
	if limit > 0 {
		sqlText += ` LIMIT $2`
		args = append(args, limit)
	}
	return r.query(ctx, sqlText, args...)
}

func (r *AlertRepository) FindRecent(ctx context.Context, since time.Time, limit int) ([]*alert.Alert, error) {
	sqlText := `SELECT ` + alertColumns + ` FROM alerts
		WHERE created_at >= $1 ORDER BY created_at DESC, id DESC`
	args := []any{since}
	if limit > 0 {
		sqlText += ` LIMIT $2`
		args = append(args, limit)
	}
	return r.query(ctx, sqlText, args...)
}

func (r *AlertRepository) FindOpenDuplicate(ctx context.Context, websiteID int64, alertType alert.Type, dedupKey string) (*alert.Alert, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+alertColumns+` FROM alerts
		WHERE website_id = $1 AND alert_type = $2 AND dedup_key = $3 AND NOT read
		ORDER BY id DESC LIMIT 1`,
		websiteID, string(alertType), dedupKey)
	a, err := scanAlert(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *AlertRepository) FindUnsent(ctx context.Context, websiteID int64) ([]*alert.Alert, error) {
	return r.query(ctx, `SELECT `+alertColumns+` FROM alerts
		WHERE website_id = $1 AND NOT email_sent ORDER BY id`, websiteID)
}

func (r *AlertRepository) UnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM alerts a
		JOIN websites w ON w.id = a.website_id
		WHERE w.user_id = $1 AND NOT a.read`, userID).Scan(&count)
	return count, err
}

func (r *AlertRepository) query(ctx context.Context, sqlText string, args ...any) ([]*alert.Alert, error) {
	rows, err := r.pool.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var out []*alert.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAlert(row pgx.Row) (*alert.Alert, error) {
	var (
		id, websiteID, checkID    int64
		severity, alertType       string
		title, description, dedup string
		details                   []byte
		read, emailSent           bool
		emailSentAt               sql.NullTime
		created                   time.Time
	)
	if err := row.Scan(&id, &websiteID, &checkID, &severity, &alertType, &title,
		&description, &details, &dedup, &read, &emailSent, &emailSentAt, &created); err != nil {
		return nil, err
	}

	var payload alert.Details
	if len(details) > 0 {
		decoded, err := alert.DecodeDetails(string(details))
		if err != nil {
			return nil, fmt.Errorf("decode alert %d details: %w", id, err)
		}
		payload = decoded
	}

	return alert.Reconstruct(id, websiteID, checkID, alert.Severity(severity),
		alert.Type(alertType), title, description, dedup, payload,
		read, emailSent, emailSentAt.Time, created), nil
}
