package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/defense"
	sharederrors "github.com/abodks10-ai/Pred-Guard/internal/shared/errors"
)

type DefenseRepository struct {
	pool *pgxpool.Pool
}

func NewDefenseRepository(pool *pgxpool.Pool) *DefenseRepository {
	return &DefenseRepository{pool: pool}
}

const actionColumns = `id, website_id, alert_id, action_type, target_details, status,
	automatic, executed_at, reverted_at, created_at`

func (r *DefenseRepository) Save(ctx context.Context, a *defense.Action) error {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO defense_actions (website_id, alert_id, action_type, target_details,
			status, automatic, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		a.WebsiteID(), a.AlertID(), string(a.ActionType()), a.TargetDetails(),
		string(a.Status()), a.Automatic(), a.CreatedAt()).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert defense action: %w", err)
	}
	a.SetID(id)
	return nil
}

func (r *DefenseRepository) Update(ctx context.Context, a *defense.Action) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE defense_actions
		SET status = $2, executed_at = $3, reverted_at = $4
		WHERE id = $1`,
		a.ID(), string(a.Status()), nullTime(a.ExecutedAt()), nullTime(a.RevertedAt()))
	if err != nil {
		return fmt.Errorf("update defense action: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sharederrors.ErrActionNotFound
	}
	return nil
}

func (r *DefenseRepository) FindByID(ctx context.Context, id int64) (*defense.Action, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+actionColumns+` FROM defense_actions WHERE id = $1`, id)
	a, err := scanAction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sharederrors.ErrActionNotFound
	}
	return a, err
}

func (r *DefenseRepository) FindByWebsite(ctx context.Context, websiteID int64) ([]*defense.Action, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+actionColumns+` FROM defense_actions
		WHERE website_id = $1 ORDER BY created_at DESC, id DESC`, websiteID)
	if err != nil {
		return nil, fmt.Errorf("query defense actions: %w", err)
	}
	defer rows.Close()

	var out []*defense.Action
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAction(row pgx.Row) (*defense.Action, error) {
	var (
		id, websiteID, alertID    int64
		actionType, target, state string
		automatic                 bool
		executedAt, revertedAt    sql.NullTime
		created                   time.Time
	)
	if err := row.Scan(&id, &websiteID, &alertID, &actionType, &target, &state,
		&automatic, &executedAt, &revertedAt, &created); err != nil {
		return nil, err
	}
	return defense.Reconstruct(id, websiteID, alertID, defense.ActionType(actionType),
		target, defense.Status(state), automatic,
		executedAt.Time, revertedAt.Time, created), nil
}
