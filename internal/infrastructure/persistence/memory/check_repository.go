package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/check"
	sharederrors "github.com/abodks10-ai/Pred-Guard/internal/shared/errors"
)

type CheckRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]*check.MonitoringCheck
}

func NewCheckRepository() *CheckRepository {
	return &CheckRepository{rows: make(map[int64]*check.MonitoringCheck)}
}

func (r *CheckRepository) Save(_ context.Context, c *check.MonitoringCheck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c.SetID(r.nextID)
	r.rows[c.ID()] = copyCheck(c)
	return nil
}

func (r *CheckRepository) FindByID(_ context.Context, id int64) (*check.MonitoringCheck, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.rows[id]
	if !ok {
		return nil, sharederrors.ErrCheckNotFound
	}
	return copyCheck(c), nil
}

func (r *CheckRepository) FindByWebsite(_ context.Context, websiteID int64, limit int) ([]*check.MonitoringCheck, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.byWebsiteLocked(websiteID)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *CheckRepository) Latest(_ context.Context, websiteID int64) (*check.MonitoringCheck, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := r.byWebsiteLocked(websiteID)
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *CheckRepository) CountRecentFailures(_ context.Context, websiteID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, c := range r.byWebsiteLocked(websiteID) {
		if c.HTTPStatus() < 500 {
			break
		}
		count++
	}
	return count, nil
}

// byWebsiteLocked returns copies newest first. Ties on creation time fall
// back to ID order so counting stays deterministic.
func (r *CheckRepository) byWebsiteLocked(websiteID int64) []*check.MonitoringCheck {
	var out []*check.MonitoringCheck
	for _, c := range r.rows {
		if c.WebsiteID() == websiteID {
			out = append(out, copyCheck(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].ID() > out[j].ID()
		}
		return out[i].CreatedAt().After(out[j].CreatedAt())
	})
	return out
}

func (r *CheckRepository) deleteByWebsite(websiteID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.rows {
		if c.WebsiteID() == websiteID {
			delete(r.rows, id)
		}
	}
}

func copyCheck(c *check.MonitoringCheck) *check.MonitoringCheck {
	return check.Reconstruct(c.ID(), c.WebsiteID(), c.CheckType(), c.Status(),
		c.ResponseTime(), c.HTTPStatus(), c.ContentHash(), c.Analysis(),
		c.RawResponse(), c.CreatedAt())
}
