package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/alert"
	sharederrors "github.com/abodks10-ai/Pred-Guard/internal/shared/errors"
)

// AlertRepository keeps alerts in memory. The owner index is supplied by the
// website store at unread-count time; here we only track website ownership.
type AlertRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]*alert.Alert

	// ownerOf resolves a website's owning user for UnreadCount. Wired by the
	// container; nil means UnreadCount counts across all websites.
	ownerOf func(websiteID int64) (int64, bool)
}

func NewAlertRepository() *AlertRepository {
	return &AlertRepository{rows: make(map[int64]*alert.Alert)}
}

// SetOwnerResolver wires the website-to-user lookup used by UnreadCount.
func (r *AlertRepository) SetOwnerResolver(fn func(websiteID int64) (int64, bool)) {
	r.mu.Lock()
	r.ownerOf = fn
	r.mu.Unlock()
}

func (r *AlertRepository) Save(_ context.Context, a *alert.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.SetID(r.nextID)
	r.rows[a.ID()] = copyAlert(a)
	return nil
}

func (r *AlertRepository) Update(_ context.Context, a *alert.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[a.ID()]; !ok {
		return sharederrors.ErrAlertNotFound
	}
	r.rows[a.ID()] = copyAlert(a)
	return nil
}

func (r *AlertRepository) FindByID(_ context.Context, id int64) (*alert.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.rows[id]
	if !ok {
		return nil, sharederrors.ErrAlertNotFound
	}
	return copyAlert(a), nil
}

func (r *AlertRepository) FindByWebsite(_ context.Context, websiteID int64, limit int) ([]*alert.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*alert.Alert
	for _, a := range r.rows {
		if a.WebsiteID() == websiteID {
			out = append(out, copyAlert(a))
		}
	}
	sortAlertsNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *AlertRepository) FindRecent(_ context.Context, since time.Time, limit int) ([]*alert.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*alert.Alert
	for _, a := range r.rows {
		if !a.CreatedAt().Before(since) {
			out = append(out, copyAlert(a))
		}
	}
	sortAlertsNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *AlertRepository) FindOpenDuplicate(_ context.Context, websiteID int64, alertType alert.Type, dedupKey string) (*alert.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.rows {
		if a.WebsiteID() == websiteID && a.Type() == alertType && a.DedupKey() == dedupKey && !a.Read() {
			return copyAlert(a), nil
		}
	}
	return nil, nil
}

func (r *AlertRepository) FindUnsent(_ context.Context, websiteID int64) ([]*alert.Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*alert.Alert
	for _, a := range r.rows {
		if a.WebsiteID() == websiteID && !a.EmailSent() {
			out = append(out, copyAlert(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out, nil
}

func (r *AlertRepository) UnreadCount(_ context.Context, userID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, a := range r.rows {
		if a.Read() {
			continue
		}
		if r.ownerOf != nil {
			owner, ok := r.ownerOf(a.WebsiteID())
			if !ok || owner != userID {
				continue
			}
		}
		count++
	}
	return count, nil
}

func (r *AlertRepository) deleteByWebsite(websiteID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.rows {
		if a.WebsiteID() == websiteID {
			delete(r.rows, id)
		}
	}
}

func copyAlert(a *alert.Alert) *alert.Alert {
	return alert.Reconstruct(a.ID(), a.WebsiteID(), a.CheckID(), a.Severity(), a.Type(),
		a.Title(), a.Description(), a.DedupKey(), a.Details(),
		a.Read(), a.EmailSent(), a.EmailSentAt(), a.CreatedAt())
}

func sortAlertsNewestFirst(out []*alert.Alert) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].ID() > out[j].ID()
		}
		return out[i].CreatedAt().After(out[j].CreatedAt())
	})
}
