// Package memory provides map-backed repositories for tests, the one-shot
// CLI path and development runs. All repositories are safe for concurrent
// use and hand out defensive copies.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/website"
	sharederrors "github.com/abodks10-ai/Pred-Guard/internal/shared/errors"
)

// WebsiteRepository is the in-memory website store. Deleting a website
// cascades to its dependent stores when they are attached.
type WebsiteRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]*website.Website

	// cascade targets, optional
	checks   *CheckRepository
	alerts   *AlertRepository
	findings *FindingRepository
	actions  *DefenseRepository
}

func NewWebsiteRepository() *WebsiteRepository {
	return &WebsiteRepository{rows: make(map[int64]*website.Website)}
}

// AttachCascades wires the dependent stores deleted along with a website.
func (r *WebsiteRepository) AttachCascades(checks *CheckRepository, alerts *AlertRepository,
	findings *FindingRepository, actions *DefenseRepository) {
	r.checks = checks
	r.alerts = alerts
	r.findings = findings
	r.actions = actions
}

func (r *WebsiteRepository) Save(_ context.Context, w *website.Website) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	w.SetID(r.nextID)
	r.rows[w.ID()] = copyWebsite(w)
	return nil
}

func (r *WebsiteRepository) Update(_ context.Context, w *website.Website) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[w.ID()]; !ok {
		return sharederrors.ErrWebsiteNotFound
	}
	r.rows[w.ID()] = copyWebsite(w)
	return nil
}

func (r *WebsiteRepository) FindByID(_ context.Context, id int64) (*website.Website, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.rows[id]
	if !ok {
		return nil, sharederrors.ErrWebsiteNotFound
	}
	return copyWebsite(w), nil
}

func (r *WebsiteRepository) FindByUser(_ context.Context, userID int64) ([]*website.Website, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*website.Website
	for _, w := range r.rows {
		if w.UserID() == userID {
			out = append(out, copyWebsite(w))
		}
	}
	sortWebsites(out)
	return out, nil
}

func (r *WebsiteRepository) FindAll(_ context.Context) ([]*website.Website, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*website.Website, 0, len(r.rows))
	for _, w := range r.rows {
		out = append(out, copyWebsite(w))
	}
	sortWebsites(out)
	return out, nil
}

func (r *WebsiteRepository) FindActive(_ context.Context) ([]*website.Website, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*website.Website
	for _, w := range r.rows {
		if w.Active() {
			out = append(out, copyWebsite(w))
		}
	}
	sortWebsites(out)
	return out, nil
}

func (r *WebsiteRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	if _, ok := r.rows[id]; !ok {
		r.mu.Unlock()
		return sharederrors.ErrWebsiteNotFound
	}
	delete(r.rows, id)
	r.mu.Unlock()

	if r.checks != nil {
		r.checks.deleteByWebsite(id)
	}
	if r.alerts != nil {
		r.alerts.deleteByWebsite(id)
	}
	if r.findings != nil {
		r.findings.deleteByWebsite(id)
	}
	if r.actions != nil {
		r.actions.deleteByWebsite(id)
	}
	return nil
}

func (r *WebsiteRepository) Exists(_ context.Context, id int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rows[id]
	return ok, nil
}

func copyWebsite(w *website.Website) *website.Website {
	return website.Reconstruct(w.ID(), w.UserID(), w.URL(), w.Name(), w.NotifyEmail(),
		w.Active(), w.CheckInterval(), w.Status(), w.SecurityScore(),
		w.LastCheckAt(), w.CreatedAt(), w.UpdatedAt())
}

func sortWebsites(ws []*website.Website) {
	sort.Slice(ws, func(i, j int) bool { return ws[i].ID() < ws[j].ID() })
}
