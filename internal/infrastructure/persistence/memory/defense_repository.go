package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/abodks10-ai/Pred-Guard/internal/domain/defense"
	sharederrors "github.com/abodks10-ai/Pred-Guard/internal/shared/errors"
)

type DefenseRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]*defense.Action
}

func NewDefenseRepository() *DefenseRepository {
	return &DefenseRepository{rows: make(map[int64]*defense.Action)}
}

func (r *DefenseRepository) Save(_ context.Context, a *defense.Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a.SetID(r.nextID)
	r.rows[a.ID()] = copyAction(a)
	return nil
}

func (r *DefenseRepository) Update(_ context.Context, a *defense.Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[a.ID()]; !ok {
		return sharederrors.ErrActionNotFound
	}
	r.rows[a.ID()] = copyAction(a)
	return nil
}

func (r *DefenseRepository) FindByID(_ context.Context, id int64) (*defense.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.rows[id]
	if !ok {
		return nil, sharederrors.ErrActionNotFound
	}
	return copyAction(a), nil
}

func (r *DefenseRepository) FindByWebsite(_ context.Context, websiteID int64) ([]*defense.Action, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*defense.Action
	for _, a := range r.rows {
		if a.WebsiteID() == websiteID {
			out = append(out, copyAction(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() > out[j].ID() })
	return out, nil
}

func (r *DefenseRepository) deleteByWebsite(websiteID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, a := range r.rows {
		if a.WebsiteID() == websiteID {
			delete(r.rows, id)
		}
	}
}

func copyAction(a *defense.Action) *defense.Action {
	return defense.Reconstruct(a.ID(), a.WebsiteID(), a.AlertID(), a.ActionType(),
		a.TargetDetails(), a.Status(), a.Automatic(),
		a.ExecutedAt(), a.RevertedAt(), a.CreatedAt())
}
