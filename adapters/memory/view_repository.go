// Package memory holds in-process repositories used when no database is
// configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"heartdash/internal/errors"
	"heartdash/models"

	"github.com/google/uuid"
)

// ViewRepository implements ports.ViewRepository in memory
type ViewRepository struct {
	mu    sync.RWMutex
	views map[uuid.UUID]models.View
}

// NewViewRepository creates an empty repository
func NewViewRepository() *ViewRepository {
	return &ViewRepository{views: make(map[uuid.UUID]models.View)}
}

// Save stores a copy of view. An existing view keeps its creation time.
func (r *ViewRepository) Save(_ context.Context, view *models.View) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := *view
	if prev, ok := r.views[v.ID]; ok {
		v.CreatedAt = prev.CreatedAt
	}
	v.Selection.Countries = append([]string(nil), view.Selection.Countries...)
	r.views[v.ID] = v
	return nil
}

// Get returns a copy of the view
func (r *ViewRepository) Get(_ context.Context, id uuid.UUID) (*models.View, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.views[id]
	if !ok {
		return nil, errors.NotFound("view " + id.String())
	}
	return &v, nil
}

// List returns every view, newest first
func (r *ViewRepository) List(_ context.Context) ([]*models.View, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*models.View, 0, len(r.views))
	for _, v := range r.views {
		v := v
		out = append(out, &v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Delete removes a view
func (r *ViewRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.views[id]; !ok {
		return errors.NotFound("view " + id.String())
	}
	delete(r.views, id)
	return nil
}
