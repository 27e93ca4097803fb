package ports

import (
	"context"

	"heartdash/models"

	"github.com/google/uuid"
)

// ViewRepository stores saved selections
type ViewRepository interface {
	// Save inserts a view or renames and updates an existing one
	Save(ctx context.Context, view *models.View) error

	// Get returns a view, or a NOT_FOUND error
	Get(ctx context.Context, id uuid.UUID) (*models.View, error)

	// List returns every view, newest first
	List(ctx context.Context) ([]*models.View, error)

	// Delete removes a view, or returns a NOT_FOUND error
	Delete(ctx context.Context, id uuid.UUID) error
}
