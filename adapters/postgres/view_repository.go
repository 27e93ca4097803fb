// Package postgres stores saved dashboard views in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"heartdash/domain/heart"
	"heartdash/internal/errors"
	"heartdash/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// viewRow is the saved_views row shape
type viewRow struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Selection []byte    `db:"selection"`
	CreatedAt time.Time `db:"created_at"`
}

func (r viewRow) toModel() (*models.View, error) {
	var sel heart.Selection
	if err := json.Unmarshal(r.Selection, &sel); err != nil {
		return nil, fmt.Errorf("failed to unmarshal selection of view %s: %w", r.ID, err)
	}
	return &models.View{ID: r.ID, Name: r.Name, Selection: sel, CreatedAt: r.CreatedAt}, nil
}

// ViewRepository implements ports.ViewRepository on PostgreSQL
type ViewRepository struct {
	db *sqlx.DB
}

// NewViewRepository creates a new view repository
func NewViewRepository(db *sqlx.DB) *ViewRepository {
	return &ViewRepository{db: db}
}

// Save inserts or updates a view
func (r *ViewRepository) Save(ctx context.Context, view *models.View) error {
	selectionJSON, err := json.Marshal(view.Selection)
	if err != nil {
		return fmt.Errorf("failed to marshal selection: %w", err)
	}

	query := `
		INSERT INTO saved_views (id, name, selection, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			selection = EXCLUDED.selection,
			updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, view.ID, view.Name, selectionJSON, view.CreatedAt); err != nil {
		return errors.Wrap(errors.DatabaseError(err.Error()), "failed to save view")
	}
	return nil
}

// Get retrieves a view by id
func (r *ViewRepository) Get(ctx context.Context, id uuid.UUID) (*models.View, error) {
	var row viewRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, name, selection, created_at
		FROM saved_views
		WHERE id = $1`, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("view " + id.String())
		}
		return nil, errors.Wrap(errors.DatabaseError(err.Error()), "failed to get view")
	}
	return row.toModel()
}

// List returns every view, newest first
func (r *ViewRepository) List(ctx context.Context) ([]*models.View, error) {
	var rows []viewRow
	if err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, selection, created_at
		FROM saved_views
		ORDER BY created_at DESC`); err != nil {
		return nil, errors.Wrap(errors.DatabaseError(err.Error()), "failed to list views")
	}

	views := make([]*models.View, 0, len(rows))
	for _, row := range rows {
		v, err := row.toModel()
		if err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, nil
}

// Delete removes a view
func (r *ViewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM saved_views WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(errors.DatabaseError(err.Error()), "failed to delete view")
	}
	deleted, _ := result.RowsAffected()
	if deleted == 0 {
		return errors.NotFound("view " + id.String())
	}
	return nil
}
