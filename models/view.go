package models

import (
	"strings"
	"time"

	"heartdash/domain/heart"
	"heartdash/internal/errors"

	"github.com/google/uuid"
)

// MaxViewNameLength bounds saved view names
const MaxViewNameLength = 100

// View is a named, saved selection
type View struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Selection heart.Selection `json:"selection" db:"-"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// NewView validates a name and selection and stamps a new view
func NewView(name string, sel heart.Selection) (*View, error) {
	v := &View{ID: uuid.New(), Name: strings.TrimSpace(name), Selection: sel, CreatedAt: time.Now().UTC()}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// Validate checks the name and the selection
func (v *View) Validate() error {
	if v.Name == "" {
		return errors.InvalidInput("view name is required")
	}
	if len(v.Name) > MaxViewNameLength {
		return errors.InvalidInput("view name is too long")
	}
	return v.Selection.Validate()
}
