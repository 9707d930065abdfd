package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/bigviv/CleanSheet/internal/config"
	"github.com/bigviv/CleanSheet/internal/db"
	"github.com/bigviv/CleanSheet/internal/errors"
)

// UpdateInput contains parameters for the UpdateExample operation.
type UpdateInput struct {
	ID string // required

	// Editable fields (nil = don't change)
	Title    *string
	Text     *string
	Tags     *[]string
	IsActive *bool
}

// UpdateOutput contains the result of the UpdateExample operation.
type UpdateOutput struct {
	ID        string `json:"id"`
	IsActive  bool   `json:"is_active"`
	UpdatedAt int64  `json:"updated_at"`
}

// UpdateExample modifies an existing style example. Activation and
// deactivation are updates that only set IsActive.
func UpdateExample(ctx context.Context, database *sql.DB, cfg *config.Config, input UpdateInput) (*UpdateOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if input.Title == nil && input.Text == nil && input.Tags == nil && input.IsActive == nil {
		return nil, errors.NewInvalidRequest("at least one editable field must be provided")
	}

	e, err := db.GetExample(ctx, database, id)
	if err != nil {
		return nil, err
	}

	title, text, tags := e.Title, e.Text, e.Tags
	if input.Title != nil {
		title = *input.Title
	}
	if input.Text != nil {
		text = *input.Text
	}
	if input.Tags != nil {
		tags = *input.Tags
	}

	updated, err := buildExample(cfg, title, text, tags)
	if err != nil {
		return nil, err
	}
	updated.ID = e.ID
	updated.IsActive = e.IsActive
	updated.CreatedAt = e.CreatedAt
	if input.IsActive != nil {
		updated.IsActive = *input.IsActive
	}

	if err := db.UpdateExample(ctx, database, updated); err != nil {
		return nil, err
	}

	return &UpdateOutput{
		ID:        updated.ID,
		IsActive:  updated.IsActive,
		UpdatedAt: updated.UpdatedAt,
	}, nil
}

// SetActive is shorthand for an update that only toggles IsActive.
func SetActive(ctx context.Context, database *sql.DB, cfg *config.Config, id string, active bool) (*UpdateOutput, error) {
	return UpdateExample(ctx, database, cfg, UpdateInput{ID: id, IsActive: &active})
}
