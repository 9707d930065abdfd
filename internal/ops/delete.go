package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/bigviv/CleanSheet/internal/db"
	"github.com/bigviv/CleanSheet/internal/errors"
)

// DeleteInput contains parameters for the DeleteExample operation.
type DeleteInput struct {
	ID string // required
}

// DeleteOutput contains the result of the DeleteExample operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// DeleteExample permanently removes a style example.
func DeleteExample(ctx context.Context, database *sql.DB, input DeleteInput) (*DeleteOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	if err := db.DeleteExample(ctx, database, id); err != nil {
		return nil, err
	}

	return &DeleteOutput{Deleted: true, ID: id}, nil
}
