package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/bigviv/CleanSheet/internal/db"
	"github.com/bigviv/CleanSheet/internal/errors"
)

// FetchInput contains parameters for the FetchExample operation.
type FetchInput struct {
	ID string // required
}

// FetchOutput is a full style example.
type FetchOutput struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Text      string   `json:"text"`
	TextChars int      `json:"text_chars"`
	WordCount int      `json:"word_count"`
	Tags      []string `json:"tags,omitempty"`
	IsActive  bool     `json:"is_active"`
	CreatedAt int64    `json:"created_at"`
	UpdatedAt int64    `json:"updated_at"`
}

// FetchExample retrieves one style example by ID.
func FetchExample(ctx context.Context, database *sql.DB, input FetchInput) (*FetchOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	e, err := db.GetExample(ctx, database, id)
	if err != nil {
		return nil, err
	}

	return &FetchOutput{
		ID:        e.ID,
		Title:     e.Title,
		Text:      e.Text,
		TextChars: e.TextChars,
		WordCount: e.WordCount,
		Tags:      e.Tags,
		IsActive:  e.IsActive,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}, nil
}
