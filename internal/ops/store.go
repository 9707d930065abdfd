package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/bigviv/CleanSheet/internal/config"
	"github.com/bigviv/CleanSheet/internal/db"
	"github.com/bigviv/CleanSheet/internal/errors"
	"github.com/bigviv/CleanSheet/internal/example"
)

// StoreInput contains parameters for the StoreExample operation.
type StoreInput struct {
	Title    string // required
	Text     string // required
	Tags     []string
	Inactive bool // store without enabling it for the style heuristic
}

// StoreOutput contains the result of the StoreExample operation.
type StoreOutput struct {
	ID        string `json:"id"`
	TextChars int    `json:"text_chars"`
	WordCount int    `json:"word_count"`
	IsActive  bool   `json:"is_active"`
}

// StoreExample validates and persists a new style example.
func StoreExample(ctx context.Context, database *sql.DB, cfg *config.Config, input StoreInput) (*StoreOutput, error) {
	e, err := buildExample(cfg, input.Title, input.Text, input.Tags)
	if err != nil {
		return nil, err
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	now := time.Now().Unix()
	e.ID = id
	e.IsActive = !input.Inactive
	e.CreatedAt = now
	e.UpdatedAt = now

	if err := db.InsertExample(ctx, database, e); err != nil {
		return nil, err
	}

	return &StoreOutput{
		ID:        e.ID,
		TextChars: e.TextChars,
		WordCount: e.WordCount,
		IsActive:  e.IsActive,
	}, nil
}

// buildExample normalizes user input into an Example without identity or
// timestamps, enforcing the configured size limit.
func buildExample(cfg *config.Config, title, text string, tags []string) (*example.Example, error) {
	title = example.NormalizeTitle(title)
	if title == "" {
		return nil, errors.NewInvalidRequest("title is required")
	}
	text = example.NormalizeText(text)
	if text == "" {
		return nil, errors.NewInvalidRequest("text is required")
	}
	chars := example.CountChars(text)
	if cfg != nil && cfg.ExampleMaxChars > 0 && chars > cfg.ExampleMaxChars {
		return nil, errors.NewTextTooLarge("text", cfg.ExampleMaxChars, chars)
	}

	return &example.Example{
		Title:     title,
		Text:      text,
		TextChars: chars,
		WordCount: example.CountWords(text),
		Tags:      example.NormalizeTags(tags),
	}, nil
}
