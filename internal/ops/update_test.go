package ops

import (
	"context"
	"database/sql"
	"testing"

	"github.com/bigviv/CleanSheet/internal/config"
	"github.com/bigviv/CleanSheet/internal/db"
	"github.com/bigviv/CleanSheet/internal/errors"
)

func storeForTest(t *testing.T, ctx context.Context, database *sql.DB, title, text string) string {
	t.Helper()
	out, err := StoreExample(ctx, database, config.DefaultConfig(), StoreInput{Title: title, Text: text})
	if err != nil {
		t.Fatalf("StoreExample failed: %v", err)
	}
	return out.ID
}

func TestUpdate_Fields(t *testing.T) {
	database, _ := setupTestDB(t)
	ctx := context.Background()
	id := storeForTest(t, ctx, database, "Old title", "Old text.")

	tags := []string{"New", "new"}
	output, err := UpdateExample(ctx, database, config.DefaultConfig(), UpdateInput{
		ID:    id,
		Title: stringPtr("New title"),
		Text:  stringPtr("New text with more words."),
		Tags:  &tags,
	})
	if err != nil {
		t.Fatalf("UpdateExample failed: %v", err)
	}
	if !output.IsActive {
		t.Error("IsActive should be unchanged (true)")
	}

	e, err := db.GetExample(ctx, database, id)
	if err != nil {
		t.Fatalf("GetExample failed: %v", err)
	}
	if e.Title != "New title" || e.Text != "New text with more words." {
		t.Errorf("got title=%q text=%q", e.Title, e.Text)
	}
	if e.WordCount != 5 {
		t.Errorf("WordCount = %d, want 5 (recomputed)", e.WordCount)
	}
	if len(e.Tags) != 1 || e.Tags[0] != "new" {
		t.Errorf("Tags = %v, want [new]", e.Tags)
	}
}

func TestUpdate_PartialKeepsOtherFields(t *testing.T) {
	database, _ := setupTestDB(t)
	ctx := context.Background()
	id := storeForTest(t, ctx, database, "Keep me", "Original text.")

	if _, err := UpdateExample(ctx, database, config.DefaultConfig(), UpdateInput{
		ID:   id,
		Text: stringPtr("Changed text."),
	}); err != nil {
		t.Fatalf("UpdateExample failed: %v", err)
	}

	e, err := db.GetExample(ctx, database, id)
	if err != nil {
		t.Fatalf("GetExample failed: %v", err)
	}
	if e.Title != "Keep me" {
		t.Errorf("Title = %q, want unchanged", e.Title)
	}
}

func TestSetActive(t *testing.T) {
	database, _ := setupTestDB(t)
	ctx := context.Background()
	cfg := config.DefaultConfig()
	id := storeForTest(t, ctx, database, "Toggle", "Toggle text.")

	out, err := SetActive(ctx, database, cfg, id, false)
	if err != nil {
		t.Fatalf("SetActive(false) failed: %v", err)
	}
	if out.IsActive {
		t.Error("IsActive should be false after deactivation")
	}

	out, err = SetActive(ctx, database, cfg, id, true)
	if err != nil {
		t.Fatalf("SetActive(true) failed: %v", err)
	}
	if !out.IsActive {
		t.Error("IsActive should be true after activation")
	}
}

func TestUpdate_Errors(t *testing.T) {
	database, _ := setupTestDB(t)
	ctx := context.Background()
	cfg := config.DefaultConfig()
	id := storeForTest(t, ctx, database, "Title", "Text.")

	tests := []struct {
		name  string
		input UpdateInput
		code  errors.ErrorCode
	}{
		{"missing id", UpdateInput{Title: stringPtr("x")}, errors.ErrInvalidRequest},
		{"no fields", UpdateInput{ID: id}, errors.ErrInvalidRequest},
		{"blank title", UpdateInput{ID: id, Title: stringPtr("  ")}, errors.ErrInvalidRequest},
		{"unknown id", UpdateInput{ID: "01MISSING", IsActive: boolPtr(false)}, errors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UpdateExample(ctx, database, cfg, tt.input)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}
