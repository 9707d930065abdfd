package ops

import (
	"context"
	"testing"

	"github.com/bigviv/CleanSheet/internal/errors"
)

func TestDelete_HappyPath(t *testing.T) {
	database, _ := setupTestDB(t)
	ctx := context.Background()
	id := storeForTest(t, ctx, database, "Gone soon", "Delete me.")

	output, err := DeleteExample(ctx, database, DeleteInput{ID: id})
	if err != nil {
		t.Fatalf("DeleteExample failed: %v", err)
	}
	if !output.Deleted || output.ID != id {
		t.Errorf("output = %+v", output)
	}

	if _, err := FetchExample(ctx, database, FetchInput{ID: id}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("fetch after delete: err = %v, want NOT_FOUND", err)
	}

	// Deletion is permanent; a second delete finds nothing.
	if _, err := DeleteExample(ctx, database, DeleteInput{ID: id}); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("second delete: err = %v, want NOT_FOUND", err)
	}
}

func TestDelete_MissingID(t *testing.T) {
	database, _ := setupTestDB(t)

	if _, err := DeleteExample(context.Background(), database, DeleteInput{ID: "  "}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("err = %v, want INVALID_REQUEST", err)
	}
}
