package db

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigviv/CleanSheet/internal/errors"
	"github.com/bigviv/CleanSheet/internal/example"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestExample(id, title, text string, created int64) *example.Example {
	return &example.Example{
		ID:        id,
		Title:     title,
		Text:      text,
		TextChars: example.CountChars(text),
		WordCount: example.CountWords(text),
		IsActive:  true,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestInsertAndGetExample(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	e := newTestExample("01EX001", "Access review", "Management did not complete the review.", 1000)
	e.Tags = []string{"access", "itgc"}
	require.NoError(t, InsertExample(ctx, db, e))

	got, err := GetExample(ctx, db, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestInsertExample_UniqueConstraint(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	e := newTestExample("01EX001", "A", "Text.", 1000)
	require.NoError(t, InsertExample(ctx, db, e))

	err := InsertExample(ctx, db, e)
	assert.Equal(t, ErrUniqueConstraint, err)
}

func TestGetExample_NotFound(t *testing.T) {
	_, err := GetExample(context.Background(), openTestDB(t), "missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestExampleExists(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, InsertExample(ctx, db, newTestExample("01EX001", "A", "Text.", 1000)))

	ok, err := ExampleExists(ctx, db, "01EX001")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ExampleExists(ctx, db, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateExample(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	e := newTestExample("01EX001", "Old", "Old text.", 1000)
	require.NoError(t, InsertExample(ctx, db, e))

	e.Title = "New"
	e.Text = "New text here."
	e.WordCount = 3
	e.IsActive = false
	e.Tags = []string{"finance"}
	require.NoError(t, UpdateExample(ctx, db, e))
	assert.Greater(t, e.UpdatedAt, int64(1000))

	got, err := GetExample(ctx, db, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Title)
	assert.Equal(t, "New text here.", got.Text)
	assert.False(t, got.IsActive)
	assert.Equal(t, []string{"finance"}, got.Tags)
	assert.Equal(t, int64(1000), got.CreatedAt)
}

func TestUpdateExample_NotFound(t *testing.T) {
	err := UpdateExample(context.Background(), openTestDB(t), newTestExample("missing", "A", "B.", 1))
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestDeleteExample(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, InsertExample(ctx, db, newTestExample("01EX001", "A", "Text.", 1000)))

	require.NoError(t, DeleteExample(ctx, db, "01EX001"))

	_, err := GetExample(ctx, db, "01EX001")
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	err = DeleteExample(ctx, db, "01EX001")
	assert.True(t, errors.Is(err, errors.ErrNotFound), "second delete reports not found")
}

func TestUpsertExample(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	e := newTestExample("01EX001", "First", "Text.", 1000)
	require.NoError(t, UpsertExample(ctx, db, e))

	e.Title = "Second"
	e.UpdatedAt = 2000
	require.NoError(t, UpsertExample(ctx, db, e))

	got, err := GetExample(ctx, db, "01EX001")
	require.NoError(t, err)
	assert.Equal(t, "Second", got.Title)
	assert.Equal(t, int64(2000), got.UpdatedAt)

	total, err := CountExamples(ctx, db, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestListExamples(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	for i := 1; i <= 5; i++ {
		e := newTestExample(fmt.Sprintf("01EX00%d", i), fmt.Sprintf("Example %d", i), "Some text.", int64(1000+i))
		if i%2 == 0 {
			e.Tags = []string{"access"}
		}
		e.IsActive = i != 5
		require.NoError(t, InsertExample(ctx, db, e))
	}

	summaries, total, err := ListExamples(ctx, db, ListFilter{}, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, summaries, 2)
	assert.Equal(t, "01EX005", summaries[0].ID, "most recently updated first")
	assert.Equal(t, "01EX004", summaries[1].ID)

	summaries, _, err = ListExamples(ctx, db, ListFilter{}, 2, 4)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "01EX001", summaries[0].ID)

	summaries, total, err = ListExamples(ctx, db, ListFilter{Tag: "access"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, summaries, 2)

	inactive := false
	summaries, total, err = ListExamples(ctx, db, ListFilter{Active: &inactive}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, summaries, 1)
	assert.Equal(t, "01EX005", summaries[0].ID)
}

func TestListExamples_Empty(t *testing.T) {
	summaries, total, err := ListExamples(context.Background(), openTestDB(t), ListFilter{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NotNil(t, summaries)
	assert.Empty(t, summaries)
}

func TestListActiveExamples(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	for i, active := range []bool{true, false, true, true, true} {
		e := newTestExample(fmt.Sprintf("01EX00%d", i+1), "T", "Text.", int64(1000+i))
		e.IsActive = active
		require.NoError(t, InsertExample(ctx, db, e))
	}

	got, err := ListActiveExamples(ctx, db, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "01EX001", got[0].ID, "oldest first")
	assert.Equal(t, "01EX003", got[1].ID)
	assert.Equal(t, "01EX004", got[2].ID)

	all, err := ListActiveExamples(ctx, db, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestStreamExamples(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	require.NoError(t, InsertExample(ctx, db, newTestExample("01EX002", "B", "Two.", 2000)))
	require.NoError(t, InsertExample(ctx, db, newTestExample("01EX001", "A", "One.", 1000)))

	rows, err := StreamExamples(ctx, db)
	require.NoError(t, err)
	defer rows.Close()

	var ids []string
	for rows.Next() {
		e, err := ScanExampleFromRows(rows)
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"01EX001", "01EX002"}, ids)
}
