package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/bigviv/CleanSheet/internal/errors"
	"github.com/bigviv/CleanSheet/internal/example"
)

// ErrUniqueConstraint is returned when an insert violates a UNIQUE constraint.
var ErrUniqueConstraint = &errors.CleanSheetError{
	Code:    "UNIQUE_CONSTRAINT",
	Status:  409,
	Message: "unique constraint violation",
}

// DBTX is satisfied by both *sql.DB and *sql.Tx so queries can run inside
// an import transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const exampleColumns = `id, title, text, text_chars, word_count, tags_json, is_active, created_at, updated_at`

// ListFilter narrows ListExamples and CountExamples. Zero values match all.
type ListFilter struct {
	Tag    string
	Active *bool
}

func (f ListFilter) where() (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if f.Tag != "" {
		clauses = append(clauses, `EXISTS (SELECT 1 FROM json_each(style_examples.tags_json) WHERE json_each.value = ?)`)
		args = append(args, f.Tag)
	}
	if f.Active != nil {
		clauses = append(clauses, `is_active = ?`)
		args = append(args, boolToInt(*f.Active))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// InsertExample stores a new style example.
func InsertExample(ctx context.Context, db DBTX, e *example.Example) error {
	tagsJSON, err := toTagsJSON(e.Tags)
	if err != nil {
		return errors.NewInternal(err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO style_examples (`+exampleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID, e.Title, e.Text, e.TextChars, e.WordCount,
		tagsJSON, boolToInt(e.IsActive), e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrUniqueConstraint
		}
		return errors.NewInternal(err)
	}
	return nil
}

// UpsertExample inserts e or overwrites the row with the same ID.
// Used by import in replace mode.
func UpsertExample(ctx context.Context, db DBTX, e *example.Example) error {
	tagsJSON, err := toTagsJSON(e.Tags)
	if err != nil {
		return errors.NewInternal(err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO style_examples (`+exampleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			text = excluded.text,
			text_chars = excluded.text_chars,
			word_count = excluded.word_count,
			tags_json = excluded.tags_json,
			is_active = excluded.is_active,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`,
		e.ID, e.Title, e.Text, e.TextChars, e.WordCount,
		tagsJSON, boolToInt(e.IsActive), e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetExample retrieves an example by its ULID.
func GetExample(ctx context.Context, db DBTX, id string) (*example.Example, error) {
	row := db.QueryRowContext(ctx, `SELECT `+exampleColumns+` FROM style_examples WHERE id = ?`, id)
	e, err := scanExample(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return e, nil
}

// ExampleExists reports whether an example with id is stored.
func ExampleExists(ctx context.Context, db DBTX, id string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM style_examples WHERE id = ? LIMIT 1`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return true, nil
}

// UpdateExample writes the mutable fields of e and bumps updated_at.
// Does NOT change: id, created_at
func UpdateExample(ctx context.Context, db DBTX, e *example.Example) error {
	tagsJSON, err := toTagsJSON(e.Tags)
	if err != nil {
		return errors.NewInternal(err)
	}

	now := time.Now().Unix()
	result, err := db.ExecContext(ctx, `
		UPDATE style_examples
		SET title = ?, text = ?, text_chars = ?, word_count = ?,
			tags_json = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`,
		e.Title, e.Text, e.TextChars, e.WordCount,
		tagsJSON, boolToInt(e.IsActive), now,
		e.ID,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(e.ID)
	}

	e.UpdatedAt = now
	return nil
}

// DeleteExample permanently removes an example.
func DeleteExample(ctx context.Context, db DBTX, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM style_examples WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// CountExamples returns the number of examples matching filter.
func CountExamples(ctx context.Context, db DBTX, filter ListFilter) (int, error) {
	where, args := filter.where()
	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM style_examples`+where, args...).Scan(&total); err != nil {
		return 0, errors.NewInternal(err)
	}
	return total, nil
}

// ListExamples returns a page of example summaries, most recently updated
// first, plus the total number of matches.
func ListExamples(ctx context.Context, db DBTX, filter ListFilter, limit, offset int) ([]example.Summary, int, error) {
	total, err := CountExamples(ctx, db, filter)
	if err != nil {
		return nil, 0, err
	}

	where, args := filter.where()
	args = append(args, limit, offset)
	rows, err := db.QueryContext(ctx, `
		SELECT `+exampleColumns+` FROM style_examples`+where+`
		ORDER BY updated_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, args...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	summaries := make([]example.Summary, 0)
	for rows.Next() {
		e, err := ScanExampleFromRows(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		summaries = append(summaries, e.ToSummary())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return summaries, total, nil
}

// ListActiveExamples returns up to limit active examples in curation order
// (oldest first). limit <= 0 returns all of them.
func ListActiveExamples(ctx context.Context, db DBTX, limit int) ([]example.Example, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx, `
		SELECT `+exampleColumns+` FROM style_examples
		WHERE is_active = 1
		ORDER BY created_at ASC, id ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var out []example.Example
	for rows.Next() {
		e, err := ScanExampleFromRows(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// StreamExamples returns rows for every example in curation order. The
// caller must close the rows and scan them with ScanExampleFromRows.
func StreamExamples(ctx context.Context, db *sql.DB) (*sql.Rows, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+exampleColumns+` FROM style_examples
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return rows, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExample(s scanner) (*example.Example, error) {
	var (
		e        example.Example
		tagsJSON sql.NullString
		active   int
	)
	err := s.Scan(
		&e.ID, &e.Title, &e.Text, &e.TextChars, &e.WordCount,
		&tagsJSON, &active, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.IsActive = active != 0

	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &e.Tags); err != nil {
			return nil, err
		}
	}
	return &e, nil
}

// ScanExampleFromRows scans the current row of a StreamExamples or list query.
func ScanExampleFromRows(rows *sql.Rows) (*example.Example, error) {
	return scanExample(rows)
}

func toTagsJSON(tags []string) (sql.NullString, error) {
	if len(tags) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
