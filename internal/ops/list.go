package ops

import (
	"context"
	"database/sql"

	"github.com/bigviv/CleanSheet/internal/db"
	"github.com/bigviv/CleanSheet/internal/example"
)

// ListInput contains parameters for the ListExamples operation.
type ListInput struct {
	Tag    string // optional, matched after normalization
	Active *bool  // optional
	Limit  int    // default: 20, max: 100
	Offset int    // default: 0
}

// ListOutput contains the result of the ListExamples operation.
type ListOutput struct {
	Items      []example.Summary `json:"items"`
	Pagination Pagination        `json:"pagination"`
	Sort       string            `json:"sort"`
}

// ListExamples retrieves style example summaries with pagination.
func ListExamples(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset := max(input.Offset, 0)

	filter := db.ListFilter{
		Tag:    example.NormalizeTag(input.Tag),
		Active: input.Active,
	}
	summaries, total, err := db.ListExamples(ctx, database, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []example.Summary{}
	}

	return &ListOutput{
		Items: summaries,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(summaries) < total,
			Total:   total,
		},
		Sort: "updated_at_desc",
	}, nil
}
