// Package example models the user-curated style examples that calibrate
// the rewrite pipeline's sentence-length heuristic.
package example

import "github.com/bigviv/CleanSheet/internal/rewrite"

// Example is a stored style example.
type Example struct {
	// ID is a ULID that uniquely identifies this example
	ID string

	// Title is a short human-readable label (NFC, whitespace collapsed)
	Title string

	// Text is the reference prose
	Text string

	// TextChars is the character count of Text (runes, not bytes)
	TextChars int

	// WordCount is the whitespace-delimited word count of Text
	WordCount int

	// Tags are lowercase labels for filtering (stored as JSON in DB)
	Tags []string

	// IsActive marks the example as eligible for the style heuristic
	IsActive bool

	// CreatedAt is the Unix timestamp when the example was created
	CreatedAt int64

	// UpdatedAt is the Unix timestamp when the example was last updated
	UpdatedAt int64
}

// ToStyle converts the example to the pipeline's input type.
func (e *Example) ToStyle() rewrite.StyleExample {
	return rewrite.StyleExample{
		ID:       e.ID,
		Title:    e.Title,
		Text:     e.Text,
		Tags:     e.Tags,
		IsActive: e.IsActive,
	}
}

// StyleExamples converts a slice of examples, preserving order.
func StyleExamples(examples []Example) []rewrite.StyleExample {
	out := make([]rewrite.StyleExample, len(examples))
	for i := range examples {
		out[i] = examples[i].ToStyle()
	}
	return out
}
