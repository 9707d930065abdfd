package ops

import (
	"context"
	"database/sql"

	"github.com/bigviv/CleanSheet/internal/config"
	"github.com/bigviv/CleanSheet/internal/db"
	"github.com/bigviv/CleanSheet/internal/errors"
	"github.com/bigviv/CleanSheet/internal/example"
	"github.com/bigviv/CleanSheet/internal/rewrite"
)

// RewriteInput contains parameters for the Rewrite operation.
type RewriteInput struct {
	Text    string           // may be empty; yields an empty result
	Options *rewrite.Options // nil = use saved settings
}

// RewriteOutput is the pipeline result plus the options that produced it.
type RewriteOutput struct {
	rewrite.Result
	Options      rewrite.Options `json:"options"`
	ExamplesUsed int             `json:"examples_used"`
}

// Rewrite resolves options, loads the active style examples, and runs the
// rewrite pipeline over the input text.
func Rewrite(ctx context.Context, database *sql.DB, cfg *config.Config, input RewriteInput) (*RewriteOutput, error) {
	if ctx.Err() != nil {
		return nil, errors.NewCancelled("rewrite")
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if chars := example.CountChars(input.Text); cfg.MaxInputChars > 0 && chars > cfg.MaxInputChars {
		return nil, errors.NewTextTooLarge("text", cfg.MaxInputChars, chars)
	}

	var opts rewrite.Options
	if input.Options != nil {
		opts = *input.Options
	} else {
		saved, err := GetSettings(ctx, database, cfg)
		if err != nil {
			return nil, err
		}
		opts = saved.Options
	}
	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}

	active, err := db.ListActiveExamples(ctx, database, rewrite.MaxStyleExamples)
	if err != nil {
		return nil, err
	}

	result := rewrite.Rewrite(input.Text, opts, example.StyleExamples(active))
	return &RewriteOutput{
		Result:       result,
		Options:      opts,
		ExamplesUsed: len(active),
	}, nil
}
