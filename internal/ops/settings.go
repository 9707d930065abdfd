package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/bigviv/CleanSheet/internal/config"
	"github.com/bigviv/CleanSheet/internal/db"
	"github.com/bigviv/CleanSheet/internal/rewrite"
)

// SettingsKey is the settings row holding the saved rewrite options.
const SettingsKey = "rewrite_options"

// SettingsOutput contains the saved rewrite options.
type SettingsOutput struct {
	Options rewrite.Options `json:"options"`
	Seeded  bool            `json:"seeded"` // true when defaults were written by this call
}

// DefaultOptions builds the first-run rewrite options from config defaults.
func DefaultOptions(cfg *config.Config) rewrite.Options {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return rewrite.Options{
		Concise:             true,
		CalmTone:            true,
		SharperImpact:       true,
		StandardiseSpelling: true,
		AuditSafeMode:       cfg.Defaults.AuditSafe(),
		Owner:               cfg.Defaults.Owner,
		DocumentType:        rewrite.DocumentType(cfg.Defaults.DocumentType),
		EnglishVariant:      rewrite.EnglishVariant(cfg.Defaults.EnglishVariant),
	}
}

// GetSettings returns the saved rewrite options, seeding them from config
// defaults the first time.
func GetSettings(ctx context.Context, database *sql.DB, cfg *config.Config) (*SettingsOutput, error) {
	var opts rewrite.Options
	found, err := db.GetSetting(ctx, database, SettingsKey, &opts)
	if err != nil {
		return nil, err
	}
	if found {
		return &SettingsOutput{Options: opts}, nil
	}

	opts = DefaultOptions(cfg)
	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}
	if err := db.PutSetting(ctx, database, SettingsKey, opts); err != nil {
		return nil, err
	}
	return &SettingsOutput{Options: opts, Seeded: true}, nil
}

// SaveSettings validates and replaces the saved rewrite options.
func SaveSettings(ctx context.Context, database *sql.DB, opts rewrite.Options) (*SettingsOutput, error) {
	opts.Owner = strings.TrimSpace(opts.Owner)
	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}
	if err := db.PutSetting(ctx, database, SettingsKey, opts); err != nil {
		return nil, err
	}
	return &SettingsOutput{Options: opts}, nil
}

// SettingsPatch changes a subset of the saved options (nil = don't change).
type SettingsPatch struct {
	ActiveVoice         *bool
	ClearOwnership      *bool
	SharperImpact       *bool
	CalmTone            *bool
	Concise             *bool
	AuditSafeMode       *bool
	StandardiseSpelling *bool
	Owner               *string
	DocumentType        *string
	EnglishVariant      *string
}

// Apply returns opts with every non-nil patch field applied.
func (p SettingsPatch) Apply(opts rewrite.Options) rewrite.Options {
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	setBool(&opts.ActiveVoice, p.ActiveVoice)
	setBool(&opts.ClearOwnership, p.ClearOwnership)
	setBool(&opts.SharperImpact, p.SharperImpact)
	setBool(&opts.CalmTone, p.CalmTone)
	setBool(&opts.Concise, p.Concise)
	setBool(&opts.AuditSafeMode, p.AuditSafeMode)
	setBool(&opts.StandardiseSpelling, p.StandardiseSpelling)
	if p.Owner != nil {
		opts.Owner = *p.Owner
	}
	if p.DocumentType != nil {
		opts.DocumentType = rewrite.DocumentType(strings.TrimSpace(*p.DocumentType))
	}
	if p.EnglishVariant != nil {
		opts.EnglishVariant = rewrite.EnglishVariant(strings.TrimSpace(*p.EnglishVariant))
	}
	return opts
}

// UpdateSettings applies patch over the current saved options and saves
// the result.
func UpdateSettings(ctx context.Context, database *sql.DB, cfg *config.Config, patch SettingsPatch) (*SettingsOutput, error) {
	current, err := GetSettings(ctx, database, cfg)
	if err != nil {
		return nil, err
	}
	return SaveSettings(ctx, database, patch.Apply(current.Options))
}
