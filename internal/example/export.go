package example

import "github.com/bigviv/CleanSheet/internal/rewrite"

// ExportRecord is one line of a JSONL export. The first line is a header
// (CleanSheetExport set); a line carrying Settings holds the saved rewrite
// options; every other line is an example.
type ExportRecord struct {
	// Header detection field - true only for header line
	CleanSheetExport bool `json:"_cleansheet_export,omitempty"`

	// Header fields (only present in header line)
	SchemaVersion string `json:"schema_version,omitempty"`
	ExportedAt    int64  `json:"exported_at,omitempty"`

	// Settings line
	Settings *rewrite.Options `json:"settings,omitempty"`

	// Example fields
	ID        string   `json:"id,omitempty"`
	Title     string   `json:"title,omitempty"`
	Text      string   `json:"text,omitempty"`
	TextChars int      `json:"text_chars,omitempty"` // IGNORED on import, recomputed
	WordCount int      `json:"word_count,omitempty"` // IGNORED on import, recomputed
	Tags      []string `json:"tags,omitempty"`
	IsActive  bool     `json:"is_active,omitempty"`
	CreatedAt int64    `json:"created_at,omitempty"`
	UpdatedAt int64    `json:"updated_at,omitempty"`
}

// ToExample converts an ExportRecord to an Example, normalizing input and
// recomputing derived fields.
func (r *ExportRecord) ToExample() *Example {
	text := NormalizeText(r.Text)
	return &Example{
		ID:        r.ID,
		Title:     NormalizeTitle(r.Title),
		Text:      text,
		TextChars: CountChars(text),
		WordCount: CountWords(text),
		Tags:      NormalizeTags(r.Tags),
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ToExportRecord converts an Example for export.
func ToExportRecord(e *Example) *ExportRecord {
	return &ExportRecord{
		ID:        e.ID,
		Title:     e.Title,
		Text:      e.Text,
		TextChars: e.TextChars,
		WordCount: e.WordCount,
		Tags:      e.Tags,
		IsActive:  e.IsActive,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// Pack is a hand-written YAML style pack:
//
//	settings:
//	  document_type: audit-finding
//	  english_variant: en-GB
//	examples:
//	  - title: Access review finding
//	    tags: [access, itgc]
//	    text: |
//	      Management did not complete the quarterly access review.
type Pack struct {
	Settings *rewrite.Options `yaml:"settings,omitempty"`
	Examples []PackExample    `yaml:"examples"`
}

// PackExample is one example in a YAML pack. Active defaults to true.
type PackExample struct {
	ID     string   `yaml:"id,omitempty"`
	Title  string   `yaml:"title"`
	Text   string   `yaml:"text"`
	Tags   []string `yaml:"tags,omitempty"`
	Active *bool    `yaml:"active,omitempty"`
}

// ToExportRecord lifts a pack entry into the common import record.
func (p PackExample) ToExportRecord() *ExportRecord {
	active := p.Active == nil || *p.Active
	return &ExportRecord{
		ID:       p.ID,
		Title:    p.Title,
		Text:     p.Text,
		Tags:     p.Tags,
		IsActive: active,
	}
}
