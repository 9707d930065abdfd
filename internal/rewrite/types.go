package rewrite

// DocumentType identifies the kind of document being rewritten.
type DocumentType string

const (
	DocAuditFinding     DocumentType = "audit-finding"
	DocAuditReport      DocumentType = "audit-report"
	DocExecutiveSummary DocumentType = "executive-summary"
	DocManagementLetter DocumentType = "management-letter"
	DocGeneral          DocumentType = "general"
)

// DocumentTypes lists every supported document type.
var DocumentTypes = []DocumentType{
	DocAuditFinding,
	DocAuditReport,
	DocExecutiveSummary,
	DocManagementLetter,
	DocGeneral,
}

// EnglishVariant is the target spelling convention.
type EnglishVariant string

const (
	VariantUS EnglishVariant = "en-US"
	VariantUK EnglishVariant = "en-GB"
)

// Options controls a single rewrite call. The pipeline assumes no defaults:
// callers supply every field.
type Options struct {
	ActiveVoice         bool           `json:"active_voice" yaml:"active_voice"`
	ClearOwnership      bool           `json:"clear_ownership" yaml:"clear_ownership"`
	SharperImpact       bool           `json:"sharper_impact" yaml:"sharper_impact"`
	CalmTone            bool           `json:"calm_tone" yaml:"calm_tone"`
	Concise             bool           `json:"concise" yaml:"concise"`
	AuditSafeMode       bool           `json:"audit_safe_mode" yaml:"audit_safe_mode"`
	Owner               string         `json:"owner,omitempty" yaml:"owner,omitempty" validate:"max=120"`
	DocumentType        DocumentType   `json:"document_type" yaml:"document_type" validate:"required,oneof=audit-finding audit-report executive-summary management-letter general"`
	EnglishVariant      EnglishVariant `json:"english_variant" yaml:"english_variant" validate:"required,oneof=en-US en-GB"`
	StandardiseSpelling bool           `json:"standardise_spelling" yaml:"standardise_spelling"`
}

// StyleExample is a user-curated reference document. Only active examples
// influence the style heuristic.
type StyleExample struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	Tags     []string `json:"tags,omitempty"`
	IsActive bool     `json:"is_active"`
}

// ChangeType classifies a change-log entry.
type ChangeType string

const (
	ChangeConcision ChangeType = "concision"
	ChangeClarity   ChangeType = "clarity"
	ChangeSpelling  ChangeType = "spelling"
	ChangeVoice     ChangeType = "voice"
)

// Change records one transformation applied to the text.
type Change struct {
	Type        ChangeType `json:"type"`
	Description string     `json:"description"`
}

// Result is the output of Rewrite.
type Result struct {
	RewrittenText string   `json:"rewritten_text"`
	ChangeLog     []Change `json:"change_log"`
	Suggestions   []string `json:"suggestions"`
}
