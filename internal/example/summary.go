package example

// Summary is an example's metadata without the full text.
// Used by list operations to keep responses small.
type Summary struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Preview   string   `json:"preview"`
	TextChars int      `json:"text_chars"`
	WordCount int      `json:"word_count"`
	Tags      []string `json:"tags,omitempty"`
	IsActive  bool     `json:"is_active"`
	CreatedAt int64    `json:"created_at"`
	UpdatedAt int64    `json:"updated_at"`
}

// previewRunes caps the length of Summary.Preview.
const previewRunes = 120

// ToSummary strips the text down to a short preview.
func (e *Example) ToSummary() Summary {
	return Summary{
		ID:        e.ID,
		Title:     e.Title,
		Preview:   Preview(e.Text, previewRunes),
		TextChars: e.TextChars,
		WordCount: e.WordCount,
		Tags:      e.Tags,
		IsActive:  e.IsActive,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// Preview returns the first max runes of text on one line, with an
// ellipsis when truncated.
func Preview(text string, max int) string {
	text = whitespaceRegex.ReplaceAllString(text, " ")
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "…"
}
