package rewrite

import (
	"regexp"
	"strings"
)

// ChunkKind tags a Chunk as free text or a protected span.
type ChunkKind int

const (
	ChunkText ChunkKind = iota
	ChunkProtected
)

// Chunk is a contiguous piece of a string produced by Protect.
type Chunk struct {
	Kind ChunkKind
	Text string
}

// Chunks is an ordered, gap-free cover of a string.
type Chunks []Chunk

// Join reassembles the chunks in order.
func (cs Chunks) Join() string {
	var b strings.Builder
	for _, c := range cs {
		b.WriteString(c.Text)
	}
	return b.String()
}

// urlTail matches the body of a URL, refusing to end on trailing sentence
// punctuation so "see https://x.test/a." keeps its full stop outside the span.
const urlTail = "[^\\s<>\"'`]*[^\\s<>\"'`.,;:!?)\\]]"

// protectedPattern lists the protected classes in priority order. Go's
// leftmost-first alternation gives "first matching class wins" at each
// position. Each class is one capture group; POSIX paths carry a
// non-captured boundary prefix because RE2 has no lookbehind.
var protectedPattern = regexp.MustCompile(strings.Join([]string{
	`(?i:\b(https?://` + urlTail + `))`,
	`(?i:\b(www\.` + urlTail + `))`,
	`\b([A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,})`,
	"(`[^`\\n]+`)",
	`\b([A-Za-z]:\\(?:[^\s]*[^\s.,;:!?)\]'"])?)`,
	`(?:^|[\s(\["'])(/[^\s]*[^\s.,;:!?)\]'"])`,
}, "|"))

// Protect splits s into alternating text and protected chunks. URLs, emails,
// inline code and file paths come back as protected chunks; everything else
// is text. Concatenating the chunks yields s exactly.
func Protect(s string) Chunks {
	if s == "" {
		return nil
	}

	var chunks Chunks
	pos := 0
	for _, m := range protectedPattern.FindAllStringSubmatchIndex(s, -1) {
		start, end := spanOf(m)
		if start < 0 {
			continue
		}
		if start > pos {
			chunks = append(chunks, Chunk{Kind: ChunkText, Text: s[pos:start]})
		}
		chunks = append(chunks, Chunk{Kind: ChunkProtected, Text: s[start:end]})
		pos = end
	}
	if pos < len(s) {
		chunks = append(chunks, Chunk{Kind: ChunkText, Text: s[pos:]})
	}
	return chunks
}

// spanOf returns the span of the first capture group that participated.
func spanOf(m []int) (int, int) {
	for g := 1; 2*g+1 < len(m); g++ {
		if m[2*g] >= 0 {
			return m[2*g], m[2*g+1]
		}
	}
	return -1, -1
}

// MapText applies fn to every text chunk of s and leaves protected spans
// untouched.
func MapText(s string, fn func(string) string) string {
	chunks := Protect(s)
	for i := range chunks {
		if chunks[i].Kind == ChunkText {
			chunks[i].Text = fn(chunks[i].Text)
		}
	}
	return chunks.Join()
}

// maskProtected replaces every protected span of s with the same number of
// 'x' bytes. Offsets into the result are valid offsets into s.
func maskProtected(s string) string {
	chunks := Protect(s)
	for i := range chunks {
		if chunks[i].Kind == ChunkProtected {
			chunks[i].Text = strings.Repeat("x", len(chunks[i].Text))
		}
	}
	return chunks.Join()
}

// protectedRanges returns the byte ranges [start, end) of protected spans in s.
func protectedRanges(s string) [][2]int {
	var ranges [][2]int
	pos := 0
	for _, c := range Protect(s) {
		if c.Kind == ChunkProtected {
			ranges = append(ranges, [2]int{pos, pos + len(c.Text)})
		}
		pos += len(c.Text)
	}
	return ranges
}

// overlapsProtected reports whether [start, end) intersects any range.
func overlapsProtected(start, end int, ranges [][2]int) bool {
	for _, r := range ranges {
		if start < r[1] && end > r[0] {
			return true
		}
	}
	return false
}
