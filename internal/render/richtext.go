package render

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// Paths with at least one separator and a sensible tail; covers the file
	// references agents emit in prose (/root/project/main.go, ./out/run.log).
	filePathPattern = regexp.MustCompile(`(?:^|[\s("'])((?:/|\./|~/)[\w./~-]+[\w/-])`)
	imagePattern    = regexp.MustCompile(`(?i)\b[\w./~-]+\.(?:png|jpe?g|gif|webp|svg)\b`)
)

// sanitize strips control characters that would corrupt the terminal stream,
// keeping newlines and tabs. Everything else renders as-is.
func sanitize(text string) string {
	if !strings.ContainsFunc(text, isForbidden) {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isForbidden(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isForbidden(r rune) bool {
	if r == '\n' || r == '\t' {
		return false
	}
	return unicode.IsControl(r) || r == unicode.ReplacementChar
}

// Span is a run of rich text, either plain or a recognized reference.
type Span struct {
	Text    string
	IsPath  bool
	IsImage bool
}

// linkify splits sanitized text into spans, marking file-path-like substrings
// and image references so the renderer can style them.
func linkify(text string) []Span {
	var spans []Span
	rest := text
	for rest != "" {
		loc := filePathPattern.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		start, end := loc[2], loc[3]
		if start > 0 {
			spans = appendSpans(spans, rest[:start])
		}
		match := rest[start:end]
		spans = append(spans, Span{Text: match, IsPath: true, IsImage: imagePattern.MatchString(match)})
		rest = rest[end:]
	}
	if rest != "" {
		spans = appendSpans(spans, rest)
	}
	return spans
}

// appendSpans adds plain text, tagging standalone image references inside it.
func appendSpans(spans []Span, text string) []Span {
	for text != "" {
		loc := imagePattern.FindStringIndex(text)
		if loc == nil {
			spans = append(spans, Span{Text: text})
			return spans
		}
		if loc[0] > 0 {
			spans = append(spans, Span{Text: text[:loc[0]]})
		}
		spans = append(spans, Span{Text: text[loc[0]:loc[1]], IsImage: true})
		text = text[loc[1]:]
	}
	return spans
}
