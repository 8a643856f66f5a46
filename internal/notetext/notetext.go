// Package notetext holds the shared text heuristics for procedure
// notes: negation-aware phrase search and narrowing a full note to its
// procedure section.
package notetext

import "strings"

// negationTerms void a phrase match when they appear shortly before it.
// "No pneumothorax" must never become evidence for a chest tube.
var negationTerms = map[string]bool{
	"no":       true,
	"not":      true,
	"without":  true,
	"denies":   true,
	"denied":   true,
	"negative": true,
	"deferred": true,
}

// negationLookback is how many words before a phrase are checked for
// negation terms. The window never crosses a sentence boundary.
const negationLookback = 5

// FindEvidence scans the note for the first occurrence of any phrase
// that is not inside a negation window, and returns the containing
// sentence verbatim. The phrase match is case-insensitive; the returned
// quote preserves the note's original text.
func FindEvidence(note string, phrases []string) (string, bool) {
	lower := strings.ToLower(note)

	for _, phrase := range phrases {
		p := strings.ToLower(phrase)
		from := 0
		for {
			i := strings.Index(lower[from:], p)
			if i < 0 {
				break
			}
			idx := from + i
			start, end := sentenceBounds(note, idx)
			if !negatedAt(note[start:idx]) {
				return strings.TrimSpace(note[start:end]), true
			}
			from = idx + len(p)
		}
	}
	return "", false
}

// Mentions reports whether any phrase occurs in the note outside a
// negation window.
func Mentions(note string, phrases ...string) bool {
	_, found := FindEvidence(note, phrases)
	return found
}

// negatedAt reports whether the tail of the text leading up to a phrase
// match contains a negation term within the lookback window.
func negatedAt(before string) bool {
	words := strings.Fields(before)
	if len(words) > negationLookback {
		words = words[len(words)-negationLookback:]
	}
	for _, w := range words {
		w = strings.ToLower(strings.Trim(w, ".,;:()\"'"))
		if negationTerms[w] {
			return true
		}
	}
	return false
}

// sentenceBounds returns the [start, end) span of the sentence
// containing idx. Sentences break on '.', '!', '?' and newlines; the
// terminator is included in the span.
func sentenceBounds(text string, idx int) (int, int) {
	start := 0
	for i := idx - 1; i >= 0; i-- {
		if isSentenceBreak(text[i]) {
			start = i + 1
			break
		}
	}
	end := len(text)
	for i := idx; i < len(text); i++ {
		if isSentenceBreak(text[i]) {
			end = i + 1
			break
		}
	}
	return start, end
}

func isSentenceBreak(b byte) bool {
	return b == '.' || b == '!' || b == '?' || b == '\n'
}

// procedureHeadings mark the start of the procedure narrative in common
// note layouts. Matched case-insensitively at line starts.
var procedureHeadings = []string{
	"procedure in detail",
	"description of procedure",
	"procedure description",
	"procedure note",
	"procedure:",
}

// Narrow returns the note's procedure section when a recognizable
// heading is present, otherwise the full note. Evidence search and
// extraction run on the narrowed text so findings from the history
// section do not masquerade as performed procedures.
func Narrow(note string) string {
	lines := strings.Split(note, "\n")

	start := -1
	for i, line := range lines {
		l := strings.ToLower(strings.TrimSpace(line))
		for _, h := range procedureHeadings {
			if strings.HasPrefix(l, h) {
				start = i
				break
			}
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return note
	}

	// The section runs until the next heading-looking line.
	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if looksLikeHeading(lines[i]) {
			end = i
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines[start:end], "\n"))
}

// looksLikeHeading reports whether a line is a section heading: short,
// mostly uppercase, ending in a colon or fully capitalized.
func looksLikeHeading(line string) bool {
	l := strings.TrimSpace(line)
	if l == "" || len(l) > 60 {
		return false
	}
	if !strings.HasSuffix(l, ":") && l != strings.ToUpper(l) {
		return false
	}
	letters := 0
	upper := 0
	for _, r := range l {
		if 'a' <= r && r <= 'z' {
			letters++
		}
		if 'A' <= r && r <= 'Z' {
			letters++
			upper++
		}
	}
	return letters > 0 && (strings.HasSuffix(l, ":") || upper == letters)
}
