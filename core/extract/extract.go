package extract

import (
	"regexp"
	"strings"
)

var (
	// fencedBlockRe matches a markdown code fence, optionally tagged "json",
	// capturing the inner text. Non-greedy so the first fence wins.
	fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

	// jsonLabelRe matches a "json:" label (case-insensitive) and captures
	// everything after it.
	jsonLabelRe = regexp.MustCompile(`(?is)json\s*:\s*(.*)$`)
)

// Extract locates the most plausible JSON candidate inside raw LLM output.
// Models frequently wrap JSON in narrative prose, markdown fences, or a
// "JSON:" label, so Extract tries a fixed sequence of strategies and stops
// at the first one that produces a candidate:
//
//  1. The inner text of a fenced code block (```json ... ``` or ``` ... ```).
//  2. The text following a case-insensitive "json:" label.
//  3. The span from the first '{' or '[' to the last matching '}' or ']'.
//  4. The whole trimmed text, if it already starts with '{' or '['.
//
// The strategy order is a strict priority: a fenced block always wins over a
// loose brace match, even when the loose match appears earlier in the text.
//
// The returned candidate is trimmed but not parsed; callers are expected to
// run it through [CleanSyntax] and a JSON decoder. The second return value is
// false when no strategy produced a candidate.
//
// Strategy 3 is a first-to-last heuristic, not a balanced-bracket parser: on
// text with braces inside string literals or multiple unrelated JSON values
// it can over-capture. This mirrors how far a regex-based extraction can go;
// recovery from a bad span is the healing loop's job.
func Extract(text string) (string, bool) {
	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}

	if m := jsonLabelRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}

	if candidate, ok := looseMatch(text); ok {
		return candidate, true
	}

	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return trimmed, true
	}

	return "", false
}

// looseMatch captures the span from the first opening brace or bracket to the
// last occurrence of its matching closer. When both an object and an array
// span exist, the one that starts earlier in the text wins.
func looseMatch(text string) (string, bool) {
	objStart := strings.Index(text, "{")
	objEnd := strings.LastIndex(text, "}")
	arrStart := strings.Index(text, "[")
	arrEnd := strings.LastIndex(text, "]")

	objOK := objStart != -1 && objEnd > objStart
	arrOK := arrStart != -1 && arrEnd > arrStart

	switch {
	case objOK && (!arrOK || objStart < arrStart):
		return text[objStart : objEnd+1], true
	case arrOK:
		return text[arrStart : arrEnd+1], true
	default:
		return "", false
	}
}
