package extract

import "regexp"

// trailingCommaRe matches a comma that sits immediately before a closing
// brace or bracket, allowing whitespace in between.
var trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)

// CleanSyntax removes commas that immediately precede a closing '}' or ']',
// the single most common syntax defect in model-emitted JSON.
//
// The replacement is applied until a fixpoint is reached, so CleanSyntax is
// idempotent: CleanSyntax(CleanSyntax(s)) == CleanSyntax(s). Already valid
// JSON passes through unchanged, with one documented caveat: the transform is
// purely textual and does not understand string literals, so a value such as
// "a,}" would also lose its comma. Candidates at this stage are already
// malformed more often than not, which makes the trade acceptable.
func CleanSyntax(s string) string {
	for {
		cleaned := trailingCommaRe.ReplaceAllString(s, "$1")
		if cleaned == s {
			return cleaned
		}
		s = cleaned
	}
}
