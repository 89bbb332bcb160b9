package heal

import "fmt"

// ErrorKind is the structural classification of a failed parse/validate step.
// It is produced directly by the step that failed, never derived from runtime
// type names or message matching.
type ErrorKind int

const (
	// KindParse means the candidate was not syntactically valid JSON.
	KindParse ErrorKind = iota
	// KindValidation means the candidate parsed but did not conform to the schema.
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// failure records one attempt's outcome inside a single Heal invocation.
type failure struct {
	kind    ErrorKind
	message string
}

// NoCandidateError is returned when extraction finds no JSON-like content in
// the raw response. It is terminal and consumes no attempt budget: with
// nothing to repair, invoking the healer would be pointless.
type NoCandidateError struct {
	// Raw is the response text that yielded no candidate, kept for diagnostics.
	Raw string
}

func (e *NoCandidateError) Error() string {
	return "no JSON-like content found in response"
}

// TerminalError is the single user-visible failure of a Heal invocation whose
// attempt budget was exhausted. Attempts is the number of healer invocations
// performed; Detail carries the last recorded error message; for validation
// failures, the concrete field-level messages.
type TerminalError struct {
	Attempts int
	LastKind ErrorKind
	Detail   string
}

func (e *TerminalError) Error() string {
	return fmt.Sprintf("structured output healing exhausted after %d healing attempt(s): last %s error: %s",
		e.Attempts, e.LastKind, e.Detail)
}
