package observability

// Semantic conventions for observability attributes.
// These constants define standard attribute names to ensure consistency
// across different components of the system.

// --- LLM Provider Attributes ---

const (
	// AttrLLMProvider is the name of the LLM provider (e.g., "openai", "gemini")
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier (e.g., "gpt-4o-mini", "gemini-2.0-flash")
	AttrLLMModel = "llm.model"

	// AttrLLMFinishReason is the reason the generation finished
	AttrLLMFinishReason = "llm.finish_reason"
)

// --- Healing Attributes ---

const (
	// AttrHealingAttempt is the 1-based index of the current healing attempt
	AttrHealingAttempt = "healing.attempt"

	// AttrHealingMaxAttempts is the configured attempt budget
	AttrHealingMaxAttempts = "healing.max_attempts"

	// AttrHealingErrorKind is the structural kind of the failure driving a heal ("parse", "validation")
	AttrHealingErrorKind = "healing.error_kind"

	// AttrHealingMode is the healing context ("generic", "forced_extraction")
	AttrHealingMode = "healing.mode"

	// AttrSchemaName is the name of the schema being enforced
	AttrSchemaName = "schema.name"
)

// --- Span / Metric / Status Names ---

const (
	// SpanHeal covers one full Heal invocation, healer calls included
	SpanHeal = "heal"

	// MetricHealerInvocations counts secondary healer completion calls
	MetricHealerInvocations = "healing.healer_invocations"

	// MetricHealingOutcome counts terminal Heal outcomes, labeled by status
	MetricHealingOutcome = "healing.outcome"

	// AttrStatus is the generic status attribute ("ok", "error")
	AttrStatus = "status"

	// AttrStatusDescription carries the status description of a span
	AttrStatusDescription = "status.description"
)
