package heal

import "github.com/leofalp/structo/core/jsonschema"

// Event names emitted through the notification sink around each healer
// invocation.
const (
	// EventHealerInvoke fires immediately before a healer completion call.
	EventHealerInvoke = "healing.healer_invoke"
	// EventHealerResult fires immediately after a healer completion call returns.
	EventHealerResult = "healing.healer_result"
)

// HealerInvokeEvent is the payload of EventHealerInvoke.
type HealerInvokeEvent struct {
	BrokenCandidate string               `json:"broken_candidate"`
	ErrorMessage    string               `json:"error_message"`
	SchemaName      string               `json:"schema_name,omitempty"`
	Schema          *jsonschema.Property `json:"schema,omitempty"`
	HealerModel     string               `json:"healer_model"`
	Mode            string               `json:"mode"`
	Attempt         int                  `json:"attempt"`
}

// HealerResultEvent is the payload of EventHealerResult. Healed reports
// whether the healer invocation itself succeeded; Result carries the reply
// text on success, Error the invocation failure otherwise.
type HealerResultEvent struct {
	Healed   bool   `json:"healed"`
	Original string `json:"original"`
	Result   string `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`
	Attempt  int    `json:"attempt"`
}
