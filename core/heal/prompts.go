package heal

import "fmt"

// Healing prompt templates. Selection depends on the recorded error kind and
// the healing mode; see buildPrompt in heal.go. The forced-extraction first
// attempt deliberately sends the entire original response text, prose
// included, because the extraction itself may have captured the wrong span;
// later attempts work on the current candidate only.

const parseErrorTemplate = `The following text was supposed to be valid JSON but failed to parse.

Parse error: %s

Text:
%s

Fix the JSON syntax and output ONLY the corrected JSON, with no explanations and no markdown fences.`

const validationErrorTemplate = `The following JSON does not conform to the required schema.

Validation errors: %s

JSON:
%s

Required JSON Schema:
%s

Correct the JSON so it conforms to the schema. Output ONLY the corrected JSON, with no explanations and no markdown fences.`

const forcedExtractionTemplate = `The following model response was expected to contain JSON conforming to a schema, but it could not be used as-is.

Error: %s

Full response:
%s

Required JSON Schema:
%s

Extract and repair the intended JSON from the response. Output ONLY the JSON, with no explanations and no markdown fences.`

const genericTemplate = `The following text could not be used as structured output.

Error: %s

Text:
%s

Required JSON Schema:
%s

Produce valid JSON conforming to the schema. Output ONLY the JSON, with no explanations and no markdown fences.`

func parseErrorPrompt(errMsg, candidate string) string {
	return fmt.Sprintf(parseErrorTemplate, errMsg, candidate)
}

func validationErrorPrompt(errMsg, candidate, schemaJSON string) string {
	return fmt.Sprintf(validationErrorTemplate, errMsg, candidate, schemaJSON)
}

func forcedExtractionPrompt(errMsg, rawText, schemaJSON string) string {
	return fmt.Sprintf(forcedExtractionTemplate, errMsg, rawText, schemaJSON)
}

func genericPrompt(errMsg, candidate, schemaJSON string) string {
	return fmt.Sprintf(genericTemplate, errMsg, candidate, schemaJSON)
}
