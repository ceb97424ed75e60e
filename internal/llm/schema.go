package llm

// BuildRecordJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// Every field is a required non-empty string and no other keys are allowed.
func BuildRecordJSONSchema(fields []string) map[string]any {
	props := make(map[string]any, len(fields))
	for _, f := range fields {
		props[f] = map[string]any{"type": "string", "minLength": 1}
	}
	required := make([]string, len(fields))
	copy(required, fields)

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}
