package classify

import "github.com/abhisek/starpath/internal/llm"

// ClassificationSchema defines the JSON schema for LLM task classification.
var ClassificationSchema = &llm.Schema{
	Name:        "todo-classification",
	Description: "Assignment of a to-do item to one node of a personal skill map",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"node_id": map[string]any{
				"type":        []any{"string", "null"},
				"description": "The ID of the best matching node from the candidate list, or null if none fits",
			},
			"confidence": map[string]any{
				"type":        "number",
				"minimum":     0.0,
				"maximum":     1.0,
				"description": "Confidence score (0.0–1.0) for the assignment",
			},
			"reasoning": map[string]any{
				"type":        "string",
				"description": "Brief one-sentence explanation",
			},
		},
		"required":             []any{"node_id", "confidence", "reasoning"},
		"additionalProperties": false,
	},
}
