package pipeline

// FinalizerFallback synthesizes a minimal importable document when the
// finalizer's provider call fails: a single manual trigger carrying the
// failure note in its parameters. The user still gets a valid artifact to
// start from.
func FinalizerFallback(input map[string]any, cause error) map[string]any {
	name := "Generated Workflow"
	if objective, ok := input["objective"].(string); ok && objective != "" {
		name = objective
	}

	return map[string]any{
		"name": name,
		"nodes": []any{
			map[string]any{
				"id":   "manual-trigger",
				"name": "Manual Start",
				"type": "n8n-nodes-base.manualTrigger",
				"parameters": map[string]any{
					"note": "finalizer unavailable, minimal fallback document: " + cause.Error(),
				},
				"position": []any{250.0, 300.0},
			},
		},
		"connections": map[string]any{},
		"active":      false,
		"settings":    map[string]any{},
	}
}
