// Package prompts loads and renders the per-stage prompt templates for the
// generation pipeline. Templates live in an external store and fall back to
// the embedded defaults below when the store is unreachable.
package prompts

// DefaultPlanner is the embedded template for stage 1. The {{.Input}}
// placeholder receives the user's automation request.
const DefaultPlanner = `You are an automation planning assistant. A business user described an
automation need. Produce a concrete implementation plan for a workflow
automation tool.

User request:
{{.Input}}

Respond with a single JSON object wrapped in a json code fence, with keys:
- "objective": one sentence describing what the automation achieves
- "trigger": how the workflow should start (manual, webhook, or schedule)
- "steps": an ordered array of step descriptions, each with "name",
  "purpose" and "kind" (one of "http", "set", "if", "other")
- "inputs": data the workflow needs from the outside world

Do not include any prose outside the JSON.`

// DefaultRefiner is the embedded template for stage 2.
const DefaultRefiner = `You are an automation reliability reviewer. Below is a draft workflow plan
as JSON. Keep its structure and every existing key, and add an
"error_handling" key describing how each fallible step should behave on
failure (retry, notify, or abort).

Draft plan:
{{.Input}}

Respond with the complete augmented JSON object in a json code fence, no
prose.`

// DefaultOptimizer is the embedded template for stage 3.
const DefaultOptimizer = `You are an automation performance reviewer. Below is a refined workflow
plan as JSON. Keep its structure and every existing key, and add a
"performance_optimizations" key listing concrete improvements (batching,
caching, narrowing payloads) where they apply.

Refined plan:
{{.Input}}

Respond with the complete augmented JSON object in a json code fence, no
prose.`

// DefaultFinalizer is the embedded template for stage 4. Its output is the
// workflow document contract consumed by the validator and the simulator.
const DefaultFinalizer = `You are a workflow document generator. Convert the optimized plan below
into an importable workflow document.

Optimized plan:
{{.Input}}

Respond with a single JSON object in a json code fence with exactly these
keys:
- "name": short workflow name
- "nodes": array of node objects, each with "id" (unique string), "name",
  "type" (use n8n-nodes-base.* types; the first node must be a trigger such
  as n8n-nodes-base.webhook or n8n-nodes-base.manualTrigger), "parameters"
  (object; http nodes require a "url"), "position" (array of two numbers)
- "connections": object keyed by source node id, each value
  {"main": [[{"node": targetId, "type": "main", "index": 0}]]}
- "active": false
- "settings": object

Every connection must reference node ids that exist in "nodes". No prose
outside the JSON.`

// Default returns the embedded template for a stage name, or the empty
// string for an unknown stage.
func Default(stage string) string {
	switch stage {
	case "planner":
		return DefaultPlanner
	case "refiner":
		return DefaultRefiner
	case "optimizer":
		return DefaultOptimizer
	case "finalizer":
		return DefaultFinalizer
	default:
		return ""
	}
}
