package pipeline

import "errors"

// ErrCredentialMissing indicates a stage's provider credential is absent.
// The failure is never retried; the run halts and a credential-gap
// notification is emitted independently.
var ErrCredentialMissing = errors.New("provider credential missing")

// OutcomeKind classifies how a stage finished.
type OutcomeKind int

const (
	// OutcomeCompleted means the stage produced parseable structured output.
	OutcomeCompleted OutcomeKind = iota
	// OutcomeDegraded means the stage finished but its output lost structure
	// and carries a partial marker. The pipeline continues.
	OutcomeDegraded
	// OutcomeFailed means the stage hit a hard failure. The pipeline aborts.
	OutcomeFailed
)

// StageOutcome is the in-memory result a stage hands to the orchestrator,
// alongside the persisted trace snapshot.
type StageOutcome struct {
	Kind   OutcomeKind
	Output map[string]any
	Err    error
}

// Completed builds a successful outcome.
func Completed(output map[string]any) StageOutcome {
	return StageOutcome{Kind: OutcomeCompleted, Output: output}
}

// Degraded builds a flagged-but-usable outcome.
func Degraded(output map[string]any) StageOutcome {
	return StageOutcome{Kind: OutcomeDegraded, Output: output}
}

// Failed builds a hard-failure outcome.
func Failed(err error) StageOutcome {
	return StageOutcome{Kind: OutcomeFailed, Err: err}
}

// Usable reports whether the outcome's output can feed the next stage.
func (o StageOutcome) Usable() bool {
	return o.Kind != OutcomeFailed
}
