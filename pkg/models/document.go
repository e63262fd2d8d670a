// Package models defines the core domain models for AI-generated workflow documents.
package models

import "time"

// WorkflowDocument is the generated automation artifact handed to the user for
// download and import into the downstream workflow engine. The JSON shape of
// this struct is the wire contract consumed by the validator, the dry-run
// simulator, and the import side alike.
type WorkflowDocument struct {
	Name        string         `json:"name"`
	Nodes       []*Node        `json:"nodes"`
	Connections ConnectionMap  `json:"connections"`
	Active      bool           `json:"active"`
	Settings    map[string]any `json:"settings"`
}

// ConnectionMap maps a source node id to its outgoing edges, grouped by
// output name ("main", "error", ...) and then by output index.
type ConnectionMap map[string]map[string][][]ConnectionTarget

// ConnectionTarget is one typed edge endpoint inside a ConnectionMap.
type ConnectionTarget struct {
	Node  string `json:"node"`
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// NodeByID returns the node with the given id, or nil.
func (d *WorkflowDocument) NodeByID(id string) *Node {
	for _, node := range d.Nodes {
		if node != nil && node.ID == id {
			return node
		}
	}

	return nil
}

// HasTriggerNode reports whether at least one node is a trigger-class node,
// which the document needs to be deployable.
func (d *WorkflowDocument) HasTriggerNode() bool {
	for _, node := range d.Nodes {
		if node != nil && node.IsTrigger() {
			return true
		}
	}

	return false
}

// WalkConnections calls fn for every edge in the connection map with the
// source node id and the target reference.
func (d *WorkflowDocument) WalkConnections(fn func(sourceID string, target ConnectionTarget)) {
	for sourceID, outputs := range d.Connections {
		for _, groups := range outputs {
			for _, group := range groups {
				for _, target := range group {
					fn(sourceID, target)
				}
			}
		}
	}
}

// ConnectionCount returns the total number of edges in the document.
func (d *WorkflowDocument) ConnectionCount() int {
	count := 0

	d.WalkConnections(func(string, ConnectionTarget) {
		count++
	})

	return count
}

// WorkflowStatus represents the lifecycle state of a generation-owned
// workflow record.
type WorkflowStatus string

const (
	WorkflowStatusProcessing       WorkflowStatus = "processing"        // Pipeline currently running
	WorkflowStatusCompleted        WorkflowStatus = "completed"         // Finalized and validated
	WorkflowStatusDryRunComplete   WorkflowStatus = "dry_run_complete"  // Finalized under a dry-run request
	WorkflowStatusValidationFailed WorkflowStatus = "validation_failed" // Document built but failed blocking checks
	WorkflowStatusFailed           WorkflowStatus = "failed"            // Pipeline aborted
)

// WorkflowRecord is the durable record an orchestration run creates at start
// and updates exactly once with its terminal state. The document is retained
// even when validation fails so the user can inspect the partial artifact.
type WorkflowRecord struct {
	ID               string            `json:"id"`
	Owner            string            `json:"owner"  validate:"required"`
	Prompt           string            `json:"prompt" validate:"required"`
	Status           WorkflowStatus    `json:"status"`
	Document         *WorkflowDocument `json:"document,omitempty"`
	ValidationErrors []string          `json:"validation_errors,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Deployable reports whether the record's document passed validation and may
// be handed to the execution engine.
func (r *WorkflowRecord) Deployable() bool {
	return r.Status == WorkflowStatusCompleted || r.Status == WorkflowStatusDryRunComplete
}

// Automation is the durable record created after a successful generation,
// used for later retrieval and download of the finalized document.
type Automation struct {
	ID         string            `json:"id"`
	WorkflowID string            `json:"workflow_id"`
	Owner      string            `json:"owner"`
	Name       string            `json:"name"`
	Document   *WorkflowDocument `json:"document"`
	CreatedAt  time.Time         `json:"created_at"`
}
