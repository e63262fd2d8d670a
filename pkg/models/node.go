package models

import "strings"

// NodeKind is the coarse classification the simulator and validator interpret
// node parameters by. Unknown types fall back to KindGeneric.
type NodeKind string

const (
	KindTrigger     NodeKind = "trigger"
	KindHTTP        NodeKind = "http"
	KindAssignment  NodeKind = "assignment"
	KindConditional NodeKind = "conditional"
	KindGeneric     NodeKind = "generic"
)

// Node is one step of a workflow document. Parameters are interpreted per
// node type; Credentials references are unresolved at this layer.
type Node struct {
	ID          string            `json:"id"          validate:"required"`
	Name        string            `json:"name"        validate:"required"`
	Type        string            `json:"type"        validate:"required"`
	Parameters  Parameters        `json:"parameters"`
	Position    []float64         `json:"position"`
	Credentials map[string]string `json:"credentials,omitempty"`
}

// baseType returns the node type's final dot segment, lowercased.
// "n8n-nodes-base.manualTrigger" -> "manualtrigger".
func (n *Node) baseType() string {
	t := strings.ToLower(n.Type)
	if idx := strings.LastIndex(t, "."); idx >= 0 {
		t = t[idx+1:]
	}

	return t
}

// IsTrigger reports whether the node's type denotes an entry point: manual
// activation, webhook, or schedule.
func (n *Node) IsTrigger() bool {
	base := n.baseType()

	switch base {
	case "manualtrigger", "webhook", "scheduletrigger", "cron":
		return true
	}

	return strings.Contains(base, "trigger")
}

// Kind classifies the node for parameter interpretation.
func (n *Node) Kind() NodeKind {
	if n.IsTrigger() {
		return KindTrigger
	}

	switch base := n.baseType(); base {
	case "httprequest", "http":
		return KindHTTP
	case "set", "assignment":
		return KindAssignment
	case "if", "switch", "filter":
		return KindConditional
	default:
		return KindGeneric
	}
}

// SuggestsLogging reports whether the node's name or type suggests a logging
// or monitoring step. Used for advisory validation only.
func (n *Node) SuggestsLogging() bool {
	name := strings.ToLower(n.Name)
	base := n.baseType()

	return strings.Contains(name, "log") || strings.Contains(base, "log") ||
		strings.Contains(name, "monitor") || strings.Contains(base, "monitor")
}

// SuggestsErrorHandling reports whether the node looks like an error-handling
// step. Used for advisory validation only.
func (n *Node) SuggestsErrorHandling() bool {
	name := strings.ToLower(n.Name)
	base := n.baseType()

	return strings.Contains(name, "error") || strings.Contains(base, "errortrigger") ||
		strings.Contains(base, "errorworkflow")
}
