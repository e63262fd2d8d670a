package models

// NodeExecutionRecord is the synthetic execution outcome for one node of a
// dry run.
type NodeExecutionRecord struct {
	NodeID     string         `json:"node_id"`
	NodeName   string         `json:"node_name"`
	NodeType   string         `json:"node_type"`
	Order      int            `json:"order"`
	Success    bool           `json:"success"`
	Output     map[string]any `json:"output,omitempty"`
	Errors     []string       `json:"errors,omitempty"`
	Warnings   []string       `json:"warnings,omitempty"`
	DurationMS int64          `json:"duration_ms"`
}

// DryRunResult is the aggregate outcome of a non-mutating workflow
// simulation. ReadyForDeployment is true only when every node succeeded and
// no blocking errors were collected.
type DryRunResult struct {
	ExecutionID        string                `json:"execution_id"`
	Nodes              []NodeExecutionRecord `json:"nodes"`
	SuccessfulNodes    int                   `json:"successful_nodes"`
	FailedNodes        int                   `json:"failed_nodes"`
	SuccessRate        float64               `json:"success_rate"` // Percentage across all nodes
	ReadyForDeployment bool                  `json:"ready_for_deployment"`
	Errors             []string              `json:"errors,omitempty"`
	Recommendations    []string              `json:"recommendations"`
}
