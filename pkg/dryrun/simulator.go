// Package dryrun simulates a workflow document without executing any real
// node. It walks nodes in declared order and synthesizes per-node outputs,
// producing a readiness verdict for deployment.
package dryrun

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/flowgen-io/flowgen/pkg/models"
	"github.com/flowgen-io/flowgen/pkg/validation"
)

// Simulate runs a structural dry run over the document. Validation failures
// short-circuit the simulation; otherwise every node is visited in its
// declared order, not in connection-topology order.
func Simulate(doc *models.WorkflowDocument) *models.DryRunResult {
	result := &models.DryRunResult{
		ExecutionID:     uuid.New().String(),
		Nodes:           []models.NodeExecutionRecord{},
		Errors:          []string{},
		Recommendations: []string{},
	}

	report := validation.Validate(doc)
	if !report.IsValid {
		result.Errors = append(result.Errors, report.Errors...)
		result.Recommendations = append(result.Recommendations, "Fix validation errors before running a simulation")

		return result
	}

	if !doc.HasTriggerNode() {
		result.Errors = append(result.Errors, "workflow has no entry point")
		result.Recommendations = append(result.Recommendations, "Add a trigger node so the workflow can be started")

		return result
	}

	credentialWarnings := 0

	for order, node := range doc.Nodes {
		record := simulateNode(node, order+1)

		if len(node.Credentials) > 0 {
			credentialWarnings++
		}

		if record.Success {
			result.SuccessfulNodes++
		} else {
			result.FailedNodes++
			result.Errors = append(result.Errors, record.Errors...)
		}

		result.Nodes = append(result.Nodes, record)
	}

	total := len(result.Nodes)
	if total > 0 {
		result.SuccessRate = float64(result.SuccessfulNodes) / float64(total) * 100
	}

	result.ReadyForDeployment = result.SuccessRate == 100 && len(result.Errors) == 0
	result.Recommendations = recommendations(result, credentialWarnings)

	return result
}

func simulateNode(node *models.Node, order int) models.NodeExecutionRecord {
	record := models.NodeExecutionRecord{
		NodeID:   node.ID,
		NodeName: node.Name,
		NodeType: node.Type,
		Order:    order,
		Success:  true,
		Errors:   []string{},
		Warnings: []string{},
	}

	for credentialType := range node.Credentials {
		record.Warnings = append(record.Warnings,
			fmt.Sprintf("credential %q was not validated in this simulation", credentialType))
	}

	switch node.Kind() {
	case models.KindTrigger:
		record.Output = map[string]any{
			"triggered": true,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		record.DurationMS = 1
	case models.KindHTTP:
		simulateHTTPNode(node, &record)
	case models.KindAssignment:
		simulateAssignmentNode(node, &record)
	case models.KindConditional:
		// Real conditions are not evaluated, the true branch always wins.
		record.Output = map[string]any{
			"branch":    "true",
			"evaluated": false,
		}
		record.DurationMS = 1
	default:
		record.Output = map[string]any{
			"executed": true,
			"note":     "generic node, output shape unknown",
		}
		record.DurationMS = int64(10 + rand.IntN(240))
	}

	return record
}

func simulateHTTPNode(node *models.Node, record *models.NodeExecutionRecord) {
	params, ok := node.Parameters.HTTP()
	if !ok {
		record.Success = false
		record.Errors = append(record.Errors,
			fmt.Sprintf("node %q is an HTTP request without a url parameter", node.ID))

		return
	}

	record.Output = map[string]any{
		"statusCode": 200,
		"url":        params.URL,
		"method":     params.Method,
		"body":       map[string]any{"simulated": true},
	}
	record.DurationMS = 50
}

func simulateAssignmentNode(node *models.Node, record *models.NodeExecutionRecord) {
	fields := map[string]any{}

	for _, assignment := range node.Parameters.Assignments() {
		fields[assignment.Name] = assignment.Value
	}

	record.Output = map[string]any{"fields": fields}
	record.DurationMS = 1
}

func recommendations(result *models.DryRunResult, credentialWarnings int) []string {
	recs := []string{}

	if result.FailedNodes > 0 {
		recs = append(recs, "Fix failing nodes before deployment")
	}

	if credentialWarnings > 0 {
		recs = append(recs, "Configure and verify credentials for nodes that require them")
	}

	if result.ReadyForDeployment {
		recs = append(recs, "Workflow is ready for deployment")
	}

	return recs
}
