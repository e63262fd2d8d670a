// Package validation checks workflow documents for structural
// well-formedness and semantic completeness before deployment.
package validation

import (
	"fmt"
	"time"

	"github.com/flowgen-io/flowgen/pkg/models"
)

// Validate checks a workflow document and returns a report. Blocking
// problems land in Errors, advisory ones in Warnings; IsValid depends only
// on Errors. The function is pure and deterministic apart from the report
// timestamp.
func Validate(doc *models.WorkflowDocument) models.ValidationReport {
	report := models.ValidationReport{
		Errors:    []string{},
		Warnings:  []string{},
		Timestamp: time.Now().UTC(),
	}

	if doc == nil {
		report.Errors = append(report.Errors, "workflow document is missing")

		return report
	}

	report.NodeCount = len(doc.Nodes)
	report.ConnectionCount = doc.ConnectionCount()

	structural, err := structuralErrors(doc)
	if err != nil {
		report.Errors = append(report.Errors, err.Error())
	}

	report.Errors = append(report.Errors, structural...)

	report.Errors = append(report.Errors, documentErrors(doc)...)
	report.Errors = append(report.Errors, nodeErrors(doc)...)
	report.Errors = append(report.Errors, connectionErrors(doc)...)
	report.Warnings = append(report.Warnings, documentWarnings(doc)...)

	report.IsValid = len(report.Errors) == 0

	return report
}

func documentErrors(doc *models.WorkflowDocument) []string {
	errs := []string{}

	if doc.Name == "" {
		errs = append(errs, "workflow name must not be empty")
	}

	if len(doc.Nodes) == 0 {
		errs = append(errs, "workflow has no nodes")

		return errs
	}

	if doc.Connections == nil {
		errs = append(errs, "workflow connections are missing")
	}

	if !doc.HasTriggerNode() {
		errs = append(errs, "workflow has no trigger node and cannot be started")
	}

	return errs
}

func nodeErrors(doc *models.WorkflowDocument) []string {
	errs := []string{}
	seen := make(map[string]bool, len(doc.Nodes))

	for i, node := range doc.Nodes {
		if node == nil {
			errs = append(errs, fmt.Sprintf("node %d is missing", i))

			continue
		}

		if node.ID == "" {
			errs = append(errs, fmt.Sprintf("node %d has no id", i))
		} else if seen[node.ID] {
			errs = append(errs, fmt.Sprintf("node id %q is duplicated", node.ID))
		} else {
			seen[node.ID] = true
		}

		if node.Name == "" {
			errs = append(errs, fmt.Sprintf("node %q has no name", node.ID))
		}

		if node.Type == "" {
			errs = append(errs, fmt.Sprintf("node %q has no type", node.ID))
		}

		if len(node.Position) != 2 {
			errs = append(errs, fmt.Sprintf("node %q position must have exactly two coordinates", node.ID))
		}
	}

	return errs
}

func connectionErrors(doc *models.WorkflowDocument) []string {
	errs := []string{}

	doc.WalkConnections(func(sourceID string, target models.ConnectionTarget) {
		if doc.NodeByID(sourceID) == nil {
			errs = append(errs, fmt.Sprintf("connection source %q references an unknown node", sourceID))
		}

		if doc.NodeByID(target.Node) == nil {
			errs = append(errs, fmt.Sprintf("connection target %q references an unknown node", target.Node))
		}
	})

	return errs
}

func documentWarnings(doc *models.WorkflowDocument) []string {
	warnings := []string{}

	if len(doc.Nodes) == 0 {
		return warnings
	}

	hasLogging := false
	hasErrorHandling := false

	for _, node := range doc.Nodes {
		if node == nil {
			continue
		}

		if node.SuggestsLogging() {
			hasLogging = true
		}

		if node.SuggestsErrorHandling() {
			hasErrorHandling = true
		}
	}

	if !hasLogging {
		warnings = append(warnings, "workflow has no logging or monitoring node")
	}

	if !hasErrorHandling {
		warnings = append(warnings, "workflow has no error handling node")
	}

	return warnings
}
