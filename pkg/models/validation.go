package models

import "time"

// ValidationReport is the outcome of checking a workflow document's
// structural well-formedness and semantic completeness. Warnings are advisory
// and never affect IsValid.
type ValidationReport struct {
	IsValid         bool      `json:"is_valid"`
	Errors          []string  `json:"errors"`
	Warnings        []string  `json:"warnings"`
	NodeCount       int       `json:"node_count"`
	ConnectionCount int       `json:"connection_count"`
	Timestamp       time.Time `json:"timestamp"`
}
