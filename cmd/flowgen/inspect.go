package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/flowgen-io/flowgen/pkg/dryrun"
	"github.com/flowgen-io/flowgen/pkg/models"
	"github.com/flowgen-io/flowgen/pkg/validation"
)

func runValidate(_ context.Context, command *cli.Command) error {
	document, err := readDocument(command)
	if err != nil {
		return err
	}

	report := validation.Validate(document)

	if err := printJSON(report); err != nil {
		return err
	}

	if !report.IsValid {
		return cli.Exit("", 1)
	}

	return nil
}

func runSimulate(_ context.Context, command *cli.Command) error {
	document, err := readDocument(command)
	if err != nil {
		return err
	}

	result := dryrun.Simulate(document)

	if err := printJSON(result); err != nil {
		return err
	}

	if !result.ReadyForDeployment {
		return cli.Exit("", 1)
	}

	return nil
}

func readDocument(command *cli.Command) (*models.WorkflowDocument, error) {
	path := command.Args().First()
	if path == "" {
		return nil, fmt.Errorf("usage: %s <workflow.json>", command.Name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow document: %w", err)
	}

	var document models.WorkflowDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("failed to parse workflow document: %w", err)
	}

	return &document, nil
}

func printJSON(v any) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	fmt.Println(string(encoded))

	return nil
}
