// Package main provides the one-shot FlowGen CLI: generate a workflow from a
// prompt, or validate and simulate an existing workflow document without
// running a server.
package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/flowgen-io/flowgen/pkg/log"
)

func main() {
	command := &cli.Command{
		Name:                  "flowgen",
		Usage:                 "Generate and inspect AI-built workflows",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			{
				Name:    "generate",
				Aliases: []string{"g"},
				Usage:   "Run the generation pipeline for a prompt",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "prompt",
						Aliases:  []string{"p"},
						Usage:    "Natural language description of the workflow",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "Owner recorded on the generated workflow",
						Value:   "cli",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Simulate the generated workflow instead of marking it deployable",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "File to write the workflow document to (default stdout)",
					},
					&cli.StringFlag{
						Name:    "database-url",
						Usage:   "Where generation records are stored",
						Value:   "./.flowgen",
						Sources: cli.EnvVars("DATABASE_URL"),
					},
					&cli.StringFlag{
						Name:    "llm-provider",
						Usage:   "LLM provider (openai, anthropic, googleai, ollama)",
						Value:   "openai",
						Sources: cli.EnvVars("LLM_PROVIDER"),
					},
					&cli.StringFlag{
						Name:    "llm-model",
						Usage:   "Model for all stages",
						Sources: cli.EnvVars("LLM_MODEL"),
					},
					&cli.StringFlag{
						Name:    "llm-api-key",
						Usage:   "API key for the provider",
						Sources: cli.EnvVars("LLM_API_KEY", "OPENAI_API_KEY"),
					},
					&cli.StringFlag{
						Name:    "llm-base-url",
						Usage:   "Base URL override for the provider",
						Sources: cli.EnvVars("LLM_BASE_URL"),
					},
					&cli.StringFlag{
						Name:    "log-level",
						Usage:   "Log level (debug, info, warn, error)",
						Value:   "warn",
						Sources: cli.EnvVars("LOG_LEVEL"),
					},
				},
				Action: runGenerate,
			},
			{
				Name:      "validate",
				Aliases:   []string{"v"},
				Usage:     "Validate a workflow document file",
				ArgsUsage: "<workflow.json>",
				Action:    runValidate,
			},
			{
				Name:      "simulate",
				Aliases:   []string{"s"},
				Usage:     "Dry-run a workflow document file",
				ArgsUsage: "<workflow.json>",
				Action:    runSimulate,
			},
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		log.WithModule("cli").Error("Command failed", "error", err)
		os.Exit(1)
	}
}
