// Package main provides the sutra CLI for running a workflow file once and
// printing the execution record.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sutraflow/sutra/pkg/cmd"
	"github.com/sutraflow/sutra/pkg/log"
	"github.com/sutraflow/sutra/pkg/models"
	"github.com/sutraflow/sutra/pkg/workflow"
	cli "github.com/urfave/cli/v3"
)

func main() {
	command := &cli.Command{
		Name:                  "sutra",
		Usage:                 "Run an automation workflow from a file",
		EnableShellCompletion: true,
		Commands: []*cli.Command{
			runCommand(),
			nodeTypesCommand(),
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Aliases:   []string{"r"},
		Usage:     "Execute a workflow definition file and print the result",
		ArgsUsage: "<workflow.json>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "input",
				Usage: "Initial input as a JSON object",
				Value: "{}",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))
			logger := log.WithModule("cli")

			path := command.Args().First()
			if path == "" {
				return fmt.Errorf("workflow file path is required")
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read workflow file: %w", err)
			}

			var graph models.WorkflowGraph
			if err := json.Unmarshal(data, &graph); err != nil {
				return fmt.Errorf("failed to parse workflow file: %w", err)
			}

			var input map[string]any
			if err := json.Unmarshal([]byte(command.String("input")), &input); err != nil {
				return fmt.Errorf("failed to parse input: %w", err)
			}

			engine := workflow.NewEngine(logger, cmd.NewRegistry(logger))

			execution, err := engine.Execute(ctx, &graph, input)
			if err != nil {
				return err
			}

			record, err := json.MarshalIndent(execution, "", "  ")
			if err != nil {
				return err
			}

			fmt.Println(string(record))

			if execution.Status != models.ExecutionStatusCompleted {
				return fmt.Errorf("execution %s: %s", execution.Status, execution.Error)
			}

			return nil
		},
	}
}

func nodeTypesCommand() *cli.Command {
	return &cli.Command{
		Name:    "node-types",
		Aliases: []string{"nt"},
		Usage:   "List the available node types",
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup("warn")
			logger := log.WithModule("cli")

			catalog, err := cmd.NewRegistry(logger).Catalog()
			if err != nil {
				return err
			}

			for _, info := range catalog {
				fmt.Printf("%-12s %-16s %s\n", info.Type, info.Category, info.Description)
			}

			return nil
		},
	}
}
