package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/t0-trading/internal/engine"
	enginev1 "github.com/rxtech-lab/t0-trading/internal/engine/engine_v1"
	"github.com/rxtech-lab/t0-trading/internal/report"
	"github.com/rxtech-lab/t0-trading/internal/version"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// runAction executes one full pipeline pass: snapshot in, report out.
func runAction(ctx context.Context, cmd *cli.Command) error {
	configContent, err := os.ReadFile(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	eng, err := enginev1.NewT0EngineV1()
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	if err := eng.Initialize(string(configContent)); err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	if err := eng.SetSnapshotPath(cmd.String("snapshot")); err != nil {
		return err
	}

	if fills := cmd.String("fills"); fills != "" {
		if err := eng.SetFillsPath(fills); err != nil {
			return err
		}
	}

	if err := eng.SetReportFolder(cmd.String("output")); err != nil {
		return err
	}

	bar := progressbar.Default(int64(1), "running pipeline")
	callback := engine.OnProgressCallback(func(current, total int, stage string) error {
		bar.ChangeMax(total)
		bar.Describe(stage)
		return bar.Set(current)
	})

	result, err := eng.Run(ctx, optional.Some(callback))
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	_ = bar.Finish()
	fmt.Println()
	fmt.Print(result.RenderSummary())

	return nil
}

// schemaAction prints the JSON schema for the engine config.
func schemaAction(_ context.Context, _ *cli.Command) error {
	config := enginev1.EmptyConfig()

	schemaJSON, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	fmt.Println(schemaJSON)

	return nil
}

// viewAction opens the report browser TUI over a written report file.
func viewAction(_ context.Context, cmd *cli.Command) error {
	loaded, err := report.Load(cmd.String("report"))
	if err != nil {
		return err
	}

	program := tea.NewProgram(NewModel(loaded), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run viewer: %w", err)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "t0",
		Usage:   "Intraday T0 position, signal, and risk assistant",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the pipeline over a snapshot and fill export",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the engine YAML config",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "snapshot",
						Aliases:  []string{"s"},
						Usage:    "Path to the broker position snapshot CSV",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "fills",
						Aliases: []string{"f"},
						Usage:   "Path to the intraday fill export CSV",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Folder for the report and journal export",
						Value:   "results",
					},
				},
				Action: runAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema for the engine config",
				Action: schemaAction,
			},
			{
				Name:  "view",
				Usage: "Browse a written report in a TUI",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "report",
						Aliases:  []string{"r"},
						Usage:    "Path to a report.yaml written by run",
						Required: true,
					},
				},
				Action: viewAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
