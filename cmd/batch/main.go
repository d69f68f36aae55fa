package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"agentic-reasoning-be/internal/config"
	"agentic-reasoning-be/internal/constant"
	"agentic-reasoning-be/internal/pkg/logger"
	"agentic-reasoning-be/pkg/batch"
	"agentic-reasoning-be/pkg/reasoning/factory"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type options struct {
	output      string
	batchSize   int
	concurrency int
	local       bool
	verbose     bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cfg := config.Load()

	cmd := &cobra.Command{
		Use:   "batch <input.csv>",
		Short: "Solve every problem in a CSV file with the reasoning engine",
		Long: `Runs the same batch orchestrator as the /api/upload_csv route over a local file.
The input needs a 'problem' or 'problem_statement' column; an 'id' column is optional.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output CSV path (default <OUTPUT_DIR>/processed_<input name>)")
	cmd.Flags().IntVarP(&opts.batchSize, "batch-size", "b", cfg.Batch.BatchSize, "rows per batch")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "c", cfg.Batch.Concurrency, "rows solved concurrently inside a batch")
	cmd.Flags().BoolVar(&opts.local, "local", false, "force the local engine regardless of USE_GEMINI")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to the console")

	return cmd
}

func run(parent context.Context, cfg *config.Config, input string, opts *options) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var log logger.ILogger = logger.NewIsolatedLogger(cfg.App.LogFilePath)
	if opts.verbose {
		log = logger.NewZapLogger(cfg.App.LogFilePath, false)
	}
	defer log.Sync()

	output := opts.output
	if output == "" {
		output = filepath.Join(cfg.App.OutputDir, constant.ProcessedFilePrefix+filepath.Base(input))
	}

	resolver := factory.NewResolver(func() factory.Configuration {
		c := factory.ConfigurationFromEnv(config.LoadBackend(), cfg.Reasoning)
		if opts.local {
			c.Preference = factory.PreferenceForceOff
		}
		return c
	}, factory.DefaultBuilders(cfg.Reasoning), log)

	engine, mode, err := resolver.Resolve(ctx)
	if err != nil {
		color.Red("Engine construction failed: %v", err)
		return err
	}
	color.Cyan("Reasoning backend: %s (%s)", mode, engine.Name())

	orchestrator := batch.NewOrchestrator(batch.NewDataPipeline(engine, opts.concurrency, log), log, opts.batchSize)
	res, err := orchestrator.Run(ctx, input, output, opts.batchSize)
	if err != nil {
		color.Red("Input rejected: %v", err)
		return err
	}

	if res.Status == batch.StatusFailed {
		color.Red("Batch failed after reading %d rows: %s", res.TotalInputRows, res.Error)
		return fmt.Errorf("batch failed: %s", res.Error)
	}

	color.Green("Processed %d/%d rows -> %s", res.ProducedRows, res.TotalInputRows, res.OutputArtifact)
	if res.ReportedResults != res.ProducedRows {
		color.Yellow("Pipeline reported %d results but the artifact holds %d rows", res.ReportedResults, res.ProducedRows)
	}

	stats, _ := json.MarshalIndent(res.Statistics, "", "  ")
	fmt.Println(string(stats))

	for _, row := range res.Rows {
		line := fmt.Sprintf("%-12s %s", row["id"], row["final_answer"])
		if strings.EqualFold(row["success"], "true") {
			color.Green("%s", line)
		} else {
			color.Red("%s  %s", line, row["error"])
		}
	}
	return nil
}
