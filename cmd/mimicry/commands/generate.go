/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: generate.go
Description: Generate command implementation for Mimicry. Runs the pipeline over one input
file, writes the synthetic records as CSV and optionally a JSON run report.
*/

package commands

import (
	"errors"
	"fmt"

	"github.com/kleascm/mimicry/pkg/export"
	"github.com/kleascm/mimicry/pkg/labeler"
	"github.com/kleascm/mimicry/pkg/pipeline"
	"github.com/kleascm/mimicry/pkg/report"
	"github.com/spf13/cobra"
)

// RunGenerate learns the input file and writes synthetic records shaped like it
func RunGenerate(cmd *cobra.Command, args []string) error {
	printBanner(cmd, "Synthetic Data Generation")
	out := cmd.OutOrStdout()

	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := SetupLogging(cfg)
	if err != nil {
		return err
	}
	defer logger.Close()

	l, err := labeler.New(cfg.Labeler.Options(logger.GetLogger()))
	if err != nil {
		return fmt.Errorf("failed to create labeler: %w", err)
	}

	input := args[0]
	fmt.Fprintf(out, "📁 Input: %s\n", input)
	fmt.Fprintf(out, "📚 Knowledge base: %s\n", cfg.KBPath)
	fmt.Fprintf(out, "🤖 Labeler: %s\n", l.Name())
	fmt.Fprintf(out, "🎯 Records: %d\n", cfg.Records)
	fmt.Fprintln(out)

	res, err := pipeline.Run(commandContext(cmd), cfg.PipelineOptions(logger.GetLogger(), l), input, cfg.Records)
	if err != nil {
		var inputErr *pipeline.InputError
		if errors.As(err, &inputErr) {
			fmt.Fprintf(out, "❌ Cannot use %s (%s)\n", inputErr.Path, inputErr.Kind)
		}
		return err
	}

	for _, r := range res.Resolutions {
		logger.LogColumnResolved(r.Index, r.Raw, r.Canonical, string(r.Tier), r.Score)
	}
	if res.LabelerErr != nil {
		logger.LogLabelerFallback(res.LabelerErr.Error())
	}

	header := "no"
	if res.HasHeader {
		header = "yes"
	}
	fmt.Fprintf(out, "🔍 Delimiter: %s, header: %s\n", res.Delimiter, header)
	fmt.Fprintf(out, "🧩 Columns (%d):\n", len(res.Resolutions))
	for _, r := range res.Resolutions {
		if r.Raw != r.Canonical {
			fmt.Fprintf(out, "  • %s ← %s [%s %.2f]\n", r.Canonical, r.Raw, r.Tier, r.Score)
		} else {
			fmt.Fprintf(out, "  • %s [%s]\n", r.Canonical, r.Tier)
		}
	}
	fmt.Fprintln(out)

	if err := export.WriteCSVFile(cfg.Output, res.Columns, res.Records); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	for _, w := range res.Warnings {
		fmt.Fprintf(out, "⚠️  %s\n", w)
	}

	if cfg.ReportDir != "" {
		path, err := report.WriteRunReport(cfg.ReportDir, report.FromResult(res, res.Knowledge, cfg.KBPath, cfg.Output))
		if err != nil {
			// the CSV is already written; a missing report is not worth failing the run
			logger.GetLogger().WithError(err).Error("Run report not written")
			fmt.Fprintf(out, "⚠️  Run report not written: %v\n", err)
		} else {
			fmt.Fprintf(out, "📊 Report: %s\n", path)
		}
	}

	logger.LogRunSummary(input, len(res.Columns), len(res.Records), len(res.Warnings))

	fmt.Fprintf(out, "✅ Wrote %d records to %s (seed %d)\n", len(res.Records), cfg.Output, res.Seed)
	return nil
}
