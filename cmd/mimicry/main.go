/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Main command-line interface for Mimicry. Learns the shape of delimited data
files into a persistent knowledge base and generates synthetic records that look like them.
*/

package main

import (
	"fmt"
	"os"

	"github.com/kleascm/mimicry/cmd/mimicry/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Configuration
	configFile string
	kbPath     string

	// Logging configuration
	logLevel  string
	logFormat string
	logDir    string

	// Generation configuration
	output    string
	records   int
	seed      uint64
	provider  string
	reportDir string
)

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "mimicry",
		Short: "Mimicry - adaptive schema inference and synthetic data generation",
		Long: `Mimicry reads delimited data files (CSV, pipe, tab or aligned text), works out
what each column is, remembers it in a knowledge base that improves with every file, and
generates realistic synthetic records with the same shape.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file path (default ./mimicry.yaml)")
	rootCmd.PersistentFlags().StringVar(&kbPath, "kb", "knowledge_base.json", "Knowledge base file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "custom", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Log output directory (empty = console only)")

	// Bind flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("kb_path", rootCmd.PersistentFlags().Lookup("kb"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log.output_dir", rootCmd.PersistentFlags().Lookup("log-dir"))

	// Add generate command
	generateCmd := &cobra.Command{
		Use:   "generate <input>",
		Short: "Learn an input file and generate synthetic records like it",
		Long: `Tokenize the input file, resolve every column against the knowledge base (asking
the configured labeler to name columns of headerless files), save what was learned and
write synthetic records as CSV.`,
		Args: cobra.ExactArgs(1),
		RunE: commands.RunGenerate,
	}

	generateCmd.Flags().StringVarP(&output, "output", "o", "mock_output.csv", "CSV file to write")
	generateCmd.Flags().IntVarP(&records, "records", "n", 500, "Number of records to generate")
	generateCmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (0 = time based)")
	generateCmd.Flags().StringVar(&provider, "labeler", "none", "Column labeler (none, openai, http)")
	generateCmd.Flags().StringVar(&reportDir, "report-dir", "", "Directory for a JSON run report")

	viper.BindPFlag("output", generateCmd.Flags().Lookup("output"))
	viper.BindPFlag("records", generateCmd.Flags().Lookup("records"))
	viper.BindPFlag("seed", generateCmd.Flags().Lookup("seed"))
	viper.BindPFlag("labeler.provider", generateCmd.Flags().Lookup("labeler"))
	viper.BindPFlag("report_dir", generateCmd.Flags().Lookup("report-dir"))

	rootCmd.AddCommand(generateCmd)

	// Add infer command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "infer <input>",
		Short: "Preview the layout and column patterns of an input file",
		Long: `Detect the delimiter and header of the input file and print the patterns inferred
for every column. The knowledge base is not read or modified.`,
		Args: cobra.ExactArgs(1),
		RunE: commands.RunInfer,
	})

	// Add kb command group
	kbCmd := &cobra.Command{
		Use:   "kb",
		Short: "Inspect and edit the knowledge base",
	}
	kbCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List learned columns",
		Args:  cobra.NoArgs,
		RunE:  commands.ListKnowledge,
	})
	kbCmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Show patterns, statistics and frequent values of a column",
		Args:  cobra.ExactArgs(1),
		RunE:  commands.ShowKnowledge,
	})
	kbCmd.AddCommand(&cobra.Command{
		Use:   "alias <canonical> <alias>",
		Short: "Register an alias for a canonical column",
		Args:  cobra.ExactArgs(2),
		RunE:  commands.AddAlias,
	})
	rootCmd.AddCommand(kbCmd)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
