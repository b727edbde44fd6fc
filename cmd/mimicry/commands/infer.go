/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: infer.go
Description: Infer command implementation for Mimicry. Previews how an input file is
tokenized and which patterns each column carries, without touching the knowledge base.
*/

package commands

import (
	"fmt"
	"strings"

	"github.com/kleascm/mimicry/pkg/labeler"
	"github.com/kleascm/mimicry/pkg/patterns"
	"github.com/kleascm/mimicry/pkg/pipeline"
	"github.com/kleascm/mimicry/pkg/resolver"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// sampleValues is how many example values are shown per column
const sampleValues = 3

// RunInfer prints the detected layout and the inferred patterns of each column
func RunInfer(cmd *cobra.Command, args []string) error {
	printBanner(cmd, "Pattern Inference")
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

	parsed, err := pipeline.Parse(args[0])
	if err != nil {
		fmt.Fprintf(out, "❌ %v\n", err)
		return err
	}

	width := parsed.Columns()
	logger.GetLogger().WithFields(logrus.Fields{
		"input":     args[0],
		"delimiter": parsed.Delimiter.String(),
		"columns":   width,
	}).Debug("Input parsed for inference")

	fmt.Fprintf(out, "📁 Input: %s\n", args[0])
	fmt.Fprintf(out, "🔍 Delimiter: %s, header: %t, rows: %d\n", parsed.Delimiter, parsed.HasHeader, len(parsed.Rows))
	fmt.Fprintln(out)

	for i := 0; i < width; i++ {
		name := labeler.Placeholder(i)
		if parsed.HasHeader && i < len(parsed.Header) && strings.TrimSpace(parsed.Header[i]) != "" {
			name = strings.TrimSpace(parsed.Header[i])
		}

		values := resolver.Column(parsed.Rows, i)
		tags := patterns.Infer(values)
		names := make([]string, len(tags))
		for j, t := range tags {
			names[j] = string(t)
		}

		fmt.Fprintf(out, "🧩 %s: %s\n", name, strings.Join(names, ", "))
		if clean := patterns.Clean(values); len(clean) > 0 {
			if len(clean) > sampleValues {
				clean = clean[:sampleValues]
			}
			fmt.Fprintf(out, "   e.g. %s\n", strings.Join(clean, " | "))
		}
	}

	return nil
}
