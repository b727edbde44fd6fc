/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: kb.go
Description: Knowledge base commands for Mimicry. Lists and inspects learned columns and
registers aliases by hand.
*/

package commands

import (
	"fmt"
	"strings"

	"github.com/kleascm/mimicry/pkg/knowledge"
	"github.com/spf13/cobra"
)

// topValuesShown bounds the frequency table printed by kb show
const topValuesShown = 10

// openKnowledge loads the configured knowledge base
func openKnowledge() (*knowledge.KnowledgeBase, func(), error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := SetupLogging(cfg)
	if err != nil {
		return nil, nil, err
	}

	kb, reset := knowledge.Load(cfg.KBPath, cfg.KnowledgeOptions(logger.GetLogger()))
	if reset {
		logger.GetLogger().WithField("path", cfg.KBPath).Warn("Knowledge base was unreadable and has been reset")
	}
	return kb, func() { logger.Close() }, nil
}

// ListKnowledge prints every canonical column in registration order
func ListKnowledge(cmd *cobra.Command, args []string) error {
	printBanner(cmd, "Knowledge Base")
	out := cmd.OutOrStdout()

	kb, done, err := openKnowledge()
	if err != nil {
		return err
	}
	defer done()

	fmt.Fprintf(out, "📚 %s\n", kb.Path())
	if kb.Len() == 0 {
		fmt.Fprintln(out, "📭 No columns learned yet.")
		return nil
	}

	fmt.Fprintf(out, "🧩 %d columns:\n", kb.Len())
	for _, e := range kb.Entries() {
		fmt.Fprintf(out, "  • %s [%s]", e.Name, joinTags(e))
		if aliases := e.Names()[1:]; len(aliases) > 0 {
			fmt.Fprintf(out, " aka %s", strings.Join(aliases, ", "))
		}
		fmt.Fprintln(out)
	}
	return nil
}

// ShowKnowledge prints everything known about one column. The name may be an alias.
func ShowKnowledge(cmd *cobra.Command, args []string) error {
	printBanner(cmd, "Knowledge Base")
	out := cmd.OutOrStdout()

	kb, done, err := openKnowledge()
	if err != nil {
		return err
	}
	defer done()

	e, ok := kb.Get(args[0])
	if !ok {
		if m, found := kb.Lookup(args[0]); found && m.Exact {
			e, ok = kb.Get(m.Canonical)
		}
	}
	if !ok {
		fmt.Fprintf(out, "❌ Unknown column: %s\n", args[0])
		return fmt.Errorf("unknown column: %s", args[0])
	}

	fmt.Fprintf(out, "🧩 %s\n", e.Name)
	fmt.Fprintf(out, "   Aliases:  %s\n", strings.Join(e.Names()[1:], ", "))
	fmt.Fprintf(out, "   Patterns: %s\n", joinTags(e))
	fmt.Fprintf(out, "   Unique:   %t\n", e.Unique)
	if e.Stats != nil {
		fmt.Fprintf(out, "   Stats:    min=%g max=%g mean=%.2f std=%.2f digits=%d\n",
			e.Stats.Min, e.Stats.Max, e.Stats.Mean, e.Stats.Std, e.Stats.MaxLength)
	}
	if top := e.TopValues(topValuesShown); len(top) > 0 {
		fmt.Fprintln(out, "   Top values:")
		for _, vc := range top {
			fmt.Fprintf(out, "     %s (%d)\n", vc.Value, vc.Count)
		}
	}
	return nil
}

// AddAlias registers an alias for a canonical column and saves the knowledge base
func AddAlias(cmd *cobra.Command, args []string) error {
	printBanner(cmd, "Knowledge Base")
	out := cmd.OutOrStdout()

	kb, done, err := openKnowledge()
	if err != nil {
		return err
	}
	defer done()

	canonical, alias := args[0], args[1]
	if _, ok := kb.Get(canonical); !ok {
		fmt.Fprintf(out, "🆕 Creating column %s\n", canonical)
	}
	kb.RegisterAlias(canonical, alias)

	if err := kb.Save(); err != nil {
		return fmt.Errorf("failed to save knowledge base: %w", err)
	}

	fmt.Fprintf(out, "✅ %s is now an alias of %s\n", alias, canonical)
	return nil
}

func joinTags(e *knowledge.ColumnEntry) string {
	names := make([]string, len(e.Patterns))
	for i, t := range e.Patterns {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
