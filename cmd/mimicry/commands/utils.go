/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the Mimicry commands. Provides configuration loading,
logging setup and small console helpers used across all command implementations.
*/

package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/kleascm/mimicry/pkg/config"
	"github.com/kleascm/mimicry/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// LoadConfig loads configuration from defaults, the config file, the environment and flags
func LoadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper(), viper.GetString("config"))
}

// SetupLogging creates the run logger from the log section of the configuration
func SetupLogging(cfg *config.Config) (*logging.Logger, error) {
	logger, err := logging.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// commandContext returns the command context, or a background context when run outside Execute
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printBanner(cmd *cobra.Command, title string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🧬 Mimicry - "+title)
	fmt.Fprintln(out, strings.Repeat("=", len(title)+13))
	fmt.Fprintln(out)
}
