/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: config.go
Description: Configuration for Mimicry. Defaults, an optional config file and MIMICRY_
environment variables are layered by viper and decoded into Config, which converts itself
into the options of each engine package.
*/

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kleascm/mimicry/pkg/generator"
	"github.com/kleascm/mimicry/pkg/knowledge"
	"github.com/kleascm/mimicry/pkg/labeler"
	"github.com/kleascm/mimicry/pkg/logging"
	"github.com/kleascm/mimicry/pkg/pipeline"
	"github.com/kleascm/mimicry/pkg/resolver"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. MIMICRY_KB_PATH
const EnvPrefix = "MIMICRY"

// Config is the full application configuration
type Config struct {
	KBPath    string               `mapstructure:"kb_path"`
	Records   int                  `mapstructure:"records"`
	Seed      uint64               `mapstructure:"seed"` // 0 = time based
	Output    string               `mapstructure:"output"`
	ReportDir string               `mapstructure:"report_dir"` // Empty disables run reports
	Resolver  ResolverConfig       `mapstructure:"resolver"`
	Knowledge KnowledgeConfig      `mapstructure:"knowledge"`
	Generator GeneratorConfig      `mapstructure:"generator"`
	Labeler   LabelerConfig        `mapstructure:"labeler"`
	Log       logging.LoggerConfig `mapstructure:"log"`
}

// ResolverConfig holds the headerless resolution policy
type ResolverConfig struct {
	AliasThreshold float64  `mapstructure:"alias_threshold"`
	ValueThreshold float64  `mapstructure:"value_threshold"`
	Tiers          []string `mapstructure:"tiers"`
	SampleRows     int      `mapstructure:"sample_rows"`
}

// KnowledgeConfig bounds what the knowledge base keeps
type KnowledgeConfig struct {
	TopK        int `mapstructure:"top_k"`        // Frequency table size per column
	ValueSample int `mapstructure:"value_sample"` // Known values compared by the value tier
}

// GeneratorConfig tunes value synthesis
type GeneratorConfig struct {
	TopK int `mapstructure:"top_k"`
}

// LabelerConfig selects and configures the semantic labeler
type LabelerConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
	Timeout  string `mapstructure:"timeout"` // e.g. "20s"
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		KBPath:  "knowledge_base.json",
		Records: 500,
		Output:  "mock_output.csv",
		Resolver: ResolverConfig{
			AliasThreshold: 0.85,
			ValueThreshold: 0.85,
			Tiers:          []string{string(resolver.TierValue), string(resolver.TierAlias)},
			SampleRows:     3,
		},
		Knowledge: KnowledgeConfig{TopK: 100, ValueSample: 10},
		Generator: GeneratorConfig{TopK: 10},
		Labeler: LabelerConfig{
			Provider: labeler.ProviderNone,
			Model:    labeler.DefaultModel,
			Timeout:  "20s",
		},
		Log: *logging.DefaultLoggerConfig(),
	}
}

// SetDefaults registers every key with its default so env variables and Unmarshal see it
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("kb_path", d.KBPath)
	v.SetDefault("records", d.Records)
	v.SetDefault("seed", d.Seed)
	v.SetDefault("output", d.Output)
	v.SetDefault("report_dir", d.ReportDir)

	v.SetDefault("resolver.alias_threshold", d.Resolver.AliasThreshold)
	v.SetDefault("resolver.value_threshold", d.Resolver.ValueThreshold)
	v.SetDefault("resolver.tiers", d.Resolver.Tiers)
	v.SetDefault("resolver.sample_rows", d.Resolver.SampleRows)

	v.SetDefault("knowledge.top_k", d.Knowledge.TopK)
	v.SetDefault("knowledge.value_sample", d.Knowledge.ValueSample)
	v.SetDefault("generator.top_k", d.Generator.TopK)

	v.SetDefault("labeler.provider", d.Labeler.Provider)
	v.SetDefault("labeler.model", d.Labeler.Model)
	v.SetDefault("labeler.endpoint", d.Labeler.Endpoint)
	v.SetDefault("labeler.api_key", d.Labeler.APIKey)
	v.SetDefault("labeler.timeout", d.Labeler.Timeout)

	v.SetDefault("log.level", string(d.Log.Level))
	v.SetDefault("log.format", string(d.Log.Format))
	v.SetDefault("log.output_dir", d.Log.OutputDir)
	v.SetDefault("log.max_files", d.Log.MaxFiles)
	v.SetDefault("log.timestamp", d.Log.Timestamp)
	v.SetDefault("log.caller", d.Log.Caller)
	v.SetDefault("log.colors", d.Log.Colors)
}

// Load layers defaults, the config file and the environment. An explicit configFile must
// exist; without one, mimicry.yaml in the working directory is read when present.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("mimicry")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks ranges and names
func (c *Config) Validate() error {
	if c.KBPath == "" {
		return fmt.Errorf("kb_path must not be empty")
	}
	if c.Records < 0 {
		return fmt.Errorf("records must not be negative")
	}
	for name, th := range map[string]float64{
		"resolver.alias_threshold": c.Resolver.AliasThreshold,
		"resolver.value_threshold": c.Resolver.ValueThreshold,
	} {
		if th <= 0 || th > 1 {
			return fmt.Errorf("%s must be in (0,1], got %v", name, th)
		}
	}
	if _, err := c.Resolver.ParseTiers(); err != nil {
		return err
	}
	switch strings.ToLower(c.Labeler.Provider) {
	case "", labeler.ProviderNone, labeler.ProviderOpenAI:
	case labeler.ProviderHTTP:
		if c.Labeler.Endpoint == "" {
			return fmt.Errorf("labeler.endpoint is required for the http provider")
		}
	default:
		return fmt.Errorf("unknown labeler provider: %s", c.Labeler.Provider)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// ParseTiers converts the configured tier names
func (c *ResolverConfig) ParseTiers() ([]resolver.Tier, error) {
	tiers := make([]resolver.Tier, 0, len(c.Tiers))
	for _, name := range c.Tiers {
		t, err := resolver.ParseTier(name)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	return tiers, nil
}

// ParseTimeout parses the timeout string into a time.Duration
func (c *LabelerConfig) ParseTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return labeler.DefaultTimeout
	}
	return d
}

// Options returns the labeler options
func (c *LabelerConfig) Options(logger *logrus.Logger) labeler.Options {
	return labeler.Options{
		Provider: c.Provider,
		Model:    c.Model,
		Endpoint: c.Endpoint,
		APIKey:   c.APIKey,
		Timeout:  c.ParseTimeout(),
		Logger:   logger,
	}
}

// PipelineOptions assembles the run context for one pipeline run
func (c *Config) PipelineOptions(logger *logrus.Logger, l labeler.Labeler) pipeline.Options {
	tiers, _ := c.Resolver.ParseTiers()
	return pipeline.Options{
		KBPath:    c.KBPath,
		Knowledge: c.KnowledgeOptions(logger),
		Resolver: resolver.Options{
			AliasThreshold: c.Resolver.AliasThreshold,
			ValueThreshold: c.Resolver.ValueThreshold,
			Tiers:          tiers,
			SampleRows:     c.Resolver.SampleRows,
			ValueSample:    c.Knowledge.ValueSample,
			Logger:         logger,
		},
		Generator: generator.Options{
			TopK:   c.Generator.TopK,
			Seed:   c.Seed,
			Logger: logger,
		},
		Labeler: l,
		Logger:  logger,
	}
}

// KnowledgeOptions returns the knowledge base options
func (c *Config) KnowledgeOptions(logger *logrus.Logger) knowledge.Options {
	return knowledge.Options{
		AliasThreshold: c.Resolver.AliasThreshold,
		TopK:           c.Knowledge.TopK,
		Logger:         logger,
	}
}
