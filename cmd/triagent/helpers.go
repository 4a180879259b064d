package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/triagent/triagent/internal/config"
	"github.com/triagent/triagent/internal/llm"
	"github.com/triagent/triagent/internal/pipeline"
	"github.com/triagent/triagent/internal/pricing"
	"github.com/triagent/triagent/internal/store"
)

// loadConfig loads configuration and fails on validation errors so
// subcommands get a usable workspace.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.EnsureWorkspace(); err != nil {
		return nil, err
	}
	if problems := cfg.Validate(); len(problems) > 0 {
		for _, p := range problems {
			printStatus("✗", p, color.FgRed)
		}
		return nil, fmt.Errorf("configuration is invalid (%d problem(s))", len(problems))
	}
	return cfg, nil
}

// loadConfigLenient loads configuration without requiring API keys or
// workspace directories. Used by read-only commands.
func loadConfigLenient() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// buildGenerator creates the LLM client for the configured provider.
// The returned closer is non-nil for providers holding a connection.
func buildGenerator(ctx context.Context, cfg *config.Config) (llm.Generator, io.Closer, error) {
	switch cfg.LLM.Provider {
	case config.ProviderAnthropic, config.ProviderBedrock:
		key, err := config.APIKey(cfg, cfg.LLM.Provider)
		if err != nil {
			return nil, nil, err
		}
		client, err := llm.NewAnthropicClient(ctx, llm.AnthropicConfig{
			Model:      cfg.LLM.Model,
			APIKey:     key,
			MaxTokens:  int64(cfg.LLM.MaxTokens),
			UseBedrock: cfg.LLM.Provider == config.ProviderBedrock,
			AWSRegion:  cfg.AWS.Region,
			AWSProfile: cfg.AWS.Profile,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil

	case config.ProviderGemini:
		key, err := config.APIKey(cfg, cfg.LLM.Provider)
		if err != nil {
			return nil, nil, err
		}
		client, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
			Model:       cfg.LLM.Model,
			APIKey:      key,
			Temperature: float32(cfg.LLM.Temperature),
		})
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil

	case config.ProviderOpenAI:
		key, err := config.APIKey(cfg, cfg.LLM.Provider)
		if err != nil {
			return nil, nil, err
		}
		client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			Model:       cfg.LLM.Model,
			APIKey:      key,
			BaseURL:     cfg.OpenAI.BaseURL,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
		})
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown provider: %s", cfg.LLM.Provider)
	}
}

// loadPricing loads the pricing table, applying overrides when configured.
func loadPricing(cfg *config.Config) (*pricing.Table, error) {
	if cfg.Pricing.OverridesFile == "" {
		return pricing.NewTable(), nil
	}
	table, err := pricing.LoadTable(cfg.Pricing.OverridesFile)
	if err != nil {
		return nil, fmt.Errorf("loading pricing overrides: %w", err)
	}
	return table, nil
}

// buildPipeline wires the generator, pricing, debug log, and console
// progress output into a ready-to-run pipeline.
func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, io.Closer, error) {
	gen, closer, err := buildGenerator(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	table, err := loadPricing(cfg)
	if err != nil {
		return nil, nil, err
	}

	debug, err := pipeline.NewDebugLogger(cfg.Log.DebugFile)
	if err != nil {
		return nil, nil, fmt.Errorf("opening debug log: %w", err)
	}

	p := pipeline.New(gen, cfg.LLM.Model, pipeline.Options{
		Pricing: table,
		Debug:   debug,
		Progress: func(agent, message string) {
			fmt.Printf("%s %s\n", color.CyanString("[%s]", agent), message)
		},
	})

	return p, multiCloser{closer, debug}, nil
}

// openStore opens the results database from the workspace data directory.
func openStore(cfg *config.Config) (*store.Store, error) {
	s, err := store.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening results database: %w", err)
	}
	return s, nil
}

// printStatus prints a colored status symbol followed by a message.
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}

// multiCloser closes several resources, ignoring nil entries.
type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for _, c := range m {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
