package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/triagent/triagent/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify triagent configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/triagent/config.yaml
Project-specific overrides can be placed in .triagent.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("llm.provider: %s\n", cfg.LLM.Provider)
	fmt.Printf("llm.model: %s\n", cfg.LLM.Model)
	fmt.Printf("llm.temperature: %g\n", cfg.LLM.Temperature)
	fmt.Printf("llm.max_tokens: %d\n", cfg.LLM.MaxTokens)
	fmt.Printf("anthropic.api_key: %s\n", config.MaskAPIKey(cfg.Anthropic.APIKey))
	fmt.Printf("gemini.api_key: %s\n", config.MaskAPIKey(cfg.Gemini.APIKey))
	fmt.Printf("openai.api_key: %s\n", config.MaskAPIKey(cfg.OpenAI.APIKey))
	fmt.Printf("openai.base_url: %s\n", cfg.OpenAI.BaseURL)
	fmt.Printf("aws.region: %s\n", cfg.AWS.Region)
	fmt.Printf("github.token: %s\n", config.MaskAPIKey(cfg.GitHub.Token))
	fmt.Printf("workspace.root: %s\n", cfg.Workspace.Root)
	fmt.Printf("watch.poll_interval: %s\n", cfg.Watch.PollInterval)
	fmt.Printf("pricing.overrides_file: %s\n", cfg.Pricing.OverridesFile)
	fmt.Printf("log.debug_file: %s\n", cfg.Log.DebugFile)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "llm.provider":
		return string(cfg.LLM.Provider), nil
	case "llm.model":
		return cfg.LLM.Model, nil
	case "llm.temperature":
		return strconv.FormatFloat(cfg.LLM.Temperature, 'g', -1, 64), nil
	case "llm.max_tokens":
		return strconv.Itoa(cfg.LLM.MaxTokens), nil
	case "anthropic.api_key":
		return config.MaskAPIKey(cfg.Anthropic.APIKey), nil
	case "gemini.api_key":
		return config.MaskAPIKey(cfg.Gemini.APIKey), nil
	case "openai.api_key":
		return config.MaskAPIKey(cfg.OpenAI.APIKey), nil
	case "openai.base_url":
		return cfg.OpenAI.BaseURL, nil
	case "aws.region":
		return cfg.AWS.Region, nil
	case "github.token":
		return config.MaskAPIKey(cfg.GitHub.Token), nil
	case "workspace.root":
		return cfg.Workspace.Root, nil
	case "watch.poll_interval":
		return cfg.Watch.PollInterval.String(), nil
	case "pricing.overrides_file":
		return cfg.Pricing.OverridesFile, nil
	case "log.debug_file":
		return cfg.Log.DebugFile, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "llm.provider":
		p := config.Provider(value)
		if !p.Valid() {
			return fmt.Errorf("unknown provider %q (want anthropic, bedrock, gemini, or openai)", value)
		}
		cfg.LLM.Provider = p
	case "llm.model":
		cfg.LLM.Model = value
	case "llm.temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid value for temperature: %w", err)
		}
		cfg.LLM.Temperature = f
	case "llm.max_tokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_tokens: %w", err)
		}
		cfg.LLM.MaxTokens = n
	case "watch.poll_interval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for poll_interval: %w", err)
		}
		cfg.Watch.PollInterval = d
	case "pricing.overrides_file":
		cfg.Pricing.OverridesFile = value
	case "log.debug_file":
		cfg.Log.DebugFile = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
