// Package config handles configuration loading for triagent.
// It supports XDG config paths, project-level overrides, and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Provider identifies which LLM backend serves the pipeline.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderBedrock   Provider = "bedrock"
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
)

// Valid reports whether p is a known provider.
func (p Provider) Valid() bool {
	switch p {
	case ProviderAnthropic, ProviderBedrock, ProviderGemini, ProviderOpenAI:
		return true
	}
	return false
}

// Config holds all configuration for triagent.
type Config struct {
	LLM       LLMConfig       `mapstructure:"llm"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	AWS       AWSConfig       `mapstructure:"aws"`
	GitHub    GitHubConfig    `mapstructure:"github"`
	Workspace WorkspaceConfig `mapstructure:"workspace"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Pricing   PricingConfig   `mapstructure:"pricing"`
	Log       LogConfig       `mapstructure:"log"`
}

// LLMConfig selects the provider and model for agent calls.
type LLMConfig struct {
	Provider    Provider `mapstructure:"provider"`
	Model       string   `mapstructure:"model"`
	Temperature float64  `mapstructure:"temperature"`
	MaxTokens   int      `mapstructure:"max_tokens"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// GeminiConfig holds Google Gemini API settings.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// OpenAIConfig holds settings for OpenAI-compatible endpoints.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// AWSConfig holds AWS settings for the Bedrock provider.
type AWSConfig struct {
	Region  string `mapstructure:"region"`
	Profile string `mapstructure:"profile"`
}

// GitHubConfig holds settings for fetching issues from GitHub.
type GitHubConfig struct {
	Token string `mapstructure:"token"`
}

// WorkspaceConfig holds the folder-workflow directories.
// All are derived from Root unless set explicitly.
type WorkspaceConfig struct {
	Root       string `mapstructure:"root"`
	Incoming   string `mapstructure:"incoming"`
	Processed  string `mapstructure:"processed"`
	Outgoing   string `mapstructure:"outgoing"`
	MockIssues string `mapstructure:"mock_issues"`
	Data       string `mapstructure:"data"`
}

// WatchConfig holds folder-watcher settings.
type WatchConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// PricingConfig points at an optional YAML rate-override file.
type PricingConfig struct {
	OverridesFile string `mapstructure:"overrides_file"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// DebugFile enables file-based debug logging when non-empty.
	DebugFile string `mapstructure:"debug_file"`
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables. Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, GEMINI_API_KEY, ...)
// 2. Project config (.triagent.yaml in the current directory or a parent)
// 3. User config (~/.config/triagent/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	v.BindEnv("github.token", "GITHUB_TOKEN")
	v.BindEnv("aws.region", "AWS_REGION")
	v.BindEnv("llm.provider", "TRIAGENT_PROVIDER")
	v.BindEnv("llm.model", "TRIAGENT_MODEL")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)
	cfg.Gemini.APIKey = os.ExpandEnv(cfg.Gemini.APIKey)
	cfg.OpenAI.APIKey = os.ExpandEnv(cfg.OpenAI.APIKey)
	cfg.GitHub.Token = os.ExpandEnv(cfg.GitHub.Token)

	cfg.applyWorkspaceDefaults()
	cfg.applyModelDefault()

	return cfg, nil
}

// LoadFromPath loads configuration from a specific file (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.applyWorkspaceDefaults()
	cfg.applyModelDefault()
	return cfg, nil
}

// applyWorkspaceDefaults fills derived directories from the workspace root.
func (c *Config) applyWorkspaceDefaults() {
	if c.Workspace.Root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			cwd = "."
		}
		c.Workspace.Root = cwd
	}
	if c.Workspace.Incoming == "" {
		c.Workspace.Incoming = filepath.Join(c.Workspace.Root, "incoming")
	}
	if c.Workspace.Processed == "" {
		c.Workspace.Processed = filepath.Join(c.Workspace.Root, "processed")
	}
	if c.Workspace.Outgoing == "" {
		c.Workspace.Outgoing = filepath.Join(c.Workspace.Root, "outgoing")
	}
	if c.Workspace.MockIssues == "" {
		c.Workspace.MockIssues = filepath.Join(c.Workspace.Root, "mock_issues")
	}
	if c.Workspace.Data == "" {
		c.Workspace.Data = filepath.Join(c.Workspace.Root, "data")
	}
}

// applyModelDefault picks a sensible model for the active provider when
// none was configured.
func (c *Config) applyModelDefault() {
	if c.LLM.Model != "" {
		return
	}
	switch c.LLM.Provider {
	case ProviderGemini:
		c.LLM.Model = "gemini-1.5-pro"
	case ProviderOpenAI:
		c.LLM.Model = "gpt-4o"
	default:
		c.LLM.Model = "claude-sonnet-4-20250514"
	}
}

// Validate checks the configuration and returns the full list of problems.
func (c *Config) Validate() []string {
	var errs []string

	if !c.LLM.Provider.Valid() {
		errs = append(errs, fmt.Sprintf("unknown llm provider %q (want anthropic, bedrock, gemini, or openai)", c.LLM.Provider))
	}

	switch c.LLM.Provider {
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			errs = append(errs, "ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case ProviderBedrock:
		if c.AWS.Region == "" {
			errs = append(errs, "aws.region is required for the bedrock provider")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			errs = append(errs, "GEMINI_API_KEY is required for the gemini provider")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			errs = append(errs, "OPENAI_API_KEY is required for the openai provider")
		}
	}

	for name, dir := range map[string]string{
		"incoming":  c.Workspace.Incoming,
		"processed": c.Workspace.Processed,
		"outgoing":  c.Workspace.Outgoing,
	} {
		if _, err := os.Stat(dir); err != nil {
			errs = append(errs, fmt.Sprintf("%s directory does not exist: %s", name, dir))
		}
	}

	return errs
}

// EnsureWorkspace creates the workspace directories if missing.
func (c *Config) EnsureWorkspace() error {
	for _, dir := range []string{
		c.Workspace.Incoming,
		c.Workspace.Processed,
		c.Workspace.Outgoing,
		c.Workspace.MockIssues,
		c.Workspace.Data,
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create workspace directory %s: %w", dir, err)
		}
	}
	return nil
}

// DBPath returns the path of the results database.
func (c *Config) DBPath() string {
	return filepath.Join(c.Workspace.Data, "triagent.db")
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(userConfigDir, "config.yaml"))

	v.Set("llm.provider", string(cfg.LLM.Provider))
	v.Set("llm.model", cfg.LLM.Model)
	v.Set("llm.temperature", cfg.LLM.Temperature)
	v.Set("llm.max_tokens", cfg.LLM.MaxTokens)
	v.Set("watch.poll_interval", cfg.Watch.PollInterval.String())
	v.Set("pricing.overrides_file", cfg.Pricing.OverridesFile)
	v.Set("log.debug_file", cfg.Log.DebugFile)

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the project config file path if one exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// Default returns a Config with default values.
func Default() *Config {
	cfg := &Config{
		LLM: LLMConfig{
			Provider:    ProviderAnthropic,
			Temperature: 0.2,
			MaxTokens:   4096,
		},
		Watch: WatchConfig{
			PollInterval: 3 * time.Second,
		},
	}
	cfg.applyWorkspaceDefaults()
	cfg.applyModelDefault()
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("watch.poll_interval", "3s")
	v.SetDefault("pricing.overrides_file", "")
	v.SetDefault("log.debug_file", "")
}

// getUserConfigDir returns the XDG config directory for triagent.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "triagent")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "triagent")
	}
	return filepath.Join(home, ".config", "triagent")
}

// findProjectConfig searches for .triagent.yaml in the current directory
// and its parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".triagent.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}
