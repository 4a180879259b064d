// Package config provides API key management utilities.
package config

import (
	"errors"
	"os"
	"strings"
)

// ErrNoAPIKey is returned when no credential is configured for the active
// provider.
var ErrNoAPIKey = errors.New("no API key configured for provider")

// APIKey returns the credential for the given provider. It checks the
// environment variable first, then the config file value (with any ${VAR}
// references expanded). Bedrock uses the AWS credential chain and always
// resolves to an empty key.
func APIKey(cfg *Config, provider Provider) (string, error) {
	switch provider {
	case ProviderBedrock:
		return "", nil
	case ProviderAnthropic:
		return resolveKey("ANTHROPIC_API_KEY", cfg.Anthropic.APIKey)
	case ProviderGemini:
		return resolveKey("GEMINI_API_KEY", cfg.Gemini.APIKey)
	case ProviderOpenAI:
		return resolveKey("OPENAI_API_KEY", cfg.OpenAI.APIKey)
	}
	return "", ErrNoAPIKey
}

func resolveKey(envVar, configured string) (string, error) {
	if key := os.Getenv(envVar); key != "" {
		return key, nil
	}

	if configured != "" {
		key := os.ExpandEnv(configured)
		if key != "" && !strings.HasPrefix(key, "${") {
			return key, nil
		}
	}

	return "", ErrNoAPIKey
}

// MaskAPIKey returns a masked version of an API key for display.
// Shows the first 7 and last 4 characters of long keys.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}

	if len(key) <= 15 {
		return "***"
	}

	return key[:7] + "..." + key[len(key)-4:]
}
