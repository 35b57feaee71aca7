package app

import (
	"os"
	"strings"
	"time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env. A malformed value is
// reported as a *ConfigurationError.
func ApplyEnvToConfig(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	if cfg.LLMAPIKey == "" {
		// OPENAI_API_KEY is the canonical name; LLM_API_KEY covers
		// self-hosted OpenAI-compatible servers.
		v := os.Getenv("OPENAI_API_KEY")
		if v == "" {
			v = os.Getenv("LLM_API_KEY")
		}
		cfg.LLMAPIKey = strings.TrimSpace(v)
	}
	if cfg.LLMBaseURL == "" {
		v := os.Getenv("LLM_BASE_URL")
		if v == "" {
			v = os.Getenv("OPENAI_BASE_URL")
		}
		cfg.LLMBaseURL = v
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = os.Getenv("LLM_MODEL")
	}
	if cfg.LLMProxy == "" {
		cfg.LLMProxy = os.Getenv("LLM_PROXY")
	}
	if cfg.LLMTimeout == 0 {
		if s := strings.TrimSpace(os.Getenv("LLM_TIMEOUT")); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return &ConfigurationError{Field: "LLM_TIMEOUT", Err: err}
			}
			cfg.LLMTimeout = d
		}
	}

	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = os.Getenv("SYSTEM_PROMPT")
	}
	if cfg.SystemPromptFile == "" {
		cfg.SystemPromptFile = os.Getenv("SYSTEM_PROMPT_FILE")
	}
	if cfg.ConfigPath == "" {
		cfg.ConfigPath = os.Getenv("CARADVISOR_CONFIG")
	}

	if !cfg.Verbose {
		switch strings.ToLower(strings.TrimSpace(os.Getenv("VERBOSE"))) {
		case "1", "true", "yes", "on":
			cfg.Verbose = true
		}
	}
	return nil
}
