package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// DefaultModel is used when neither flags, env nor config file name a model.
const DefaultModel = "gpt-4-0125-preview"

// ErrMissingAPIKey is wrapped by the ConfigurationError returned when no
// credential was supplied.
var ErrMissingAPIKey = errors.New("missing API key (set OPENAI_API_KEY)")

// Config holds runtime configuration for the application. It is resolved once
// at startup and not modified afterwards.
type Config struct {
	// Sources consulted before the fields below are resolved.
	ConfigPath string
	EnvFiles   []string

	// LLM
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string
	// LLMTimeout bounds each completion call; zero means no timeout.
	LLMTimeout time.Duration
	// LLMProxy is an explicit proxy URL; empty falls back to the environment.
	LLMProxy string

	// Prompt
	SystemPrompt     string
	SystemPromptFile string

	Verbose bool
}

// ConfigurationError reports a missing or invalid setting detected before the
// conversation starts. It is always fatal.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Resolve layers the configuration sources over cfg, which carries explicit
// flag values: dotenv files are loaded into the environment, then env vars,
// then the config file fill what is still unset, then defaults apply. The
// result is validated.
func Resolve(cfg Config) (Config, error) {
	if err := LoadEnvFiles(cfg.EnvFiles...); err != nil {
		return cfg, &ConfigurationError{Field: "env-file", Err: err}
	}
	if err := ApplyEnvToConfig(&cfg); err != nil {
		return cfg, err
	}
	if strings.TrimSpace(cfg.ConfigPath) != "" {
		fc, err := LoadConfigFile(cfg.ConfigPath)
		if err != nil {
			return cfg, &ConfigurationError{Field: "config", Err: err}
		}
		ApplyFileConfig(&cfg, fc)
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = DefaultModel
	}
	if strings.TrimSpace(cfg.SystemPromptFile) != "" {
		b, err := os.ReadFile(cfg.SystemPromptFile)
		if err != nil {
			return cfg, &ConfigurationError{Field: "system prompt file", Err: err}
		}
		cfg.SystemPrompt = string(b)
	}
	return cfg, cfg.Validate()
}

// Validate checks that cfg can start a conversation.
func (c Config) Validate() error {
	if strings.TrimSpace(c.LLMAPIKey) == "" {
		return &ConfigurationError{Field: "api key", Err: ErrMissingAPIKey}
	}
	if strings.TrimSpace(c.LLMModel) == "" {
		return &ConfigurationError{Field: "model", Err: errors.New("empty model identifier")}
	}
	if c.LLMTimeout < 0 {
		return &ConfigurationError{Field: "timeout", Err: fmt.Errorf("negative duration %s", c.LLMTimeout)}
	}
	return nil
}
