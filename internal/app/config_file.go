package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	LLM struct {
		BaseURL string   `yaml:"base" json:"base"`
		Model   string   `yaml:"model" json:"model"`
		APIKey  string   `yaml:"key" json:"key"`
		Timeout Duration `yaml:"timeout" json:"timeout"`
		Proxy   string   `yaml:"proxy" json:"proxy"`
	} `yaml:"llm" json:"llm"`

	Prompt struct {
		System     string `yaml:"system" json:"system"`
		SystemFile string `yaml:"systemFile" json:"systemFile"`
	} `yaml:"prompt" json:"prompt"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// Duration accepts Go duration strings ("30s", "2m") in YAML and JSON.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.set(s)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.set(s)
}

func (d *Duration) set(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from fc into cfg for fields that are still
// unset, so flags and env keep precedence over the file.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if cfg.LLMModel == "" && fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}
	if cfg.LLMTimeout == 0 && fc.LLM.Timeout > 0 {
		cfg.LLMTimeout = time.Duration(fc.LLM.Timeout)
	}
	if cfg.LLMProxy == "" && fc.LLM.Proxy != "" {
		cfg.LLMProxy = fc.LLM.Proxy
	}
	if cfg.SystemPrompt == "" && fc.Prompt.System != "" {
		cfg.SystemPrompt = fc.Prompt.System
	}
	if cfg.SystemPromptFile == "" && fc.Prompt.SystemFile != "" {
		cfg.SystemPromptFile = fc.Prompt.SystemFile
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}
