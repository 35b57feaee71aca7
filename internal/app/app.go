package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/caradvisor/internal/advisor"
	"github.com/hyperifyio/caradvisor/internal/conversation"
	"github.com/hyperifyio/caradvisor/internal/llm"
)

// App owns the completion adapter for the lifetime of the process and runs
// conversations with it.
type App struct {
	cfg     Config
	ai      llm.Client
	adapter *advisor.Adapter
	logger  zerolog.Logger
}

// New validates cfg and builds the OpenAI-compatible client and adapter.
func New(ctx context.Context, cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	httpClient, err := newLLMHTTPClient(cfg.LLMTimeout, cfg.LLMProxy)
	if err != nil {
		return nil, &ConfigurationError{Field: "proxy", Err: err}
	}
	return newWithClient(ctx, cfg, llm.NewOpenAIProvider(cfg.LLMAPIKey, cfg.LLMBaseURL, httpClient))
}

func newWithClient(ctx context.Context, cfg Config, client llm.Client) (*App, error) {
	logger := log.With().Str("session", uuid.NewString()).Logger()
	adapter, err := advisor.New(client, advisor.Options{
		Model:       cfg.LLMModel,
		Instruction: cfg.SystemPrompt,
		Timeout:     cfg.LLMTimeout,
		Logger:      &logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init advisor: %w", err)
	}
	a := &App{cfg: cfg, ai: client, adapter: adapter, logger: logger}
	a.preflight(ctx)
	return a, nil
}

// preflight lists models when the backend supports it. It only logs: an
// unreachable service surfaces later as a per-exchange failure.
func (a *App) preflight(ctx context.Context) {
	lister, ok := a.ai.(llm.ModelLister)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := lister.ListModels(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("LLM model list failed; continuing")
		return
	}
	found := false
	for _, m := range models.Models {
		if m.ID == a.cfg.LLMModel {
			found = true
			break
		}
	}
	if !found {
		a.logger.Warn().Str("model", a.cfg.LLMModel).Int("count", len(models.Models)).Msg("configured model not listed by backend")
		return
	}
	a.logger.Debug().Str("model", a.cfg.LLMModel).Msg("LLM model available")
}

// Run holds one conversation over in/out until it terminates.
func (a *App) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	a.logger.Info().Str("model", a.adapter.Model()).Msg("starting car advisor chat")
	c := conversation.NewController(a.adapter, in, out, &a.logger)
	if err := c.Start(ctx); err != nil {
		return err
	}
	a.logger.Info().Int("turns", len(c.History())).Msg("conversation ended")
	return nil
}

// Close is a no-op: the App holds nothing that needs releasing.
func (a *App) Close() {}
