package advisor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/caradvisor/internal/budget"
	"github.com/hyperifyio/caradvisor/internal/conversation"
	"github.com/hyperifyio/caradvisor/internal/llm"
)

// Options configures an Adapter. Only Model is required.
type Options struct {
	Model string
	// Instruction overrides DefaultInstruction when non-empty.
	Instruction string
	// Timeout bounds each completion call; zero waits indefinitely.
	Timeout time.Duration

	Logger *zerolog.Logger
}

// Adapter turns a conversation into one chat-completion call. It holds only
// immutable settings; the caller owns the history.
type Adapter struct {
	client      llm.Client
	model       string
	instruction string
	timeout     time.Duration
	logger      *zerolog.Logger
}

var _ conversation.Generator = (*Adapter)(nil)

// New returns an Adapter calling client with opts.
func New(client llm.Client, opts Options) (*Adapter, error) {
	if client == nil {
		return nil, errors.New("advisor: nil llm client")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("advisor: model not configured")
	}
	instruction := opts.Instruction
	if strings.TrimSpace(instruction) == "" {
		instruction = DefaultInstruction
	}
	logger := opts.Logger
	if logger == nil {
		logger = &log.Logger
	}
	return &Adapter{
		client:      client,
		model:       opts.Model,
		instruction: instruction,
		timeout:     opts.Timeout,
		logger:      logger,
	}, nil
}

// Instruction returns the system message used for every call.
func (a *Adapter) Instruction() string { return a.instruction }

// Model returns the configured model identifier.
func (a *Adapter) Model() string { return a.model }

// Generate asks the model for a reply to input given history. The token
// estimate covers instruction + input + reply text. Every failure of the
// remote call is returned as a *ServiceError.
func (a *Adapter) Generate(ctx context.Context, history []conversation.Turn, input string) (conversation.Reply, error) {
	msgs := BuildMessages(history, a.instruction, input)

	contents := make([]string, len(msgs))
	for i, m := range msgs {
		contents[i] = m.Content
	}
	promptTokens := budget.EstimateAll(contents...)
	if !budget.FitsInContext(a.model, 0, promptTokens) {
		a.logger.Warn().Int("estimate", promptTokens).Int("context", budget.ModelContextTokens(a.model)).Msg("conversation may exceed model context window")
	}
	a.logger.Debug().Int("messages", len(msgs)).Int("estimate", promptTokens).Str("model", a.model).Msg("completion request")

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    a.model,
		Messages: msgs,
	})
	if err != nil {
		return conversation.Reply{}, &ServiceError{Model: a.model, Err: err}
	}
	if len(resp.Choices) == 0 {
		return conversation.Reply{}, &ServiceError{Model: a.model, Err: ErrEmptyResponse}
	}
	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return conversation.Reply{}, &ServiceError{Model: a.model, Err: ErrEmptyResponse}
	}
	return conversation.Reply{
		Text:   text,
		Tokens: budget.Estimate(a.instruction + input + text),
	}, nil
}
