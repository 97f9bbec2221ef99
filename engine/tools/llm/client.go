// Package llm implements the body's llm tool (spec §6 "llm.generate(prompt,
// system_message?) → string"), adapting github.com/tmc/langchaingo models
// into a single affordance a paradigm can bind and invoke.
package llm

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/GEOGUANSIN/normCode-sub001/pkg/logger"
)

// Provider names a langchaingo backend, mirroring the teacher's
// core.ProviderName switch, trimmed to the providers this spec wires.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderOllama    Provider = "ollama"
	ProviderMock      Provider = "mock"
)

// Config selects and configures a backend, mirroring the teacher's
// core.ProviderConfig trimmed to what this spec's llm.generate needs.
type Config struct {
	Provider Provider
	Model    string
	APIKey   string
	APIURL   string
}

// Client is the llm tool: a bound langchaingo model plus the single
// "generate" affordance method.
type Client struct {
	model llms.Model
	log   logger.Logger
}

// New builds a Client for cfg.Provider, mirroring the teacher's
// ProviderConfig.CreateLLM provider switch.
func New(cfg Config) (*Client, error) {
	model, err := createModel(cfg)
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	return &Client{model: model, log: logger.NewLogger(nil)}, nil
}

// WithLogger swaps the logger a Client reports generate requests through.
func (c *Client) WithLogger(l logger.Logger) *Client {
	c.log = l
	return c
}

func createModel(cfg Config) (llms.Model, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		opts := []openai.Option{openai.WithModel(cfg.Model)}
		if cfg.APIKey != "" {
			opts = append(opts, openai.WithToken(cfg.APIKey))
		}
		if cfg.APIURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.APIURL))
		}
		return openai.New(opts...)
	case ProviderAnthropic:
		opts := []anthropic.Option{anthropic.WithModel(cfg.Model)}
		if cfg.APIKey != "" {
			opts = append(opts, anthropic.WithToken(cfg.APIKey))
		}
		return anthropic.New(opts...)
	case ProviderOllama:
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.APIURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.APIURL))
		}
		return ollama.New(opts...)
	case ProviderMock, "":
		return NewMock(cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
}

// Generate implements llm.generate(prompt, system_message?) → string. Each
// call is tagged with a correlation id (mirroring the teacher's
// tool.Request/Response envelope) so a generate call and its eventual log
// line can be tied together across a paradigm's steps.
func (c *Client) Generate(ctx context.Context, prompt, systemMessage string) (string, error) {
	requestID := uuid.NewString()
	log := c.log
	if log == nil {
		log = logger.NewLogger(nil)
	}
	log.Debug("llm: generate request", "request_id", requestID)

	var messages []llms.MessageContent
	if systemMessage != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, systemMessage))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, prompt))

	resp, err := c.model.GenerateContent(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("llm: generate %s: %w", requestID, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: generate %s: model returned no choices", requestID)
	}
	log.Debug("llm: generate response", "request_id", requestID)
	return resp.Choices[0].Content, nil
}

// Invoke implements composition.Invokable: the only affordance method is
// "generate", taking kwargs {prompt, system_message}.
func (c *Client) Invoke(method string, kwargs map[string]any, _ []any) (any, error) {
	if method != "generate" {
		return nil, fmt.Errorf("llm: unknown method %q", method)
	}
	prompt, _ := kwargs["prompt"].(string)
	systemMessage, _ := kwargs["system_message"].(string)
	return c.Generate(context.Background(), prompt, systemMessage)
}
