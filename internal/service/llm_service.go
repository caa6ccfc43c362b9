package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"care-advisor/pkg/config"

	"github.com/Role1776/gigago"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// gigaChatTemperature mirrors the OPENAI_TEMPERATURE default.
const gigaChatTemperature = 0.7

const systemInstruction = "You recommend healthcare communication and scheduling products from a fixed catalog. Reply with a single JSON object and nothing else."

// ErrEmptyCompletion is returned when the provider answers without any choice.
var ErrEmptyCompletion = errors.New("no response from LLM")

// Completion is the raw text reply of one provider call.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Completer submits one prompt to a text-completion provider.
type Completer interface {
	Complete(ctx context.Context, prompt string) (*Completion, error)
	Close() error
}

// NewCompleter builds the completer selected by cfg.LLM.Provider. It returns
// nil for the "none" provider, which leaves the service catalog-only.
func NewCompleter(cfg *config.Config, logger *zap.Logger) (Completer, error) {
	switch cfg.LLM.Provider {
	case config.ProviderGigaChat:
		c, err := NewGigaChatCompleter(&cfg.GigaChat, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderOpenAI:
		c, err := NewOpenAICompleter(&cfg.OpenAI, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderNone:
		logger.Warn("LLM provider disabled, generative fallback is off")
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLM.Provider)
	}
}

// GigaChatCompleter talks to GigaChat through gigago.
type GigaChatCompleter struct {
	client *gigago.Client
	model  *gigago.GenerativeModel
	logger *zap.Logger
}

func NewGigaChatCompleter(cfg *config.GigaChatConfig, logger *zap.Logger) (*GigaChatCompleter, error) {
	ctx := context.Background()

	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.Scope),
	}

	if cfg.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = systemInstruction
	model.Temperature = gigaChatTemperature

	logger.Info("GigaChat completer initialized", zap.String("model", cfg.Model))

	return &GigaChatCompleter{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (c *GigaChatCompleter) Complete(ctx context.Context, prompt string) (*Completion, error) {
	messages := []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	}

	resp, err := c.model.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}

	return &Completion{Text: strings.TrimSpace(resp.Choices[0].Message.Content)}, nil
}

func (c *GigaChatCompleter) Close() error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}

// OpenAICompleter talks to the OpenAI chat completions API or any
// compatible endpoint set through BaseURL.
type OpenAICompleter struct {
	client      *openai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

func NewOpenAICompleter(cfg *config.OpenAIConfig, logger *zap.Logger) (*OpenAICompleter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	logger.Info("OpenAI completer initialized", zap.String("model", cfg.Model))

	return &OpenAICompleter{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		logger:      logger,
	}, nil
}

func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (*Completion, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemInstruction,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}

	return &Completion{
		Text:             strings.TrimSpace(resp.Choices[0].Message.Content),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (c *OpenAICompleter) Close() error {
	return nil
}
