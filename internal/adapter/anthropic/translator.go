// Package anthropic implements the translation model collaborator over the
// Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/termpipe/termpipe/internal/translate"
)

// Claude API pricing, USD per million tokens.
const (
	costPerMInputUSD  = 3.0
	costPerMOutputUSD = 15.0
)

// Config holds the model settings for the translator.
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Translator sends composed translation requests to Claude.
type Translator struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
	log         *slog.Logger
}

// New creates a Translator.
func New(cfg Config, logger *slog.Logger) *Translator {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return &Translator{
		client:      anthropic.NewClient(opts...),
		model:       cfg.Model,
		maxTokens:   int64(cfg.MaxTokens),
		temperature: cfg.Temperature,
		log:         logger.With("adapter", "anthropic"),
	}
}

// Translate performs one model call. Retry policy is the SDK's; this
// adapter adds none of its own.
func (t *Translator) Translate(ctx context.Context, req *translate.Request) (*translate.ModelResult, error) {
	msg, err := t.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(t.model),
		MaxTokens:   t.maxTokens,
		Temperature: anthropic.Float(t.temperature),
		System: []anthropic.TextBlockParam{
			{Text: req.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic: messages: %w", err)
	}
	if len(msg.Content) == 0 {
		return nil, fmt.Errorf("anthropic: empty response")
	}

	inputTokens := int(msg.Usage.InputTokens)
	outputTokens := int(msg.Usage.OutputTokens)

	t.log.DebugContext(ctx, "model response",
		slog.String("model", string(msg.Model)),
		slog.Int("input_tokens", inputTokens),
		slog.Int("output_tokens", outputTokens),
		slog.String("stop_reason", string(msg.StopReason)),
	)

	return &translate.ModelResult{
		Text:         strings.TrimSpace(msg.Content[0].Text),
		Model:        string(msg.Model),
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		CostUSD:      estimateCost(inputTokens, outputTokens),
	}, nil
}

// estimateCost converts token usage into an approximate USD cost.
func estimateCost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/1_000_000*costPerMInputUSD +
		float64(outputTokens)/1_000_000*costPerMOutputUSD
}
