package extract

import (
	"context"
	"errors"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const systemPrompt = "You are a residential development feasibility assistant. Extract feasibility inputs " +
	"from the user's message as a patch over the current inputs. Never compute results yourself; only " +
	"extract values the message actually provides. Respond with strict JSON only."

// LLMCaller generates a JSON document for a prompt.
type LLMCaller interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

// AnthropicMessager is the slice of the Anthropic client the caller needs.
type AnthropicMessager interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// AnthropicCaller calls the Anthropic Messages API.
type AnthropicCaller struct {
	messages AnthropicMessager
	model    anthropic.Model
}

type AnthropicClientCreator func(apiKey string) AnthropicMessager

func defaultAnthropicCreator(apiKey string) AnthropicMessager {
	c := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &c.Messages
}

var newAnthropicClient AnthropicClientCreator = defaultAnthropicCreator

// NewAnthropicCallerFromEnv builds a caller from ANTHROPIC_API_KEY. An empty
// model selects the default.
func NewAnthropicCallerFromEnv(model string) (*AnthropicCaller, error) {
	apiKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not configured")
	}
	m := anthropic.ModelClaudeSonnet4_20250514
	if model != "" {
		m = anthropic.Model(model)
	}
	return &AnthropicCaller{messages: newAnthropicClient(apiKey), model: m}, nil
}

func (a *AnthropicCaller) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := a.messages.New(ctx, anthropic.MessageNewParams{
		Model:       a.model,
		MaxTokens:   1024,
		System:      []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(prompt))},
		Temperature: anthropic.Float(0.2),
	})
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String(), nil
}
