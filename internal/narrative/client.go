// Package narrative turns combat logs into short prose summaries using an
// LLM backend. Generation is best-effort: any failure, timeout, or disabled
// configuration yields a static fallback line so combat resolution never
// blocks on the narrator.
package narrative

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Completer produces a prose completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// anthropicCompleter adapts the Anthropic messages API to Completer.
type anthropicCompleter struct {
	client anthropic.Client
}

// NewAnthropicCompleter creates a Completer backed by the Anthropic API.
//
// Precondition: apiKey may be empty, in which case the SDK reads the
// ANTHROPIC_API_KEY environment variable.
func NewAnthropicCompleter(apiKey string) Completer {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &anthropicCompleter{client: anthropic.NewClient(opts...)}
}

func (a *anthropicCompleter) Complete(ctx context.Context, model, prompt string) (string, error) {
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 512,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic completion: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("anthropic completion: empty response")
	}
	return text, nil
}
