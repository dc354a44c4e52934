package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chatbot_platform/internal/entities"
	"chatbot_platform/internal/interfaces"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// maxNameLen is the longest participant name the chat completions API accepts.
const maxNameLen = 64

// OpenAICompleter produces agent replies with the chat completions API.
type OpenAICompleter struct {
	client *openai.Client
	model  string
	log    zerolog.Logger
}

func NewOpenAICompleter(apiKey, model, baseURL string, log zerolog.Logger) interfaces.Completer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAICompleter{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		log:    log.With().Str("component", "completer").Logger(),
	}
}

func (c *OpenAICompleter) Complete(ctx context.Context, systemPrompt string, history []entities.Message, input entities.InboundMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: BuildPrompt(systemPrompt, history, input),
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	c.log.Debug().
		Str("model", resp.Model).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("completion done")
	return resp.Choices[0].Message.Content, nil
}

// BuildPrompt lays out the system prompt, the stored history oldest first and
// the new message. Client messages carry the end user's display name.
func BuildPrompt(systemPrompt string, history []entities.Message, input entities.InboundMessage) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})

	for _, m := range history {
		switch m.Role {
		case entities.RoleClient:
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: m.Text,
				Name:    participantName(m.ClientName),
			})
		case entities.RoleAgent:
			msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: m.Text})
		case entities.RoleSystem:
			msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: m.Text})
		}
	}

	return append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: input.Text,
		Name:    participantName(input.ClientName),
	})
}

// participantName keeps only the characters allowed in a message name.
func participantName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
		if b.Len() == maxNameLen {
			break
		}
	}
	return b.String()
}

// EchoCompleter answers without a model. Used when no API key is configured.
type EchoCompleter struct{}

func (EchoCompleter) Complete(_ context.Context, _ string, _ []entities.Message, input entities.InboundMessage) (string, error) {
	return "Agent: " + input.Text, nil
}
