package core

import (
	"context"
	"errors"
	"fmt"

	openaiapi "github.com/sashabaranov/go-openai"
	"gwi.com/chat-assistant/internal/store"
)

const defaultOpenAIModelName = "gpt-4o-mini"

type OpenAIProvider struct {
	api          *openaiapi.Client
	defaultModel string
}

// NewOpenAIProvider builds a client for the OpenAI API or, when baseURL is set,
// for any gateway speaking the same protocol.
func NewOpenAIProvider(apiKey, baseURL, defaultModel string) *OpenAIProvider {
	cfg := openaiapi.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if defaultModel == "" {
		defaultModel = defaultOpenAIModelName
	}

	return &OpenAIProvider{
		api:          openaiapi.NewClientWithConfig(cfg),
		defaultModel: defaultModel,
	}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) ListModels(ctx context.Context) ([]string, error) {
	list, err := p.api.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		names = append(names, m.ID)
	}
	return names, nil
}

func (p *OpenAIProvider) Complete(ctx context.Context, model string, history []store.Message) (string, error) {
	if model == "" {
		model = p.defaultModel
	}
	if len(history) == 0 {
		return "", fmt.Errorf("prompt history is empty for chat completion")
	}

	messages := make([]openaiapi.ChatCompletionMessage, 0, len(history))
	for _, m := range history {
		role := openaiapi.ChatMessageRoleUser
		if m.Role == store.RoleAssistant {
			role = openaiapi.ChatMessageRoleAssistant
		}
		messages = append(messages, openaiapi.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	resp, err := p.api.CreateChatCompletion(ctx, openaiapi.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
