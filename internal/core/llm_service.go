package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"gwi.com/chat-assistant/internal/store"
)

const defaultGeminiModelName = "gemini-1.5-flash-latest"

// Provider is the external LLM service.
type Provider interface {
	Name() string
	ListModels(ctx context.Context) ([]string, error)
	// Complete answers the last user message of history, using the rest as
	// context. An empty model selects the provider default.
	Complete(ctx context.Context, model string, history []store.Message) (string, error)
}

type GeminiProvider struct {
	client       *genai.Client
	defaultModel string
}

func NewGeminiProvider(ctx context.Context, apiKey, defaultModel string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	if defaultModel == "" {
		defaultModel = defaultGeminiModelName
	}

	return &GeminiProvider{
		client:       client,
		defaultModel: defaultModel,
	}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

func (p *GeminiProvider) ListModels(ctx context.Context) ([]string, error) {
	names := []string{}
	it := p.client.ListModels(ctx)
	for {
		info, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		names = append(names, info.Name)
	}
	return names, nil
}

func (p *GeminiProvider) Complete(ctx context.Context, modelName string, history []store.Message) (string, error) {
	if modelName == "" {
		modelName = p.defaultModel
	}

	prior, last, err := splitGeminiHistory(history)
	if err != nil {
		return "", err
	}

	model := p.client.GenerativeModel(modelName)
	chatSession := model.StartChat()
	chatSession.History = prior

	resp, err := chatSession.SendMessage(ctx, last.Parts...)
	if err != nil {
		return "", err
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response was empty or had no valid candidates")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}

	if responseText.Len() == 0 {
		return "", fmt.Errorf("gemini response had no text parts")
	}

	return responseText.String(), nil
}

// splitGeminiHistory converts the conversation into Gemini contents and
// separates the final user turn, which is sent as the new message.
func splitGeminiHistory(history []store.Message) ([]*genai.Content, *genai.Content, error) {
	if len(history) == 0 {
		return nil, nil, fmt.Errorf("prompt history is empty for chat completion")
	}

	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		contents = append(contents, &genai.Content{
			Role:  geminiRole(msg.Role),
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	last := contents[len(contents)-1]
	if last.Role != "user" {
		return nil, nil, fmt.Errorf("last message in history is not from 'user', cannot proceed with chat completion")
	}
	return contents[:len(contents)-1], last, nil
}

func geminiRole(role string) string {
	if role == store.RoleAssistant {
		return "model"
	}
	return "user"
}
