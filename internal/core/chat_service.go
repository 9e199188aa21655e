package core

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gwi.com/chat-assistant/internal/metrics"
	"gwi.com/chat-assistant/internal/store"
)

type ChatService struct {
	store    store.ConversationStore
	provider Provider
	timeout  time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

func NewChatService(s store.ConversationStore, p Provider, timeout time.Duration, logger zerolog.Logger) *ChatService {
	return &ChatService{
		store:    s,
		provider: p,
		timeout:  timeout,
		logger:   logger,
		now:      time.Now,
	}
}

type ChatInput struct {
	Message        string
	ConversationID string // empty starts a new conversation
	Model          string // empty selects the provider default
}

type ChatOutput struct {
	ConversationID string
	Reply          string
}

// Chat runs one turn: the user message is recorded, the whole conversation is
// sent to the provider and the reply is recorded. The user message is kept
// even if the provider call fails.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (*ChatOutput, error) {
	out, err := s.chat(ctx, in)
	if err != nil {
		metrics.ChatTurns.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.ChatTurns.WithLabelValues("ok").Inc()
	return out, nil
}

func (s *ChatService) chat(ctx context.Context, in ChatInput) (*ChatOutput, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, &OrchestratorError{Op: "validate", ConversationID: in.ConversationID, Err: ErrEmptyMessage}
	}

	conversationID, err := s.ensure(ctx, in.ConversationID)
	if err != nil {
		return nil, err
	}

	userMsg := store.Message{Role: store.RoleUser, Content: in.Message, Timestamp: s.now()}
	if err := s.store.Append(ctx, conversationID, userMsg); err != nil {
		return nil, &OrchestratorError{Op: "append user message", ConversationID: conversationID, Err: err}
	}

	history, err := s.store.History(ctx, conversationID)
	if err != nil {
		return nil, &OrchestratorError{Op: "read history", ConversationID: conversationID, Err: err}
	}

	var reply string
	err = callUpstream(ctx, s.provider, "chat completion", s.timeout, func(ctx context.Context) error {
		var err error
		reply, err = s.provider.Complete(ctx, in.Model, history)
		return err
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("conversation_id", conversationID).Msg("model call failed, user message kept in history")
		return nil, &OrchestratorError{Op: "complete", ConversationID: conversationID, Err: err}
	}

	modelMsg := store.Message{Role: store.RoleAssistant, Content: reply, Timestamp: s.now()}
	if err := s.store.Append(ctx, conversationID, modelMsg); err != nil {
		return nil, &OrchestratorError{Op: "append assistant message", ConversationID: conversationID, Err: err}
	}

	s.logger.Debug().
		Str("conversation_id", conversationID).
		Int("history_len", len(history)+1).
		Msg("chat turn completed")

	return &ChatOutput{ConversationID: conversationID, Reply: reply}, nil
}

// StartConversation creates an empty conversation and returns its id.
func (s *ChatService) StartConversation(ctx context.Context) (string, error) {
	return s.ensure(ctx, "")
}

func (s *ChatService) History(ctx context.Context, conversationID string) ([]store.Message, error) {
	history, err := s.store.History(ctx, conversationID)
	if err != nil {
		return nil, &OrchestratorError{Op: "read history", ConversationID: conversationID, Err: err}
	}
	return history, nil
}

func (s *ChatService) ensure(ctx context.Context, conversationID string) (string, error) {
	id, err := s.store.Ensure(ctx, conversationID)
	if err != nil {
		return "", &OrchestratorError{Op: "resolve conversation", ConversationID: conversationID, Err: err}
	}
	if conversationID == "" {
		metrics.ConversationsCreated.Inc()
		s.logger.Info().Str("conversation_id", id).Msg("conversation created")
	}
	return id, nil
}
