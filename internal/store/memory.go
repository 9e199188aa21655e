package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps conversations in a map for the lifetime of the process.
// Nothing is ever evicted.
type MemoryStore struct {
	mu            sync.RWMutex
	conversations map[string][]Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string][]Message),
	}
}

func (s *MemoryStore) Ensure(ctx context.Context, id string) (string, error) {
	if id != "" {
		s.mu.RLock()
		defer s.mu.RUnlock()
		if _, ok := s.conversations[id]; !ok {
			return "", ErrConversationNotFound
		}
		return id, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		id = uuid.NewString()
		if _, taken := s.conversations[id]; !taken {
			break
		}
	}
	s.conversations[id] = []Message{}
	return id, nil
}

func (s *MemoryStore) Append(ctx context.Context, id string, msg Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, ok := s.conversations[id]
	if !ok {
		return ErrConversationNotFound
	}
	s.conversations[id] = append(msgs, msg)
	return nil
}

func (s *MemoryStore) History(ctx context.Context, id string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs, ok := s.conversations[id]
	if !ok {
		return nil, ErrConversationNotFound
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Len reports how many conversations are held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

func (s *MemoryStore) Close() error {
	return nil
}
