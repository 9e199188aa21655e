package core

import (
	"context"
	"fmt"
	"sync"

	"gwi.com/chat-assistant/internal/store"
)

type fakeProvider struct {
	mu        sync.Mutex
	models    []string
	err       error
	calls     [][]store.Message
	requested []string // model per call
	replyFunc func(history []store.Message) string

	// When set, Complete waits on block for calls matching blockIf (all calls
	// if blockIf is nil).
	block   chan struct{}
	blockIf func(history []store.Message) bool
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) ListModels(ctx context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.models, nil
}

func (f *fakeProvider) Complete(ctx context.Context, model string, history []store.Message) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]store.Message(nil), history...))
	f.requested = append(f.requested, model)
	n := len(f.calls)
	f.mu.Unlock()

	if f.block != nil && (f.blockIf == nil || f.blockIf(history)) {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	if f.replyFunc != nil {
		return f.replyFunc(history), nil
	}
	return fmt.Sprintf("reply %d", n), nil
}

func (f *fakeProvider) lastCall() []store.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}
