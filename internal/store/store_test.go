package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

// testConversationStore runs the behaviour every ConversationStore must provide.
func testConversationStore(t *testing.T, newStore func(t *testing.T) ConversationStore) {
	ctx := context.Background()

	t.Run("EnsureGeneratesFreshIDs", func(t *testing.T) {
		s := newStore(t)
		seen := make(map[string]bool)
		for i := 0; i < 20; i++ {
			id, err := s.Ensure(ctx, "")
			if err != nil {
				t.Fatalf("Ensure failed: %v", err)
			}
			if id == "" || seen[id] {
				t.Fatalf("expected fresh id, got %q", id)
			}
			seen[id] = true

			history, err := s.History(ctx, id)
			if err != nil {
				t.Fatalf("History failed: %v", err)
			}
			if history == nil || len(history) != 0 {
				t.Fatalf("expected empty non-nil history, got %v", history)
			}
		}
	})

	t.Run("EnsureKnownIDIsUnchanged", func(t *testing.T) {
		s := newStore(t)
		id, err := s.Ensure(ctx, "")
		if err != nil {
			t.Fatalf("Ensure failed: %v", err)
		}
		got, err := s.Ensure(ctx, id)
		if err != nil {
			t.Fatalf("Ensure(existing) failed: %v", err)
		}
		if got != id {
			t.Fatalf("expected %q, got %q", id, got)
		}
	})

	t.Run("UnknownIDFailsFast", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Ensure(ctx, "does-not-exist"); !errors.Is(err, ErrConversationNotFound) {
			t.Fatalf("Ensure: expected ErrConversationNotFound, got %v", err)
		}
		if err := s.Append(ctx, "does-not-exist", Message{Role: RoleUser, Content: "x"}); !errors.Is(err, ErrConversationNotFound) {
			t.Fatalf("Append: expected ErrConversationNotFound, got %v", err)
		}
		if _, err := s.History(ctx, "does-not-exist"); !errors.Is(err, ErrConversationNotFound) {
			t.Fatalf("History: expected ErrConversationNotFound, got %v", err)
		}
	})

	t.Run("AppendKeepsOrder", func(t *testing.T) {
		s := newStore(t)
		id, _ := s.Ensure(ctx, "")
		other, _ := s.Ensure(ctx, "")

		want := []Message{
			{Role: RoleUser, Content: "hello"},
			{Role: RoleAssistant, Content: "hi there"},
			{Role: RoleUser, Content: "continue"},
		}
		for _, m := range want {
			if err := s.Append(ctx, id, m); err != nil {
				t.Fatalf("Append failed: %v", err)
			}
		}
		if err := s.Append(ctx, other, Message{Role: RoleUser, Content: "elsewhere"}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}

		got, err := s.History(ctx, id)
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(got) != len(want) {
			t.Fatalf("expected %d messages, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i].Role != want[i].Role || got[i].Content != want[i].Content {
				t.Fatalf("message %d: expected %+v, got %+v", i, want[i], got[i])
			}
			if got[i].Timestamp.IsZero() {
				t.Fatalf("message %d: expected timestamp to be set", i)
			}
		}
	})

	t.Run("HistoryIsACopy", func(t *testing.T) {
		s := newStore(t)
		id, _ := s.Ensure(ctx, "")
		_ = s.Append(ctx, id, Message{Role: RoleUser, Content: "original"})

		h, _ := s.History(ctx, id)
		h[0].Content = "mutated"

		h2, _ := s.History(ctx, id)
		if h2[0].Content != "original" {
			t.Fatalf("stored message was mutated through History result")
		}
	})

	t.Run("ConcurrentAppends", func(t *testing.T) {
		s := newStore(t)
		shared, _ := s.Ensure(ctx, "")

		const workers = 8
		const perWorker = 25

		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				own, err := s.Ensure(ctx, "")
				if err != nil {
					t.Errorf("Ensure failed: %v", err)
					return
				}
				for i := 0; i < perWorker; i++ {
					content := fmt.Sprintf("w%d-%d", w, i)
					if err := s.Append(ctx, shared, Message{Role: RoleUser, Content: content}); err != nil {
						t.Errorf("Append shared failed: %v", err)
					}
					if err := s.Append(ctx, own, Message{Role: RoleUser, Content: content}); err != nil {
						t.Errorf("Append own failed: %v", err)
					}
				}
				h, err := s.History(ctx, own)
				if err != nil || len(h) != perWorker {
					t.Errorf("own conversation: expected %d messages, got %d (err=%v)", perWorker, len(h), err)
				}
			}(w)
		}
		wg.Wait()

		h, err := s.History(ctx, shared)
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(h) != workers*perWorker {
			t.Fatalf("expected %d messages, got %d", workers*perWorker, len(h))
		}
		seen := make(map[string]bool, len(h))
		for _, m := range h {
			if seen[m.Content] {
				t.Fatalf("duplicated message %q", m.Content)
			}
			seen[m.Content] = true
		}
	})
}
