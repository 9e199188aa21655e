package store

import (
	"context"
	"errors"
)

// ErrConversationNotFound is returned for an id that was never issued by Ensure.
var ErrConversationNotFound = errors.New("conversation not found")

// ConversationStore maps conversation ids to their ordered message log.
// Implementations must be safe for concurrent use; each Append is atomic.
type ConversationStore interface {
	// Ensure returns id unchanged if the conversation exists. An empty id
	// creates a new, empty conversation under a freshly generated id.
	Ensure(ctx context.Context, id string) (string, error)
	Append(ctx context.Context, id string, msg Message) error
	// History returns a copy of the conversation in insertion order.
	History(ctx context.Context, id string) ([]Message, error)
	Close() error
}
