package core

import (
	"errors"
	"fmt"
)

var ErrEmptyMessage = errors.New("message content cannot be empty")

// UpstreamError is a failure reported by (or while reaching) the LLM provider.
// Providers return the SDK error unwrapped; the provider and op are added here.
type UpstreamError struct {
	Provider string
	Op       string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Provider, e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// OrchestratorError is a failure inside the chat pipeline. Err is either an
// *UpstreamError or a conversation store error.
type OrchestratorError struct {
	Op             string
	ConversationID string
	Err            error
}

func (e *OrchestratorError) Error() string {
	if e.ConversationID == "" {
		return fmt.Sprintf("chat %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("chat %s (conversation %s): %v", e.Op, e.ConversationID, e.Err)
}

func (e *OrchestratorError) Unwrap() error { return e.Err }

// StorageError is a filesystem failure while persisting an upload.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("upload %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
