// Package chat implements the password- and quota-gated chat turn.
package chat

import (
	"context"
	"time"

	"github.com/ashureev/chatgate/internal/provider"
)

// Request is one chat turn submitted by a caller.
type Request struct {
	Message   string
	Password  string
	SessionID string
	RequestID string
}

// Reply is the result of an accepted chat turn.
type Reply struct {
	Reply string `json:"reply"`
	Count int    `json:"count"`
}

// Verifier checks a shared password.
type Verifier interface {
	Verify(candidate string) bool
}

// Completer generates an assistant reply for a message history.
type Completer interface {
	Complete(ctx context.Context, req provider.CompletionRequest) (string, error)
}

// Config holds chat turn limits.
type Config struct {
	MessageLimit int
	MaxTokens    int
	// QueueTimeout bounds how long a turn waits behind other turns of the
	// same session before giving up with ErrSessionBusy.
	QueueTimeout time.Duration
}

// DefaultConfig returns the default quota, generation cap and queue wait.
func DefaultConfig() Config {
	return Config{
		MessageLimit: 5,
		MaxTokens:    300,
		QueueTimeout: 10 * time.Second,
	}
}
