package chat

import (
	"errors"
	"fmt"

	"github.com/ashureev/chatgate/internal/provider"
)

var (
	// ErrUnauthorized indicates a missing or unknown password.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrQuotaExceeded indicates the session already used all of its turns.
	ErrQuotaExceeded = errors.New("message limit reached")

	// ErrInvalidRequest indicates a request that cannot be processed as sent.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrSessionBusy indicates the turn gave up waiting behind other turns
	// of the same session. Nothing was recorded.
	ErrSessionBusy = errors.New("session busy")
)

// ProviderError wraps a failed completion call.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("completion provider failed: %v", e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Kind returns the provider error kind, or "unknown" for errors that did not
// come from the provider client.
func (e *ProviderError) Kind() provider.Kind {
	var perr *provider.Error
	if errors.As(e.Err, &perr) {
		return perr.Kind
	}
	return "unknown"
}
