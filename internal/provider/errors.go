package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind classifies a provider failure.
type Kind string

const (
	KindTimeout   Kind = "timeout"
	KindTransport Kind = "transport"
	KindStatus    Kind = "status"
	KindMalformed Kind = "malformed"
)

var (
	// ErrNoChoices indicates a well-formed response that carried no reply.
	ErrNoChoices = errors.New("completion response has no choices")

	// ErrNoContent indicates a choice whose message or content is missing or null.
	ErrNoContent = errors.New("completion choice has no content")
)

// Error is returned by Client.Complete for every failed call.
type Error struct {
	Kind       Kind
	StatusCode int    // set for KindStatus
	Message    string // provider or client supplied detail
	Err        error  // underlying error, if any
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %s error (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("provider %s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("provider %s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether the provider rejected the call with 429.
func (e *Error) IsRateLimited() bool {
	return e.Kind == KindStatus && e.StatusCode == 429
}

// IsAuthError reports whether the provider rejected the API key.
func (e *Error) IsAuthError() bool {
	return e.Kind == KindStatus && (e.StatusCode == 401 || e.StatusCode == 403)
}

func classifyRequestError(err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Kind: KindTimeout, Message: "request timed out", Err: err}
	}
	return &Error{Kind: KindTransport, Message: "request failed", Err: err}
}
