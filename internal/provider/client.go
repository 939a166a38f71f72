package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ashureev/chatgate/internal/domain"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.1-8b-instant"
	defaultTimeout = 30 * time.Second

	maxErrorMessageLen = 512
)

// Config holds provider connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	Logger  *slog.Logger
}

// CompletionRequest is one chat completion call.
type CompletionRequest struct {
	Messages  []domain.Message
	MaxTokens int
}

// Client calls the chat completion endpoint. It makes exactly one attempt
// per call.
type Client struct {
	http  *resty.Client
	model string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewClient creates a Client. Zero values in cfg fall back to the Groq
// defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{cfg.Logger})

	return &Client{http: rc, model: cfg.Model}
}

// Model returns the model identifier sent with every request.
func (c *Client) Model() string {
	return c.model
}

// Complete sends the message history and returns the generated reply.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	body := chatCompletionRequest{
		Model:     c.model,
		Messages:  make([]chatMessage, 0, len(req.Messages)),
		MaxTokens: req.MaxTokens,
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return "", classifyRequestError(err)
	}

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return "", &Error{
			Kind:       KindStatus,
			StatusCode: resp.StatusCode(),
			Message:    errorMessage(resp.Body()),
		}
	}

	var out chatCompletionResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", &Error{Kind: KindMalformed, Message: "decode completion response", Err: err}
	}
	if len(out.Choices) == 0 {
		return "", &Error{Kind: KindMalformed, Message: "empty response", Err: ErrNoChoices}
	}
	msg := out.Choices[0].Message
	if msg == nil || msg.Content == nil {
		return "", &Error{Kind: KindMalformed, Message: "first choice has no message content", Err: ErrNoContent}
	}
	return *msg.Content, nil
}

func errorMessage(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error.Message != "" {
		return er.Error.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorMessageLen {
		msg = msg[:maxErrorMessageLen] + "..."
	}
	if msg == "" {
		msg = "no error body"
	}
	return msg
}

// restyLogger routes resty's internal logging through slog.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "provider")
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "provider")
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "provider")
}
