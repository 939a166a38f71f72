package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/chatgate/internal/domain"
	"github.com/ashureev/chatgate/internal/metrics"
	"github.com/ashureev/chatgate/internal/provider"
	"github.com/ashureev/chatgate/internal/session"
)

// Service runs chat turns against the session store and the completion
// provider.
type Service struct {
	gate      Verifier
	sessions  *session.Store
	completer Completer
	cfg       Config
	log       ConversationLogger
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithConversationLogger archives chat events through l.
func WithConversationLogger(l ConversationLogger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics records turn outcomes and provider latency in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a chat service. Zero limits in cfg fall back to
// DefaultConfig.
func NewService(gate Verifier, sessions *session.Store, completer Completer, cfg Config, opts ...Option) *Service {
	def := DefaultConfig()
	if cfg.MessageLimit <= 0 {
		cfg.MessageLimit = def.MessageLimit
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.QueueTimeout <= 0 {
		cfg.QueueTimeout = def.QueueTimeout
	}

	s := &Service{
		gate:      gate,
		sessions:  sessions,
		completer: completer,
		cfg:       cfg,
		log:       noopConversationLogger{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Verify reports whether password is accepted.
func (s *Service) Verify(password string) bool {
	ok := s.gate.Verify(password)
	s.metrics.ObserveVerify(ok)
	return ok
}

// Chat runs one chat turn.
//
// The password is checked before the session is touched. The session turn
// lock is held from the quota check until the reply is recorded, so turns for
// one session never interleave. Waiting for the lock is bounded by
// Config.QueueTimeout and by ctx. A provider failure leaves the user message
// in the history without a reply and does not advance the count.
func (s *Service) Chat(ctx context.Context, req Request) (Reply, error) {
	if !s.gate.Verify(req.Password) {
		s.metrics.ObserveChatTurn(metrics.OutcomeUnauthorized)
		return Reply{}, ErrUnauthorized
	}
	if req.SessionID == "" {
		s.metrics.ObserveChatTurn(metrics.OutcomeInvalid)
		return Reply{}, fmt.Errorf("%w: session_id is required", ErrInvalidRequest)
	}

	sess := s.sessions.GetOrCreate(req.SessionID)
	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.QueueTimeout)
	err := sess.Acquire(waitCtx)
	cancel()
	if err != nil {
		s.metrics.ObserveChatTurn(metrics.OutcomeSessionBusy)
		s.logger.Warn("Gave up waiting for session turn",
			"session_id", req.SessionID,
			"request_id", req.RequestID,
			"error", err,
		)
		return Reply{}, fmt.Errorf("%w: %w", ErrSessionBusy, err)
	}
	defer sess.Release()

	if count := sess.Count(); count >= s.cfg.MessageLimit {
		s.metrics.ObserveChatTurn(metrics.OutcomeQuotaExceeded)
		s.logger.Info("Chat quota exceeded", "session_id", req.SessionID, "count", count, "request_id", req.RequestID)
		s.record(req, domain.EventQuotaExceeded, "", "", count)
		return Reply{Count: count}, ErrQuotaExceeded
	}

	sess.AppendUser(req.Message)
	s.record(req, domain.EventUserMessage, domain.RoleUser, req.Message, sess.Count())

	s.logger.Info("Chat turn",
		"session_id", req.SessionID,
		"turn", sess.Count()+1,
		"message_length", len(req.Message),
		"request_id", req.RequestID,
	)

	// A client that disconnects mid-turn does not abort the provider call;
	// the provider client enforces its own timeout.
	start := time.Now()
	text, err := s.completer.Complete(context.WithoutCancel(ctx), provider.CompletionRequest{
		Messages:  sess.History(),
		MaxTokens: s.cfg.MaxTokens,
	})
	elapsed := time.Since(start)

	if err != nil {
		perr := &ProviderError{Err: err}
		s.metrics.ObserveProvider(string(perr.Kind()), elapsed)
		s.metrics.ObserveChatTurn(metrics.OutcomeProviderError)
		s.logger.Error("Completion provider failed",
			"session_id", req.SessionID,
			"kind", perr.Kind(),
			"duration", elapsed,
			"request_id", req.RequestID,
			"error", err,
		)
		s.hint(err)
		s.record(req, domain.EventProviderError, "", err.Error(), sess.Count())
		return Reply{}, perr
	}

	count := sess.RecordReply(text)
	s.metrics.ObserveProvider(metrics.OutcomeOK, elapsed)
	s.metrics.ObserveChatTurn(metrics.OutcomeOK)
	s.record(req, domain.EventAssistantMessage, domain.RoleAssistant, text, count)

	return Reply{Reply: text, Count: count}, nil
}

// hint logs operator-facing advice for provider errors that retrying will
// not fix.
func (s *Service) hint(err error) {
	var pe *provider.Error
	if !errors.As(err, &pe) {
		return
	}
	switch {
	case pe.IsAuthError():
		s.logger.Error("Completion provider rejected the API key, check GROQ_API_KEY", "status", pe.StatusCode)
	case pe.IsRateLimited():
		s.logger.Warn("Completion provider is rate limiting requests", "status", pe.StatusCode)
	}
}

func (s *Service) record(req Request, eventType domain.ConversationEventType, role domain.Role, content string, count int) {
	s.log.Log(domain.ConversationEvent{
		SessionID: req.SessionID,
		EventType: eventType,
		Role:      role,
		Content:   content,
		Count:     count,
		RequestID: req.RequestID,
		CreatedAt: time.Now().UTC(),
	})
}
