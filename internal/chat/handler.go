package chat

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ashureev/chatgate/internal/api"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Response details match what the bundled frontend displays.
const (
	detailInvalidPassword = "Invalid Password"
	detailWrongPassword   = "Wrong password"
	detailLimitReached    = "Limit reached"
	detailSessionBusy     = "Another message for this session is still being answered, please try again"
	detailProviderFailed  = "The assistant is unavailable right now, please try again later"
	detailInternal        = "internal error"
)

type verifyRequest struct {
	Password string `json:"password"`
}

type chatRequest struct {
	Message   string `json:"message"`
	Password  string `json:"password"`
	SessionID string `json:"session_id"`
}

// Handler serves the verify and chat endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a Handler for svc.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the chat API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/verify", h.HandleVerify)
		r.Post("/chat", h.HandleChat)
	})
}

// HandleVerify handles POST /api/verify requests.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := api.DecodeJSON(w, r, &req); err != nil {
		api.Error(w, api.DecodeStatus(err), "invalid request body")
		return
	}

	if !h.svc.Verify(req.Password) {
		api.Error(w, http.StatusUnauthorized, detailInvalidPassword)
		return
	}
	api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleChat handles POST /api/chat requests.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var body chatRequest
	if err := api.DecodeJSON(w, r, &body); err != nil {
		api.Error(w, api.DecodeStatus(err), "invalid request body")
		return
	}

	reply, err := h.svc.Chat(r.Context(), Request{
		Message:   body.Message,
		Password:  body.Password,
		SessionID: body.SessionID,
		RequestID: chiMiddleware.GetReqID(r.Context()),
	})

	var perr *ProviderError
	switch {
	case err == nil:
		api.JSON(w, http.StatusOK, reply)
	case errors.Is(err, ErrUnauthorized):
		api.Error(w, http.StatusUnauthorized, detailWrongPassword)
	case errors.Is(err, ErrInvalidRequest):
		api.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrQuotaExceeded):
		api.Error(w, http.StatusForbidden, detailLimitReached)
	case errors.Is(err, ErrSessionBusy):
		api.Error(w, http.StatusTooManyRequests, detailSessionBusy)
	case errors.As(err, &perr):
		api.Error(w, http.StatusInternalServerError, detailProviderFailed)
	default:
		slog.Error("Unexpected chat error", "error", err)
		api.Error(w, http.StatusInternalServerError, detailInternal)
	}
}
