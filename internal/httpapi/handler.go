package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"ticketdesk/internal/service"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handler struct {
	service *service.Service
	limiter *RateLimiter
	metrics *Metrics
	logger  *slog.Logger
}

type Options struct {
	Limiter *RateLimiter
	Metrics *Metrics
	Logger  *slog.Logger
}

func NewHandler(svc *service.Service, options Options) *Handler {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{
		service: svc,
		limiter: options.Limiter,
		metrics: options.Metrics,
		logger:  logger,
	}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.handleHealth)
	if h.metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(h.metrics.registry, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("POST /api/users/signin", h.handleSignin)
	mux.HandleFunc("POST /api/users/create", h.handleCreateUser)
	mux.HandleFunc("GET /api/users/list", h.requireSignin(h.handleListUsers))
	mux.HandleFunc("GET /api/users/get/{userID}", h.requireSignin(h.requireSelfOrAdmin(h.handleGetUser)))
	mux.HandleFunc("PUT /api/users/edit/{userID}", h.requireSignin(h.requireSelfOrAdmin(h.handleUpdateUser)))
	mux.HandleFunc("DELETE /api/users/delete/{userID}", h.requireSignin(h.requireAdmin(h.handleDeleteUser)))

	mux.HandleFunc("POST /api/ticket/create", h.requireSignin(h.handleCreateTicket))
	mux.HandleFunc("GET /api/ticket/list", h.requireSignin(h.handleListTickets))
	mux.HandleFunc("GET /api/ticket/get/{ticketID}", h.requireSignin(h.requireOwnerOrAdmin(h.handleGetTicket)))
	mux.HandleFunc("PUT /api/ticket/edit/{ticketID}", h.requireSignin(h.requireOwnerOrAdmin(h.handleUpdateTicket)))
	mux.HandleFunc("DELETE /api/ticket/delete/{ticketID}", h.requireSignin(h.requireOwnerOrAdmin(h.handleDeleteTicket)))

	mux.HandleFunc("POST /api/ticketIteration/create", h.requireSignin(h.handleCreateIteration))
	mux.HandleFunc("GET /api/ticketIteration/list", h.requireSignin(h.handleListIterations))
	mux.HandleFunc("GET /api/ticketIteration/get/{ticketIterationID}", h.requireSignin(h.handleGetIteration))
	mux.HandleFunc("PUT /api/ticketIteration/edit/{ticketIterationID}", h.requireSignin(h.requireAdmin(h.handleUpdateIteration)))
	mux.HandleFunc("DELETE /api/ticketIteration/delete/{ticketIterationID}", h.requireSignin(h.requireAdmin(h.handleDeleteIteration)))

	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func decodeRequest(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	decoder := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return false
	}
	return true
}

// respond writes err through mapError, logging anything that is not a
// client error.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, err error) {
	status, message := mapError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, status, message)
}

func mapError(err error) (int, string) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		return http.StatusInternalServerError, "internal server error"
	}
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, svcErr.Message
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, svcErr.Message
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, svcErr.Message
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, svcErr.Message
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, svcErr.Message
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Message: message})
}

// writeSuccess writes {"success": true, "message"?: ..., ...data}.
func writeSuccess(w http.ResponseWriter, status int, message string, data map[string]interface{}) {
	payload := make(map[string]interface{}, len(data)+2)
	for key, value := range data {
		payload[key] = value
	}
	payload["success"] = true
	if message != "" {
		payload["message"] = message
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
