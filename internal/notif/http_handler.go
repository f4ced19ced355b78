package notif

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"foodorder/internal/common"
	"foodorder/internal/metrics"
	"foodorder/pkg/zlog"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type HTTPHandler struct {
	service Lifecycle
}

func NewHTTPHandler(service Lifecycle) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type deliveryOutcomeRequest struct {
	Status common.DeliveryState `json:"status"`
	Error  string               `json:"error,omitempty"`
}

// NewRouter mounts the notification API under /api/v1 and /metrics when m
// is not nil.
func NewRouter(h *HTTPHandler, m *metrics.Metrics) *mux.Router {
	router := mux.NewRouter()

	router.Use(corsMiddleware)
	router.Use(loggingMiddleware(m))

	// Preflight requests must match a route for the middleware to run.
	router.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	if m != nil {
		router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	notifications := api.PathPrefix("/notifications").Subrouter()
	notifications.HandleFunc("", h.Create).Methods(http.MethodPost)
	notifications.HandleFunc("/schedule", h.Schedule).Methods(http.MethodPost)
	notifications.HandleFunc("/{id}", h.Get).Methods(http.MethodGet)
	notifications.HandleFunc("/{id}", h.Delete).Methods(http.MethodDelete)
	notifications.HandleFunc("/{id}/read", h.MarkAsRead).Methods(http.MethodPut)
	notifications.HandleFunc("/{id}/delivery/{channel}", h.RecordDeliveryOutcome).Methods(http.MethodPut)

	users := api.PathPrefix("/users/{userID}/notifications").Subrouter()
	users.HandleFunc("/unread", h.FindUnread).Methods(http.MethodGet)
	users.HandleFunc("/unread/count", h.CountUnread).Methods(http.MethodGet)

	return router
}

func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ping(r.Context()); err != nil {
		zlog.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "unhealthy",
			"service": "foodorder-notifications",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "foodorder-notifications",
	})
}

func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft common.NotificationDraft
	if !decodeBody(w, r, &draft) {
		return
	}

	n, err := h.service.Create(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *HTTPHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var draft common.NotificationDraft
	if !decodeBody(w, r, &draft) {
		return
	}

	n, err := h.service.Schedule(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.MarkAsRead(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *HTTPHandler) RecordDeliveryOutcome(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req deliveryOutcomeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	channel := common.Channel(vars["channel"])
	if err := h.service.RecordDeliveryOutcome(r.Context(), vars["id"], channel, req.Status, req.Error); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notificationId": vars["id"],
		"channel":        channel,
		"recorded":       channel.IsTracked(),
	})
}

func (h *HTTPHandler) FindUnread(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, &common.ValidationError{Field: "limit", Reason: "must be a non-negative integer"})
			return
		}
		limit = n
	}

	list, err := h.service.FindUnreadForUser(r.Context(), mux.Vars(r)["userID"], limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": list,
		"count":         len(list),
	})
}

func (h *HTTPHandler) CountUnread(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	count, err := h.service.CountUnreadForUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recipientId": userID,
		"unread":      count,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, &common.ValidationError{Field: "body", Reason: "is required"})
		} else {
			writeError(w, &common.ValidationError{Field: "body", Reason: "malformed JSON"})
		}
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zlog.Warn("failed to write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case common.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case common.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		zlog.Error("notification request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(rec, r)
			elapsed := time.Since(start)

			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if tmpl, err := cur.GetPathTemplate(); err == nil {
					route = tmpl
				}
			}

			if m != nil {
				m.ObserveHTTP(r.Method, route, rec.code, elapsed)
			}
			zlog.Debug("http request",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", rec.code),
				zap.Duration("elapsed", elapsed))
		})
	}
}
