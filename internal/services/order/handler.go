package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/matiahasmasan/GreenUp/internal/logger"
	"github.com/matiahasmasan/GreenUp/internal/models"
)

// Handler handles HTTP requests for the order service
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new order handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// CreateOrder handles POST /orders requests
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	if r.Method != http.MethodPost {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", requestID)
		return
	}

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		h.writeErrorResponse(w, http.StatusBadRequest, "Content-Type must be application/json", requestID)
		return
	}

	var req models.CreateOrderRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		h.logger.Error("validation_failed", "Failed to parse request body", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}

	ctx, cancel := contextWithTimeout(r, 30*time.Second)
	defer cancel()

	order, err := h.service.CreateOrder(ctx, &req, requestID)
	if err != nil {
		h.respondError(w, err, requestID, map[string]interface{}{
			"customer_name": req.CustomerName,
			"table_number":  req.TableNumber,
		})
		return
	}

	h.writeJSON(w, http.StatusCreated, models.CreateOrderResponse{ID: order.ID}, requestID)
}

// ListOrders handles GET /history requests. Orders come back creation-time
// descending with items nested; status is emitted as stored, possibly null.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", requestID)
		return
	}

	ctx, cancel := contextWithTimeout(r, 10*time.Second)
	defer cancel()

	orders, err := h.service.ListOrders(ctx)
	if err != nil {
		h.respondError(w, err, requestID, nil)
		return
	}

	if orders == nil {
		orders = []models.Order{}
	}

	h.writeJSON(w, http.StatusOK, orders, requestID)
}

// GetOrder handles GET /orders/{id} requests
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request, id int) {
	requestID := logger.GenerateRequestID()

	ctx, cancel := contextWithTimeout(r, 10*time.Second)
	defer cancel()

	order, err := h.service.GetOrder(ctx, id)
	if err != nil {
		h.respondError(w, err, requestID, map[string]interface{}{"order_id": id})
		return
	}

	h.writeJSON(w, http.StatusOK, order, requestID)
}

// UpdateStatus handles PATCH /orders/{id}/status requests
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request, id int) {
	requestID := logger.GenerateRequestID()

	var req models.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("validation_failed", "Failed to parse request body", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}

	ctx, cancel := contextWithTimeout(r, 10*time.Second)
	defer cancel()

	order, err := h.service.UpdateStatus(ctx, id, req.Status, requestID)
	if err != nil {
		h.respondError(w, err, requestID, map[string]interface{}{
			"order_id": id,
			"status":   req.Status,
		})
		return
	}

	h.writeJSON(w, http.StatusOK, order, requestID)
}

// HealthCheck handles GET /health requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	ctx, cancel := contextWithTimeout(r, 5*time.Second)
	defer cancel()

	healthy := h.service.HealthCheck(ctx)

	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "order-service",
		"healthy":   healthy,
	}

	w.Header().Set("Content-Type", "application/json")

	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		response["status"] = "unhealthy"
	}

	json.NewEncoder(w).Encode(response)
}

// SetupRoutes sets up the HTTP routes
func (h *Handler) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/orders", h.withLogging(h.CreateOrder))
	mux.HandleFunc("/orders/", h.withLogging(h.routeOrderRequests))
	mux.HandleFunc("/history", h.withLogging(h.ListOrders))
	mux.HandleFunc("/health", h.withLogging(h.HealthCheck))

	return mux
}

// routeOrderRequests routes /orders/{id} and /orders/{id}/status requests
func (h *Handler) routeOrderRequests(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/orders/")

	if strings.HasSuffix(path, "/status") {
		id, ok := parseOrderID(strings.TrimSuffix(path, "/status"))
		if !ok {
			h.writeErrorResponse(w, http.StatusBadRequest, "Invalid order id", "")
			return
		}
		if r.Method != http.MethodPatch {
			h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", "")
			return
		}
		h.UpdateStatus(w, r, id)
		return
	}

	id, ok := parseOrderID(path)
	if !ok {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid order id", "")
		return
	}
	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}
	h.GetOrder(w, r, id)
}

// respondError maps service errors onto HTTP status codes
func (h *Handler) respondError(w http.ResponseWriter, err error, requestID string, fields map[string]interface{}) {
	var validationErr *models.ValidationError

	switch {
	case errors.As(err, &validationErr):
		h.writeErrorResponse(w, http.StatusBadRequest, validationErr.Error(), requestID)
	case errors.Is(err, models.ErrInvalidStatus):
		h.writeErrorResponse(w, http.StatusBadRequest, err.Error(), requestID)
	case errors.Is(err, models.ErrNotFound):
		h.writeErrorResponse(w, http.StatusNotFound, "Order not found", requestID)
	default:
		h.logger.Error("request_failed", "Request failed", requestID, err, fields)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
	}
}

// writeJSON writes a successful JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, payload interface{}, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}

// writeErrorResponse writes an error response in JSON format
func (h *Handler) writeErrorResponse(w http.ResponseWriter, statusCode int, message, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := map[string]interface{}{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	}

	json.NewEncoder(w).Encode(errorResponse)
}

// withLogging adds request logging middleware
func (h *Handler) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := logger.GenerateRequestID()

		h.logger.Debug("request_started",
			fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
				"user_agent":  r.Header.Get("User-Agent"),
			})

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next(rw, r)

		duration := time.Since(start)
		h.logger.Debug("request_completed",
			fmt.Sprintf("%s %s - %d", r.Method, r.URL.Path, rw.statusCode),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status_code": rw.statusCode,
				"duration_ms": duration.Milliseconds(),
			})
	}
}

// parseOrderID parses a positive numeric order id from a path segment
func parseOrderID(segment string) (int, bool) {
	id, err := strconv.Atoi(segment)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// contextWithTimeout derives a bounded context from the request
func contextWithTimeout(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
