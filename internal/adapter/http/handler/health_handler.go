package handler

import (
	"net/http"

	"go.uber.org/zap"
)

// HealthHandler обработчик health check запросов
type HealthHandler struct {
	responder
}

// NewHealthHandler создаёт новый HealthHandler
func NewHealthHandler(logger *zap.Logger) *HealthHandler {
	return &HealthHandler{responder: responder{logger: logger}}
}

// HealthResponse ответ health check
type HealthResponse struct {
	Status string `json:"status"`
}

// Check проверяет состояние сервиса
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
