package handlers

import (
	"net/http"

	"recipebox/internal/database"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	inspector *asynq.Inspector
}

func NewHealthHandler(inspector *asynq.Inspector) *HealthHandler {
	return &HealthHandler{inspector: inspector}
}

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis,omitempty"`
}

func (h *HealthHandler) Check(c echo.Context) error {
	status := healthStatus{Status: "ok", Database: "ok"}
	code := http.StatusOK

	if err := database.CheckHealth(); err != nil {
		status.Status = "degraded"
		status.Database = "unreachable"
		code = http.StatusServiceUnavailable
	}

	if h.inspector != nil {
		status.Redis = "ok"
		if _, err := h.inspector.Queues(); err != nil {
			status.Status = "degraded"
			status.Redis = "unreachable"
			code = http.StatusServiceUnavailable
		}
	}

	return c.JSON(code, status)
}
