package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskboard/backend/api/transport"
	"github.com/taskboard/backend/internal/infrastructure/monitor"
	"github.com/taskboard/backend/pkg/httpcontext"
)

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
}

func NewHealthHandler(mon *monitor.Monitor, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// @Summary Liveness
// @Tags health
// @Router / [get]
func (h *HealthHandler) Root(ctx *fasthttp.RequestCtx) {
	h.respondJSON(ctx, http.StatusOK, transport.RootResponse{
		Message:   "API is running",
		Timestamp: time.Now().UTC(),
	})
}

// @Summary Dependency health
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := transport.HealthResponse{
		Timestamp: time.Now().UTC(),
		Services: map[string]bool{
			"postgresql": status.PostgreSQL,
			"redis":      status.Redis,
			"identity":   status.Identity,
		},
	}

	if status.PostgreSQL && status.Identity {
		payload.Status = "ok"
		h.respondJSON(ctx, http.StatusOK, payload)
		return
	}

	payload.Status = "degraded"
	h.respondJSON(ctx, http.StatusServiceUnavailable, payload)
}
