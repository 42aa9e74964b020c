package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskboard/backend/api/transport"
	"github.com/taskboard/backend/domain"
	"github.com/taskboard/backend/internal/middleware"
	"github.com/taskboard/backend/pkg/httpcontext"
	"github.com/taskboard/backend/repository"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload any) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)

	resp := transport.ErrorResponse{
		Error:   code,
		Message: "An unexpected error occurred",
	}
	var dErr *domain.Error
	if errors.As(err, &dErr) {
		resp.Message = dErr.Message
		if dErr.Err != nil {
			resp.Details = dErr.Err.Error()
		}
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	h.respondJSON(ctx, status, resp)
}

// identity returns the caller attached by the access gate; a missing
// identity means a route was wired without the gate, which is answered
// like any other authentication failure.
func (h baseHandler) identity(ctx *fasthttp.RequestCtx) (*domain.Identity, bool) {
	identity, ok := ctx.UserValue(middleware.IdentityKey).(*domain.Identity)
	if !ok || identity == nil {
		h.respondJSON(ctx, http.StatusUnauthorized,
			transport.NewErrorResponse(string(domain.ErrCodeUnauthorized), "Missing or invalid credentials", ""))
		return nil, false
	}
	return identity, true
}

func (h baseHandler) capability(ctx *fasthttp.RequestCtx) repository.Capability {
	cap, _ := ctx.UserValue(middleware.CapabilityKey).(repository.Capability)
	return cap
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeValidation):
		return http.StatusBadRequest, string(domain.ErrCodeValidation)
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.IsDomainError(err, domain.ErrCodeUnavailable):
		return http.StatusServiceUnavailable, string(domain.ErrCodeUnavailable)
	case domain.IsDomainError(err, domain.ErrCodeDatabase):
		return http.StatusInternalServerError, string(domain.ErrCodeDatabase)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}
