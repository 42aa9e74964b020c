package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskboard/backend/api/transport"
	"github.com/taskboard/backend/domain"
	"github.com/taskboard/backend/pkg/httpcontext"
	profileUC "github.com/taskboard/backend/usecase/profile"
)

type ProfileHandler struct {
	baseHandler
	uc *profileUC.UseCase
}

func NewProfileHandler(uc *profileUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Get profile
// @Tags profile
// @Router /api/profile [get]
func (h *ProfileHandler) GetProfile(ctx *fasthttp.RequestCtx) {
	if _, ok := h.identity(ctx); !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	profile, err := h.uc.GetProfile(stdCtx, h.capability(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.respondJSON(ctx, http.StatusOK, transport.ProfileResponse{
		Message: "Profile fetched successfully",
		Profile: profile,
	})
}

// @Summary Update profile
// @Tags profile
// @Router /api/profile [put]
func (h *ProfileHandler) UpdateProfile(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}

	var req transport.ProfileUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, domain.NewError(domain.ErrCodeValidation, "Invalid JSON payload"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	profile, err := h.uc.UpdateProfile(stdCtx, h.capability(ctx), identity.ID, profileUC.Update{
		Email:    req.Email,
		Metadata: req.Metadata,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.respondJSON(ctx, http.StatusOK, transport.ProfileResponse{
		Message: "Profile updated successfully",
		Profile: profile,
	})
}

// @Summary Delete account
// @Tags profile
// @Router /api/profile [delete]
func (h *ProfileHandler) DeleteAccount(ctx *fasthttp.RequestCtx) {
	identity, ok := h.identity(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.DeleteAccount(stdCtx, h.capability(ctx), identity.ID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.respondJSON(ctx, http.StatusOK, transport.AccountDeleteResponse{
		Message:        result.Message,
		AccountDeleted: result.AccountDeleted,
		Note:           result.Note,
	})
}
