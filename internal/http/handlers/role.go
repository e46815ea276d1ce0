package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hongminglow/afriglobal-be/internal/account"
	"github.com/hongminglow/afriglobal-be/internal/http/respond"
	"github.com/hongminglow/afriglobal-be/internal/middleware"
	"github.com/hongminglow/afriglobal-be/internal/models/dto"
)

// RoleHandler lets an authenticated caller pick their role.
type RoleHandler struct {
	accounts *account.Service
}

// NewRoleHandler constructs the handler.
func NewRoleHandler(accounts *account.Service) *RoleHandler {
	return &RoleHandler{accounts: accounts}
}

// Update handles PUT /api/user/role. It must sit behind middleware.RequireUser.
func (h *RoleHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFromContext(r.Context())
	if caller == nil {
		respond.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req dto.RoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.accounts.UpdateRole(r.Context(), *caller, req.Role)
	if err != nil {
		if errors.Is(err, account.ErrInvalidRole) {
			respond.Error(w, http.StatusBadRequest, "Invalid role")
			return
		}
		slog.Error("role update failed", "error", err, "user_id", caller.ID, "request_id", middleware.GetRequestID(r.Context()))
		respond.Error(w, http.StatusInternalServerError, "Internal Error")
		return
	}

	slog.Info("role updated", "user_id", user.ID, "role", user.Role)
	respond.JSON(w, http.StatusOK, user)
}
