package handlers

import (
	"errors"
	"net/http"

	"github.com/darkchannel/backend/internal/logging"
	"github.com/darkchannel/backend/internal/models"
	"github.com/darkchannel/backend/internal/repositories"
)

// AdminHandler implements the operator surface: account search, credit and
// role adjustments, and the cross-user job queue.
type AdminHandler struct {
	Identity IdentityResolver
	Users    UserStore
	Videos   VideoStore
}

type adminUserResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Credits int    `json:"credits"`
	Role    string `json:"role"`
}

func toAdminUserResponse(user models.User) adminUserResponse {
	return adminUserResponse{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Credits: user.Credits,
		Role:    user.Role,
	}
}

// ListUsers handles GET /admin/users.
func (h AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(w, r, h.Identity)
	if !ok {
		return
	}
	if _, ok := requireAdmin(ctx, w, h.Users, identity); !ok {
		return
	}

	query := r.URL.Query().Get("query")
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	users, err := h.Users.List(ctx, query, limit, offset)
	if err != nil && !errors.Is(err, repositories.ErrNotConfigured) {
		logging.FromContext(ctx).Error("list users", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "db_error", "Failed to list users")
		return
	}

	out := make([]adminUserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, toAdminUserResponse(user))
	}
	respondJSON(ctx, w, http.StatusOK, out)
}

type adminUpdateUserRequest struct {
	Credits      *int  `json:"credits"`
	CreditsDelta *int  `json:"creditsDelta"`
	MakeAdmin    *bool `json:"makeAdmin"`
}

// UpdateUser handles PATCH /admin/users/{id}. Credit writes clamp to zero or
// above; an absolute credits value wins over a delta.
func (h AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(w, r, h.Identity)
	if !ok {
		return
	}
	if _, ok := requireAdmin(ctx, w, h.Users, identity); !ok {
		return
	}

	var req adminUpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	update := repositories.AdminUserUpdate{
		Credits:      req.Credits,
		CreditsDelta: req.CreditsDelta,
	}
	if req.MakeAdmin != nil {
		role := models.RoleUser
		if *req.MakeAdmin {
			role = models.RoleAdmin
		}
		update.Role = &role
	}
	if update.IsEmpty() {
		respondError(ctx, w, http.StatusBadRequest, "bad_request", "No valid mutation provided")
		return
	}

	user, err := h.Users.AdminUpdate(ctx, r.PathValue("id"), update)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		respondError(ctx, w, http.StatusNotFound, "not_found", "User not found")
		return
	case errors.Is(err, repositories.ErrNotConfigured):
		respondError(ctx, w, http.StatusNotImplemented, "not_configured", "Database not configured")
		return
	case err != nil:
		logging.FromContext(ctx).Error("admin update user", "id", r.PathValue("id"), "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "db_error", "Failed to update user")
		return
	}

	respondJSON(ctx, w, http.StatusOK, toAdminUserResponse(user))
}

// DeleteUser handles DELETE /admin/users/{id}. Operators cannot remove their
// own account.
func (h AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(w, r, h.Identity)
	if !ok {
		return
	}
	if _, ok := requireAdmin(ctx, w, h.Users, identity); !ok {
		return
	}

	target, err := h.Users.FindByID(ctx, r.PathValue("id"))
	switch {
	case errors.Is(err, repositories.ErrNotFound), errors.Is(err, repositories.ErrNotConfigured):
		respondError(ctx, w, http.StatusNotFound, "not_found", "User not found")
		return
	case err != nil:
		logging.FromContext(ctx).Error("load user", "id", r.PathValue("id"), "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "db_error", "Failed to load user")
		return
	}

	if target.Email == identity.Email {
		respondError(ctx, w, http.StatusBadRequest, "cannot_delete_self", "Cannot delete your own account")
		return
	}

	if err := h.Users.Delete(ctx, target.ID); err != nil {
		logging.FromContext(ctx).Error("delete user", "id", target.ID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "db_error", "Failed to delete user")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Queue handles GET /admin/queue: job rows across every user, newest first.
func (h AdminHandler) Queue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(w, r, h.Identity)
	if !ok {
		return
	}
	if _, ok := requireAdmin(ctx, w, h.Users, identity); !ok {
		return
	}

	status := r.URL.Query().Get("status")
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	videos, err := h.Videos.ListAll(ctx, status, limit, offset)
	if err != nil && !errors.Is(err, repositories.ErrNotConfigured) {
		logging.FromContext(ctx).Error("list queue", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "db_error", "Failed to list queue")
		return
	}

	respondJSON(ctx, w, http.StatusOK, videoResponses(videos))
}
