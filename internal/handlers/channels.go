package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/darkchannel/backend/internal/logging"
	"github.com/darkchannel/backend/internal/models"
	"github.com/darkchannel/backend/internal/repositories"
)

// ChannelHandler implements the owner-scoped YouTube channel endpoints.
// OAuth credential blobs are sealed before they reach the database and are
// never returned to clients.
type ChannelHandler struct {
	Identity IdentityResolver
	Channels ChannelStore
	Sealer   OAuthSealer
}

// List handles GET /youtube/channels.
func (h ChannelHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(w, r, h.Identity)
	if !ok {
		return
	}

	channels, err := h.Channels.ListForUser(ctx, identity.Email)
	if err != nil && !errors.Is(err, repositories.ErrNotConfigured) {
		logging.FromContext(ctx).Error("list channels", "email", identity.Email, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "db_error", "Failed to list channels")
		return
	}

	out := make([]channelSummary, 0, len(channels))
	for _, ch := range channels {
		out = append(out, channelSummary{ID: ch.ID, Name: ch.Name})
	}
	respondJSON(ctx, w, http.StatusOK, out)
}

type createChannelRequest struct {
	Name  string          `json:"name"`
	OAuth json.RawMessage `json:"oauth"`
}

// Create handles POST /youtube/channels.
func (h ChannelHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(w, r, h.Identity)
	if !ok {
		return
	}

	var req createChannelRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || len(req.OAuth) == 0 {
		respondError(ctx, w, http.StatusBadRequest, "bad_request", "name and oauth required")
		return
	}

	if h.Sealer == nil {
		respondError(ctx, w, http.StatusNotImplemented, "not_configured", "Channel credential storage not configured")
		return
	}

	sealed, err := h.Sealer.Seal(req.OAuth)
	if err != nil {
		logging.FromContext(ctx).Error("seal channel credentials", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "internal_error", "Failed to store credentials")
		return
	}

	channel := models.Channel{
		ID:             uuid.NewString(),
		UserEmail:      identity.Email,
		Name:           req.Name,
		OAuthEncrypted: sealed,
	}

	err = h.Channels.Create(ctx, channel)
	switch {
	case errors.Is(err, repositories.ErrNotConfigured):
		respondError(ctx, w, http.StatusNotImplemented, "not_configured", "Database not configured")
		return
	case err != nil:
		logging.FromContext(ctx).Error("create channel", "email", identity.Email, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "db_error", "Failed to create channel")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, channelSummary{ID: channel.ID, Name: channel.Name})
}

// Delete handles DELETE /youtube/channels/{id}.
func (h ChannelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(w, r, h.Identity)
	if !ok {
		return
	}

	err := h.Channels.Delete(ctx, r.PathValue("id"), identity.Email)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		respondError(ctx, w, http.StatusNotFound, "not_found", "Channel not found")
		return
	case errors.Is(err, repositories.ErrNotConfigured):
		respondError(ctx, w, http.StatusNotImplemented, "not_configured", "Database not configured")
		return
	case err != nil:
		logging.FromContext(ctx).Error("delete channel", "id", r.PathValue("id"), "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "db_error", "Failed to delete channel")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
