package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/darkchannel/backend/internal/logging"
	"github.com/darkchannel/backend/internal/models"
	"github.com/darkchannel/backend/internal/repositories"
)

// ProfileHandler implements the self-service account endpoints.
type ProfileHandler struct {
	Identity IdentityResolver
	Users    UserStore
	Channels ChannelStore
	Ledger   CreditLedger
}

type channelSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type profileResponse struct {
	Email             string           `json:"email"`
	Name              string           `json:"name"`
	Credits           int              `json:"credits"`
	IsAdmin           bool             `json:"is_admin"`
	Phone             string           `json:"phone"`
	FoundUs           string           `json:"found_us"`
	PreferredLanguage string           `json:"preferred_language"`
	Channels          []channelSummary `json:"channels,omitempty"`
}

func toProfileResponse(user models.User) profileResponse {
	return profileResponse{
		Email:             user.Email,
		Name:              user.Name,
		Credits:           user.Credits,
		IsAdmin:           user.IsAdmin(),
		Phone:             user.Phone,
		FoundUs:           user.FoundUs,
		PreferredLanguage: user.PreferredLanguage,
	}
}

// Me handles GET /me: the caller's profile plus channel summaries. The
// account is created on first access.
func (h ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(w, r, h.Identity)
	if !ok {
		return
	}

	user, err := h.Users.Ensure(ctx, identity.Email)
	if err != nil {
		logging.FromContext(ctx).Error("ensure account", "email", identity.Email, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "db_error", "Failed to load profile")
		return
	}

	channels, err := h.Channels.ListForUser(ctx, identity.Email)
	if err != nil && !errors.Is(err, repositories.ErrNotConfigured) {
		logging.FromContext(ctx).Error("list channels", "email", identity.Email, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "db_error", "Failed to load channels")
		return
	}

	resp := toProfileResponse(user)
	if identity.AnonymousAdmin {
		resp.IsAdmin = true
	}
	resp.Channels = make([]channelSummary, 0, len(channels))
	for _, ch := range channels {
		resp.Channels = append(resp.Channels, channelSummary{ID: ch.ID, Name: ch.Name})
	}

	respondJSON(ctx, w, http.StatusOK, resp)
}

type updateProfileRequest struct {
	Name              *string `json:"name"`
	Phone             *string `json:"phone"`
	FoundUs           *string `json:"found_us"`
	PreferredLanguage *string `json:"preferred_language"`
}

// UpdateMe handles PATCH /me.
func (h ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(w, r, h.Identity)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	update := repositories.ProfileUpdate{
		Name:              req.Name,
		Phone:             req.Phone,
		FoundUs:           req.FoundUs,
		PreferredLanguage: req.PreferredLanguage,
	}
	if update.IsEmpty() {
		respondError(ctx, w, http.StatusBadRequest, "bad_request", "No valid fields to update")
		return
	}

	user, err := h.Users.UpsertProfile(ctx, identity.Email, update)
	switch {
	case errors.Is(err, repositories.ErrNotConfigured):
		respondError(ctx, w, http.StatusNotImplemented, "not_configured", "Database not configured")
		return
	case err != nil:
		logging.FromContext(ctx).Error("update profile", "email", identity.Email, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "db_error", "Failed to update profile")
		return
	}

	respondJSON(ctx, w, http.StatusOK, toProfileResponse(user))
}

// Credits handles GET /credits.
func (h ProfileHandler) Credits(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(w, r, h.Identity)
	if !ok {
		return
	}

	balance, err := h.Ledger.Balance(ctx, identity.Email)
	if err != nil {
		logging.FromContext(ctx).Error("read balance", "email", identity.Email, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "db_error", "Failed to read credits")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]int{"credits": balance})
}

type registerProfileRequest struct {
	Email             string  `json:"email"`
	Name              *string `json:"name"`
	Phone             *string `json:"phone"`
	FoundUs           *string `json:"found_us"`
	PreferredLanguage *string `json:"preferred_language"`
}

// Register handles POST /register/profile: a public profile upsert used by
// the signup flow before the first authenticated request.
func (h ProfileHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "bad_request", "A valid email is required")
		return
	}

	update := repositories.ProfileUpdate{
		Name:              req.Name,
		Phone:             req.Phone,
		FoundUs:           req.FoundUs,
		PreferredLanguage: req.PreferredLanguage,
	}

	_, err := h.Users.UpsertProfile(ctx, email, update)
	switch {
	case errors.Is(err, repositories.ErrNotConfigured):
		respondError(ctx, w, http.StatusNotImplemented, "not_configured", "Database not configured")
		return
	case err != nil:
		logging.FromContext(ctx).Error("register profile", "email", email, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "db_error", "Failed to register profile")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]bool{"ok": true})
}
