package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/darkchannel/backend/internal/logging"
	"github.com/darkchannel/backend/internal/models"
	"github.com/darkchannel/backend/internal/repositories"
	"github.com/darkchannel/backend/internal/workflow"
)

// VideoHandler implements the job creation and query endpoints.
type VideoHandler struct {
	Identity IdentityResolver
	Videos   VideoStore
	Workflow WorkflowClient
	Limiter  RateLimiter
}

type languageFields struct {
	Description string `json:"description"`
	Screenplay  string `json:"screenplay"`
	Structure   string `json:"structure"`
	Style       string `json:"style"`
	Elements    string `json:"elements"`
	Rules       string `json:"rules"`
	Techniques  string `json:"techniques"`
	Lighting    string `json:"lighting"`
}

type createVideosRequest struct {
	Count            int                       `json:"count"`
	Languages        []string                  `json:"languages"`
	Genre            string                    `json:"genre"`
	CharCount        int                       `json:"charCount"`
	Images           int                       `json:"images"`
	ChannelID        *string                   `json:"channelId"`
	FieldsByLanguage map[string]languageFields `json:"fieldsByLanguage"`
}

func (req createVideosRequest) validate() error {
	if req.Count < 1 || req.Count > 10 {
		return errors.New("count must be between 1 and 10")
	}
	if len(req.Languages) == 0 {
		return errors.New("languages must not be empty")
	}
	seen := map[string]bool{}
	for _, lang := range req.Languages {
		if !models.IsSupportedLanguage(lang) {
			return fmt.Errorf("unsupported language %q", lang)
		}
		if seen[lang] {
			return fmt.Errorf("duplicate language %q", lang)
		}
		seen[lang] = true
	}
	if strings.TrimSpace(req.Genre) == "" {
		return errors.New("genre is required")
	}
	validCharCount := false
	for _, c := range models.CharacterCounts {
		if req.CharCount == c {
			validCharCount = true
		}
	}
	if !validCharCount {
		return errors.New("charCount must be 2500 or 3500")
	}
	if req.Images != models.ImagesPerVideo {
		return fmt.Errorf("images must be %d", models.ImagesPerVideo)
	}
	if req.ChannelID != nil && strings.TrimSpace(*req.ChannelID) == "" {
		return errors.New("channelId must not be empty when provided")
	}
	for _, lang := range req.Languages {
		fields, ok := req.FieldsByLanguage[lang]
		if !ok {
			return fmt.Errorf("missing fieldsByLanguage entry for %q", lang)
		}
		if strings.TrimSpace(fields.Description) == "" || strings.TrimSpace(fields.Screenplay) == "" {
			return fmt.Errorf("description and screenplay are required for %q", lang)
		}
	}
	return nil
}

// buildRows fans the request out into count x languages job rows, each
// pre-populated from the per-language creative bundle and starting at Draft.
func (req createVideosRequest) buildRows(userEmail string) []models.Video {
	now := time.Now().UTC()
	rows := make([]models.Video, 0, req.Count*len(req.Languages))
	for i := 0; i < req.Count; i++ {
		for _, lang := range req.Languages {
			fields := req.FieldsByLanguage[lang]
			structure := fields.Structure
			if structure == "" {
				structure = fields.Screenplay
			}
			rows = append(rows, models.Video{
				ID:                    uuid.NewString(),
				UserEmail:             userEmail,
				ChannelID:             req.ChannelID,
				Language:              lang,
				Status:                models.StatusDraft,
				Genre:                 req.Genre,
				Description:           fields.Description,
				Structure:             structure,
				Screenplay:            fields.Screenplay,
				Tone:                  fields.Style,
				Elements:              fields.Elements,
				CompositionRules:      fields.Rules,
				Techniques:            fields.Techniques,
				LightingAndAtmosphere: fields.Lighting,
				CharacterCount:        req.CharCount,
				CreatedAt:             now,
				UpdatedAt:             now,
			})
		}
	}
	return rows
}

// Create handles POST /videos: validate, debit credits, insert the batch and
// fire one automation trigger per row.
func (h VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "videos-create") {
		respondError(ctx, w, http.StatusTooManyRequests, "rate_limited", "Too many requests")
		return
	}

	identity, ok := requireIdentity(w, r, h.Identity)
	if !ok {
		return
	}

	var req createVideosRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	creditsNeeded := req.Count * len(req.Languages)
	rows := req.buildRows(identity.Email)

	remaining, err := h.Videos.CreateBatch(ctx, identity.Email, creditsNeeded, rows)
	switch {
	case errors.Is(err, repositories.ErrInsufficientCredits):
		respondError(ctx, w, http.StatusBadRequest, "insufficient_credits", "Not enough credits")
		return
	case errors.Is(err, repositories.ErrNotConfigured):
		// No persistence available: acknowledge with generated ids so the
		// frontend flow keeps working in local setups.
		respondJSON(ctx, w, http.StatusCreated, map[string]any{
			"videoIds": videoIDs(rows),
			"note":     "running without a database (no persistence)",
		})
		return
	case err != nil:
		logger.Error("create video batch", "email", identity.Email, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "db_error", "Failed to create videos")
		return
	}

	if h.Workflow != nil {
		triggers := make([]workflow.ScreenplayTrigger, 0, len(rows))
		for _, row := range rows {
			triggers = append(triggers, workflow.TriggerFromVideo(row))
		}
		h.Workflow.NotifyScreenplayBatch(triggers)
	}

	logger.Info("video batch created",
		"email", identity.Email,
		"rows", len(rows),
		"creditsRemaining", remaining,
	)
	respondJSON(ctx, w, http.StatusCreated, map[string]any{"videoIds": videoIDs(rows)})
}

// List handles GET /videos, scoped to the caller.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(w, r, h.Identity)
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	videos, err := h.Videos.ListForUser(ctx, identity.Email, status, limit, offset)
	if err != nil && !errors.Is(err, repositories.ErrNotConfigured) {
		logging.FromContext(ctx).Error("list videos", "email", identity.Email, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "db_error", "Failed to list videos")
		return
	}

	respondJSON(ctx, w, http.StatusOK, videoResponses(videos))
}

// Get handles GET /videos/{id}, scoped to the caller.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(w, r, h.Identity)
	if !ok {
		return
	}

	video, err := h.Videos.FindForUser(ctx, r.PathValue("id"), identity.Email)
	switch {
	case errors.Is(err, repositories.ErrNotFound), errors.Is(err, repositories.ErrNotConfigured):
		respondError(ctx, w, http.StatusNotFound, "not_found", "Video not found")
		return
	case err != nil:
		logging.FromContext(ctx).Error("load video", "id", r.PathValue("id"), "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "db_error", "Failed to load video")
		return
	}

	respondJSON(ctx, w, http.StatusOK, toVideoResponse(video))
}

type updateVideoRequest struct {
	Description           *string `json:"description"`
	Structure             *string `json:"structure"`
	Screenplay            *string `json:"screenplay"`
	Tone                  *string `json:"tone"`
	Elements              *string `json:"elements"`
	CompositionRules      *string `json:"composition_rules"`
	Techniques            *string `json:"techniques"`
	LightingAndAtmosphere *string `json:"lighting_and_atmosphere"`
	Status                *string `json:"status"`
}

// Update handles PATCH /videos/{id}: owner edits to the creative fields plus
// the submit transition via the status field.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := requireIdentity(w, r, h.Identity)
	if !ok {
		return
	}

	var req updateVideoRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	if req.Status != nil {
		valid := false
		for _, s := range models.VideoStatuses {
			if *req.Status == s {
				valid = true
			}
		}
		if !valid {
			respondError(ctx, w, http.StatusBadRequest, "bad_request", "Invalid status value")
			return
		}
	}

	update := repositories.VideoUpdate{
		Description:           req.Description,
		Structure:             req.Structure,
		Screenplay:            req.Screenplay,
		Tone:                  req.Tone,
		Elements:              req.Elements,
		CompositionRules:      req.CompositionRules,
		Techniques:            req.Techniques,
		LightingAndAtmosphere: req.LightingAndAtmosphere,
		Status:                req.Status,
	}
	if update.IsEmpty() {
		respondError(ctx, w, http.StatusBadRequest, "bad_request", "No update fields provided")
		return
	}

	video, err := h.Videos.UpdateForUser(ctx, r.PathValue("id"), identity.Email, update)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		respondError(ctx, w, http.StatusNotFound, "not_found", "Video not found")
		return
	case errors.Is(err, repositories.ErrNotConfigured):
		respondError(ctx, w, http.StatusNotImplemented, "not_configured", "Database not configured")
		return
	case err != nil:
		logging.FromContext(ctx).Error("update video", "id", r.PathValue("id"), "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "db_error", "Failed to update video")
		return
	}

	respondJSON(ctx, w, http.StatusOK, toVideoResponse(video))
}

func videoIDs(rows []models.Video) []string {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

// videoResponse is the job row as the SPA expects it.
type videoResponse struct {
	ID                    string     `json:"id"`
	UserEmail             string     `json:"user_email"`
	ChannelID             *string    `json:"channel_id"`
	Language              string     `json:"language"`
	Status                string     `json:"status"`
	Genre                 string     `json:"genre"`
	Description           string     `json:"description"`
	Structure             string     `json:"structure"`
	Screenplay            string     `json:"screenplay"`
	Tone                  string     `json:"tone"`
	Elements              string     `json:"elements"`
	CompositionRules      string     `json:"composition_rules"`
	Techniques            string     `json:"techniques"`
	LightingAndAtmosphere string     `json:"lighting_and_atmosphere"`
	CharacterCount        int        `json:"character_count"`
	VideoURL              string     `json:"video_yt_url"`
	ArchiveStatus         string     `json:"archive_status,omitempty"`
	ArchiveURL            string     `json:"archive_url,omitempty"`
	ArchiveSize           int64      `json:"archive_size,omitempty"`
	CreatedAt             *time.Time `json:"created_at,omitempty"`
	UpdatedAt             *time.Time `json:"updated_at,omitempty"`
}

func toVideoResponse(v models.Video) videoResponse {
	resp := videoResponse{
		ID:                    v.ID,
		UserEmail:             v.UserEmail,
		ChannelID:             v.ChannelID,
		Language:              v.Language,
		Status:                v.Status,
		Genre:                 v.Genre,
		Description:           v.Description,
		Structure:             v.Structure,
		Screenplay:            v.Screenplay,
		Tone:                  v.Tone,
		Elements:              v.Elements,
		CompositionRules:      v.CompositionRules,
		Techniques:            v.Techniques,
		LightingAndAtmosphere: v.LightingAndAtmosphere,
		CharacterCount:        v.CharacterCount,
		VideoURL:              v.VideoURL,
		ArchiveStatus:         v.ArchiveStatus,
		ArchiveURL:            v.ArchiveURL,
		ArchiveSize:           v.ArchiveSize,
	}
	if !v.CreatedAt.IsZero() {
		created := v.CreatedAt
		resp.CreatedAt = &created
	}
	if !v.UpdatedAt.IsZero() {
		updated := v.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}

func videoResponses(videos []models.Video) []videoResponse {
	out := make([]videoResponse, 0, len(videos))
	for _, v := range videos {
		out = append(out, toVideoResponse(v))
	}
	return out
}
