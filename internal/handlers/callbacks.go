package handlers

import (
	"net/http"

	"github.com/darkchannel/backend/internal/logging"
	"github.com/darkchannel/backend/internal/repositories"
)

// CallbackHandler receives the asynchronous results posted back by the
// automation pipeline once a screenplay or render finishes.
type CallbackHandler struct {
	Secret   SecretChecker
	Videos   VideoStore
	Archiver RenderArchiver
}

// callbackID accepts the historical id field variants still used by deployed
// workflows. JSON field matching is case-insensitive, so videoId also covers
// the VideoId spelling.
type callbackID struct {
	VideoID string `json:"videoId"`
	JobID   string `json:"jobId"`
	ID      string `json:"id"`
}

func (c callbackID) resolve() string {
	switch {
	case c.VideoID != "":
		return c.VideoID
	case c.JobID != "":
		return c.JobID
	default:
		return c.ID
	}
}

func (h CallbackHandler) verifySecret(r *http.Request) bool {
	if h.Secret == nil {
		return true
	}
	provided := r.Header.Get("X-N8N-Signature")
	if provided == "" {
		provided = r.URL.Query().Get("secret")
	}
	return h.Secret.Verify(provided)
}

type screenplayCallbackRequest struct {
	callbackID
	Language         *string `json:"language"`
	Screenplay       *string `json:"screenplay"`
	Description      *string `json:"description"`
	Structure        *string `json:"structure"`
	Tone             *string `json:"tone"`
	Elements         *string `json:"elements"`
	CompositionRules *string `json:"compositionRules"`
	Techniques       *string `json:"techniques"`
	Lighting         *string `json:"lighting"`
}

// Screenplay handles POST /n8n/screenplay/callback. The update matches zero
// rows for an unknown id and still succeeds; the automation retries on 5xx
// only, so an id this system never issued must not wedge the workflow.
func (h CallbackHandler) Screenplay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.verifySecret(r) {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized", "Invalid secret")
		return
	}

	var req screenplayCallbackRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	videoID := req.resolve()
	if videoID == "" {
		respondError(ctx, w, http.StatusBadRequest, "bad_request", "videoId required")
		return
	}

	result := repositories.ScreenplayResult{
		Screenplay:            req.Screenplay,
		Description:           req.Description,
		Structure:             req.Structure,
		Tone:                  req.Tone,
		Elements:              req.Elements,
		CompositionRules:      req.CompositionRules,
		Techniques:            req.Techniques,
		LightingAndAtmosphere: req.Lighting,
	}
	if req.Language != nil && *req.Language != "" {
		result.Language = req.Language
	}

	if err := h.Videos.ApplyScreenplayResult(ctx, videoID, result); err != nil {
		logging.FromContext(ctx).Error("apply screenplay callback", "videoId", videoID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "db_error", "Failed to apply callback")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]bool{"ok": true})
}

type renderCallbackRequest struct {
	callbackID
	Status   *string `json:"status"`
	VideoURL *string `json:"videoUrl"`
}

// Render handles POST /n8n/video/callback. Status is applied verbatim, with
// no transition validation, because the workflow owns the job past Waiting.
func (h CallbackHandler) Render(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !h.verifySecret(r) {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized", "Invalid secret")
		return
	}

	var req renderCallbackRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}

	videoID := req.resolve()
	if videoID == "" {
		respondError(ctx, w, http.StatusBadRequest, "bad_request", "videoId required")
		return
	}

	result := repositories.RenderResult{VideoURL: req.VideoURL}
	if req.Status != nil && *req.Status != "" {
		result.Status = req.Status
	}

	if err := h.Videos.ApplyRenderResult(ctx, videoID, result); err != nil {
		logger.Error("apply render callback", "videoId", videoID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "db_error", "Failed to apply callback")
		return
	}

	if h.Archiver != nil && req.VideoURL != nil && *req.VideoURL != "" {
		if err := h.Archiver.Enqueue(ctx, videoID, *req.VideoURL); err != nil {
			logger.Warn("archive enqueue failed", "videoId", videoID, "error", err)
		}
	}

	respondJSON(ctx, w, http.StatusOK, map[string]bool{"ok": true})
}
