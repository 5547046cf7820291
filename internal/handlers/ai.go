package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/darkchannel/backend/internal/logging"
	"github.com/darkchannel/backend/internal/models"
	"github.com/darkchannel/backend/internal/workflow"
)

// AIHandler proxies synchronous screenplay generation to the automation
// pipeline. Unlike batch creation this endpoint waits for the result.
type AIHandler struct {
	Identity IdentityResolver
	Workflow WorkflowClient
	Limiter  RateLimiter
}

type aiScreenplayRequest struct {
	Language   string `json:"language"`
	Genre      string `json:"genre"`
	CharCount  int    `json:"charCount"`
	Images     int    `json:"images"`
	Style      string `json:"style"`
	Elements   string `json:"elements"`
	Rules      string `json:"rules"`
	Techniques string `json:"techniques"`
	Lighting   string `json:"lighting"`
}

func (req aiScreenplayRequest) validate() error {
	if !models.IsSupportedLanguage(req.Language) {
		return fmt.Errorf("unsupported language %q", req.Language)
	}
	if strings.TrimSpace(req.Genre) == "" {
		return errors.New("genre is required")
	}
	valid := false
	for _, c := range models.CharacterCounts {
		if req.CharCount == c {
			valid = true
		}
	}
	if !valid {
		return errors.New("charCount must be 2500 or 3500")
	}
	if req.Images != models.ImagesPerVideo {
		return fmt.Errorf("images must be %d", models.ImagesPerVideo)
	}
	return nil
}

// Screenplay handles POST /ai/screenplay. The Idempotency-Key header is
// forwarded to the automation as received; when absent a fresh job id is
// used in its place.
func (h AIHandler) Screenplay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !allowRequest(h.Limiter, r, "ai-screenplay") {
		respondError(ctx, w, http.StatusTooManyRequests, "rate_limited", "Too many requests")
		return
	}

	identity, ok := requireIdentity(w, r, h.Identity)
	if !ok {
		return
	}

	var req aiScreenplayRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "bad_request", "Invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	call := workflow.ScreenplayRequest{
		UserEmail:  identity.Email,
		JobID:      uuid.NewString(),
		Language:   req.Language,
		Genre:      req.Genre,
		CharCount:  req.CharCount,
		Images:     req.Images,
		Style:      req.Style,
		Elements:   req.Elements,
		Rules:      req.Rules,
		Techniques: req.Techniques,
		Lighting:   req.Lighting,
	}

	resp, err := h.Workflow.CallScreenplay(ctx, call, r.Header.Get("Idempotency-Key"))
	switch {
	case errors.Is(err, workflow.ErrNotConfigured):
		// Local fallback so frontend development works without a pipeline.
		respondJSON(ctx, w, http.StatusOK, map[string]any{
			"screenplay": fmt.Sprintf("Título: %s — %s\n\nIntrodução... (roteiro gerado localmente)", req.Genre, req.Language),
			"meta":       map[string]string{"provider": "local-fallback"},
		})
		return
	case err != nil:
		logging.FromContext(ctx).Error("screenplay generation call", "jobId", call.JobID, "error", err)
		respondError(ctx, w, http.StatusBadGateway, "n8n_error", "Screenplay generation failed")
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]any{
		"screenplay": resp.Screenplay,
		"meta":       resp.Meta,
	})
}
