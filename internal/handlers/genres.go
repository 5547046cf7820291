package handlers

import (
	"errors"
	"net/http"

	"github.com/darkchannel/backend/internal/logging"
	"github.com/darkchannel/backend/internal/models"
	"github.com/darkchannel/backend/internal/repositories"
)

// GenreHandler serves the per-language genre reference data used to pre-fill
// new jobs. The endpoint is public.
type GenreHandler struct {
	Genres GenreStore
}

type genreResponse struct {
	Genre                 string `json:"genre"`
	Description           string `json:"description"`
	Structure             string `json:"structure"`
	Tone                  string `json:"tone"`
	Elements              string `json:"elements"`
	CompositionRules      string `json:"composition_rules"`
	Techniques            string `json:"techniques"`
	LightingAndAtmosphere string `json:"lighting_and_atmosphere"`
}

// List handles GET /genres. Unknown languages fall back to pt-BR.
func (h GenreHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lang := r.URL.Query().Get("lang")
	if !models.IsSupportedLanguage(lang) {
		lang = models.LanguagePTBR
	}

	genres, err := h.Genres.ListByLanguage(ctx, lang)
	if err != nil && !errors.Is(err, repositories.ErrNotConfigured) {
		logging.FromContext(ctx).Error("list genres", "lang", lang, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "db_error", "Failed to list genres")
		return
	}

	out := make([]genreResponse, 0, len(genres))
	for _, g := range genres {
		out = append(out, genreResponse{
			Genre:                 g.Name,
			Description:           g.Description,
			Structure:             g.Structure,
			Tone:                  g.Tone,
			Elements:              g.Elements,
			CompositionRules:      g.CompositionRules,
			Techniques:            g.Techniques,
			LightingAndAtmosphere: g.LightingAndAtmosphere,
		})
	}
	respondJSON(ctx, w, http.StatusOK, out)
}
