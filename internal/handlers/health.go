package handlers

import "net/http"

// HealthHandler responds with service health information.
type HealthHandler struct {
	Version string
}

// Handle implements GET /health.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	version := h.Version
	if version == "" {
		version = "dev"
	}

	respondJSON(r.Context(), w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version,
	})
}
