package handler

import (
	"net/http"

	"documite/internal/config"
)

// Version is set at build time with -ldflags "-X documite/internal/handler.Version=...".
var Version = "0.1.0"

func statusHandler(cfg *config.Config) http.HandlerFunc {
	env := ""
	if cfg != nil {
		env = cfg.Environment
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":     "documite",
			"version":     Version,
			"environment": env,
			"status":      "operational",
		})
	}
}
