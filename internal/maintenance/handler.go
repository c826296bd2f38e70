package maintenance

import (
	"encoding/json"
	"net/http"
	"strings"

	"postboard/internal/auth"
	"postboard/internal/observability"
)

// CleanupHandler prunes expired refresh tokens from the Postgres registry.
// It is meant to be hit by a scheduler and is guarded by a bearer cron secret;
// without a configured secret the endpoint pretends not to exist.
type CleanupHandler struct {
	repo      *auth.Repository
	logger    *observability.Logger
	secret    string
	batchSize int
}

func NewCleanupHandler(repo *auth.Repository, logger *observability.Logger, secret string, batchSize int) *CleanupHandler {
	return &CleanupHandler{
		repo:      repo,
		logger:    logger,
		secret:    strings.TrimSpace(secret),
		batchSize: batchSize,
	}
}

func (h *CleanupHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
		return
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) != h.secret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
		return
	}

	deleted, err := h.repo.PruneExpiredTokens(r.Context(), h.batchSize)
	if err != nil {
		h.logger.Error("token_cleanup_failed", map[string]any{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "cleanup failed"})
		return
	}

	h.logger.Info("token_cleanup_completed", map[string]any{"deleted_refresh_tokens": deleted})

	writeJSON(w, http.StatusOK, map[string]any{
		"status":                 "ok",
		"deleted_refresh_tokens": deleted,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
