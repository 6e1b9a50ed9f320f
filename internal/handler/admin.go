package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/waymark-io/waymark/internal/model"
	"github.com/waymark-io/waymark/internal/service"
	"github.com/waymark-io/waymark/internal/store"
)

// AdminHandler serves key issuance and revocation. These routes are either
// behind a reverse proxy's basic auth or the built-in bearer gate; see
// middleware.RequireAdmin.
type AdminHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAdminHandler(auth *service.AuthService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{auth: auth, logger: logger}
}

// GenerateKey issues a new API key. The raw key appears in this response
// and nowhere else; only its hash is stored.
func (h *AdminHandler) GenerateKey(w http.ResponseWriter, r *http.Request) {
	userName := queryString(r, "user_name")
	if userName == "" {
		writeError(w, http.StatusBadRequest, "user_name is required")
		return
	}
	description := queryString(r, "description")

	rawKey, key, err := h.auth.GenerateKey(r.Context(), userName, description, nil)
	if err != nil {
		h.logger.Error("failed to generate api key", "user", userName, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, model.GeneratedKey{
		APIKey:    rawKey,
		User:      key.UserName,
		CreatedAt: key.CreatedAt,
		Message:   "API key generated successfully",
	})
}

// RevokeKey soft-deletes a key by its raw value. Revoking an
// already-revoked key succeeds; a key that never existed yields 404.
func (h *AdminHandler) RevokeKey(w http.ResponseWriter, r *http.Request) {
	rawKey := queryString(r, "api_key")
	if rawKey == "" {
		writeError(w, http.StatusBadRequest, "api_key is required")
		return
	}

	if err := h.auth.RevokeKey(r.Context(), rawKey); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "API key not found")
			return
		}
		h.logger.Error("failed to revoke api key", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{
		Message: "API key revoked successfully",
	})
}
