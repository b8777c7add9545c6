package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tugochat/tugochat/internal/model"
	"github.com/tugochat/tugochat/internal/twitch"
)

// AuthHandler exposes the Twitch OAuth flow over HTTP
type AuthHandler struct {
	auth   *twitch.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an auth handler
func NewAuthHandler(auth *twitch.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger,
	}
}

// Login starts an OAuth flow and returns the authorization URL
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.auth.LoginURL(r.Context())
	if err != nil {
		h.logger.Error("building login url", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "could not start login")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"auth_url": authURL})
}

// Callback completes the OAuth flow, returning the authenticated player's
// profile and access token to the frontend
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		writeError(w, http.StatusBadRequest, "missing code or state")
		return
	}

	player, err := h.auth.Exchange(r.Context(), code, state)
	if err != nil {
		if errors.Is(err, model.ErrInvalidStateToken) {
			writeError(w, http.StatusBadRequest, "invalid state token")
			return
		}
		h.logger.Warn("oauth exchange failed", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "authentication failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":         player,
		"access_token": player.AccessToken,
	})
}

// Validate checks an access token against Twitch
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("access_token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "missing access_token")
		return
	}

	result, err := h.auth.Validate(r.Context(), token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid access token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"data":  result,
	})
}
