package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/organ-c/storepulse/internal/httpx"
)

type Handler struct {
	JWT JWT
	// AdminAPIKey is the single operator credential. Empty disables the
	// token endpoint entirely.
	AdminAPIKey string
}

type tokenRequest struct {
	APIKey string `json:"api_key"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// Token exchanges the operator API key for a bearer token.
func (h Handler) Token(w http.ResponseWriter, r *http.Request) {
	if h.AdminAPIKey == "" {
		httpx.WriteError(w, http.StatusForbidden, "operator auth not configured")
		return
	}

	var req tokenRequest
	if err := httpx.ReadJSON(r, &req, 4096); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	key := strings.TrimSpace(req.APIKey)
	if subtle.ConstantTimeCompare([]byte(key), []byte(h.AdminAPIKey)) != 1 {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid api key")
		return
	}

	token, expiresAt, err := h.JWT.Sign(Claims{Role: "admin"})
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}
