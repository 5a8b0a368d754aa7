package handler

import (
	"encoding/json"
	"net/http"

	"github.com/weedscan-auth/internal/application/linking"
	"github.com/weedscan-auth/internal/domain"
)

// AuthHandler exposes the account-linking and session endpoints.
type AuthHandler struct {
	svc linking.Service
}

func NewAuthHandler(svc linking.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// InitLinkAccount handles POST /auth/init-link-account.
func (h *AuthHandler) InitLinkAccount(w http.ResponseWriter, r *http.Request) {
	var req linking.InitLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidRequest)
		return
	}
	writeResult(w, h.svc.CreatePendingVerification(r.Context(), req))
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req linking.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.ErrInvalidRequest)
		return
	}
	writeResult(w, h.svc.Signin(r.Context(), req))
}

// Anonymous handles GET /auth/anonymous.
func (h *AuthHandler) Anonymous(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.svc.SignInAnonymously(r.Context()))
}

// Validate handles GET /auth/validate. Header parsing is the service's
// responsibility so its fine-grained error taxonomy applies.
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.svc.ValidateRequest(r.Context(), r.Header.Get("Authorization")))
}

// RefreshAuth handles GET /auth/refresh-auth?refreshToken=.
func (h *AuthHandler) RefreshAuth(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.svc.RefreshAuthToken(r.Context(), r.URL.Query().Get("refreshToken")))
}
