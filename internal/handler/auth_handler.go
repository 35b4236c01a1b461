package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"

	"dahabiya-site/internal/auth"
	"dahabiya-site/internal/logger"
	"dahabiya-site/internal/middleware"
	"dahabiya-site/internal/session"

	"golang.org/x/oauth2"
)

// Identifier runs the OIDC authorization code flow.
type Identifier interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string) (*auth.Claims, error)
}

// AuthHandler holds the dependencies for the authentication handlers.
type AuthHandler struct {
	auth    Identifier
	session session.Manager
	log     logger.Logger
}

// NewAuthHandler creates a new AuthHandler. A nil Identifier disables login.
func NewAuthHandler(a Identifier, sm session.Manager, log logger.Logger) *AuthHandler {
	return &AuthHandler{auth: a, session: sm, log: log}
}

// handleLogin redirects the user to the OIDC provider to log in.
// It uses a random 'state' string for CSRF protection.
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if h.auth == nil {
		return &middleware.AppError{Error: errors.New("oidc not configured"), Message: "Login is not available", Code: http.StatusServiceUnavailable}
	}
	state, err := randString(16)
	if err != nil {
		return middleware.Internal(err, "Failed to start login")
	}
	h.session.Put(r.Context(), session.KeyOAuthState, state)
	if next := r.URL.Query().Get("next"); isLocalPath(next) {
		h.session.Put(r.Context(), session.KeyReturnTo, next)
	}
	http.Redirect(w, r, h.auth.AuthCodeURL(state), http.StatusFound)
	return nil
}

// handleCallback is the redirect URL for the OIDC provider.
// It handles the code exchange and stores the verified identity in the session.
func (h *AuthHandler) handleCallback(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if h.auth == nil {
		return &middleware.AppError{Error: errors.New("oidc not configured"), Message: "Login is not available", Code: http.StatusServiceUnavailable}
	}
	state := h.session.PopString(r.Context(), session.KeyOAuthState)
	if state == "" || r.URL.Query().Get("state") != state {
		return &middleware.AppError{Error: errors.New("state did not match"), Message: "Invalid login state", Code: http.StatusBadRequest}
	}

	claims, err := h.auth.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		return &middleware.AppError{Error: err, Message: "Login failed", Code: http.StatusUnauthorized}
	}
	if claims.Email == "" || !claims.EmailVerified {
		return &middleware.AppError{Error: errors.New("no verified email in id token"), Message: "A verified email is required", Code: http.StatusForbidden}
	}

	// Renew the session token to prevent session fixation.
	if err := h.session.RenewToken(r.Context()); err != nil {
		return middleware.Internal(err, "Failed to renew session")
	}
	h.session.Put(r.Context(), session.KeyUserSubject, claims.Subject)
	h.session.Put(r.Context(), session.KeyUserEmail, strings.ToLower(claims.Email))
	h.session.Put(r.Context(), session.KeyUserName, claims.Name)
	h.log.With(map[string]interface{}{"email": claims.Email}).Info("user logged in")

	target := h.session.PopString(r.Context(), session.KeyReturnTo)
	if !isLocalPath(target) {
		target = "/admin"
	}
	http.Redirect(w, r, target, http.StatusFound)
	return nil
}

// handleLogout destroys the session and returns to the home page.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	if err := h.session.Destroy(r.Context()); err != nil {
		return middleware.Internal(err, "Failed to log out")
	}
	http.Redirect(w, r, "/", http.StatusFound)
	return nil
}

// isLocalPath accepts same-site absolute paths only.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}

// randString is a helper function to generate a random string for the 'state' parameter.
func randString(nByte int) (string, error) {
	b := make([]byte, nByte)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
