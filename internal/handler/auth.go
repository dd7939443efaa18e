package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/snipvault/internal/apperror"
	"github.com/sakif/snipvault/internal/auth"
	"github.com/sakif/snipvault/internal/service"
)

// sessionMaxAge matches the JWT lifetime so the cookie and the token expire
// together.
const sessionMaxAge = int((24 * time.Hour).Seconds())

// AuthHandler manages login, registration, and the GitHub OAuth flow.
//
//   - HandleRegister / HandleLogin → email+password accounts
//   - HandleGitHubLogin / HandleGitHubCallback → OAuth code flow
//   - HandleLogout → clear the session cookie
//   - HandleMe → current user's profile
type AuthHandler struct {
	authSvc *service.AuthService
	github  *auth.GitHubProvider
	logger  *slog.Logger
}

// NewAuthHandler creates an AuthHandler. github may be nil when OAuth
// credentials aren't configured; the OAuth routes are then not registered.
func NewAuthHandler(authSvc *service.AuthService, github *auth.GitHubProvider, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authSvc: authSvc,
		github:  github,
		logger:  logger,
	}
}

// HandleRegister creates an email/password account and logs it in.
//
// HTTP: POST /auth/register
// BODY: {"login": "...", "email": "...", "password": "..."}
//
// Duplicate email → 409 CONFLICT.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Login    string `json:"login"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	result, err := h.authSvc.Register(r.Context(), body.Login, body.Email, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	auth.SetSessionCookie(w, result.Token, sessionMaxAge)
	writeData(w, http.StatusCreated, result.User)
}

// HandleLogin authenticates an email/password account.
//
// HTTP: POST /auth/login
// BODY: {"email": "...", "password": "..."}
//
// Unknown email and wrong password are indistinguishable: both 401.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	result, err := h.authSvc.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	auth.SetSessionCookie(w, result.Token, sessionMaxAge)
	writeData(w, http.StatusOK, result.User)
}

// HandleGitHubLogin redirects the browser to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// The random state lands in a short-lived HttpOnly cookie; the callback
// checks it to prove the flow started here and not on an attacker's page.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes — enough time to approve on GitHub
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth login flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	// CSRF check: the state GitHub echoes back must match our cookie.
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch or missing")
		writeError(w, apperror.Unauthorized("invalid OAuth state"))
		return
	}

	// The state is single-use.
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1})

	// User clicked "deny" on GitHub.
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, apperror.ValidationFailed("code", "missing OAuth code"))
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	result, err := h.authSvc.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("auth callback: login failed",
			slog.Int64("githubID", ghUser.ID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	auth.SetSessionCookie(w, result.Token, sessionMaxAge)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /auth/logout
//
// POST, not GET: logout changes state, and GET would be CSRF-able and
// prefetchable. Being stateless, the token itself stays valid until expiry —
// but without the cookie the browser can't send it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	writeData(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the authenticated user's profile.
//
// HTTP: GET /api/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	user, err := h.authSvc.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, http.StatusOK, user)
}
