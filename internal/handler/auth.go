package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/sharearecipe/internal/auth"
	"github.com/dukerupert/sharearecipe/internal/middleware"
	"github.com/dukerupert/sharearecipe/internal/model"
	"github.com/dukerupert/sharearecipe/internal/social"
)

type AuthHandler struct {
	provider auth.Provider
	accounts *social.Accounts
	logger   *slog.Logger
}

func NewAuthHandler(provider auth.Provider, accounts *social.Accounts, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{provider: provider, accounts: accounts, logger: logger}
}

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type sessionResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
	Profile   model.UserProfile `json:"profile"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.provider.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to register")
		return
	}

	profile, err := h.accounts.CreateProfile(r.Context(), sess.Identity.UID, sess.Identity.Email, req.DisplayName)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to create profile")
		return
	}

	setSessionCookie(w, r, sess)
	writeJSON(w, http.StatusCreated, sessionResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, Profile: profile})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.provider.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to sign in")
		return
	}

	profile, err := h.accounts.FetchProfile(r.Context(), sess.Identity.UID)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to load profile")
		return
	}

	setSessionCookie(w, r, sess)
	writeJSON(w, http.StatusOK, sessionResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt, Profile: profile})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if ok && id.Token != "" {
		if err := h.provider.SignOut(r.Context(), id.Token); err != nil {
			h.logger.Error("failed to delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	w.WriteHeader(http.StatusNoContent)
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, sess auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}
