package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/sharearecipe/internal/auth"
	"github.com/dukerupert/sharearecipe/internal/model"
	"github.com/dukerupert/sharearecipe/internal/social"
	"github.com/dukerupert/sharearecipe/internal/websocket"
)

type ProfileHandler struct {
	accounts *social.Accounts
	feed     *social.RecipeFeed
	hub      *websocket.Hub
	now      func() time.Time
	logger   *slog.Logger
}

func NewProfileHandler(accounts *social.Accounts, feed *social.RecipeFeed, hub *websocket.Hub, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{accounts: accounts, feed: feed, hub: hub, now: time.Now, logger: logger}
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	p, err := h.accounts.FetchProfile(r.Context(), uid)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, newProfileView(p, uid))
}

func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var in social.ProfileInput
	if !decodeJSON(w, r, &in) {
		return
	}
	img, err := normalizeImage(in.ProfileImageBase64)
	if err != nil {
		writeImageError(w, err)
		return
	}
	in.ProfileImageBase64 = img

	uid := auth.UserID(r.Context())
	p, err := h.accounts.UpdateProfile(r.Context(), uid, in)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to update profile")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("user", "updated", uid, nil))
	writeJSON(w, http.StatusOK, newProfileView(p, uid))
}

func (h *ProfileHandler) Search(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.accounts.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to search users")
		return
	}
	writeJSON(w, http.StatusOK, newProfileViews(profiles, auth.UserID(r.Context())))
}

type userPageResponse struct {
	Profile profileView  `json:"profile"`
	Recipes []recipeView `json:"recipes"`
}

// Get returns a user's profile along with the recipes they posted.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	target := r.PathValue("uid")
	p, err := h.accounts.FetchProfile(r.Context(), target)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to load profile")
		return
	}
	uid := auth.UserID(r.Context())
	writeJSON(w, http.StatusOK, userPageResponse{
		Profile: newProfileView(p, uid),
		Recipes: newRecipeViews(h.feed.ByAuthor(target), uid, h.now()),
	})
}

type followResponse struct {
	Following bool        `json:"following"`
	Profile   profileView `json:"profile"`
}

// ToggleFollow follows or unfollows {uid} and returns the caller's
// refreshed profile.
func (h *ProfileHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	target := r.PathValue("uid")
	if target == uid {
		writeError(w, http.StatusBadRequest, "cannot follow yourself")
		return
	}

	self, err := h.accounts.ToggleFollow(r.Context(), uid, target)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to update follow")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("user", "followed", target, map[string]any{"by": uid}))
	writeJSON(w, http.StatusOK, followResponse{
		Following: self.IsFollowing(target),
		Profile:   newProfileView(self, uid),
	})
}

func (h *ProfileHandler) Followers(w http.ResponseWriter, r *http.Request) {
	h.listRelated(w, r, h.accounts.Followers)
}

func (h *ProfileHandler) Following(w http.ResponseWriter, r *http.Request) {
	h.listRelated(w, r, h.accounts.Following)
}

func (h *ProfileHandler) listRelated(w http.ResponseWriter, r *http.Request, fetch func(context.Context, string) ([]model.UserProfile, error)) {
	profiles, err := fetch(r.Context(), r.PathValue("uid"))
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, newProfileViews(profiles, auth.UserID(r.Context())))
}
