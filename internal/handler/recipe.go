package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/sharearecipe/internal/auth"
	"github.com/dukerupert/sharearecipe/internal/social"
	"github.com/dukerupert/sharearecipe/internal/websocket"
)

type RecipeHandler struct {
	feed     *social.RecipeFeed
	accounts *social.Accounts
	hub      *websocket.Hub
	now      func() time.Time
	logger   *slog.Logger
}

func NewRecipeHandler(feed *social.RecipeFeed, accounts *social.Accounts, hub *websocket.Hub, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{feed: feed, accounts: accounts, hub: hub, now: time.Now, logger: logger}
}

// List returns the feed filtered by the q and category query parameters.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := q.Get("category")
	if category == "" {
		category = social.AllCategories
	}
	recipes := h.feed.Search(q.Get("q"), category)
	writeJSON(w, http.StatusOK, newRecipeViews(recipes, auth.UserID(r.Context()), h.now()))
}

func (h *RecipeHandler) Saved(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	writeJSON(w, http.StatusOK, newRecipeViews(h.feed.Saved(uid), uid, h.now()))
}

func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.feed.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to get recipe")
		return
	}
	writeJSON(w, http.StatusOK, newRecipeView(recipe, auth.UserID(r.Context()), h.now()))
}

// readInput decodes a recipe body and normalizes its image.
func (h *RecipeHandler) readInput(w http.ResponseWriter, r *http.Request) (social.RecipeInput, bool) {
	var in social.RecipeInput
	if !decodeJSON(w, r, &in) {
		return in, false
	}
	img, err := normalizeImage(in.Base64Image)
	if err != nil {
		writeImageError(w, err)
		return in, false
	}
	in.Base64Image = img
	return in, true
}

func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readInput(w, r)
	if !ok {
		return
	}

	uid := auth.UserID(r.Context())
	author, err := h.accounts.FetchProfile(r.Context(), uid)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to load author")
		return
	}

	recipe, err := h.feed.Add(r.Context(), author, in)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to create recipe")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("recipe", "created", recipe.ID, nil))
	writeJSON(w, http.StatusCreated, newRecipeView(recipe, uid, h.now()))
}

func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, ok := h.readInput(w, r)
	if !ok {
		return
	}

	uid := auth.UserID(r.Context())
	recipe, err := h.feed.Update(r.Context(), uid, r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to update recipe")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("recipe", "updated", recipe.ID, nil))
	writeJSON(w, http.StatusOK, newRecipeView(recipe, uid, h.now()))
}

func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.feed.Delete(r.Context(), auth.UserID(r.Context()), id); err != nil {
		writeServiceError(w, h.logger, err, "failed to delete recipe")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("recipe", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *RecipeHandler) ToggleSave(w http.ResponseWriter, r *http.Request) {
	uid := auth.UserID(r.Context())
	recipe, err := h.feed.ToggleSave(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to save recipe")
		return
	}
	writeJSON(w, http.StatusOK, newRecipeView(recipe, uid, h.now()))
}

type voteRequest struct {
	Upvote *bool `json:"upvote"`
}

func (h *RecipeHandler) Vote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Upvote == nil {
		writeError(w, http.StatusBadRequest, "upvote is required")
		return
	}

	uid := auth.UserID(r.Context())
	recipe, err := h.feed.Vote(r.Context(), uid, r.PathValue("id"), *req.Upvote)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to vote")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("recipe", "voted", recipe.ID, map[string]any{"score": recipe.Score()}))
	writeJSON(w, http.StatusOK, newRecipeView(recipe, uid, h.now()))
}
