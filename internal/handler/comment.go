package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/sharearecipe/internal/auth"
	"github.com/dukerupert/sharearecipe/internal/social"
	"github.com/dukerupert/sharearecipe/internal/websocket"
)

type CommentHandler struct {
	comments *social.Comments
	accounts *social.Accounts
	hub      *websocket.Hub
	now      func() time.Time
	logger   *slog.Logger
}

func NewCommentHandler(comments *social.Comments, accounts *social.Accounts, hub *websocket.Hub, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, accounts: accounts, hub: hub, now: time.Now, logger: logger}
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.List(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to list comments")
		return
	}
	writeJSON(w, http.StatusOK, newCommentViews(comments, h.now()))
}

type commentRequest struct {
	Text string `json:"text"`
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	author, err := h.accounts.FetchProfile(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to load author")
		return
	}

	recipeID := r.PathValue("id")
	comment, err := h.comments.Add(r.Context(), author, recipeID, req.Text)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to add comment")
		return
	}

	h.hub.Broadcast(websocket.NewMessage("comment", "created", recipeID, map[string]any{"comment_id": comment.ID}))
	writeJSON(w, http.StatusCreated, commentView{RecipeComment: comment, TimeAgo: timeAgo(comment.CreatedAt, h.now())})
}
