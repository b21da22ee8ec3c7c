package social

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/sharearecipe/internal/docstore"
	"github.com/dukerupert/sharearecipe/internal/document"
	"github.com/dukerupert/sharearecipe/internal/livesync"
	"github.com/dukerupert/sharearecipe/internal/model"
)

// Comments manages the comment thread embedded in each recipe document.
type Comments struct {
	store  docstore.Store
	now    Clock
	logger *slog.Logger
}

// NewComments returns a Comments service backed by store.
func NewComments(store docstore.Store, logger *slog.Logger) *Comments {
	return &Comments{store: store, now: time.Now, logger: logger}
}

func (c *Comments) expand(s docstore.Snapshot) []model.RecipeComment {
	return document.DecodeComments(s, document.Clock(c.now))
}

// List returns a recipe's comments, oldest first.
func (c *Comments) List(ctx context.Context, recipeID string) ([]model.RecipeComment, error) {
	snap, err := c.store.Get(ctx, document.RecipesCollection, recipeID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return c.expand(snap), nil
}

// Listen returns a live, started collection of one recipe's comments. The
// caller must Stop it.
func (c *Comments) Listen(ctx context.Context, recipeID string) (*livesync.Collection[model.RecipeComment], error) {
	coll := livesync.New[model.RecipeComment](c.logger)
	q := docstore.Doc(document.RecipesCollection, recipeID)
	if err := coll.StartExpand(ctx, c.store, q, c.expand); err != nil {
		return nil, fmt.Errorf("listen comments: %w", err)
	}
	return coll, nil
}

// Add appends a comment by author. The text is trimmed and cut to
// model.MaxCommentLength characters.
func (c *Comments) Add(ctx context.Context, author model.UserProfile, recipeID, text string) (model.RecipeComment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.RecipeComment{}, ErrEmptyComment
	}
	if r := []rune(text); len(r) > model.MaxCommentLength {
		text = string(r[:model.MaxCommentLength])
	}

	userName := author.DisplayName
	if userName == "" {
		userName = "Unknown"
	}
	comment := model.RecipeComment{
		ID:              uuid.NewString(),
		UserID:          author.UID,
		UserName:        userName,
		Text:            text,
		CreatedAt:       utcNow(c.now),
		UserImageBase64: author.ProfileImageBase64,
	}
	err := c.store.Update(ctx, document.RecipesCollection, recipeID, map[string]any{
		"comments": docstore.ArrayUnion(document.EncodeComment(comment)),
	})
	if err != nil {
		return model.RecipeComment{}, fmt.Errorf("add comment: %w", err)
	}
	return comment, nil
}
