package social

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/sharearecipe/internal/docstore"
	"github.com/dukerupert/sharearecipe/internal/document"
	"github.com/dukerupert/sharearecipe/internal/livesync"
	"github.com/dukerupert/sharearecipe/internal/model"
	"github.com/dukerupert/sharearecipe/internal/reconcile"
)

// AllCategories matches every recipe category in Search.
const AllCategories = "All"

// RecipeInput is the author-editable part of a recipe.
type RecipeInput struct {
	Title       string  `json:"title"`
	Ingredients string  `json:"ingredients"`
	Steps       string  `json:"steps"`
	Base64Image *string `json:"base64Image"`
	Category    string  `json:"category"`
}

func (in RecipeInput) normalize() (RecipeInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return in, ErrMissingTitle
	}
	if !model.IsValidRecipeCategory(in.Category) {
		in.Category = "Other"
	}
	if in.Base64Image != nil && strings.TrimSpace(*in.Base64Image) == "" {
		in.Base64Image = nil
	}
	return in, nil
}

// RecipeFeed keeps every recipe, newest first, in sync with the store.
type RecipeFeed struct {
	store   docstore.Store
	recipes *livesync.Collection[model.Recipe]
	now     Clock
	logger  *slog.Logger

	// writeMu serializes read-modify-write cycles on vote and save sets.
	writeMu sync.Mutex
}

// NewRecipeFeed returns a feed over store. Call Listen to start syncing.
func NewRecipeFeed(store docstore.Store, logger *slog.Logger) *RecipeFeed {
	return &RecipeFeed{
		store:   store,
		recipes: livesync.New[model.Recipe](logger),
		now:     time.Now,
		logger:  logger,
	}
}

func (f *RecipeFeed) decode(s docstore.Snapshot) (model.Recipe, bool) {
	return document.DecodeRecipe(s, document.Clock(f.now))
}

// FeedQuery is the live query behind the feed.
func FeedQuery() docstore.Query {
	return docstore.Collection(document.RecipesCollection).Order("createdAt", true)
}

// Listen starts (or restarts) the live feed.
func (f *RecipeFeed) Listen(ctx context.Context) error {
	return f.recipes.Start(ctx, f.store, FeedQuery(), f.decode)
}

// Stop ends the live feed and closes every watcher.
func (f *RecipeFeed) Stop() {
	f.recipes.Stop()
}

// Live exposes the shared feed collection for streaming to clients.
func (f *RecipeFeed) Live() *livesync.Collection[model.Recipe] {
	return f.recipes
}

// Recipes returns the current feed, newest first.
func (f *RecipeFeed) Recipes() []model.Recipe {
	return f.recipes.Items()
}

// Watch streams the whole feed after every change.
func (f *RecipeFeed) Watch() (<-chan []model.Recipe, func()) {
	return f.recipes.Watch()
}

// Get reads one recipe straight from the store.
func (f *RecipeFeed) Get(ctx context.Context, id string) (model.Recipe, error) {
	snap, err := f.store.Get(ctx, document.RecipesCollection, id)
	if err != nil {
		return model.Recipe{}, fmt.Errorf("get recipe %s: %w", id, err)
	}
	r, ok := f.decode(snap)
	if !ok {
		return model.Recipe{}, fmt.Errorf("get recipe %s: %w", id, docstore.ErrNotFound)
	}
	return r, nil
}

// membership writes uid into a set field as a union or a removal.
func membership(uid string, in bool) any {
	if in {
		return docstore.ArrayUnion(uid)
	}
	return docstore.ArrayRemove(uid)
}

// apply replaces the local copy of r, if the feed holds one.
func (f *RecipeFeed) apply(r model.Recipe) {
	f.recipes.Mutate(func(items []model.Recipe) []model.Recipe {
		for i := range items {
			if items[i].ID == r.ID {
				items[i] = r
			}
		}
		return items
	})
}

// Add publishes a new recipe by author.
func (f *RecipeFeed) Add(ctx context.Context, author model.UserProfile, in RecipeInput) (model.Recipe, error) {
	in, err := in.normalize()
	if err != nil {
		return model.Recipe{}, err
	}
	authorName := author.DisplayName
	if authorName == "" {
		authorName = "Unknown"
	}
	r := model.Recipe{
		ID:                uuid.NewString(),
		Title:             in.Title,
		Ingredients:       in.Ingredients,
		Steps:             in.Steps,
		Base64Image:       in.Base64Image,
		CreatedAt:         utcNow(f.now),
		AuthorID:          author.UID,
		AuthorName:        authorName,
		AuthorImageBase64: author.ProfileImageBase64,
		SavedBy:           []string{},
		Upvoters:          []string{},
		Downvoters:        []string{},
		Category:          in.Category,
	}
	if err := f.store.Set(ctx, document.RecipesCollection, r.ID, document.EncodeRecipe(r)); err != nil {
		return model.Recipe{}, fmt.Errorf("add recipe: %w", err)
	}
	f.logger.Info("recipe added", "recipe_id", r.ID, "author_id", r.AuthorID)
	return r, nil
}

// Update replaces the content fields of a recipe. Only its author may.
func (f *RecipeFeed) Update(ctx context.Context, uid, id string, in RecipeInput) (model.Recipe, error) {
	in, err := in.normalize()
	if err != nil {
		return model.Recipe{}, err
	}
	r, err := f.Get(ctx, id)
	if err != nil {
		return model.Recipe{}, err
	}
	if r.AuthorID != uid {
		return model.Recipe{}, ErrNotAuthor
	}

	r.Title, r.Ingredients, r.Steps = in.Title, in.Ingredients, in.Steps
	r.Base64Image, r.Category = in.Base64Image, in.Category
	if err := f.store.Update(ctx, document.RecipesCollection, id, document.RecipeContentFields(r)); err != nil {
		return model.Recipe{}, fmt.Errorf("update recipe: %w", err)
	}
	f.apply(r)
	return r, nil
}

// Delete removes a recipe. Only its author may.
func (f *RecipeFeed) Delete(ctx context.Context, uid, id string) error {
	r, err := f.Get(ctx, id)
	if err != nil {
		return err
	}
	if r.AuthorID != uid {
		return ErrNotAuthor
	}
	if err := f.store.Delete(ctx, document.RecipesCollection, id); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	f.recipes.Mutate(func(items []model.Recipe) []model.Recipe {
		out := items[:0]
		for _, item := range items {
			if item.ID != id {
				out = append(out, item)
			}
		}
		return out
	})
	f.logger.Info("recipe deleted", "recipe_id", id)
	return nil
}

// ToggleSave adds uid to the recipe's savedBy set, or removes it if
// already present. The local copy changes before the write is confirmed.
func (f *RecipeFeed) ToggleSave(ctx context.Context, uid, id string) (model.Recipe, error) {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	// The local copy can lag behind a write from this process, so toggles
	// start from the stored document.
	r, err := f.Get(ctx, id)
	if err != nil {
		return model.Recipe{}, err
	}
	var saved bool
	r.SavedBy, saved = reconcile.ToggleMember(r.SavedBy, uid)
	f.apply(r)

	if err := f.store.Update(ctx, document.RecipesCollection, id, map[string]any{"savedBy": membership(uid, saved)}); err != nil {
		return r, fmt.Errorf("toggle save: %w", err)
	}
	return r, nil
}

// Vote applies an up or down vote by uid. Repeating the same vote clears
// it. Only uid's membership in each vote set is written, so votes by
// other users are never overwritten. On failure the local copy keeps the
// optimistic state until the feed resyncs.
func (f *RecipeFeed) Vote(ctx context.Context, uid, id string, upvote bool) (model.Recipe, error) {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	r, err := f.Get(ctx, id)
	if err != nil {
		return model.Recipe{}, err
	}
	r.Upvoters, r.Downvoters = reconcile.Vote(r.Upvoters, r.Downvoters, uid, upvote)
	f.apply(r)

	err = f.store.Update(ctx, document.RecipesCollection, id, map[string]any{
		"upvoters":   membership(uid, slices.Contains(r.Upvoters, uid)),
		"downvoters": membership(uid, slices.Contains(r.Downvoters, uid)),
	})
	if err != nil {
		return r, fmt.Errorf("vote: %w", err)
	}
	return r, nil
}

// Search filters the feed by category and by a case-insensitive match on
// title or ingredients. An empty category or AllCategories matches any.
func (f *RecipeFeed) Search(text, category string) []model.Recipe {
	text = strings.ToLower(strings.TrimSpace(text))
	out := []model.Recipe{}
	for _, r := range f.recipes.Items() {
		if category != "" && category != AllCategories && r.Category != category {
			continue
		}
		if text != "" &&
			!strings.Contains(strings.ToLower(r.Title), text) &&
			!strings.Contains(strings.ToLower(r.Ingredients), text) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Saved returns the recipes uid has saved, newest first.
func (f *RecipeFeed) Saved(uid string) []model.Recipe {
	out := []model.Recipe{}
	for _, r := range f.recipes.Items() {
		if r.IsSavedBy(uid) {
			out = append(out, r)
		}
	}
	return out
}

// ByAuthor returns the recipes uid published, newest first.
func (f *RecipeFeed) ByAuthor(uid string) []model.Recipe {
	out := []model.Recipe{}
	for _, r := range f.recipes.Items() {
		if r.AuthorID == uid {
			out = append(out, r)
		}
	}
	return out
}
