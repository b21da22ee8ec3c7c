package social

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/sharearecipe/internal/docstore"
	"github.com/dukerupert/sharearecipe/internal/document"
	"github.com/dukerupert/sharearecipe/internal/grocery"
	"github.com/dukerupert/sharearecipe/internal/livesync"
	"github.com/dukerupert/sharearecipe/internal/model"
)

const defaultListTitle = "Grocery List"

// Groceries manages per-user grocery lists. Every item mutation rewrites
// the list's whole items array.
type Groceries struct {
	store  docstore.Store
	now    Clock
	logger *slog.Logger
}

// NewGroceries returns a Groceries service backed by store.
func NewGroceries(store docstore.Store, logger *slog.Logger) *Groceries {
	return &Groceries{store: store, now: time.Now, logger: logger}
}

func (g *Groceries) decode(s docstore.Snapshot) (model.GroceryList, bool) {
	return document.DecodeGroceryList(s, document.Clock(g.now))
}

// ListsQuery selects uid's lists, oldest first.
func ListsQuery(uid string) docstore.Query {
	return docstore.Collection(document.GroceryCollection).
		WhereEqual("userID", uid).
		Order("createdAt", false)
}

// Lists returns uid's grocery lists, oldest first.
func (g *Groceries) Lists(ctx context.Context, uid string) ([]model.GroceryList, error) {
	snaps, err := g.store.Query(ctx, ListsQuery(uid))
	if err != nil {
		return nil, fmt.Errorf("list grocery lists: %w", err)
	}
	out := []model.GroceryList{}
	for _, s := range snaps {
		if l, ok := g.decode(s); ok {
			out = append(out, l)
		}
	}
	return out, nil
}

// Listen returns a live, started collection of uid's lists. The caller
// must Stop it.
func (g *Groceries) Listen(ctx context.Context, uid string) (*livesync.Collection[model.GroceryList], error) {
	coll := livesync.New[model.GroceryList](g.logger)
	if err := coll.Start(ctx, g.store, ListsQuery(uid), g.decode); err != nil {
		return nil, fmt.Errorf("listen grocery lists: %w", err)
	}
	return coll, nil
}

// CreateFromRecipe turns a recipe's ingredient text into a new list.
func (g *Groceries) CreateFromRecipe(ctx context.Context, uid string, r model.Recipe) (model.GroceryList, error) {
	return g.Create(ctx, uid, r.Title, r.Ingredients)
}

// Create parses text into categorized items and saves them as a new list.
func (g *Groceries) Create(ctx context.Context, uid, title, text string) (model.GroceryList, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultListTitle
	}
	l := model.GroceryList{
		ID:        uuid.NewString(),
		UserID:    uid,
		Title:     title,
		Items:     grocery.BuildItems(text),
		CreatedAt: utcNow(g.now),
	}
	if err := g.store.Set(ctx, document.GroceryCollection, l.ID, document.EncodeGroceryList(l)); err != nil {
		return model.GroceryList{}, fmt.Errorf("create grocery list: %w", err)
	}
	g.logger.Info("grocery list created", "list_id", l.ID, "items", len(l.Items))
	return l, nil
}

// Get returns uid's list. Lists owned by someone else yield ErrNotOwner.
func (g *Groceries) Get(ctx context.Context, uid, listID string) (model.GroceryList, error) {
	snap, err := g.store.Get(ctx, document.GroceryCollection, listID)
	if err != nil {
		return model.GroceryList{}, fmt.Errorf("get grocery list %s: %w", listID, err)
	}
	l, ok := g.decode(snap)
	if !ok {
		return model.GroceryList{}, fmt.Errorf("get grocery list %s: %w", listID, docstore.ErrNotFound)
	}
	if l.UserID != uid {
		return model.GroceryList{}, ErrNotOwner
	}
	return l, nil
}

func (g *Groceries) mutate(ctx context.Context, uid, listID string, fn func(*model.GroceryList) error) (model.GroceryList, error) {
	l, err := g.Get(ctx, uid, listID)
	if err != nil {
		return model.GroceryList{}, err
	}
	if err := fn(&l); err != nil {
		return model.GroceryList{}, err
	}
	err = g.store.Update(ctx, document.GroceryCollection, listID, map[string]any{
		"items": document.EncodeGroceryItems(l.Items),
	})
	if err != nil {
		return model.GroceryList{}, fmt.Errorf("update grocery items: %w", err)
	}
	return l, nil
}

func itemNotFound(itemID string) error {
	return fmt.Errorf("grocery item %s: %w", itemID, docstore.ErrNotFound)
}

// ToggleItem flips the checked state of one item.
func (g *Groceries) ToggleItem(ctx context.Context, uid, listID, itemID string) (model.GroceryList, error) {
	return g.mutate(ctx, uid, listID, func(l *model.GroceryList) error {
		i := l.ItemIndex(itemID)
		if i < 0 {
			return itemNotFound(itemID)
		}
		l.Items[i].IsChecked = !l.Items[i].IsChecked
		return nil
	})
}

// RemoveItem removes one item by ID.
func (g *Groceries) RemoveItem(ctx context.Context, uid, listID, itemID string) (model.GroceryList, error) {
	return g.mutate(ctx, uid, listID, func(l *model.GroceryList) error {
		i := l.ItemIndex(itemID)
		if i < 0 {
			return itemNotFound(itemID)
		}
		l.Items = append(l.Items[:i], l.Items[i+1:]...)
		return nil
	})
}

// RemoveItemsAt removes the items at the given positions. Out of range and
// repeated offsets are ignored.
func (g *Groceries) RemoveItemsAt(ctx context.Context, uid, listID string, offsets []int) (model.GroceryList, error) {
	return g.mutate(ctx, uid, listID, func(l *model.GroceryList) error {
		drop := make(map[int]bool, len(offsets))
		for _, o := range offsets {
			drop[o] = true
		}
		kept := make([]model.GroceryItem, 0, len(l.Items))
		for i, item := range l.Items {
			if !drop[i] {
				kept = append(kept, item)
			}
		}
		l.Items = kept
		return nil
	})
}

// ClearChecked removes every checked item from the list.
func (g *Groceries) ClearChecked(ctx context.Context, uid, listID string) (model.GroceryList, error) {
	return g.mutate(ctx, uid, listID, func(l *model.GroceryList) error {
		kept := make([]model.GroceryItem, 0, len(l.Items))
		for _, item := range l.Items {
			if !item.IsChecked {
				kept = append(kept, item)
			}
		}
		l.Items = kept
		return nil
	})
}

// DeleteList deletes a list owned by uid.
func (g *Groceries) DeleteList(ctx context.Context, uid, listID string) error {
	if _, err := g.Get(ctx, uid, listID); err != nil {
		return err
	}
	if err := g.store.Delete(ctx, document.GroceryCollection, listID); err != nil {
		return fmt.Errorf("delete grocery list: %w", err)
	}
	g.logger.Info("grocery list deleted", "list_id", listID)
	return nil
}

// ByCategory groups a list's items by grocery category in the
// classifier's priority order, with Other last.
func ByCategory(l model.GroceryList) []CategoryGroup {
	index := map[string]int{}
	for i, c := range grocery.Categories() {
		index[c] = i
	}
	groups := map[string][]model.GroceryItem{}
	for _, item := range l.Items {
		groups[item.Category] = append(groups[item.Category], item)
	}
	out := make([]CategoryGroup, 0, len(groups))
	for name, items := range groups {
		out = append(out, CategoryGroup{Category: name, Items: items})
	}
	sort.Slice(out, func(i, j int) bool {
		ri, iok := index[out[i].Category]
		rj, jok := index[out[j].Category]
		if iok != jok {
			return iok
		}
		if ri != rj {
			return ri < rj
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// CategoryGroup is one section of a categorized list.
type CategoryGroup struct {
	Category string              `json:"category"`
	Items    []model.GroceryItem `json:"items"`
}
