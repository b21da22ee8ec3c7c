package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/sharearecipe/internal/auth"
	"github.com/dukerupert/sharearecipe/internal/grocery"
	"github.com/dukerupert/sharearecipe/internal/model"
	"github.com/dukerupert/sharearecipe/internal/social"
	"github.com/dukerupert/sharearecipe/internal/websocket"
)

type GroceryHandler struct {
	groceries *social.Groceries
	feed      *social.RecipeFeed
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewGroceryHandler(groceries *social.Groceries, feed *social.RecipeFeed, hub *websocket.Hub, logger *slog.Logger) *GroceryHandler {
	return &GroceryHandler{groceries: groceries, feed: feed, hub: hub, logger: logger}
}

type groceryListView struct {
	model.GroceryList
	CheckedCount int                    `json:"checkedCount"`
	Groups       []social.CategoryGroup `json:"groups"`
}

func newGroceryListView(l model.GroceryList) groceryListView {
	return groceryListView{GroceryList: l, CheckedCount: l.CheckedCount(), Groups: social.ByCategory(l)}
}

func (h *GroceryHandler) List(w http.ResponseWriter, r *http.Request) {
	lists, err := h.groceries.Lists(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to list grocery lists")
		return
	}
	out := make([]groceryListView, 0, len(lists))
	for _, l := range lists {
		out = append(out, newGroceryListView(l))
	}
	writeJSON(w, http.StatusOK, out)
}

type createListRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

func (h *GroceryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	uid := auth.UserID(r.Context())
	l, err := h.groceries.Create(r.Context(), uid, req.Title, req.Text)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to create grocery list")
		return
	}
	h.created(w, uid, l)
}

// CreateFromRecipe builds a list from the ingredients of recipe {id}.
func (h *GroceryHandler) CreateFromRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.feed.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to get recipe")
		return
	}
	uid := auth.UserID(r.Context())
	l, err := h.groceries.CreateFromRecipe(r.Context(), uid, recipe)
	if err != nil {
		writeServiceError(w, h.logger, err, "failed to create grocery list")
		return
	}
	h.created(w, uid, l)
}

func (h *GroceryHandler) created(w http.ResponseWriter, uid string, l model.GroceryList) {
	h.hub.Broadcast(websocket.NewMessage("grocery_list", "created", l.ID, map[string]any{"user_id": uid}))
	writeJSON(w, http.StatusCreated, newGroceryListView(l))
}

func (h *GroceryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.groceries.DeleteList(r.Context(), auth.UserID(r.Context()), id); err != nil {
		writeServiceError(w, h.logger, err, "failed to delete grocery list")
		return
	}
	h.hub.Broadcast(websocket.NewMessage("grocery_list", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *GroceryHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	l, err := h.groceries.ToggleItem(r.Context(), auth.UserID(r.Context()), r.PathValue("id"), r.PathValue("item_id"))
	h.updated(w, l, err, "failed to toggle item")
}

func (h *GroceryHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	l, err := h.groceries.RemoveItem(r.Context(), auth.UserID(r.Context()), r.PathValue("id"), r.PathValue("item_id"))
	h.updated(w, l, err, "failed to remove item")
}

type removeItemsRequest struct {
	Offsets []int `json:"offsets"`
}

// RemoveItems deletes the items at the given positions in the list.
func (h *GroceryHandler) RemoveItems(w http.ResponseWriter, r *http.Request) {
	var req removeItemsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	l, err := h.groceries.RemoveItemsAt(r.Context(), auth.UserID(r.Context()), r.PathValue("id"), req.Offsets)
	h.updated(w, l, err, "failed to remove items")
}

func (h *GroceryHandler) ClearChecked(w http.ResponseWriter, r *http.Request) {
	l, err := h.groceries.ClearChecked(r.Context(), auth.UserID(r.Context()), r.PathValue("id"))
	h.updated(w, l, err, "failed to clear checked items")
}

func (h *GroceryHandler) updated(w http.ResponseWriter, l model.GroceryList, err error, fallback string) {
	if err != nil {
		writeServiceError(w, h.logger, err, fallback)
		return
	}
	h.hub.Broadcast(websocket.NewMessage("grocery_list", "updated", l.ID, nil))
	writeJSON(w, http.StatusOK, newGroceryListView(l))
}

type categorizeRequest struct {
	Text string `json:"text"`
}

type categorizedItem struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Categorize splits free text into ingredient names and classifies each
// one without saving anything.
func (h *GroceryHandler) Categorize(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	names := grocery.Parse(req.Text)
	out := make([]categorizedItem, 0, len(names))
	for _, name := range names {
		out = append(out, categorizedItem{Name: name, Category: grocery.Categorize(name)})
	}
	writeJSON(w, http.StatusOK, out)
}
