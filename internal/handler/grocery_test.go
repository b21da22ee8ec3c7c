package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/sharearecipe/internal/grocery"
)

func createList(t *testing.T, h *GroceryHandler, uid, title, text string) groceryListView {
	t.Helper()
	rec := call(t, h.Create, "POST", "/api/grocery-lists", uid, map[string]any{"title": title, "text": text})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[groceryListView](t, rec)
}

func TestGroceryCreateAndList(t *testing.T) {
	e := setup(t)
	h := NewGroceryHandler(e.groceries, e.feed, e.hub, e.logger)

	l := createList(t, h, "u1", "", "2 onions\nchicken breast, salt\n")
	assert.Equal(t, "Grocery List", l.Title)
	require.Len(t, l.Items, 3)
	assert.Equal(t, grocery.Vegetables, l.Items[0].Category)
	assert.Equal(t, grocery.MeatFish, l.Items[1].Category)
	assert.Equal(t, grocery.Spices, l.Items[2].Category)
	require.Len(t, l.Groups, 3)
	assert.Equal(t, grocery.Vegetables, l.Groups[0].Category)

	createList(t, h, "u2", "Other person", "milk")

	rec := call(t, h.List, "GET", "/api/grocery-lists", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	lists := decode[[]groceryListView](t, rec)
	require.Len(t, lists, 1)
	assert.Equal(t, l.ID, lists[0].ID)
}

func TestGroceryCreateFromRecipe(t *testing.T) {
	e := setup(t)
	e.user(t, "u1", "Asha")
	recipes := NewRecipeHandler(e.feed, e.accounts, e.hub, e.logger)
	h := NewGroceryHandler(e.groceries, e.feed, e.hub, e.logger)
	dal := createRecipe(t, recipes, "u1", map[string]any{"title": "Dal", "ingredients": "lentils; garlic; cumin"})

	rec := call(t, h.CreateFromRecipe, "POST", "/api/recipes/"+dal.ID+"/grocery-list", "u2", nil, "id", dal.ID)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	l := decode[groceryListView](t, rec)
	assert.Equal(t, "Dal", l.Title)
	assert.Equal(t, "u2", l.UserID)
	assert.Len(t, l.Items, 3)

	rec = call(t, h.CreateFromRecipe, "POST", "/api/recipes/nope/grocery-list", "u2", nil, "id", "nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGroceryItemMutations(t *testing.T) {
	e := setup(t)
	h := NewGroceryHandler(e.groceries, e.feed, e.hub, e.logger)
	l := createList(t, h, "u1", "Week", "milk, eggs, bread, apples")

	rec := call(t, h.ToggleItem, "POST", "/toggle", "u1", nil, "id", l.ID, "item_id", l.Items[1].ID)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[groceryListView](t, rec)
	assert.True(t, got.Items[1].IsChecked)
	assert.Equal(t, 1, got.CheckedCount)

	rec = call(t, h.ClearChecked, "POST", "/clear-checked", "u1", nil, "id", l.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[groceryListView](t, rec)
	require.Len(t, got.Items, 3)
	assert.Equal(t, 0, got.CheckedCount)

	rec = call(t, h.RemoveItem, "DELETE", "/item", "u1", nil, "id", l.ID, "item_id", l.Items[0].ID)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[groceryListView](t, rec)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "bread", got.Items[0].Name)

	rec = call(t, h.RemoveItems, "POST", "/items/remove", "u1", map[string]any{"offsets": []int{1, 7}}, "id", l.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[groceryListView](t, rec)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "bread", got.Items[0].Name)

	rec = call(t, h.ToggleItem, "POST", "/toggle", "u1", nil, "id", l.ID, "item_id", "missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGroceryOwnerOnly(t *testing.T) {
	e := setup(t)
	h := NewGroceryHandler(e.groceries, e.feed, e.hub, e.logger)
	l := createList(t, h, "u1", "Week", "milk")

	rec := call(t, h.ToggleItem, "POST", "/toggle", "u2", nil, "id", l.ID, "item_id", l.Items[0].ID)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, h.Delete, "DELETE", "/api/grocery-lists/"+l.ID, "u2", nil, "id", l.ID)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(t, h.Delete, "DELETE", "/api/grocery-lists/"+l.ID, "u1", nil, "id", l.ID)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = call(t, h.Delete, "DELETE", "/api/grocery-lists/"+l.ID, "u1", nil, "id", l.ID)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGroceryCategorize(t *testing.T) {
	e := setup(t)
	h := NewGroceryHandler(e.groceries, e.feed, e.hub, e.logger)

	rec := call(t, h.Categorize, "POST", "/api/grocery/categorize", "u1", map[string]any{"text": "2 onions\nchicken breast, salt\n"})
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]categorizedItem](t, rec)
	assert.Equal(t, []categorizedItem{
		{Name: "2 onions", Category: grocery.Vegetables},
		{Name: "chicken breast", Category: grocery.MeatFish},
		{Name: "salt", Category: grocery.Spices},
	}, items)

	rec = call(t, h.Categorize, "POST", "/api/grocery/categorize", "u1", map[string]any{"text": " ;, "})
	assert.Empty(t, decode[[]categorizedItem](t, rec))
}
