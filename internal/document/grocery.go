package document

import (
	"github.com/google/uuid"

	"github.com/dukerupert/sharearecipe/internal/docstore"
	"github.com/dukerupert/sharearecipe/internal/model"
)

func DecodeGroceryList(snap docstore.Snapshot, now Clock) (model.GroceryList, bool) {
	d := snap.Data
	if d == nil {
		return model.GroceryList{}, false
	}
	items := []model.GroceryItem{}
	for _, it := range objectsField(d, "items") {
		items = append(items, model.GroceryItem{
			ID:        stringField(it, "id", uuid.NewString()),
			Name:      stringField(it, "name", ""),
			IsChecked: boolField(it, "isChecked"),
			Category:  stringField(it, "category", "Other"),
		})
	}
	return model.GroceryList{
		ID:        stringField(d, "id", snap.ID),
		UserID:    stringField(d, "userID", ""),
		Title:     stringField(d, "title", ""),
		Items:     items,
		CreatedAt: timeField(d, "createdAt", now),
	}, true
}

func EncodeGroceryList(l model.GroceryList) map[string]any {
	return map[string]any{
		"id":        l.ID,
		"userID":    l.UserID,
		"title":     l.Title,
		"createdAt": l.CreatedAt,
		"items":     EncodeGroceryItems(l.Items),
	}
}

// EncodeGroceryItems renders the full items array; every item mutation
// rewrites it whole.
func EncodeGroceryItems(items []model.GroceryItem) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]any{
			"id":        it.ID,
			"name":      it.Name,
			"isChecked": it.IsChecked,
			"category":  it.Category,
		})
	}
	return out
}
