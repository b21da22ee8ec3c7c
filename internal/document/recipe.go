package document

import (
	"github.com/dukerupert/sharearecipe/internal/docstore"
	"github.com/dukerupert/sharearecipe/internal/model"
)

const (
	RecipesCollection = "recipes"
	UsersCollection   = "users"
	GroceryCollection = "groceryLists"
)

// DecodeRecipe builds a recipe from a stored document. The second result is
// false when there is no document to decode.
func DecodeRecipe(snap docstore.Snapshot, now Clock) (model.Recipe, bool) {
	d := snap.Data
	if d == nil {
		return model.Recipe{}, false
	}
	return model.Recipe{
		ID:                snap.ID,
		Title:             stringField(d, "title", ""),
		Ingredients:       stringField(d, "ingredients", ""),
		Steps:             stringField(d, "steps", ""),
		Base64Image:       optionalString(d, "base64Image"),
		CreatedAt:         timeField(d, "createdAt", now),
		AuthorID:          stringField(d, "authorID", ""),
		AuthorName:        stringField(d, "authorName", "Unknown"),
		AuthorImageBase64: optionalString(d, "authorImageBase64"),
		SavedBy:           stringsField(d, "savedBy"),
		Upvoters:          stringsField(d, "upvoters"),
		Downvoters:        stringsField(d, "downvoters"),
		Category:          stringField(d, "category", "Other"),
		CommentCount:      len(objectsField(d, "comments")),
	}, true
}

// EncodeRecipe renders a new recipe document with an empty comment thread.
func EncodeRecipe(r model.Recipe) map[string]any {
	return map[string]any{
		"id":                r.ID,
		"title":             r.Title,
		"ingredients":       r.Ingredients,
		"steps":             r.Steps,
		"base64Image":       optionalValue(r.Base64Image),
		"createdAt":         r.CreatedAt,
		"authorID":          r.AuthorID,
		"authorName":        r.AuthorName,
		"authorImageBase64": optionalValue(r.AuthorImageBase64),
		"savedBy":           nonNil(r.SavedBy),
		"upvoters":          nonNil(r.Upvoters),
		"downvoters":        nonNil(r.Downvoters),
		"category":          r.Category,
		"comments":          []any{},
	}
}

// RecipeContentFields are the author-editable fields.
func RecipeContentFields(r model.Recipe) map[string]any {
	return map[string]any{
		"title":       r.Title,
		"ingredients": r.Ingredients,
		"steps":       r.Steps,
		"base64Image": optionalValue(r.Base64Image),
		"category":    r.Category,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
