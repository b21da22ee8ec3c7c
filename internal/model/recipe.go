package model

import (
	"slices"
	"time"
)

// RecipeCategories are the categories a recipe can be filed under.
var RecipeCategories = []string{
	"Breakfast", "Lunch", "Dinner", "Snacks",
	"Dessert", "Beverage", "Vegan", "Indian",
	"Italian", "Mexican", "Other",
}

type Recipe struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Ingredients       string    `json:"ingredients"`
	Steps             string    `json:"steps"`
	Base64Image       *string   `json:"base64Image"`
	CreatedAt         time.Time `json:"createdAt"`
	AuthorID          string    `json:"authorID"`
	AuthorName        string    `json:"authorName"`
	AuthorImageBase64 *string   `json:"authorImageBase64"`
	SavedBy           []string  `json:"savedBy"`
	Upvoters          []string  `json:"upvoters"`
	Downvoters        []string  `json:"downvoters"`
	Category          string    `json:"category"`
	CommentCount      int       `json:"commentCount"`
}

// Score is the net vote count. It is always derived, never stored.
func (r *Recipe) Score() int {
	return len(r.Upvoters) - len(r.Downvoters)
}

func (r *Recipe) IsSavedBy(uid string) bool {
	return slices.Contains(r.SavedBy, uid)
}

// IsValidRecipeCategory reports whether name is one of RecipeCategories.
func IsValidRecipeCategory(name string) bool {
	return slices.Contains(RecipeCategories, name)
}
