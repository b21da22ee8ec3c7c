package grocery

import "strings"

// Category names, in the order they are matched.
const (
	Vegetables = "Vegetables"
	Fruits     = "Fruits"
	MeatFish   = "Meat & Fish"
	DairyEggs  = "Dairy & Eggs"
	Grains     = "Grains & Pasta"
	Spices     = "Spices & Herbs"
	Condiments = "Condiments & Sauces"
	Baking     = "Baking"
	Other      = "Other"
)

type keywordGroup struct {
	category string
	keywords []string
}

// Groups are checked top to bottom and the first keyword hit wins, so
// "tomato sauce" lands in Vegetables before Condiments is ever consulted.
var keywordGroups = []keywordGroup{
	{Vegetables, []string{"onion", "tomato", "carrot", "potato", "spinach", "broccoli", "lettuce", "cabbage"}},
	{Fruits, []string{"apple", "banana", "orange", "mango", "grape", "berries"}},
	{MeatFish, []string{"chicken", "beef", "pork", "fish", "salmon", "shrimp"}},
	{DairyEggs, []string{"milk", "cheese", "butter", "yogurt", "egg", "cream"}},
	{Grains, []string{"rice", "pasta", "flour", "bread", "noodles", "oats"}},
	{Spices, []string{"cumin", "turmeric", "salt", "pepper", "masala", "oregano", "basil"}},
	{Condiments, []string{"ketchup", "sauce", "vinegar", "mustard", "soy"}},
	{Baking, []string{"sugar", "yeast", "baking", "chocolate"}},
}

// Categorize returns the pantry category for the given item name using
// case-insensitive substring matching. Falls back to "Other".
func Categorize(itemName string) string {
	name := strings.ToLower(itemName)
	for _, g := range keywordGroups {
		for _, kw := range g.keywords {
			if strings.Contains(name, kw) {
				return g.category
			}
		}
	}
	return Other
}

// Categories returns every category name in priority order, "Other" last.
func Categories() []string {
	out := make([]string, 0, len(keywordGroups)+1)
	for _, g := range keywordGroups {
		out = append(out, g.category)
	}
	return append(out, Other)
}

// IsCategory reports whether name is a known category.
func IsCategory(name string) bool {
	if name == Other {
		return true
	}
	for _, g := range keywordGroups {
		if g.category == name {
			return true
		}
	}
	return false
}
