package document

import (
	"sort"

	"github.com/google/uuid"

	"github.com/dukerupert/sharearecipe/internal/docstore"
	"github.com/dukerupert/sharearecipe/internal/model"
)

// DecodeComments returns the comment thread embedded in a recipe document,
// oldest first. Entries that are not objects are dropped.
func DecodeComments(snap docstore.Snapshot, now Clock) []model.RecipeComment {
	comments := []model.RecipeComment{}
	for _, c := range objectsField(snap.Data, "comments") {
		comments = append(comments, model.RecipeComment{
			ID:              stringField(c, "id", uuid.NewString()),
			UserID:          stringField(c, "userID", ""),
			UserName:        stringField(c, "userName", "Unknown"),
			Text:            stringField(c, "text", ""),
			CreatedAt:       timeField(c, "createdAt", now),
			UserImageBase64: optionalString(c, "userImageBase64"),
		})
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments
}

func EncodeComment(c model.RecipeComment) map[string]any {
	img := ""
	if c.UserImageBase64 != nil {
		img = *c.UserImageBase64
	}
	return map[string]any{
		"id":              c.ID,
		"userID":          c.UserID,
		"userName":        c.UserName,
		"text":            c.Text,
		"createdAt":       c.CreatedAt,
		"userImageBase64": img,
	}
}
