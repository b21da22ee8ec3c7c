package model

import "time"

// MaxCommentLength is the longest comment text accepted, in characters.
const MaxCommentLength = 500

type RecipeComment struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userID"`
	UserName        string    `json:"userName"`
	Text            string    `json:"text"`
	CreatedAt       time.Time `json:"createdAt"`
	UserImageBase64 *string   `json:"userImageBase64"`
}
