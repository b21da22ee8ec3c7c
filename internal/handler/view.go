package handler

import (
	"time"

	"github.com/dukerupert/sharearecipe/internal/model"
	"github.com/dukerupert/sharearecipe/internal/reconcile"
)

// recipeView is a recipe as seen by one caller.
type recipeView struct {
	model.Recipe
	NetScore int    `json:"score"`
	TimeAgo  string `json:"timeAgo"`
	IsSaved  bool   `json:"isSaved"`
	Vote     string `json:"vote"`
}

func newRecipeView(r model.Recipe, uid string, now time.Time) recipeView {
	return recipeView{
		Recipe:   r,
		NetScore: r.Score(),
		TimeAgo:  timeAgo(r.CreatedAt, now),
		IsSaved:  r.IsSavedBy(uid),
		Vote:     reconcile.StateOf(r.Upvoters, r.Downvoters, uid).String(),
	}
}

func newRecipeViews(rs []model.Recipe, uid string, now time.Time) []recipeView {
	out := make([]recipeView, 0, len(rs))
	for _, r := range rs {
		out = append(out, newRecipeView(r, uid, now))
	}
	return out
}

type commentView struct {
	model.RecipeComment
	TimeAgo string `json:"timeAgo"`
}

func newCommentViews(cs []model.RecipeComment, now time.Time) []commentView {
	out := make([]commentView, 0, len(cs))
	for _, c := range cs {
		out = append(out, commentView{RecipeComment: c, TimeAgo: timeAgo(c.CreatedAt, now)})
	}
	return out
}

type profileView struct {
	model.UserProfile
	FollowerCount  int  `json:"followerCount"`
	FollowingCount int  `json:"followingCount"`
	ViewerFollows  bool `json:"isFollowing"`
}

// newProfileView describes p for the caller uid; ViewerFollows reports
// whether uid follows p.
func newProfileView(p model.UserProfile, uid string) profileView {
	return profileView{
		UserProfile:    p,
		FollowerCount:  len(p.Followers),
		FollowingCount: len(p.Following),
		ViewerFollows:  p.IsFollowedBy(uid),
	}
}

func newProfileViews(ps []model.UserProfile, uid string) []profileView {
	out := make([]profileView, 0, len(ps))
	for _, p := range ps {
		out = append(out, newProfileView(p, uid))
	}
	return out
}
