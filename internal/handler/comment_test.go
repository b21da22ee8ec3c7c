package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentCreateAndList(t *testing.T) {
	e := setup(t)
	e.user(t, "u1", "Asha")
	e.user(t, "u2", "Ben")
	recipes := NewRecipeHandler(e.feed, e.accounts, e.hub, e.logger)
	h := NewCommentHandler(e.comments, e.accounts, e.hub, e.logger)
	dal := createRecipe(t, recipes, "u1", map[string]any{"title": "Dal"})

	rec := call(t, h.Create, "POST", "/api/recipes/"+dal.ID+"/comments", "u2", map[string]any{"text": "  Lovely  "}, "id", dal.ID)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := decode[commentView](t, rec)
	assert.Equal(t, "Lovely", c.Text)
	assert.Equal(t, "Ben", c.UserName)
	assert.Equal(t, "u2", c.UserID)

	long := strings.Repeat("é", 600)
	rec = call(t, h.Create, "POST", "/api/recipes/"+dal.ID+"/comments", "u1", map[string]any{"text": long}, "id", dal.ID)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, []rune(decode[commentView](t, rec).Text), 500)

	rec = call(t, h.List, "GET", "/api/recipes/"+dal.ID+"/comments", "u1", nil, "id", dal.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]commentView](t, rec)
	require.Len(t, list, 2)
	texts := []string{list[0].Text, list[1].Text}
	assert.Contains(t, texts, "Lovely")
	assert.NotEmpty(t, list[0].TimeAgo)
}

func TestCommentCreateRejectsEmpty(t *testing.T) {
	e := setup(t)
	e.user(t, "u1", "Asha")
	recipes := NewRecipeHandler(e.feed, e.accounts, e.hub, e.logger)
	h := NewCommentHandler(e.comments, e.accounts, e.hub, e.logger)
	dal := createRecipe(t, recipes, "u1", map[string]any{"title": "Dal"})

	rec := call(t, h.Create, "POST", "/api/recipes/"+dal.ID+"/comments", "u1", map[string]any{"text": " \n "}, "id", dal.ID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "comment cannot be empty", errorMessage(t, rec))
}

func TestCommentOnMissingRecipe(t *testing.T) {
	e := setup(t)
	e.user(t, "u1", "Asha")
	h := NewCommentHandler(e.comments, e.accounts, e.hub, e.logger)

	rec := call(t, h.Create, "POST", "/api/recipes/nope/comments", "u1", map[string]any{"text": "hi"}, "id", "nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, h.List, "GET", "/api/recipes/nope/comments", "u1", nil, "id", "nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
