package social

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/sharearecipe/internal/docstore"
	"github.com/dukerupert/sharearecipe/internal/model"
)

func setupComments(t *testing.T) (*Comments, *RecipeFeed) {
	t.Helper()
	st := setupStore(t)
	f := NewRecipeFeed(st, testLogger())
	c := NewComments(st, testLogger())
	c.now = stepClock(time.Date(2025, 11, 2, 12, 0, 0, 0, time.UTC))
	return c, f
}

func TestAddComment(t *testing.T) {
	c, f := setupComments(t)
	ctx := context.Background()

	r, err := f.Add(ctx, asha, RecipeInput{Title: "Dal"})
	require.NoError(t, err)

	img := "aW1n"
	ben := model.UserProfile{UID: "u2", DisplayName: "Ben", ProfileImageBase64: &img}
	first, err := c.Add(ctx, ben, r.ID, "  Looks great!  ")
	require.NoError(t, err)
	assert.Equal(t, "Looks great!", first.Text)
	assert.Equal(t, "Ben", first.UserName)

	_, err = c.Add(ctx, asha, r.ID, "Thanks")
	require.NoError(t, err)

	comments, err := c.List(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, first.ID, comments[0].ID)
	assert.Equal(t, "Thanks", comments[1].Text)
	require.NotNil(t, comments[0].UserImageBase64)
	assert.Equal(t, img, *comments[0].UserImageBase64)
	assert.Nil(t, comments[1].UserImageBase64)

	got, err := f.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CommentCount)
}

func TestAddCommentRejectsEmpty(t *testing.T) {
	c, f := setupComments(t)
	ctx := context.Background()
	r, err := f.Add(ctx, asha, RecipeInput{Title: "Dal"})
	require.NoError(t, err)

	_, err = c.Add(ctx, asha, r.ID, " \n\t ")
	assert.ErrorIs(t, err, ErrEmptyComment)
}

func TestAddCommentTruncates(t *testing.T) {
	c, f := setupComments(t)
	ctx := context.Background()
	r, err := f.Add(ctx, asha, RecipeInput{Title: "Dal"})
	require.NoError(t, err)

	long := strings.Repeat("é", model.MaxCommentLength+20)
	comment, err := c.Add(ctx, asha, r.ID, long)
	require.NoError(t, err)
	assert.Equal(t, model.MaxCommentLength, len([]rune(comment.Text)))
}

func TestAddCommentUnknownRecipe(t *testing.T) {
	c, _ := setupComments(t)
	_, err := c.Add(context.Background(), asha, "missing", "hi")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestListenComments(t *testing.T) {
	c, f := setupComments(t)
	ctx := context.Background()
	r, err := f.Add(ctx, asha, RecipeInput{Title: "Dal"})
	require.NoError(t, err)

	coll, err := c.Listen(ctx, r.ID)
	require.NoError(t, err)
	defer coll.Stop()
	ch, stop := coll.Watch()
	defer stop()

	_, err = c.Add(ctx, asha, r.ID, "one")
	require.NoError(t, err)
	_, err = c.Add(ctx, asha, r.ID, "two")
	require.NoError(t, err)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case items := <-ch:
			if len(items) == 2 {
				assert.Equal(t, "one", items[0].Text)
				assert.Equal(t, "two", items[1].Text)
				return
			}
		case <-deadline:
			t.Fatal("timeout waiting for comments")
		}
	}
}
