package livesync

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dukerupert/sharearecipe/internal/database"
	"github.com/dukerupert/sharearecipe/internal/docstore"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type title struct {
	ID    string
	Title string
}

func decodeTitle(s docstore.Snapshot) (title, bool) {
	t, ok := s.Data["title"].(string)
	if !ok {
		return title{}, false
	}
	return title{ID: s.ID, Title: t}, true
}

func setup(t *testing.T) (*docstore.SQLiteStore, *Collection[title]) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := docstore.NewSQLiteStore(db, docstore.NewLocalNotifier(), logger)
	c := New[title](logger)
	t.Cleanup(c.Stop)
	return st, c
}

// waitFor reads from ch until an update satisfies ok.
func waitFor(t *testing.T, ch <-chan []title, ok func([]title) bool) []title {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case items := <-ch:
			if ok(items) {
				return items
			}
		case <-deadline:
			t.Fatal("timeout waiting for collection update")
			return nil
		}
	}
}

func hasLen(n int) func([]title) bool {
	return func(items []title) bool { return len(items) == n }
}

func TestCollectionReplacesOnChange(t *testing.T) {
	st, c := setup(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "recipes", "r1", map[string]any{"title": "Dal", "createdAt": time.Unix(100, 0)}))

	ch, stop := c.Watch()
	defer stop()

	require.NoError(t, c.Start(ctx, st, docstore.Collection("recipes").Order("createdAt", true), decodeTitle))
	waitFor(t, ch, hasLen(1))

	require.NoError(t, st.Set(ctx, "recipes", "r2", map[string]any{"title": "Poha", "createdAt": time.Unix(200, 0)}))
	items := waitFor(t, ch, hasLen(2))
	assert.Equal(t, []title{{"r2", "Poha"}, {"r1", "Dal"}}, items)

	require.NoError(t, st.Update(ctx, "recipes", "r1", map[string]any{"title": "Dal Tadka"}))
	items = waitFor(t, ch, func(items []title) bool { return len(items) == 2 && items[1].Title == "Dal Tadka" })
	assert.Equal(t, "Poha", items[0].Title)
	assert.Equal(t, items, c.Items())
}

func TestCollectionDropsUndecodableDocuments(t *testing.T) {
	st, c := setup(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "recipes", "good", map[string]any{"title": "Dal"}))
	require.NoError(t, st.Set(ctx, "recipes", "bad", map[string]any{"title": 12}))

	ch, stop := c.Watch()
	defer stop()
	require.NoError(t, c.Start(ctx, st, docstore.Collection("recipes"), decodeTitle))

	items := waitFor(t, ch, hasLen(1))
	assert.Equal(t, "good", items[0].ID)
}

func TestCollectionRestartReplacesQuery(t *testing.T) {
	st, c := setup(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "groceryLists", "a", map[string]any{"title": "A", "userID": "u1"}))
	require.NoError(t, st.Set(ctx, "groceryLists", "b", map[string]any{"title": "B", "userID": "u2"}))

	ch, stop := c.Watch()
	defer stop()

	require.NoError(t, c.Start(ctx, st, docstore.Collection("groceryLists").WhereEqual("userID", "u1"), decodeTitle))
	waitFor(t, ch, func(items []title) bool { return len(items) == 1 && items[0].ID == "a" })

	require.NoError(t, c.Start(ctx, st, docstore.Collection("groceryLists").WhereEqual("userID", "u2"), decodeTitle))
	waitFor(t, ch, func(items []title) bool { return len(items) == 1 && items[0].ID == "b" })

	// Only the second query is live: a new u1 list must not show up.
	require.NoError(t, st.Set(ctx, "groceryLists", "c", map[string]any{"title": "C", "userID": "u1"}))
	require.NoError(t, st.Set(ctx, "groceryLists", "d", map[string]any{"title": "D", "userID": "u2"}))
	items := waitFor(t, ch, hasLen(2))
	assert.Equal(t, []title{{"b", "B"}, {"d", "D"}}, items)
}

func TestCollectionMutateIsOverwrittenByStore(t *testing.T) {
	st, c := setup(t)
	ctx := context.Background()

	require.NoError(t, st.Set(ctx, "recipes", "r1", map[string]any{"title": "Dal"}))

	ch, stop := c.Watch()
	defer stop()
	require.NoError(t, c.Start(ctx, st, docstore.Collection("recipes"), decodeTitle))
	waitFor(t, ch, hasLen(1))

	c.Mutate(func(items []title) []title {
		items[0].Title = "optimistic"
		return items
	})
	assert.Equal(t, "optimistic", c.Items()[0].Title)

	require.NoError(t, st.Update(ctx, "recipes", "r1", map[string]any{"title": "confirmed"}))
	waitFor(t, ch, func(items []title) bool { return len(items) == 1 && items[0].Title == "confirmed" })
}

func TestCollectionItemsIsACopy(t *testing.T) {
	_, c := setup(t)
	c.Mutate(func([]title) []title { return []title{{"r1", "Dal"}} })

	items := c.Items()
	items[0].Title = "changed"
	assert.Equal(t, "Dal", c.Items()[0].Title)
}

func TestCollectionStopReleasesSubscription(t *testing.T) {
	st, c := setup(t)
	ctx := context.Background()

	require.NoError(t, c.Start(ctx, st, docstore.Collection("recipes"), decodeTitle))
	assert.True(t, c.Running())

	c.Stop()
	assert.False(t, c.Running())
	c.Stop()
}

func TestCollectionStartRejectsBadQuery(t *testing.T) {
	st, c := setup(t)
	err := c.Start(context.Background(), st, docstore.Collection("recipes").Order("bad field", false), decodeTitle)
	require.Error(t, err)
	assert.False(t, c.Running())
}

func TestWatchStartsWithCurrentItems(t *testing.T) {
	_, c := setup(t)
	c.Mutate(func([]title) []title { return []title{{"r1", "Dal"}} })

	ch, stop := c.Watch()
	defer stop()
	assert.Equal(t, []title{{"r1", "Dal"}}, <-ch)
}

func TestCollectionStartExpand(t *testing.T) {
	st, _ := setup(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, st.Set(ctx, "recipes", "r1", map[string]any{"tags": []any{"quick", "vegan"}}))

	c := New[string](logger)
	defer c.Stop()
	ch, stop := c.Watch()
	defer stop()

	expand := func(s docstore.Snapshot) []string {
		var out []string
		tags, _ := s.Data["tags"].([]any)
		for _, tag := range tags {
			out = append(out, tag.(string))
		}
		return out
	}
	require.NoError(t, c.StartExpand(ctx, st, docstore.Doc("recipes", "r1"), expand))

	deadline := time.After(2 * time.Second)
	for {
		select {
		case items := <-ch:
			if len(items) == 2 {
				assert.Equal(t, []string{"quick", "vegan"}, items)
				return
			}
		case <-deadline:
			t.Fatal("timeout waiting for expanded items")
		}
	}
}
