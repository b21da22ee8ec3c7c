package social

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dukerupert/sharearecipe/internal/database"
	"github.com/dukerupert/sharearecipe/internal/docstore"
	"github.com/dukerupert/sharearecipe/internal/model"
)

var errInjected = errors.New("injected write failure")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupStore(t *testing.T) *docstore.SQLiteStore {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return docstore.NewSQLiteStore(db, docstore.NewLocalNotifier(), testLogger())
}

// faultStore fails Update calls on one document while armed.
type faultStore struct {
	docstore.Store

	mu         sync.Mutex
	collection string
	id         string
}

func (f *faultStore) failUpdates(collection, id string) {
	f.mu.Lock()
	f.collection, f.id = collection, id
	f.mu.Unlock()
}

func (f *faultStore) heal() {
	f.failUpdates("", "")
}

func (f *faultStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	f.mu.Lock()
	fail := collection == f.collection && id == f.id
	f.mu.Unlock()
	if fail {
		return errInjected
	}
	return f.Store.Update(ctx, collection, id, fields)
}

// stepClock advances one second per call.
func stepClock(start time.Time) Clock {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := next
		next = next.Add(time.Second)
		return t
	}
}

func createProfile(t *testing.T, a *Accounts, uid, name string) model.UserProfile {
	t.Helper()
	p, err := a.CreateProfile(context.Background(), uid, uid+"@example.com", name)
	require.NoError(t, err)
	return p
}

// waitForRecipes polls the feed until ok holds.
func waitForRecipes(t *testing.T, f *RecipeFeed, ok func([]model.Recipe) bool) []model.Recipe {
	t.Helper()
	ch, stop := f.Watch()
	defer stop()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case items := <-ch:
			if ok(items) {
				return items
			}
		case <-deadline:
			t.Fatal("timeout waiting for feed")
			return nil
		}
	}
}
