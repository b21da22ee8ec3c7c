package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dukerupert/sharearecipe/internal/auth"
	"github.com/dukerupert/sharearecipe/internal/database"
	"github.com/dukerupert/sharearecipe/internal/docstore"
	"github.com/dukerupert/sharearecipe/internal/model"
	"github.com/dukerupert/sharearecipe/internal/social"
	"github.com/dukerupert/sharearecipe/internal/store"
	"github.com/dukerupert/sharearecipe/internal/websocket"
)

type testEnv struct {
	feed      *social.RecipeFeed
	accounts  *social.Accounts
	comments  *social.Comments
	groceries *social.Groceries
	provider  *auth.LocalProvider
	hub       *websocket.Hub
	logger    *slog.Logger
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	docs := docstore.NewSQLiteStore(db, docstore.NewLocalNotifier(), logger)
	e := &testEnv{
		feed:      social.NewRecipeFeed(docs, logger),
		accounts:  social.NewAccounts(docs, logger),
		comments:  social.NewComments(docs, logger),
		groceries: social.NewGroceries(docs, logger),
		provider:  auth.NewLocalProvider(store.NewAccountStore(db), store.NewSessionStore(db), time.Hour, logger),
		hub:       websocket.NewHub(logger),
		logger:    logger,
	}
	require.NoError(t, e.feed.Listen(context.Background()))
	t.Cleanup(e.feed.Stop)
	return e
}

func (e *testEnv) user(t *testing.T, uid, name string) model.UserProfile {
	t.Helper()
	p, err := e.accounts.CreateProfile(context.Background(), uid, uid+"@example.com", name)
	require.NoError(t, err)
	return p
}

// waitForFeed blocks until the live feed satisfies ok.
func (e *testEnv) waitForFeed(t *testing.T, ok func([]model.Recipe) bool) {
	t.Helper()
	require.Eventually(t, func() bool { return ok(e.feed.Recipes()) }, 2*time.Second, 10*time.Millisecond)
}

// call runs h as uid. Strings are sent as raw bodies, anything else is
// JSON encoded. pathValues are name/value pairs.
func call(t *testing.T, h http.HandlerFunc, method, target, uid string, body any, pathValues ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	if uid != "" {
		req = req.WithContext(auth.WithIdentity(req.Context(), auth.Identity{UID: uid, Email: uid + "@example.com"}))
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), "body: %s", rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}
