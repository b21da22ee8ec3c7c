package document

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dukerupert/sharearecipe/internal/database"
	"github.com/dukerupert/sharearecipe/internal/docstore"
)

// storeRoundTrip writes doc through a real store and reads it back, so
// decoders see exactly what production listeners see.
func storeRoundTrip(t *testing.T, id string, doc map[string]any) docstore.Snapshot {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := docstore.NewSQLiteStore(db, docstore.NewLocalNotifier(), slog.Default())
	ctx := context.Background()
	require.NoError(t, st.Set(ctx, "test", id, doc))
	snap, err := st.Get(ctx, "test", id)
	require.NoError(t, err)
	return snap
}
