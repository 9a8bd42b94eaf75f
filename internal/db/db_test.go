package db

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrationsWithMissingPath(t *testing.T) {
	// zero *.up.sql files is valid, the connection is never touched
	err := RunMigrations(nil, "./does-not-exist")
	assert.NoError(t, err, "Expected no error even if migration path is empty")
}

func openTestStore(t *testing.T) Store {
	t.Helper()
	store, err := OpenTestStore("../../migrations")
	if errors.Is(err, ErrNoTestDatabase) {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}
	require.NoError(t, err)
	return store
}

func TestStoreIntegration(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	t.Run("User Management", func(t *testing.T) {
		id := uuid.NewString()

		created, err := store.CreateUser(ctx, id, true)
		require.NoError(t, err)
		assert.Equal(t, id, created.ID)
		assert.True(t, created.Anonymous)

		again, err := store.CreateUser(ctx, id, true)
		require.NoError(t, err, "creating an existing id is idempotent")
		assert.Equal(t, created.CreatedAt.Unix(), again.CreatedAt.Unix())

		found, err := store.GetUserByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, found.ID)

		assert.NoError(t, store.TouchUser(ctx, id))

		_, err = store.GetUserByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, store.TouchUser(ctx, uuid.NewString()), ErrNotFound)
	})

	t.Run("Document Merge", func(t *testing.T) {
		path := "artifacts/test/users/" + uuid.NewString() + "/challenge_status/october2025"

		_, err := store.GetDocument(ctx, path)
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, store.MergeDocument(ctx, path, []byte(`{"1":{"count":5,"completed":true}}`)))
		require.NoError(t, store.MergeDocument(ctx, path, []byte(`{"2":{"count":1}}`)))
		require.NoError(t, store.MergeDocument(ctx, path, []byte(`{"1":{"count":5,"completed":true,"prayerCompleted":true}}`)))

		doc, err := store.GetDocument(ctx, path)
		require.NoError(t, err)

		var data map[string]map[string]any
		require.NoError(t, json.Unmarshal(doc.Data, &data))
		assert.Len(t, data, 2)
		assert.Equal(t, true, data["1"]["prayerCompleted"])
		assert.Equal(t, float64(1), data["2"]["count"])
	})
}
