package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-progress-service/internal/app"
)

func TestKVStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Get(ctx, "@quiz_progress")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "@quiz_progress", `{"totalPoints":10}`))
	require.NoError(t, store.Set(ctx, "@quiz_progress", `{"totalPoints":20}`))
	v, ok, err := store.Get(ctx, "@quiz_progress")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"totalPoints":20}`, v)

	require.NoError(t, store.Remove(ctx, "@quiz_progress"))
	_, ok, _ = store.Get(ctx, "@quiz_progress")
	assert.False(t, ok)
}

func TestKVStoreApplyIsAtomic(t *testing.T) {
	ctx := context.Background()
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(ctx, "@quiz_in_progress", `{"a":{}}`))
	require.NoError(t, store.Apply(ctx, []app.Mutation{
		{Key: "@quiz_progress", Value: `{"totalPoints":30}`},
		{Key: "@quiz_in_progress", Delete: true},
	}))

	v, ok, _ := store.Get(ctx, "@quiz_progress")
	assert.True(t, ok)
	assert.Equal(t, `{"totalPoints":30}`, v)
	_, ok, _ = store.Get(ctx, "@quiz_in_progress")
	assert.False(t, ok)
}

func TestKVStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "quiz.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "@quiz_user_profile", `{"name":"Alex"}`))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	v, ok, err := reopened.Get(ctx, "@quiz_user_profile")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"name":"Alex"}`, v)
}
