package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-progress-service/internal/app"
)

func TestKVStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewKVStore()

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", "v"))
	v, ok, _ := store.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, store.Apply(ctx, []app.Mutation{{Key: "k", Delete: true}, {Key: "other", Value: "x"}}))
	_, ok, _ = store.Get(ctx, "k")
	assert.False(t, ok, "k removed")
	v, _, _ = store.Get(ctx, "other")
	assert.Equal(t, "x", v)
}

func TestKVStoreFailureInjection(t *testing.T) {
	ctx := context.Background()
	store := NewKVStore()
	store.FailWrites(true)

	assert.ErrorIs(t, store.Set(ctx, "k", "v"), ErrInjected)
	assert.ErrorIs(t, store.Apply(ctx, []app.Mutation{{Key: "k", Value: "v"}}), ErrInjected)

	store.FailWrites(false)
	store.FailReads(true)
	_, _, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrInjected)
}
