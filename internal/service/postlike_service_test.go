package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Task_Mania/internal/model"
)

func newLikeFixture(t *testing.T) (*PostLikeService, *memPostRepo, *memLikeCache, *memLocker, string) {
	t.Helper()
	posts := newMemPostRepo()
	p, err := posts.Create(context.Background(), &model.Post{UserID: "author", Title: "t"})
	require.NoError(t, err)
	cache := newMemLikeCache()
	lock := newMemLocker()
	return NewPostLikeService(posts, cache, lock), posts, cache, lock, p.ID.Hex()
}

func TestLikeIsIdempotent(t *testing.T) {
	svc, _, _, _, id := newLikeFixture(t)
	ctx := context.Background()

	changed, err := svc.Like(ctx, "u1", id)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = svc.Like(ctx, "u1", id)
	require.NoError(t, err)
	assert.False(t, changed)

	liked, err := svc.IsLiked(ctx, "u1", id)
	require.NoError(t, err)
	assert.True(t, liked)

	changed, err = svc.Unlike(ctx, "u1", id)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = svc.Unlike(ctx, "u1", id)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestLikeMissingPost(t *testing.T) {
	svc, _, _, _, _ := newLikeFixture(t)
	_, err := svc.Like(context.Background(), "u1", "65f000000000000000000000")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = svc.Like(context.Background(), "", "x")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestCountRebuildsUnderLockAndTracksWrites(t *testing.T) {
	svc, _, cache, lock, id := newLikeFixture(t)
	ctx := context.Background()

	for _, u := range []string{"a", "b", "c"} {
		_, err := svc.Like(ctx, u, id)
		require.NoError(t, err)
	}
	// nothing cached yet, so likes did not invent a count
	_, cached, _ := cache.GetLikeCountCached(ctx, id)
	assert.False(t, cached)

	n, err := svc.GetCountWithLock(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, 1, lock.calls)
	assert.Empty(t, lock.held)

	_, err = svc.Unlike(ctx, "b", id)
	require.NoError(t, err)
	n, err = svc.GetCountWithLock(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 1, lock.calls, "cache hit must not take the lock")
}

func TestCountFallsBackWhenLockHeld(t *testing.T) {
	svc, _, _, lock, id := newLikeFixture(t)
	svc.backoff = 0
	ctx := context.Background()
	_, err := svc.Like(ctx, "a", id)
	require.NoError(t, err)

	ok, _ := lock.Acquire(ctx, id, "other")
	require.True(t, ok)

	n, err := svc.GetCountWithLock(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, "other", lock.held[id])
}
