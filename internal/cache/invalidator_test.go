package cache

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/cinetrack/cinetrack/internal/observability/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ctxSensitiveStore fails every operation once the context is cancelled,
// the way a networked backend would.
type ctxSensitiveStore struct {
	inner Store
}

func (s *ctxSensitiveStore) Get(ctx context.Context, ns Namespace, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.inner.Get(ctx, ns, key)
}

func (s *ctxSensitiveStore) Put(ctx context.Context, ns Namespace, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.inner.Put(ctx, ns, key, value)
}

func (s *ctxSensitiveStore) Evict(ctx context.Context, ns Namespace, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.inner.Evict(ctx, ns, key)
}

func (s *ctxSensitiveStore) EvictAll(ctx context.Context, ns Namespace) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.inner.EvictAll(ctx, ns)
}

var cacheMetrics = metrics.NewCacheMetrics()

func TestRatingWrittenEvictsAllDependentNamespaces(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	inv := NewInvalidator(store, zap.NewNop(), cacheMetrics)

	movieID := snowflake.ID(100)
	userID := snowflake.ID(200)

	require.NoError(t, store.Put(ctx, NamespaceMovieByID, movieID.String(), []byte("movie")))
	require.NoError(t, store.Put(ctx, NamespaceMovieList, "page=1&pageSize=10", []byte("list")))
	require.NoError(t, store.Put(ctx, NamespaceUserRatingProfile, userID.String(), []byte("profile")))
	// unrelated entries survive
	require.NoError(t, store.Put(ctx, NamespaceMovieByID, "999", []byte("other")))

	require.NoError(t, inv.RatingWritten(ctx, movieID, userID))

	_, err := store.Get(ctx, NamespaceMovieByID, movieID.String())
	assert.ErrorIs(t, err, ErrMiss)
	_, err = store.Get(ctx, NamespaceMovieList, "page=1&pageSize=10")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = store.Get(ctx, NamespaceUserRatingProfile, userID.String())
	assert.ErrorIs(t, err, ErrMiss)

	value, err := store.Get(ctx, NamespaceMovieByID, "999")
	require.NoError(t, err)
	assert.Equal(t, []byte("other"), value)
}

func TestInvalidationRunsAfterRequestCancellation(t *testing.T) {
	inner := NewMemoryStore()
	store := &ctxSensitiveStore{inner: inner}
	inv := NewInvalidator(store, zap.NewNop(), cacheMetrics)

	movieID := snowflake.ID(1)
	userID := snowflake.ID(2)

	require.NoError(t, inner.Put(context.Background(), NamespaceMovieByID, movieID.String(), []byte("stale")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// the request was abandoned after the store write; invalidation must
	// still complete on its detached path
	require.NoError(t, inv.RatingWritten(ctx, movieID, userID))

	_, err := inner.Get(context.Background(), NamespaceMovieByID, movieID.String())
	assert.ErrorIs(t, err, ErrMiss)
}

func TestSweepOnEmptyNamespaceIsNoOp(t *testing.T) {
	inv := NewInvalidator(NewMemoryStore(), zap.NewNop(), cacheMetrics)

	assert.NoError(t, inv.MovieCreated(context.Background()))
	assert.NoError(t, inv.MovieCreated(context.Background()))
	assert.NoError(t, inv.UserDeleted(context.Background(), snowflake.ID(5), nil))
}

func TestMovieChangedEvictsDetailAndListing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	inv := NewInvalidator(store, zap.NewNop(), cacheMetrics)

	movieID := snowflake.ID(42)
	require.NoError(t, store.Put(ctx, NamespaceMovieByID, movieID.String(), []byte("movie")))
	require.NoError(t, store.Put(ctx, NamespaceMovieList, "page=1&pageSize=10", []byte("list")))
	require.NoError(t, store.Put(ctx, NamespaceUserRatingProfile, "7", []byte("profile")))

	require.NoError(t, inv.MovieChanged(ctx, movieID))

	_, err := store.Get(ctx, NamespaceMovieByID, movieID.String())
	assert.ErrorIs(t, err, ErrMiss)
	_, err = store.Get(ctx, NamespaceMovieList, "page=1&pageSize=10")
	assert.ErrorIs(t, err, ErrMiss)

	// profiles are not affected by movie metadata changes
	_, err = store.Get(ctx, NamespaceUserRatingProfile, "7")
	assert.NoError(t, err)
}
