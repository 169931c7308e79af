package cache

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/cinetrack/cinetrack/internal/observability/metrics"
	"go.uber.org/zap"
)

// Invalidator is the single table of mutation → cache dependencies. Every
// mutating operation on ratings, movies or users returns through exactly one
// of these methods before acknowledging the write to its caller.
//
// All methods run on a context detached from request cancellation: once the
// store of record has been mutated, invalidation must complete even if the
// inbound request was abandoned, or the cache would stay stale forever.
type Invalidator struct {
	store   Store
	log     *zap.Logger
	metrics *metrics.CacheMetrics
}

func NewInvalidator(store Store, log *zap.Logger, m *metrics.CacheMetrics) *Invalidator {
	return &Invalidator{
		store:   store,
		log:     log.Named("cache.invalidator"),
		metrics: m,
	}
}

// RatingWritten covers rating create, update and delete. A rating write can
// change the movie's detail stats, every page of the movie listing, and the
// rating user's profile.
func (i *Invalidator) RatingWritten(ctx context.Context, movieID, userID snowflake.ID) error {
	ctx = context.WithoutCancel(ctx)

	if err := i.evict(ctx, NamespaceMovieByID, movieID.String()); err != nil {
		return err
	}
	if err := i.sweep(ctx, NamespaceMovieList); err != nil {
		return err
	}
	return i.evict(ctx, NamespaceUserRatingProfile, userID.String())
}

// MovieCreated only sweeps the listing: the new id cannot be cached yet.
func (i *Invalidator) MovieCreated(ctx context.Context) error {
	return i.sweep(context.WithoutCancel(ctx), NamespaceMovieList)
}

// MovieChanged covers movie update and delete.
func (i *Invalidator) MovieChanged(ctx context.Context, movieID snowflake.ID) error {
	ctx = context.WithoutCancel(ctx)

	if err := i.evict(ctx, NamespaceMovieByID, movieID.String()); err != nil {
		return err
	}
	return i.sweep(ctx, NamespaceMovieList)
}

// MovieDeleted covers movie deletion, which cascades to the movie's
// ratings. Affected user profiles are unbounded, so the whole profile
// namespace is swept; everything is reproducible from the store of record.
func (i *Invalidator) MovieDeleted(ctx context.Context, movieID snowflake.ID) error {
	ctx = context.WithoutCancel(ctx)

	if err := i.evict(ctx, NamespaceMovieByID, movieID.String()); err != nil {
		return err
	}
	if err := i.sweep(ctx, NamespaceMovieList); err != nil {
		return err
	}
	return i.sweep(ctx, NamespaceUserRatingProfile)
}

// UserChanged covers user profile edits; the cached rating profile carries
// the user's name.
func (i *Invalidator) UserChanged(ctx context.Context, userID snowflake.ID) error {
	return i.evict(context.WithoutCancel(ctx), NamespaceUserRatingProfile, userID.String())
}

// UserDeleted covers user deletion, which cascades to the user's ratings.
// The affected movies are known from the cascade, so their details are
// evicted precisely; the listing is swept because any page may carry stats
// derived from the removed ratings.
func (i *Invalidator) UserDeleted(ctx context.Context, userID snowflake.ID, ratedMovieIDs []snowflake.ID) error {
	ctx = context.WithoutCancel(ctx)

	for _, movieID := range ratedMovieIDs {
		if err := i.evict(ctx, NamespaceMovieByID, movieID.String()); err != nil {
			return err
		}
	}
	if len(ratedMovieIDs) > 0 {
		if err := i.sweep(ctx, NamespaceMovieList); err != nil {
			return err
		}
	}
	return i.evict(ctx, NamespaceUserRatingProfile, userID.String())
}

func (i *Invalidator) evict(ctx context.Context, ns Namespace, key string) error {
	if err := i.store.Evict(ctx, ns, key); err != nil {
		i.log.Error("cache evict failed", zap.String("namespace", string(ns)), zap.String("key", key), zap.Error(err))
		return err
	}
	i.metrics.Eviction(string(ns))
	return nil
}

func (i *Invalidator) sweep(ctx context.Context, ns Namespace) error {
	if err := i.store.EvictAll(ctx, ns); err != nil {
		i.log.Error("cache sweep failed", zap.String("namespace", string(ns)), zap.Error(err))
		return err
	}
	i.metrics.Eviction(string(ns))
	return nil
}
