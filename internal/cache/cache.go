package cache

import (
	"context"
	"errors"
)

// Namespace partitions the cache by the kind of computed response it holds.
type Namespace string

const (
	// NamespaceMovieByID holds single-movie responses keyed by movie id.
	NamespaceMovieByID Namespace = "movieById"
	// NamespaceMovieList holds materialized listing pages keyed by page params.
	NamespaceMovieList Namespace = "movieList"
	// NamespaceUserRatingProfile holds user rating profiles keyed by user id.
	NamespaceUserRatingProfile Namespace = "userRatingProfile"
)

// ErrMiss is returned by Get when the key is absent.
var ErrMiss = errors.New("cache_miss")

// Store is a key/value snapshot cache with per-namespace sweeps. Entries
// have no TTL; they live until explicitly invalidated. Everything derived
// from the store of record is reproducible, so a sweep is always safe.
type Store interface {
	Get(ctx context.Context, ns Namespace, key string) ([]byte, error)
	Put(ctx context.Context, ns Namespace, key string, value []byte) error
	Evict(ctx context.Context, ns Namespace, key string) error
	EvictAll(ctx context.Context, ns Namespace) error
}
