package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/cinetrack/cinetrack/internal/cache"
	"github.com/cinetrack/cinetrack/internal/config"
	"github.com/cinetrack/cinetrack/internal/movie/domain"
	"github.com/cinetrack/cinetrack/internal/movie/repository"
	ratingdomain "github.com/cinetrack/cinetrack/internal/rating/domain"
	ratingrepository "github.com/cinetrack/cinetrack/internal/rating/repository"
	"github.com/cinetrack/cinetrack/internal/stats"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupMovieService(t *testing.T, node *snowflake.Node, store cache.Store) (domain.Service, *gorm.DB, *cache.Invalidator) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Movie{}, &ratingdomain.Rating{}))

	ratingRepo := ratingrepository.Provide()
	invalidator := cache.NewInvalidator(store, zap.NewNop(), nil)

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Repo:        repository.Provide(),
		RatingRepo:  ratingRepo,
		Stats:       stats.NewComputer(stats.Params{DB: db, Repo: ratingRepo}),
		Cache:       store,
		Invalidator: invalidator,
		Policy:      config.StaticPolicyHolder(config.DefaultPolicy()),
	})
	return svc, db, invalidator
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

func seedRating(t *testing.T, db *gorm.DB, node *snowflake.Node, movieID snowflake.ID, value float64) snowflake.ID {
	t.Helper()
	userID := node.Generate()
	rating := ratingdomain.Rating{
		ID:      node.Generate(),
		UserID:  userID,
		MovieID: movieID,
		Value:   value,
	}
	require.NoError(t, db.Create(&rating).Error)
	return userID
}

func TestCreateRejectsDuplicateTitle(t *testing.T) {
	node := mustNode(t)
	svc, _, _ := setupMovieService(t, node, cache.NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateMovieRequest{
		Title:       "Heat",
		Genre:       "crime",
		ReleaseYear: 1995,
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateMovieRequest{
		Title:       "Heat",
		Genre:       "thriller",
		ReleaseYear: 1995,
	})
	assert.ErrorIs(t, err, domain.ErrTitleExists)
}

func TestGetByIDComposesDerivedStats(t *testing.T) {
	node := mustNode(t)
	svc, db, _ := setupMovieService(t, node, cache.NewMemoryStore())
	ctx := context.Background()

	movie, err := svc.Create(ctx, domain.CreateMovieRequest{
		Title:       "Alien",
		Genre:       "sci-fi",
		ReleaseYear: 1979,
	})
	require.NoError(t, err)

	fresh, err := svc.GetByID(ctx, movie.ID.String())
	require.NoError(t, err)
	assert.Nil(t, fresh.AverageRating)
	assert.EqualValues(t, 0, fresh.TotalRatings)

	seedRating(t, db, node, movie.ID, 9.0)
	seedRating(t, db, node, movie.ID, 7.0)

	// the cached zero-rating snapshot is still being served; stats change
	// only becomes visible after invalidation
	stale, err := svc.GetByID(ctx, movie.ID.String())
	require.NoError(t, err)
	assert.EqualValues(t, 0, stale.TotalRatings)
}

func TestRatingInvalidationMakesStatsVisible(t *testing.T) {
	node := mustNode(t)
	store := cache.NewMemoryStore()
	svc, db, inv := setupMovieService(t, node, store)
	ctx := context.Background()

	movie, err := svc.Create(ctx, domain.CreateMovieRequest{
		Title:       "Ran",
		Genre:       "drama",
		ReleaseYear: 1985,
	})
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, movie.ID.String())
	require.NoError(t, err)

	userID := seedRating(t, db, node, movie.ID, 8.0)
	require.NoError(t, inv.RatingWritten(ctx, movie.ID, userID))

	got, err := svc.GetByID(ctx, movie.ID.String())
	require.NoError(t, err)
	require.NotNil(t, got.AverageRating)
	assert.Equal(t, 8.0, *got.AverageRating)
	assert.EqualValues(t, 1, got.TotalRatings)
}

func TestListIsCachedUntilCreateSweeps(t *testing.T) {
	node := mustNode(t)
	store := cache.NewMemoryStore()
	svc, _, _ := setupMovieService(t, node, store)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateMovieRequest{
		Title:       "Jaws",
		Genre:       "thriller",
		ReleaseYear: 1975,
	})
	require.NoError(t, err)

	first, err := svc.List(ctx, domain.ListMoviesRequest{})
	require.NoError(t, err)
	require.Len(t, first.Movies, 1)

	// the listing page is now cached
	_, err = store.Get(ctx, cache.NamespaceMovieList, "page=1&pageSize=10")
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateMovieRequest{
		Title:       "Rocky",
		Genre:       "drama",
		ReleaseYear: 1976,
	})
	require.NoError(t, err)

	second, err := svc.List(ctx, domain.ListMoviesRequest{})
	require.NoError(t, err)
	assert.Len(t, second.Movies, 2)
	assert.EqualValues(t, 2, second.Total)
}

func TestDeleteCascadesRatingsAndEvicts(t *testing.T) {
	node := mustNode(t)
	store := cache.NewMemoryStore()
	svc, db, _ := setupMovieService(t, node, store)
	ctx := context.Background()

	movie, err := svc.Create(ctx, domain.CreateMovieRequest{
		Title:       "Seven",
		Genre:       "crime",
		ReleaseYear: 1995,
	})
	require.NoError(t, err)

	seedRating(t, db, node, movie.ID, 9.0)

	_, err = svc.GetByID(ctx, movie.ID.String())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, movie.ID.String()))

	_, err = svc.GetByID(ctx, movie.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&ratingdomain.Rating{}).Where("movie_id = ?", movie.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestUpdateEvictsCachedDetail(t *testing.T) {
	node := mustNode(t)
	store := cache.NewMemoryStore()
	svc, _, _ := setupMovieService(t, node, store)
	ctx := context.Background()

	movie, err := svc.Create(ctx, domain.CreateMovieRequest{
		Title:       "Old Title",
		Genre:       "drama",
		ReleaseYear: 2001,
	})
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, movie.ID.String())
	require.NoError(t, err)

	newTitle := "New Title"
	updated, err := svc.Update(ctx, domain.UpdateMovieRequest{
		ID:    movie.ID.String(),
		Title: &newTitle,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Title", updated.Title)
	assert.Equal(t, "new-title", updated.Slug)

	got, err := svc.GetByID(ctx, movie.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "New Title", got.Title)
}

func TestExistsReflectsLifecycle(t *testing.T) {
	node := mustNode(t)
	svc, _, _ := setupMovieService(t, node, cache.NewMemoryStore())
	ctx := context.Background()

	movie, err := svc.Create(ctx, domain.CreateMovieRequest{
		Title:       "Tampopo",
		Genre:       "comedy",
		ReleaseYear: 1985,
	})
	require.NoError(t, err)

	exists, err := svc.Exists(ctx, movie.ID.String())
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, svc.Delete(ctx, movie.ID.String()))

	exists, err = svc.Exists(ctx, movie.ID.String())
	require.NoError(t, err)
	assert.False(t, exists)
}
