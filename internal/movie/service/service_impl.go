package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cinetrack/cinetrack/internal/cache"
	"github.com/cinetrack/cinetrack/internal/config"
	"github.com/cinetrack/cinetrack/internal/movie/domain"
	"github.com/cinetrack/cinetrack/internal/observability/metrics"
	ratingdomain "github.com/cinetrack/cinetrack/internal/rating/domain"
	"github.com/cinetrack/cinetrack/internal/stats"
	"github.com/cinetrack/cinetrack/pkg/db"
	"github.com/cinetrack/cinetrack/pkg/db/pagination"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Repo         domain.Repository
	RatingRepo   ratingdomain.Repository
	Stats        *stats.Computer
	Cache        cache.Store
	Invalidator  *cache.Invalidator
	Policy       *config.PolicyHolder
	CacheMetrics *metrics.CacheMetrics
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         domain.Repository
	ratingRepo   ratingdomain.Repository
	stats        *stats.Computer
	cache        cache.Store
	invalidator  *cache.Invalidator
	policy       *config.PolicyHolder
	cacheMetrics *metrics.CacheMetrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("movie.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		ratingRepo:   p.RatingRepo,
		stats:        p.Stats,
		cache:        p.Cache,
		invalidator:  p.Invalidator,
		policy:       p.Policy,
		cacheMetrics: p.CacheMetrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateMovieRequest) (domain.Movie, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Movie{}, domain.ErrInvalidTitle
	}
	genre := strings.TrimSpace(req.Genre)
	if genre == "" {
		return domain.Movie{}, domain.ErrInvalidGenre
	}
	if req.ReleaseYear < 1888 || req.ReleaseYear > time.Now().UTC().Year()+5 {
		return domain.Movie{}, domain.ErrInvalidYear
	}

	existing, err := s.repo.FindByTitle(ctx, s.db, title)
	if err != nil {
		return domain.Movie{}, err
	}
	if existing != nil {
		return domain.Movie{}, domain.ErrTitleExists
	}

	now := time.Now().UTC()
	movie := domain.Movie{
		ID:              s.genID.Generate(),
		Title:           title,
		Slug:            slug.Make(title),
		Genre:           genre,
		ReleaseYear:     req.ReleaseYear,
		Description:     req.Description,
		Director:        req.Director,
		DurationMinutes: req.DurationMinutes,
		PosterURL:       req.PosterURL,
		Metadata:        datatypes.JSONMap{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, &movie); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Movie{}, domain.ErrTitleExists
		}
		return domain.Movie{}, err
	}

	// the new id cannot be cached yet, but the materialized listing can
	if err := s.invalidator.MovieCreated(ctx); err != nil {
		return domain.Movie{}, err
	}

	s.log.Info("movie created", zap.String("movie_id", movie.ID.String()), zap.String("title", title))
	return movie, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Movie, error) {
	movieID, err := parseID(id)
	if err != nil {
		return domain.Movie{}, err
	}

	useCache := s.policy.Current().CacheEnabled
	cacheKey := movieID.String()

	if useCache {
		if raw, err := s.cache.Get(ctx, cache.NamespaceMovieByID, cacheKey); err == nil {
			var cached domain.Movie
			if json.Unmarshal(raw, &cached) == nil {
				s.cacheMetrics.Hit(string(cache.NamespaceMovieByID))
				return cached, nil
			}
		} else if errors.Is(err, cache.ErrMiss) {
			s.cacheMetrics.Miss(string(cache.NamespaceMovieByID))
		}
	}

	movie, err := s.loadWithStats(ctx, movieID)
	if err != nil {
		return domain.Movie{}, err
	}

	if useCache {
		if raw, err := json.Marshal(movie); err == nil {
			// racing misses both recompute from current store state, so
			// last writer wins and either snapshot is correct
			_ = s.cache.Put(ctx, cache.NamespaceMovieByID, cacheKey, raw)
		}
	}
	return movie, nil
}

func (s *Service) List(ctx context.Context, req domain.ListMoviesRequest) (domain.ListMoviesResponse, error) {
	policy := s.policy.Current()
	page := req.Page.Normalize(policy.DefaultPageSize, policy.MaxPageSize)

	useCache := policy.CacheEnabled
	cacheKey := fmt.Sprintf("page=%d&pageSize=%d", page.Page, page.PageSize)

	if useCache {
		if raw, err := s.cache.Get(ctx, cache.NamespaceMovieList, cacheKey); err == nil {
			var cached domain.ListMoviesResponse
			if json.Unmarshal(raw, &cached) == nil {
				s.cacheMetrics.Hit(string(cache.NamespaceMovieList))
				return cached, nil
			}
		} else if errors.Is(err, cache.ErrMiss) {
			s.cacheMetrics.Miss(string(cache.NamespaceMovieList))
		}
	}

	items, total, err := s.repo.List(ctx, s.db, page)
	if err != nil {
		return domain.ListMoviesResponse{}, err
	}

	movies := make([]domain.Movie, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		movie := *item
		st, err := s.stats.MovieStats(ctx, movie.ID)
		if err != nil {
			return domain.ListMoviesResponse{}, err
		}
		movie.AverageRating = st.Average
		movie.TotalRatings = st.Count
		movies = append(movies, movie)
	}

	resp := domain.ListMoviesResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Movies:   movies,
	}

	if useCache {
		if raw, err := json.Marshal(resp); err == nil {
			_ = s.cache.Put(ctx, cache.NamespaceMovieList, cacheKey, raw)
		}
	}
	return resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateMovieRequest) (domain.Movie, error) {
	movieID, err := parseID(req.ID)
	if err != nil {
		return domain.Movie{}, err
	}

	movie, err := s.repo.FindByID(ctx, s.db, movieID)
	if err != nil {
		return domain.Movie{}, err
	}
	if movie == nil {
		return domain.Movie{}, domain.ErrNotFound
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return domain.Movie{}, domain.ErrInvalidTitle
		}
		if title != movie.Title {
			existing, err := s.repo.FindByTitle(ctx, s.db, title)
			if err != nil {
				return domain.Movie{}, err
			}
			if existing != nil && existing.ID != movie.ID {
				return domain.Movie{}, domain.ErrTitleExists
			}
			movie.Title = title
			movie.Slug = slug.Make(title)
		}
	}
	if req.Genre != nil {
		genre := strings.TrimSpace(*req.Genre)
		if genre == "" {
			return domain.Movie{}, domain.ErrInvalidGenre
		}
		movie.Genre = genre
	}
	if req.ReleaseYear != nil {
		if *req.ReleaseYear < 1888 || *req.ReleaseYear > time.Now().UTC().Year()+5 {
			return domain.Movie{}, domain.ErrInvalidYear
		}
		movie.ReleaseYear = *req.ReleaseYear
	}
	if req.Description != nil {
		movie.Description = req.Description
	}
	if req.Director != nil {
		movie.Director = req.Director
	}
	if req.DurationMinutes != nil {
		movie.DurationMinutes = req.DurationMinutes
	}
	if req.PosterURL != nil {
		movie.PosterURL = req.PosterURL
	}
	movie.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, movie); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Movie{}, domain.ErrTitleExists
		}
		return domain.Movie{}, err
	}

	if err := s.invalidator.MovieChanged(ctx, movieID); err != nil {
		return domain.Movie{}, err
	}

	st, err := s.stats.MovieStats(ctx, movieID)
	if err != nil {
		return domain.Movie{}, err
	}
	movie.AverageRating = st.Average
	movie.TotalRatings = st.Count
	return *movie, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	movieID, err := parseID(id)
	if err != nil {
		return err
	}

	movie, err := s.repo.FindByID(ctx, s.db, movieID)
	if err != nil {
		return err
	}
	if movie == nil {
		return domain.ErrNotFound
	}

	if err := s.ratingRepo.DeleteByMovie(ctx, s.db, movieID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, s.db, movieID); err != nil {
		return err
	}

	if err := s.invalidator.MovieDeleted(ctx, movieID); err != nil {
		return err
	}

	s.log.Info("movie deleted", zap.String("movie_id", movieID.String()))
	return nil
}

func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	movieID, err := parseID(id)
	if err != nil {
		return false, err
	}
	return s.repo.Exists(ctx, s.db, movieID)
}

func (s *Service) loadWithStats(ctx context.Context, movieID snowflake.ID) (domain.Movie, error) {
	movie, err := s.repo.FindByID(ctx, s.db, movieID)
	if err != nil {
		return domain.Movie{}, err
	}
	if movie == nil {
		return domain.Movie{}, domain.ErrNotFound
	}

	st, err := s.stats.MovieStats(ctx, movieID)
	if err != nil {
		return domain.Movie{}, err
	}
	movie.AverageRating = st.Average
	movie.TotalRatings = st.Count
	return *movie, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
