package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cinetrack/cinetrack/internal/authcontext"
	"github.com/cinetrack/cinetrack/internal/cache"
	"github.com/cinetrack/cinetrack/internal/config"
	"github.com/cinetrack/cinetrack/internal/rating/domain"
	"github.com/cinetrack/cinetrack/internal/validation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	Validator   validation.Validator
	Invalidator *cache.Invalidator
	Policy      *config.PolicyHolder
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	validator   validation.Validator
	invalidator *cache.Invalidator
	policy      *config.PolicyHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("rating.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		validator:   p.Validator,
		invalidator: p.Invalidator,
		policy:      p.Policy,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRatingRequest) (domain.Rating, error) {
	userID, movieID, err := s.checkedPair(ctx, req.UserID, req.MovieID, req.Value)
	if err != nil {
		return domain.Rating{}, err
	}

	exists, err := s.repo.ExistsByUserAndMovie(ctx, s.db, userID, movieID)
	if err != nil {
		return domain.Rating{}, err
	}
	if exists {
		return domain.Rating{}, domain.ErrAlreadyRated
	}

	return s.write(ctx, userID, movieID, req.Value, req.Review)
}

func (s *Service) Rate(ctx context.Context, req domain.RateRequest) (domain.Rating, error) {
	userID, movieID, err := s.checkedPair(ctx, req.UserID, req.MovieID, req.Value)
	if err != nil {
		return domain.Rating{}, err
	}
	return s.write(ctx, userID, movieID, req.Value, req.Review)
}

// checkedPair runs the shared validation chain for rating writes: value
// bounds, token/body identity match, then the cross-service existence
// checks with the caller's delegated token.
func (s *Service) checkedPair(ctx context.Context, rawUserID, rawMovieID string, value float64) (snowflake.ID, snowflake.ID, error) {
	userID, err := parseID(rawUserID)
	if err != nil {
		return 0, 0, err
	}
	movieID, err := parseID(rawMovieID)
	if err != nil {
		return 0, 0, err
	}

	policy := s.policy.Current()
	if value < policy.RatingMin || value > policy.RatingMax {
		return 0, 0, domain.ErrInvalidValue
	}

	if _, tokenUserID, ok := authcontext.FromContext(ctx); !ok || tokenUserID != userID {
		return 0, 0, domain.ErrUserMismatch
	}

	userExists, err := s.validator.UserExists(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	if !userExists {
		return 0, 0, domain.ErrUserNotFound
	}

	movieExists, err := s.validator.MovieExists(ctx, movieID)
	if err != nil {
		return 0, 0, err
	}
	if !movieExists {
		return 0, 0, domain.ErrMovieNotFound
	}

	return userID, movieID, nil
}

// write is the single store mutation path for create and rate. The cache
// invalidation runs before the write is acknowledged to the caller.
func (s *Service) write(ctx context.Context, userID, movieID snowflake.ID, value float64, review *string) (domain.Rating, error) {
	now := time.Now().UTC()
	rating := domain.Rating{
		ID:        s.genID.Generate(),
		UserID:    userID,
		MovieID:   movieID,
		Value:     value,
		Review:    trimReview(review),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Upsert(ctx, s.db, &rating); err != nil {
		return domain.Rating{}, err
	}

	if err := s.invalidator.RatingWritten(ctx, movieID, userID); err != nil {
		return domain.Rating{}, err
	}

	s.log.Info("rating written",
		zap.String("rating_id", rating.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("movie_id", movieID.String()),
	)
	return rating, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Rating, error) {
	ratingID, err := parseID(id)
	if err != nil {
		return domain.Rating{}, err
	}

	rating, err := s.repo.FindByID(ctx, s.db, ratingID)
	if err != nil {
		return domain.Rating{}, err
	}
	if rating == nil {
		return domain.Rating{}, domain.ErrNotFound
	}
	return *rating, nil
}

func (s *Service) GetByUserAndMovie(ctx context.Context, rawUserID, rawMovieID string) (domain.Rating, error) {
	userID, err := parseID(rawUserID)
	if err != nil {
		return domain.Rating{}, err
	}
	movieID, err := parseID(rawMovieID)
	if err != nil {
		return domain.Rating{}, err
	}

	rating, err := s.repo.FindByUserAndMovie(ctx, s.db, userID, movieID)
	if err != nil {
		return domain.Rating{}, err
	}
	if rating == nil {
		return domain.Rating{}, domain.ErrNotFound
	}
	return *rating, nil
}

func (s *Service) ListByUser(ctx context.Context, rawUserID string) ([]domain.Rating, error) {
	userID, err := parseID(rawUserID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.FindByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	return dereference(items), nil
}

func (s *Service) ListByMovie(ctx context.Context, rawMovieID string) ([]domain.Rating, error) {
	movieID, err := parseID(rawMovieID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.FindByMovie(ctx, s.db, movieID)
	if err != nil {
		return nil, err
	}
	return dereference(items), nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRatingRequest) (domain.Rating, error) {
	ratingID, err := parseID(req.ID)
	if err != nil {
		return domain.Rating{}, err
	}

	rating, err := s.repo.FindByID(ctx, s.db, ratingID)
	if err != nil {
		return domain.Rating{}, err
	}
	if rating == nil {
		return domain.Rating{}, domain.ErrNotFound
	}

	if req.Value != nil {
		policy := s.policy.Current()
		if *req.Value < policy.RatingMin || *req.Value > policy.RatingMax {
			return domain.Rating{}, domain.ErrInvalidValue
		}
		rating.Value = *req.Value
	}
	if req.Review != nil {
		rating.Review = trimReview(req.Review)
	}
	rating.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, rating); err != nil {
		return domain.Rating{}, err
	}

	if err := s.invalidator.RatingWritten(ctx, rating.MovieID, rating.UserID); err != nil {
		return domain.Rating{}, err
	}
	return *rating, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ratingID, err := parseID(id)
	if err != nil {
		return err
	}

	rating, err := s.repo.FindByID(ctx, s.db, ratingID)
	if err != nil {
		return err
	}
	if rating == nil {
		return domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, s.db, ratingID); err != nil {
		return err
	}

	if err := s.invalidator.RatingWritten(ctx, rating.MovieID, rating.UserID); err != nil {
		return err
	}

	s.log.Info("rating deleted", zap.String("rating_id", ratingID.String()))
	return nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func trimReview(review *string) *string {
	if review == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*review)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func dereference(items []*domain.Rating) []domain.Rating {
	out := make([]domain.Rating, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, *item)
	}
	return out
}
