package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cinetrack/cinetrack/internal/cache"
	"github.com/cinetrack/cinetrack/internal/config"
	"github.com/cinetrack/cinetrack/internal/observability/metrics"
	ratingdomain "github.com/cinetrack/cinetrack/internal/rating/domain"
	"github.com/cinetrack/cinetrack/internal/stats"
	"github.com/cinetrack/cinetrack/internal/user/domain"
	"github.com/cinetrack/cinetrack/pkg/db"
	"github.com/cinetrack/cinetrack/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
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
		log:          p.Log.Named("user.service"),
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

func (s *Service) Register(ctx context.Context, req domain.RegisterUserRequest) (domain.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.User{}, domain.ErrInvalidName
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, domain.ErrInvalidEmail
	}
	if len(req.Password) < 8 {
		return domain.User{}, domain.ErrInvalidPassword
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return domain.User{}, err
	}
	if existing != nil {
		return domain.User{}, domain.ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           s.genID.Generate(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.User{}, domain.ErrEmailExists
		}
		return domain.User{}, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return *user, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.User, error) {
	userID, err := parseID(id)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}
	return *user, nil
}

func (s *Service) List(ctx context.Context, req domain.ListUsersRequest) (domain.ListUsersResponse, error) {
	policy := s.policy.Current()
	page := req.Page.Normalize(policy.DefaultPageSize, policy.MaxPageSize)

	items, total, err := s.repo.List(ctx, s.db, page)
	if err != nil {
		return domain.ListUsersResponse{}, err
	}

	users := make([]domain.User, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		users = append(users, *item)
	}

	return domain.ListUsersResponse{
		PageInfo: pagination.BuildPageInfo(page, total),
		Users:    users,
	}, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateUserRequest) (domain.User, error) {
	userID, err := parseID(req.ID)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.User{}, domain.ErrInvalidName
		}
		user.Name = name
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, user); err != nil {
		return domain.User{}, err
	}

	if err := s.invalidator.UserChanged(ctx, userID); err != nil {
		return domain.User{}, err
	}
	return *user, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	userID, err := parseID(id)
	if err != nil {
		return err
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrNotFound
	}

	ratings, err := s.ratingRepo.FindByUser(ctx, s.db, userID)
	if err != nil {
		return err
	}
	movieIDs := make([]snowflake.ID, 0, len(ratings))
	for _, rating := range ratings {
		if rating != nil {
			movieIDs = append(movieIDs, rating.MovieID)
		}
	}

	if err := s.ratingRepo.DeleteByUser(ctx, s.db, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, s.db, userID); err != nil {
		return err
	}

	if err := s.invalidator.UserDeleted(ctx, userID, movieIDs); err != nil {
		return err
	}

	s.log.Info("user deleted", zap.String("user_id", userID.String()), zap.Int("ratings_removed", len(movieIDs)))
	return nil
}

func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	userID, err := parseID(id)
	if err != nil {
		return false, err
	}
	return s.repo.Exists(ctx, s.db, userID)
}

func (s *Service) RatingProfile(ctx context.Context, id string) (domain.RatingProfile, error) {
	userID, err := parseID(id)
	if err != nil {
		return domain.RatingProfile{}, err
	}

	useCache := s.policy.Current().CacheEnabled
	cacheKey := userID.String()

	if useCache {
		if raw, err := s.cache.Get(ctx, cache.NamespaceUserRatingProfile, cacheKey); err == nil {
			var cached domain.RatingProfile
			if json.Unmarshal(raw, &cached) == nil {
				s.cacheMetrics.Hit(string(cache.NamespaceUserRatingProfile))
				return cached, nil
			}
		} else if errors.Is(err, cache.ErrMiss) {
			s.cacheMetrics.Miss(string(cache.NamespaceUserRatingProfile))
		}
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return domain.RatingProfile{}, err
	}
	if user == nil {
		return domain.RatingProfile{}, domain.ErrNotFound
	}

	st, err := s.stats.UserStats(ctx, userID)
	if err != nil {
		return domain.RatingProfile{}, err
	}

	rows, err := s.ratingRepo.FindByUser(ctx, s.db, userID)
	if err != nil {
		return domain.RatingProfile{}, err
	}
	ratings := make([]ratingdomain.Rating, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			ratings = append(ratings, *row)
		}
	}

	profile := domain.RatingProfile{
		UserID:        user.ID,
		UserName:      user.Name,
		AverageRating: st.Average,
		TotalRatings:  st.Count,
		Ratings:       ratings,
	}

	if useCache {
		if raw, err := json.Marshal(profile); err == nil {
			_ = s.cache.Put(ctx, cache.NamespaceUserRatingProfile, cacheKey, raw)
		}
	}
	return profile, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
