package server

import (
	"context"
	"net/http"
	"time"

	"github.com/cinetrack/cinetrack/internal/auth"
	"github.com/cinetrack/cinetrack/internal/config"
	moviedomain "github.com/cinetrack/cinetrack/internal/movie/domain"
	"github.com/cinetrack/cinetrack/internal/observability"
	obslogger "github.com/cinetrack/cinetrack/internal/observability/logger"
	obsmetrics "github.com/cinetrack/cinetrack/internal/observability/metrics"
	ratingdomain "github.com/cinetrack/cinetrack/internal/rating/domain"
	userdomain "github.com/cinetrack/cinetrack/internal/user/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Log:             log,
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine    *gin.Engine
	cfg       config.Config
	log       *zap.Logger
	tokens    *auth.TokenService
	userSvc   userdomain.Service
	movieSvc  moviedomain.Service
	ratingSvc ratingdomain.Service
	policy    *config.PolicyHolder
}

type ServerParams struct {
	fx.In

	Gin       *gin.Engine
	Cfg       config.Config
	Log       *zap.Logger
	Tokens    *auth.TokenService
	UserSvc   userdomain.Service
	MovieSvc  moviedomain.Service
	RatingSvc ratingdomain.Service
	Policy    *config.PolicyHolder
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:    p.Gin,
		cfg:       p.Cfg,
		log:       p.Log.Named("server"),
		tokens:    p.Tokens,
		userSvc:   p.UserSvc,
		movieSvc:  p.MovieSvc,
		ratingSvc: p.RatingSvc,
		policy:    p.Policy,
	}

	svc.registerAuthRoutes()
	if p.Cfg.ServesGroup("users") {
		svc.registerUserRoutes()
	}
	if p.Cfg.ServesGroup("movies") {
		svc.registerMovieRoutes()
	}
	if p.Cfg.ServesGroup("ratings") {
		svc.registerRatingRoutes()
	}

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/register", s.RegisterUser)
	auth.POST("/login", s.Login)
	auth.POST("/validate-token", s.ValidateToken)
}

func (s *Server) registerUserRoutes() {
	users := s.engine.Group("/users")

	// the existence probe carries its own delegated bearer; peers call it
	// while validating writes, so it stays outside the auth gate
	users.GET("/:id/exists", s.UserExists)

	users.GET("", s.AuthRequired(), s.ListUsers)
	users.POST("", s.AuthRequired(), s.CreateUser)
	users.GET("/:id", s.AuthRequired(), s.GetUserByID)
	users.PUT("/:id", s.AuthRequired(), s.UpdateUser)
	users.DELETE("/:id", s.AuthRequired(), s.DeleteUser)
	users.GET("/:id/ratings", s.AuthRequired(), s.GetUserRatingProfile)
}

func (s *Server) registerMovieRoutes() {
	movies := s.engine.Group("/movies")

	movies.GET("/:id/exists", s.MovieExists)

	movies.GET("", s.AuthRequired(), s.ListMovies)
	movies.POST("", s.AuthRequired(), s.CreateMovie)
	movies.GET("/:id", s.AuthRequired(), s.GetMovieByID)
	movies.PUT("/:id", s.AuthRequired(), s.UpdateMovie)
	movies.DELETE("/:id", s.AuthRequired(), s.DeleteMovie)
}

func (s *Server) registerRatingRoutes() {
	ratings := s.engine.Group("/ratings", s.AuthRequired())

	ratings.POST("", s.CreateRating)
	ratings.GET("/:id", s.GetRatingByID)
	ratings.PUT("/:id", s.UpdateRating)
	ratings.DELETE("/:id", s.DeleteRating)
	ratings.GET("/user/:userId", s.ListRatingsByUser)
	ratings.GET("/movie/:movieId", s.ListRatingsByMovie)
	ratings.GET("/user/:userId/movie/:movieId", s.GetRatingByUserAndMovie)
	ratings.PUT("/user/:userId/movie/:movieId", s.RateMovie)
}
