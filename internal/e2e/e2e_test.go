package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cinetrack/cinetrack/internal/auth"
	"github.com/cinetrack/cinetrack/internal/cache"
	"github.com/cinetrack/cinetrack/internal/config"
	"github.com/cinetrack/cinetrack/internal/movie"
	moviedomain "github.com/cinetrack/cinetrack/internal/movie/domain"
	"github.com/cinetrack/cinetrack/internal/observability"
	obsmetrics "github.com/cinetrack/cinetrack/internal/observability/metrics"
	"github.com/cinetrack/cinetrack/internal/rating"
	ratingdomain "github.com/cinetrack/cinetrack/internal/rating/domain"
	"github.com/cinetrack/cinetrack/internal/server"
	"github.com/cinetrack/cinetrack/internal/stats"
	"github.com/cinetrack/cinetrack/internal/user"
	userdomain "github.com/cinetrack/cinetrack/internal/user/domain"
	"github.com/cinetrack/cinetrack/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	app     *fx.App
	db      *gorm.DB
	store   cache.Store
	baseURL string
	httpSrv *http.Server
}

var env *testEnv

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	var err error
	env, err = startEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to start test environment:", err)
		os.Exit(1)
	}

	code := m.Run()
	env.shutdown()
	os.Exit(code)
}

// startEnv boots the full application graph against an in-memory database
// and serves it on a loopback listener. The cross-service validator points
// back at this same listener, so existence probes travel a real HTTP hop
// with the delegated bearer.
func startEnv() (*testEnv, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	baseURL := "http://" + listener.Addr().String()

	cfg := config.Config{
		AppName:         "cinetrack-e2e",
		HTTPAddr:        listener.Addr().String(),
		Services:        []string{"users", "movies", "ratings"},
		AuthJWTSecret:   "e2e-secret-0123456789abcdef",
		UserServiceURL:  baseURL,
		MovieServiceURL: baseURL,
	}

	var (
		engine *gin.Engine
		dbConn *gorm.DB
		store  cache.Store
	)

	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg),
		fx.Provide(func() observability.Config {
			return observability.Config{ServiceName: cfg.AppName, LogLevel: "info", LogFormat: "json"}
		}),
		fx.Provide(zap.NewNop),
		fx.Provide(func() *config.PolicyHolder {
			return config.StaticPolicyHolder(config.DefaultPolicy())
		}),
		fx.Provide(openTestDB),
		fx.Provide(func() (*snowflake.Node, error) {
			return snowflake.NewNode(1)
		}),
		fx.Provide(obsmetrics.NewHTTPMetrics, obsmetrics.NewCacheMetrics),
		cache.Module,
		auth.Module,
		validation.Module,
		stats.Module,
		rating.Module,
		movie.Module,
		user.Module,
		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Invoke(func(*server.Server) {}),
		fx.Populate(&engine, &dbConn, &store),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		listener.Close()
		return nil, err
	}

	httpSrv := &http.Server{Handler: engine}
	go func() {
		_ = httpSrv.Serve(listener)
	}()

	return &testEnv{
		app:     app,
		db:      dbConn,
		store:   store,
		baseURL: baseURL,
		httpSrv: httpSrv,
	}, nil
}

func (e *testEnv) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = e.httpSrv.Shutdown(ctx)
	_ = e.app.Stop(ctx)
}

func openTestDB(lc fx.Lifecycle) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open("file:e2e?mode=memory&cache=shared&_loc=auto"), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&userdomain.User{}, &moviedomain.Movie{}, &ratingdomain.Rating{}); err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = ctx
			return sqlDB.Close()
		},
	})
	return db, nil
}

func resetState(t *testing.T) {
	t.Helper()
	for _, table := range []string{"ratings", "movies", "users"} {
		if err := env.db.Exec("DELETE FROM " + table).Error; err != nil {
			t.Fatalf("reset %s: %v", table, err)
		}
	}
	ctx := context.Background()
	for _, ns := range []cache.Namespace{cache.NamespaceMovieByID, cache.NamespaceMovieList, cache.NamespaceUserRatingProfile} {
		if err := env.store.EvictAll(ctx, ns); err != nil {
			t.Fatalf("reset cache %s: %v", ns, err)
		}
	}
}

func doJSON(t *testing.T, method, url, token string, payload any) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, raw
}

func registerAndLogin(t *testing.T, email string) (string, string) {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, env.baseURL+"/auth/register", "", map[string]any{
		"name":     "E2E User",
		"email":    email,
		"password": "correct-horse",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		Data struct {
			ID snowflake.ID `json:"id"`
		} `json:"data"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return out.Token, out.Data.ID.String()
}

func createMovie(t *testing.T, token, title string) string {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, env.baseURL+"/movies", token, map[string]any{
		"title":       title,
		"genre":       "drama",
		"releaseYear": 2020,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create movie: expected 201, got %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		Data struct {
			ID snowflake.ID `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode movie response: %v", err)
	}
	return out.Data.ID.String()
}

type movieView struct {
	Data struct {
		ID            snowflake.ID `json:"id"`
		Title         string       `json:"title"`
		AverageRating *float64     `json:"averageRating"`
		TotalRatings  int64        `json:"totalRatings"`
	} `json:"data"`
}

func getMovie(t *testing.T, token, movieID string) movieView {
	t.Helper()

	resp, body := doJSON(t, http.MethodGet, env.baseURL+"/movies/"+movieID, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get movie: expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	var out movieView
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode movie view: %v", err)
	}
	return out
}

func TestE2E_HealthCheck(t *testing.T) {
	resp, err := http.Get(env.baseURL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
}

func TestE2E_RateTwiceUpserts(t *testing.T) {
	resetState(t)

	token, userID := registerAndLogin(t, "rate-twice@example.com")
	movieID := createMovie(t, token, "Rate Twice")

	rateURL := env.baseURL + "/ratings/user/" + userID + "/movie/" + movieID

	resp, body := doJSON(t, http.MethodPut, rateURL, token, map[string]any{"value": 7.0})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first rate: expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = doJSON(t, http.MethodPut, rateURL, token, map[string]any{"value": 9.0})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second rate: expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	view := getMovie(t, token, movieID)
	if view.Data.TotalRatings != 1 {
		t.Fatalf("expected a single rating after re-rate, got %d", view.Data.TotalRatings)
	}
	if view.Data.AverageRating == nil || *view.Data.AverageRating != 9.0 {
		t.Fatalf("expected average 9.0, got %v", view.Data.AverageRating)
	}
}

func TestE2E_CreateRatingConflictsOnDuplicate(t *testing.T) {
	resetState(t)

	token, userID := registerAndLogin(t, "conflict@example.com")
	movieID := createMovie(t, token, "Conflict Movie")

	payload := map[string]any{"userId": userID, "movieId": movieID, "value": 8.0}

	resp, body := doJSON(t, http.MethodPost, env.baseURL+"/ratings", token, payload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d: %s", resp.StatusCode, string(body))
	}

	resp, _ = doJSON(t, http.MethodPost, env.baseURL+"/ratings", token, payload)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second create: expected 409, got %d", resp.StatusCode)
	}
}

func TestE2E_AverageAcrossUsers(t *testing.T) {
	resetState(t)

	tokenA, userA := registerAndLogin(t, "avg-a@example.com")
	tokenB, userB := registerAndLogin(t, "avg-b@example.com")
	movieID := createMovie(t, tokenA, "Average Movie")

	resp, body := doJSON(t, http.MethodPut, env.baseURL+"/ratings/user/"+userA+"/movie/"+movieID, tokenA, map[string]any{"value": 7.5})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rate as A: expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	resp, body = doJSON(t, http.MethodPut, env.baseURL+"/ratings/user/"+userB+"/movie/"+movieID, tokenB, map[string]any{"value": 8.5})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rate as B: expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	view := getMovie(t, tokenA, movieID)
	if view.Data.TotalRatings != 2 {
		t.Fatalf("expected 2 ratings, got %d", view.Data.TotalRatings)
	}
	if view.Data.AverageRating == nil || *view.Data.AverageRating != 8.0 {
		t.Fatalf("expected average 8.0, got %v", view.Data.AverageRating)
	}
}

func TestE2E_RatingRequiresToken(t *testing.T) {
	resetState(t)

	resp, _ := doJSON(t, http.MethodPost, env.baseURL+"/ratings", "", map[string]any{
		"userId":  "1",
		"movieId": "2",
		"value":   5.0,
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
}

func TestE2E_RatingForAnotherUserIsForbidden(t *testing.T) {
	resetState(t)

	tokenA, _ := registerAndLogin(t, "forbid-a@example.com")
	_, userB := registerAndLogin(t, "forbid-b@example.com")
	movieID := createMovie(t, tokenA, "Forbidden Movie")

	resp, _ := doJSON(t, http.MethodPost, env.baseURL+"/ratings", tokenA, map[string]any{
		"userId":  userB,
		"movieId": movieID,
		"value":   5.0,
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for mismatched user, got %d", resp.StatusCode)
	}
}

func TestE2E_ExistenceProbesAreUnauthenticated(t *testing.T) {
	resetState(t)

	token, userID := registerAndLogin(t, "probe@example.com")
	movieID := createMovie(t, token, "Probe Movie")

	for _, tc := range []struct {
		url    string
		status int
	}{
		{env.baseURL + "/movies/" + movieID + "/exists", http.StatusOK},
		{env.baseURL + "/users/" + userID + "/exists", http.StatusOK},
		{env.baseURL + "/movies/999999999/exists", http.StatusNotFound},
	} {
		resp, err := http.Get(tc.url)
		if err != nil {
			t.Fatalf("probe %s: %v", tc.url, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tc.status {
			t.Fatalf("probe %s: expected %d, got %d", tc.url, tc.status, resp.StatusCode)
		}
	}
}

func TestE2E_RatingProfileReflectsWrites(t *testing.T) {
	resetState(t)

	token, userID := registerAndLogin(t, "profile@example.com")
	movieID := createMovie(t, token, "Profile Movie")

	resp, body := doJSON(t, http.MethodPut, env.baseURL+"/ratings/user/"+userID+"/movie/"+movieID, token, map[string]any{"value": 6.0})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rate: expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	resp, body = doJSON(t, http.MethodGet, env.baseURL+"/users/"+userID+"/ratings", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile: expected 200, got %d: %s", resp.StatusCode, string(body))
	}

	var out struct {
		Data struct {
			TotalRatings  int64    `json:"totalRatings"`
			AverageRating *float64 `json:"averageRating"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if out.Data.TotalRatings != 1 {
		t.Fatalf("expected 1 rating in profile, got %d", out.Data.TotalRatings)
	}
	if out.Data.AverageRating == nil || *out.Data.AverageRating != 6.0 {
		t.Fatalf("expected profile average 6.0, got %v", out.Data.AverageRating)
	}
}
