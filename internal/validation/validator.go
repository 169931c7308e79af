package validation

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cinetrack/cinetrack/internal/authcontext"
	"go.uber.org/zap"
)

// ErrUnauthorized is returned when no token is bound to the request scope.
// The remote call is never attempted in that case.
var ErrUnauthorized = errors.New("unauthorized")

// Validator answers "does this entity exist" against the owning service.
//
// The answer is fail-closed: a downstream outage, timeout or non-200 status
// is reported as false, indistinguishable from a genuine absence. That
// trades availability for referential-integrity safety; outages are still
// visible in the logs via the reason field.
type Validator interface {
	UserExists(ctx context.Context, id snowflake.ID) (bool, error)
	MovieExists(ctx context.Context, id snowflake.ID) (bool, error)
}

// HTTPValidator implements Validator over the peer services' /exists probes,
// reusing the inbound caller's bearer token as delegated credential.
type HTTPValidator struct {
	userBaseURL  string
	movieBaseURL string
	client       *http.Client
	log          *zap.Logger
}

func NewHTTPValidator(userBaseURL, movieBaseURL string, timeout time.Duration, log *zap.Logger) *HTTPValidator {
	return &HTTPValidator{
		userBaseURL:  userBaseURL,
		movieBaseURL: movieBaseURL,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
			},
		},
		log: log.Named("validation"),
	}
}

func (v *HTTPValidator) UserExists(ctx context.Context, id snowflake.ID) (bool, error) {
	return v.exists(ctx, "user", fmt.Sprintf("%s/users/%s/exists", v.userBaseURL, id))
}

func (v *HTTPValidator) MovieExists(ctx context.Context, id snowflake.ID) (bool, error) {
	return v.exists(ctx, "movie", fmt.Sprintf("%s/movies/%s/exists", v.movieBaseURL, id))
}

func (v *HTTPValidator) exists(ctx context.Context, kind, endpoint string) (bool, error) {
	token, _, ok := authcontext.FromContext(ctx)
	if !ok {
		return false, ErrUnauthorized
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		// fail closed, but keep outages distinguishable in logs
		v.log.Warn("existence check failed",
			zap.String("kind", kind),
			zap.String("reason", "transport_error"),
			zap.Error(err),
		)
		return false, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode != http.StatusNotFound {
			v.log.Warn("existence check failed",
				zap.String("kind", kind),
				zap.String("reason", "unexpected_status"),
				zap.Int("status", resp.StatusCode),
			)
		}
		return false, nil
	}
	return true, nil
}
