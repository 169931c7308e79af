package authcontext

import (
	"context"
	"errors"
	"sync"

	"github.com/bwmarrin/snowflake"
)

// ErrAlreadyBound is returned when a request scope is bound a second time.
var ErrAlreadyBound = errors.New("auth_context_already_bound")

// CarrierKey is the request context key for the auth binding.
type CarrierKey struct{}

// Binding holds the caller's bearer token and resolved user id for the
// lifetime of one inbound request. It is installed empty by the HTTP
// middleware and bound at most once, on first successful token validation.
type Binding struct {
	mu     sync.Mutex
	bound  bool
	token  string
	userID snowflake.ID
}

// WithCarrier installs an empty binding on the context. Call once per
// inbound request, before any handler code runs. The binding dies with the
// request context, so teardown needs no explicit release step.
func WithCarrier(ctx context.Context) context.Context {
	return context.WithValue(ctx, CarrierKey{}, &Binding{})
}

// Bind records the caller's token and user id in the request scope.
// A second Bind within the same scope fails with ErrAlreadyBound.
func Bind(ctx context.Context, token string, userID snowflake.ID) error {
	carrier, ok := carrierFrom(ctx)
	if !ok {
		return errors.New("auth_context_missing_carrier")
	}

	carrier.mu.Lock()
	defer carrier.mu.Unlock()

	if carrier.bound {
		return ErrAlreadyBound
	}
	carrier.bound = true
	carrier.token = token
	carrier.userID = userID
	return nil
}

// FromContext returns the bound token and user id, if any.
func FromContext(ctx context.Context) (string, snowflake.ID, bool) {
	carrier, ok := carrierFrom(ctx)
	if !ok {
		return "", 0, false
	}

	carrier.mu.Lock()
	defer carrier.mu.Unlock()

	if !carrier.bound {
		return "", 0, false
	}
	return carrier.token, carrier.userID, true
}

func carrierFrom(ctx context.Context) (*Binding, bool) {
	if ctx == nil {
		return nil, false
	}
	carrier, ok := ctx.Value(CarrierKey{}).(*Binding)
	if !ok || carrier == nil {
		return nil, false
	}
	return carrier, true
}
