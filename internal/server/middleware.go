package server

import (
	"strings"

	"github.com/cinetrack/cinetrack/internal/authcontext"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthRequired verifies the bearer token and binds it, with the resolved
// user id, into the request scope. Downstream code (handlers, the
// cross-service validator) reads the binding from the request context; the
// binding dies with the request on every exit path.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		userID, err := s.tokens.Verify(token)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := authcontext.WithCarrier(c.Request.Context())
		if err := authcontext.Bind(ctx, token, userID); err != nil {
			s.log.Error("auth binding failed", zap.Error(err))
			AbortWithError(c, ErrInternal)
			return
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
