package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/dumpster-rentals/internal/model"
	"github.com/nurpe/dumpster-rentals/internal/service"
)

const (
	principalKey = "principal"
	expiresKey   = "token_expires_at"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.Principal, time.Time, error)
}

// Auth rejects requests without a valid bearer token and stores the caller's
// principal on the context.
func Auth(sessions Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		principal, expires, err := sessions.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
				return
			}
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("authenticate request")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "authentication unavailable"})
			return
		}

		c.Set(principalKey, principal)
		c.Set(expiresKey, expires)
		c.Next()
	}
}

func MustPrincipal(c *gin.Context) (model.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return model.Principal{}, false
	}
	principal, ok := value.(model.Principal)
	return principal, ok
}

// TokenExpiry is the expiry of the token that authenticated the request.
func TokenExpiry(c *gin.Context) time.Time {
	return c.GetTime(expiresKey)
}
