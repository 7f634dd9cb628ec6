package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rgcsekaraa/todorama/internal/auth"
)

const (
	userIDKey = "user_id"
	claimsKey = "session_claims"
)

// RequireSession gates API routes. It resolves the session before any
// handler logic runs; requests without a valid session are rejected with 401
// regardless of their body.
func RequireSession(verifier *auth.Verifier, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := verifier.Verify(extractToken(c, cookieName))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// CurrentUserID returns the authenticated caller's id. Only valid behind
// RequireSession or RequireSessionPage.
func CurrentUserID(c *gin.Context) string {
	if v, ok := c.Get(userIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// CurrentClaims returns the full session claims, or nil outside a session.
func CurrentClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

func extractToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
