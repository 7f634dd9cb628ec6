package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rgcsekaraa/todorama/internal/auth"
)

// RequireSessionPage guards protected pages. Unauthenticated visitors are
// redirected to the public landing page before any protected content renders.
// The guard only decides pass-or-redirect; it never mutates session or todo
// state.
func RequireSessionPage(verifier *auth.Verifier, cookieName, landingPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := verifier.Verify(extractToken(c, cookieName))
		if err != nil {
			c.Redirect(http.StatusFound, landingPath)
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(claimsKey, claims)
		c.Next()
	}
}
