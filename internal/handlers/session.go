package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rgcsekaraa/todorama/internal/auth"
	"github.com/rgcsekaraa/todorama/internal/middleware"
)

type SessionHandler struct {
	verifier     *auth.Verifier
	provider     auth.IdentityProvider
	cookieName   string
	sessionTTL   time.Duration
	secureCookie bool
}

func NewSessionHandler(verifier *auth.Verifier, provider auth.IdentityProvider, cookieName string, sessionTTL time.Duration, secureCookie bool) *SessionHandler {
	return &SessionHandler{
		verifier:     verifier,
		provider:     provider,
		cookieName:   cookieName,
		sessionTTL:   sessionTTL,
		secureCookie: secureCookie,
	}
}

// Callback completes sign-in: the identity provider's authorization code is
// exchanged for a verified identity, which becomes our session cookie.
func (h *SessionHandler) Callback(c *gin.Context) {
	var input struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
		return
	}

	user, err := h.provider.Exchange(c.Request.Context(), input.Code)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidGrant) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		log.Printf("identity provider exchange failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign-in failed"})
		return
	}

	token, err := h.verifier.Issue(user, h.sessionTTL)
	if err != nil {
		log.Printf("session issuance failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign-in failed"})
		return
	}

	c.SetCookie(h.cookieName, token, int(h.sessionTTL.Seconds()), "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, user)
}

func (h *SessionHandler) SignOut(c *gin.Context) {
	c.SetCookie(h.cookieName, "", -1, "/", "", h.secureCookie, true)
	c.Status(http.StatusNoContent)
}

// Me returns the session user for the current request. Runs behind
// RequireSession.
func (h *SessionHandler) Me(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, claims.User())
}
