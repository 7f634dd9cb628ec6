package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rgcsekaraa/todorama/internal/models"
)

// ErrUnauthenticated marks the normal "no valid session" outcome. Handlers
// translate it to 401; it is never a server fault.
var ErrUnauthenticated = errors.New("unauthenticated")

// Claims is the session token payload. UserID carries the identity
// provider's subject for the signed-in user.
type Claims struct {
	jwt.RegisteredClaims
	UserID  string `json:"user_id"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Verifier issues and verifies HS256 session tokens.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	return &Verifier{secret: []byte(secret)}, nil
}

func (v *Verifier) Issue(user models.SessionUser, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "todorama",
		},
		UserID:  user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Picture: user.Picture,
	})

	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify returns the session claims, or ErrUnauthenticated for a missing,
// malformed, expired, or forged token.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrUnauthenticated
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return nil, ErrUnauthenticated
	}

	return claims, nil
}

// User projects the claims back into the identity-provider user shape.
func (c *Claims) User() models.SessionUser {
	return models.SessionUser{
		ID:      c.UserID,
		Name:    c.Name,
		Email:   c.Email,
		Picture: c.Picture,
	}
}
