package auth

import (
	"context"
	"errors"

	"github.com/rgcsekaraa/todorama/internal/models"
)

// ErrInvalidGrant is returned when the identity provider rejects a sign-in
// code.
var ErrInvalidGrant = errors.New("identity provider rejected the grant")

// IdentityProvider is the external OAuth collaborator. It turns the
// authorization code produced by the provider's sign-in flow into a verified
// user identity. The concrete adapter (Google, etc.) is supplied at
// deployment; this service never inspects provider credentials itself.
type IdentityProvider interface {
	Exchange(ctx context.Context, code string) (models.SessionUser, error)
}

// StaticProvider resolves codes from a fixed table. Used in tests and local
// development where no real provider is reachable.
type StaticProvider struct {
	Users map[string]models.SessionUser
}

func (p *StaticProvider) Exchange(_ context.Context, code string) (models.SessionUser, error) {
	user, ok := p.Users[code]
	if !ok {
		return models.SessionUser{}, ErrInvalidGrant
	}
	return user, nil
}
