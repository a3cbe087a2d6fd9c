package ports

import (
	"context"

	"github.com/moviehub/catalog-client/internal/core/domain"
)

// SessionRepository persists the credential and its decoded identity across
// restarts. Load returns an empty token and nil identity when no session is
// stored; Clear removes both unconditionally.
type SessionRepository interface {
	Save(ctx context.Context, token string, identity *domain.Identity) error
	Load(ctx context.Context) (string, *domain.Identity, error)
	Clear(ctx context.Context) error
}

// IdentityDecoder derives an Identity from an opaque credential. Decoding is
// a pure function of the credential; it performs no signature validation,
// since the token always originates from the trusted issuing server.
type IdentityDecoder interface {
	Decode(credential string) (*domain.Identity, error)
}
