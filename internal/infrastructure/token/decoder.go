package token

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/moviehub/catalog-client/internal/core/domain"
)

// Decoder derives an Identity from a signed token's claims. The signature is
// not verified: tokens only ever reach the client from the issuing server,
// which is the trust boundary.
type Decoder struct {
	parser *jwt.Parser
}

func NewDecoder() *Decoder {
	return &Decoder{parser: jwt.NewParser()}
}

// Decode extracts the id, name, role, and email claims.
func (d *Decoder) Decode(credential string) (*domain.Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := d.parser.ParseUnverified(credential, claims); err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}

	identity := &domain.Identity{}
	if v, ok := claims["id"].(float64); ok {
		identity.ID = int(v)
	}
	identity.Name, _ = claims["name"].(string)
	identity.Role, _ = claims["role"].(string)
	identity.Email, _ = claims["email"].(string)

	return identity, nil
}
