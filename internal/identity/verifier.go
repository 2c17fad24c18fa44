package identity

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is the single rejection reason for malformed, unsigned,
// wrong-key and expired tokens alike, so callers cannot learn which
// cryptographic check failed.
var ErrInvalidToken = errors.New("identity: invalid token")

// Verifier validates bearer tokens against every key in the keyring.
// Stateless and safe for unlimited concurrent invocation.
type Verifier struct {
	keyring *Keyring
}

// NewVerifier constructs a Verifier.
func NewVerifier(keyring *Keyring) *Verifier {
	return &Verifier{keyring: keyring}
}

// Verify checks signature and expiry and reconstructs the identity claim.
func (v *Verifier) Verify(token string) (*Identity, error) {
	for _, key := range v.keyring.VerificationKeys() {
		claims := &Claims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
			return key, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !parsed.Valid {
			continue
		}
		if !claims.Role.Valid() || claims.ExpiresAt == nil {
			continue
		}
		return &Identity{
			SubjectID: claims.UserID,
			Name:      claims.Subject,
			Role:      claims.Role,
			ExpiresAt: claims.ExpiresAt.Time,
		}, nil
	}
	return nil, ErrInvalidToken
}
