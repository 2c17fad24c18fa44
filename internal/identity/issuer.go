package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is the validity window for issued tokens.
const DefaultTokenTTL = 24 * time.Hour

// Issuer mints signed identity tokens. Safe for concurrent use; the keyring
// is read-only after construction.
type Issuer struct {
	keyring *Keyring
	ttl     time.Duration
	now     func() time.Time
}

// NewIssuer constructs an Issuer. A non-positive ttl falls back to the
// default 24h window.
func NewIssuer(keyring *Keyring, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Issuer{keyring: keyring, ttl: ttl, now: time.Now}
}

// Issue produces a signed token for an already-authenticated subject.
// It never fails for valid inputs beyond the signature computation itself.
func (i *Issuer) Issue(subjectID int64, name string, role Role) (string, error) {
	now := i.now()
	claims := Claims{
		UserID: subjectID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   name,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.keyring.SigningKey())
}
