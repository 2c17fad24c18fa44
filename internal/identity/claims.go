package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the wire payload of a bearer token.
type Claims struct {
	UserID int64 `json:"userId"`
	Role   Role  `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the verified, decoded view of a token. It is immutable once
// reconstructed; validity is entirely signature plus expiry, no server-side
// session exists.
type Identity struct {
	SubjectID int64
	Name      string
	Role      Role
	ExpiresAt time.Time
}
