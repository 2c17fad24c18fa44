package auth

import (
	"time"

	"github.com/opsdesk/opsdesk/internal/identity"
)

// Account is a credential-store record. It never leaves this service except
// as fields folded into an issued token.
type Account struct {
	ID           int64
	Name         string
	PasswordHash string
	Role         identity.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
