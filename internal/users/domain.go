package users

import (
	"time"

	"github.com/opsdesk/opsdesk/internal/identity"
)

// User is the directory view of an account: everything except credentials.
type User struct {
	ID        int64         `json:"userId"`
	Name      string        `json:"name"`
	Role      identity.Role `json:"role"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Filter narrows a directory listing; all fields optional and conjunctive.
type Filter struct {
	ID   *int64
	Role identity.Role
	Name string
}
