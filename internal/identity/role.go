package identity

import (
	"fmt"
	"strings"
)

// Role is the coarse permission tier carried in a token.
type Role string

const (
	RoleWorker     Role = "WORKER"
	RoleSupervisor Role = "SUPERVISOR"
	RoleAdmin      Role = "ADMIN"
)

var roleRank = map[Role]int{
	RoleWorker:     1,
	RoleSupervisor: 2,
	RoleAdmin:      3,
}

// ParseRole normalizes and validates a role string.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := roleRank[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether the role is one of the known tiers.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Meets reports whether the role satisfies the given floor.
func (r Role) Meets(min Role) bool {
	return roleRank[r] >= roleRank[min]
}
