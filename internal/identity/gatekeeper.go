package identity

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/opsdesk/opsdesk/internal/shared"
)

const bearerPrefix = "Bearer "

// Gatekeeper classifies inbound requests per route. Routes fall into three
// classes: Protected (Require), public with optional identity (Optional),
// and fully public (no middleware at all). The classification is a static
// per-route table expressed as chi route groups; nothing is inferred from
// request content.
type Gatekeeper struct {
	verifier *Verifier
	logger   *slog.Logger
}

// NewGatekeeper constructs a Gatekeeper around a Verifier.
func NewGatekeeper(verifier *Verifier, logger *slog.Logger) *Gatekeeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gatekeeper{verifier: verifier, logger: logger}
}

// Require protects a route group: a missing or invalid token short-circuits
// with a generic 401 before the handler runs, and a valid token whose role
// does not meet the floor gets 403.
func (g *Gatekeeper) Require(min Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := g.identityFrom(r)
			if !ok {
				shared.Error(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
				return
			}
			if !id.Role.Meets(min) {
				g.logger.Warn("role below route floor",
					slog.String("path", r.URL.Path),
					slog.String("role", string(id.Role)))
				shared.Error(w, http.StatusForbidden, http.StatusText(http.StatusForbidden))
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), id)))
		})
	}
}

// Optional attaches a verified identity when one is presented; an absent or
// invalid token is not an error and the request proceeds anonymous. Trusted
// peer services call these routes without credentials.
func (g *Gatekeeper) Optional() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := g.identityFrom(r); ok {
				r = r.WithContext(ContextWithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g *Gatekeeper) identityFrom(r *http.Request) (*Identity, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return nil, false
	}
	id, err := g.verifier.Verify(strings.TrimPrefix(header, bearerPrefix))
	if err != nil {
		return nil, false
	}
	return id, true
}
