package users_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/opsdesk/internal/identity"
	"github.com/opsdesk/opsdesk/internal/shared"
	"github.com/opsdesk/opsdesk/internal/users"
	_ "github.com/opsdesk/opsdesk/testing"
)

type memoryRepo struct {
	users map[int64]users.User
}

func (r *memoryRepo) GetByID(ctx context.Context, id int64) (*users.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &u, nil
}

func (r *memoryRepo) ListFiltered(ctx context.Context, filter users.Filter) ([]users.User, error) {
	var out []users.User
	for _, u := range r.users {
		if filter.ID != nil && u.ID != *filter.ID {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Name != "" && u.Name != filter.Name {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	repo := &memoryRepo{users: map[int64]users.User{
		7:  {ID: 7, Name: "ada", Role: identity.RoleWorker},
		8:  {ID: 8, Name: "grace", Role: identity.RoleSupervisor},
		11: {ID: 11, Name: "lin", Role: identity.RoleWorker},
	}}
	kr, err := identity.NewKeyring("users-test-secret")
	require.NoError(t, err)
	gk := identity.NewGatekeeper(identity.NewVerifier(kr), nil)
	handler := users.NewHandler(nil, users.NewService(repo), gk)
	r := chi.NewRouter()
	r.Route("/api/v1/users", handler.MountRoutes)
	return r
}

func TestGetUserByID(t *testing.T) {
	router := newRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/v1/users/7", nil))

	require.Equal(t, http.StatusOK, res.Code)
	var u users.User
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &u))
	require.Equal(t, "ada", u.Name)
}

func TestGetUserNotFound(t *testing.T) {
	router := newRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/v1/users/999", nil))

	require.Equal(t, http.StatusNotFound, res.Code)
}

func TestListUsersFiltersAreConjunctive(t *testing.T) {
	router := newRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/v1/users?role=WORKER&name=lin", nil))

	require.Equal(t, http.StatusOK, res.Code)
	var out []users.User
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	require.Len(t, out, 1)
	require.Equal(t, int64(11), out[0].ID)
}

func TestListUsersNoTokenStillServes(t *testing.T) {
	// The directory is the remote side of the existence oracle; peer
	// services call it without credentials.
	router := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
}
