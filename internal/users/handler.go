package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/opsdesk/opsdesk/internal/identity"
	"github.com/opsdesk/opsdesk/internal/shared"
)

// Handler serves the user directory. The routes sit in the public-optional
// class: peer services resolve remote foreign keys here without end-user
// credentials.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	gatekeeper *identity.Gatekeeper
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gatekeeper *identity.Gatekeeper) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, gatekeeper: gatekeeper}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gatekeeper.Optional())
		r.Get("/", h.listUsers)
		r.Get("/{userID}", h.getUser)
	})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	filter := Filter{Name: r.URL.Query().Get("name")}
	if raw := r.URL.Query().Get("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, "id must be an integer")
			return
		}
		filter.ID = &id
	}
	if raw := r.URL.Query().Get("role"); raw != "" {
		role, err := identity.ParseRole(raw)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Role = role
	}

	users, err := h.service.ListUsers(r.Context(), filter)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	if users == nil {
		users = []User{}
	}
	shared.JSON(w, http.StatusOK, users)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "user id must be an integer")
		return
	}
	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("get user", slog.Any("error", err))
		}
		shared.RespondError(w, err)
		return
	}
	shared.JSON(w, http.StatusOK, user)
}
