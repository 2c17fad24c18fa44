package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/opsdesk/opsdesk/internal/identity"
	"github.com/opsdesk/opsdesk/internal/observability"
	"github.com/opsdesk/opsdesk/internal/shared"
)

// Handler wires HTTP endpoints for credential flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	issuer    *identity.Issuer
	metrics   *observability.Metrics
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, issuer *identity.Issuer, metrics *observability.Metrics) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		issuer:    issuer,
		metrics:   metrics,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes. Both are public: login is the entry
// point to the identity layer and registration is open by design.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/register", h.handleRegister)
}

type loginRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.Error(w, http.StatusBadRequest, "name and password are required")
		return
	}

	account, err := h.service.Authenticate(r.Context(), req.Name, req.Password)
	if err != nil {
		h.metrics.RecordError("auth.login")
		shared.Error(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		return
	}

	token, err := h.issuer.Issue(account.ID, account.Name, account.Role)
	if err != nil {
		h.logger.Error("issue token", slog.Any("error", err))
		h.metrics.RecordError("auth.issue")
		shared.Error(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	shared.JSON(w, http.StatusOK, loginResponse{Token: token})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.Error(w, http.StatusBadRequest, "name, password (min 8 chars) and role are required")
		return
	}
	role, err := identity.ParseRole(req.Role)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.service.Register(r.Context(), req.Name, req.Password, role); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			shared.Error(w, http.StatusBadRequest, "user already exists")
			return
		}
		h.logger.Error("register account", slog.Any("error", err))
		h.metrics.RecordError("auth.register")
		shared.Error(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	shared.JSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}
