package tickets

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/opsdesk/opsdesk/internal/identity"
	"github.com/opsdesk/opsdesk/internal/shared"
)

const dateLayout = "2006-01-02"

// Handler wires the ticket HTTP surface. Reads sit in the public-optional
// class so peer services and the UI can browse without strict auth;
// mutations are protected, and assignment additionally requires the
// supervisor tier.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	gatekeeper *identity.Gatekeeper
	validator  *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gatekeeper *identity.Gatekeeper) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, gatekeeper: gatekeeper, validator: validator.New()}
}

// MountRoutes registers the ticket route table.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gatekeeper.Optional())
		r.Get("/", h.listTickets)
		r.Get("/{ticketID}", h.getTicket)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gatekeeper.Require(identity.RoleWorker))
		r.Post("/", h.createTicket)
		r.Put("/{ticketID}/status", h.updateStatus)
		r.Put("/{ticketID}/update", h.updateTicket)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gatekeeper.Require(identity.RoleSupervisor))
		r.Put("/{ticketID}/assign", h.assignTicket)
	})
}

type createTicketRequest struct {
	CreatedBy   int64  `json:"createdBy" validate:"required"`
	AssignedTo  *int64 `json:"assignedTo"`
	Title       string `json:"title" validate:"required,max=999"`
	Description string `json:"description" validate:"required,max=999"`
	DueDate     string `json:"dueDate" validate:"required"`
	Location    string `json:"location" validate:"required,max=999"`
	MediaType   string `json:"mediaType" validate:"required"`
	MediaID     *int64 `json:"mediaId"`
}

type updateTicketRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
	Location    *string `json:"location"`
	MediaType   *string `json:"mediaType"`
	MediaID     *int64  `json:"mediaId"`
}

func ticketID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "ticketID"), 10, 64)
}

func (h *Handler) listTickets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{Location: q.Get("location")}

	if raw := q.Get("assignedTo"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, "assignedTo must be an integer")
			return
		}
		filter.AssignedTo = &id
	}
	if raw := q.Get("createdBy"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, "createdBy must be an integer")
			return
		}
		filter.CreatedBy = &id
	}
	if raw := q.Get("status"); raw != "" {
		status, err := ParseStatus(raw)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Status = status
	}
	if raw := q.Get("dueDate"); raw != "" {
		due, err := time.Parse(dateLayout, raw)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, "dueDate must be formatted YYYY-MM-DD")
			return
		}
		filter.DueDate = &due
	}
	if raw := q.Get("mediaType"); raw != "" {
		mt, err := ParseMediaType(raw)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.MediaType = mt
	}

	list, err := h.service.GetFiltered(r.Context(), filter)
	if err != nil {
		h.logger.Error("list tickets", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Ticket{}
	}
	shared.JSON(w, http.StatusOK, list)
}

func (h *Handler) getTicket(w http.ResponseWriter, r *http.Request) {
	id, err := ticketID(r)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "ticket id must be an integer")
		return
	}
	ticket, err := h.service.GetTicket(r.Context(), id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.JSON(w, http.StatusOK, ticket)
}

func (h *Handler) createTicket(w http.ResponseWriter, r *http.Request) {
	var req createTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.Error(w, http.StatusBadRequest, "missing or oversized required fields")
		return
	}
	mediaType, err := ParseMediaType(req.MediaType)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "dueDate must be formatted YYYY-MM-DD")
		return
	}

	ticket, err := h.service.Create(r.Context(), CreateInput{
		CreatedBy:   req.CreatedBy,
		AssignedTo:  req.AssignedTo,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
		Location:    req.Location,
		MediaType:   mediaType,
		MediaID:     req.MediaID,
	})
	if err != nil {
		if !errors.Is(err, shared.ErrUserNotFound) && !errors.Is(err, shared.ErrDependencyUnavailable) {
			h.logger.Error("create ticket", slog.Any("error", err))
		}
		shared.RespondError(w, err)
		return
	}
	shared.JSON(w, http.StatusCreated, ticket)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := ticketID(r)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "ticket id must be an integer")
		return
	}
	status, err := ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	ticket, err := h.service.UpdateStatus(r.Context(), id, status)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.JSON(w, http.StatusOK, ticket)
}

func (h *Handler) assignTicket(w http.ResponseWriter, r *http.Request) {
	id, err := ticketID(r)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "ticket id must be an integer")
		return
	}
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "userId must be an integer")
		return
	}
	ticket, err := h.service.Assign(r.Context(), id, userID)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.JSON(w, http.StatusOK, ticket)
}

func (h *Handler) updateTicket(w http.ResponseWriter, r *http.Request) {
	id, err := ticketID(r)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "ticket id must be an integer")
		return
	}
	var req updateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		MediaID:     req.MediaID,
	}
	if req.DueDate != nil {
		due, err := time.Parse(dateLayout, *req.DueDate)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, "dueDate must be formatted YYYY-MM-DD")
			return
		}
		input.DueDate = &due
	}
	if req.MediaType != nil {
		mt, err := ParseMediaType(*req.MediaType)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		input.MediaType = &mt
	}

	ticket, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.JSON(w, http.StatusOK, ticket)
}
