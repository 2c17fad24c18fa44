package media

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/opsdesk/opsdesk/internal/identity"
	"github.com/opsdesk/opsdesk/internal/shared"
)

// maxUploadBytes caps multipart uploads at 32 MiB.
const maxUploadBytes = 32 << 20

// Handler wires the media HTTP surface. Reads are public-optional so the
// ticket UI can render attachments; uploads and analysis writes are
// protected.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	gatekeeper *identity.Gatekeeper
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gatekeeper *identity.Gatekeeper) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, gatekeeper: gatekeeper}
}

// MountRoutes registers the media route table.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gatekeeper.Optional())
		r.Get("/", h.listMedia)
		r.Get("/{mediaID}", h.getMedia)
		r.Get("/{mediaID}/content", h.getContent)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gatekeeper.Require(identity.RoleWorker))
		r.Post("/", h.uploadMedia)
		r.Put("/{mediaID}/analyzed", h.setAnalyzed)
		r.Put("/{mediaID}/result", h.setResult)
		r.Put("/{mediaID}/reason", h.setReason)
	})
}

func mediaID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "mediaID"), 10, 64)
}

func (h *Handler) uploadMedia(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	mediaType, err := ParseType(r.FormValue("mediaType"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "unreadable file part")
		return
	}
	blobType := header.Header.Get("Content-Type")
	if blobType == "" {
		blobType = "application/octet-stream"
	}

	m, err := h.service.Create(r.Context(), CreateInput{
		MediaType: mediaType,
		Content:   content,
		BlobType:  blobType,
	})
	if err != nil {
		h.logger.Error("upload media", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	shared.JSON(w, http.StatusCreated, m)
}

func (h *Handler) listMedia(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list media", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Media{}
	}
	shared.JSON(w, http.StatusOK, list)
}

func (h *Handler) getMedia(w http.ResponseWriter, r *http.Request) {
	id, err := mediaID(r)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "media id must be an integer")
		return
	}
	m, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.JSON(w, http.StatusOK, m)
}

func (h *Handler) getContent(w http.ResponseWriter, r *http.Request) {
	id, err := mediaID(r)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "media id must be an integer")
		return
	}
	m, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", m.BlobType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(m.Content)
}

func (h *Handler) setAnalyzed(w http.ResponseWriter, r *http.Request) {
	id, err := mediaID(r)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "media id must be an integer")
		return
	}
	analyzed, err := strconv.ParseBool(r.URL.Query().Get("analyzed"))
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "analyzed must be a boolean")
		return
	}
	m, err := h.service.SetAnalyzed(r.Context(), id, analyzed)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.JSON(w, http.StatusOK, m)
}

func (h *Handler) setResult(w http.ResponseWriter, r *http.Request) {
	id, err := mediaID(r)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "media id must be an integer")
		return
	}
	m, err := h.service.SetResult(r.Context(), id, r.URL.Query().Get("result"))
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.JSON(w, http.StatusOK, m)
}

func (h *Handler) setReason(w http.ResponseWriter, r *http.Request) {
	id, err := mediaID(r)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "media id must be an integer")
		return
	}
	m, err := h.service.SetReason(r.Context(), id, r.URL.Query().Get("reason"))
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	shared.JSON(w, http.StatusOK, m)
}
