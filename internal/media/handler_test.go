package media

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/opsdesk/internal/identity"
	_ "github.com/opsdesk/opsdesk/testing"
)

func newMediaRouter(t *testing.T) (chi.Router, *identity.Issuer, *memoryMediaRepo, *recordingEnqueuer) {
	t.Helper()
	keyring, err := identity.NewKeyring("test-secret")
	require.NoError(t, err)
	issuer := identity.NewIssuer(keyring, identity.DefaultTokenTTL)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gatekeeper := identity.NewGatekeeper(identity.NewVerifier(keyring), logger)

	repo := newMemoryMediaRepo()
	enqueuer := &recordingEnqueuer{}
	handler := NewHandler(logger, NewService(repo, enqueuer, logger, nil), gatekeeper)

	r := chi.NewRouter()
	r.Route("/api/v1/media", handler.MountRoutes)
	return r, issuer, repo, enqueuer
}

func uploadRequest(t *testing.T, mediaType, contentType string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("mediaType", mediaType))

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="evidence.bin"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/media", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadRequiresToken(t *testing.T) {
	router, _, repo, _ := newMediaRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, uploadRequest(t, "PHOTO", "image/jpeg", []byte("jpeg")))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, repo.items)
}

func TestUploadStoresAndEnqueues(t *testing.T) {
	router, issuer, repo, enqueuer := newMediaRouter(t)

	token, err := issuer.Issue(1, "casey", identity.RoleWorker)
	require.NoError(t, err)
	req := uploadRequest(t, "PHOTO", "image/jpeg", []byte("jpeg bytes"))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var got Media
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, TypePhoto, got.MediaType)
	require.Equal(t, "image/jpeg", got.BlobType)
	require.False(t, got.Analyzed)
	require.Equal(t, []int64{got.ID}, enqueuer.ids)

	stored, err := repo.GetByID(context.Background(), got.ID)
	require.NoError(t, err)
	require.Equal(t, []byte("jpeg bytes"), stored.Content)
}

func TestUploadRejectsUnknownType(t *testing.T) {
	router, issuer, _, _ := newMediaRouter(t)

	token, err := issuer.Issue(1, "casey", identity.RoleWorker)
	require.NoError(t, err)
	req := uploadRequest(t, "HOLOGRAM", "image/jpeg", []byte("x"))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetContentServesBlob(t *testing.T) {
	router, _, repo, _ := newMediaRouter(t)

	_, err := repo.Create(context.Background(), CreateInput{
		MediaType: TypeAudio,
		Content:   []byte("wav bytes"),
		BlobType:  "audio/wav",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/media/1/content", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "audio/wav", rec.Header().Get("Content-Type"))
	require.Equal(t, []byte("wav bytes"), rec.Body.Bytes())

	req = httptest.NewRequest(http.MethodGet, "/api/v1/media/1", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), "wav bytes", "metadata view must not leak the blob")
}

func TestAnalysisWriteRoutes(t *testing.T) {
	router, issuer, repo, _ := newMediaRouter(t)

	_, err := repo.Create(context.Background(), CreateInput{MediaType: TypePhoto, Content: []byte("x"), BlobType: "image/png"})
	require.NoError(t, err)

	token, err := issuer.Issue(1, "casey", identity.RoleWorker)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/media/1/analyzed?analyzed=true", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPut, "/api/v1/media/1/result?result=ok", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got Media
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.True(t, got.Analyzed)
	require.Equal(t, "ok", got.Result)

	req = httptest.NewRequest(http.MethodPut, "/api/v1/media/99/reason?reason=missing", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
