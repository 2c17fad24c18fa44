package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/opsdesk/internal/media"
	"github.com/opsdesk/opsdesk/internal/shared"
	_ "github.com/opsdesk/opsdesk/testing"
)

type fakeMediaRepo struct {
	items map[int64]*media.Media
}

func (r *fakeMediaRepo) Create(ctx context.Context, input media.CreateInput) (*media.Media, error) {
	panic("not used")
}

func (r *fakeMediaRepo) GetByID(ctx context.Context, id int64) (*media.Media, error) {
	m, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMediaRepo) List(ctx context.Context) ([]media.Media, error) {
	panic("not used")
}

func (r *fakeMediaRepo) SetAnalyzed(ctx context.Context, id int64, analyzed bool) (*media.Media, error) {
	m, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	m.Analyzed = analyzed
	return m, nil
}

func (r *fakeMediaRepo) SetResult(ctx context.Context, id int64, result string) (*media.Media, error) {
	m, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	m.Result = result
	return m, nil
}

func (r *fakeMediaRepo) SetReason(ctx context.Context, id int64, reason string) (*media.Media, error) {
	m, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	m.Reason = reason
	return m, nil
}

var _ media.Repository = (*fakeMediaRepo)(nil)

func TestAnalyzeRecordsResult(t *testing.T) {
	repo := &fakeMediaRepo{items: map[int64]*media.Media{
		1: {ID: 1, MediaType: media.TypePhoto, Content: []byte("jpeg bytes"), BlobType: "image/jpeg"},
	}}
	job := NewAnalyzeJob(repo, nil, nil)
	job.clock = func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) }

	task, err := NewMediaAnalyzeTask(MediaAnalyzePayload{MediaID: 1, MediaType: "PHOTO"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	stored := repo.items[1]
	require.True(t, stored.Analyzed)
	require.Contains(t, stored.Result, "PHOTO attachment, 10 bytes")
	require.Empty(t, stored.Reason)
}

func TestAnalyzeEmptyContentRecordsReason(t *testing.T) {
	repo := &fakeMediaRepo{items: map[int64]*media.Media{
		2: {ID: 2, MediaType: media.TypeAudio, BlobType: "audio/wav"},
	}}
	job := NewAnalyzeJob(repo, nil, nil)

	task, err := NewMediaAnalyzeTask(MediaAnalyzePayload{MediaID: 2, MediaType: "AUDIO"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	stored := repo.items[2]
	require.True(t, stored.Analyzed)
	require.Equal(t, "empty attachment", stored.Reason)
}

func TestAnalyzeMissingMediaSkipsRetry(t *testing.T) {
	job := NewAnalyzeJob(&fakeMediaRepo{items: map[int64]*media.Media{}}, nil, nil)

	task, err := NewMediaAnalyzeTask(MediaAnalyzePayload{MediaID: 99, MediaType: "PHOTO"})
	require.NoError(t, err)

	err = job.Handle(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry, "missing media must not retry forever")
}
