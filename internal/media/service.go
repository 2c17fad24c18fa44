package media

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opsdesk/opsdesk/internal/observability"
)

// Enqueuer submits an analysis job for a freshly uploaded attachment.
// Implemented by the asynq client; nil disables background analysis.
type Enqueuer interface {
	EnqueueAnalyze(ctx context.Context, mediaID int64, mediaType string) error
}

// Service owns the media lifecycle: upload, retrieval and the analysis
// metadata written back by the worker.
type Service struct {
	repo     Repository
	enqueuer Enqueuer
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewService constructs a Service.
func NewService(repo Repository, enqueuer Enqueuer, logger *slog.Logger, metrics *observability.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, enqueuer: enqueuer, logger: logger, metrics: metrics}
}

// Create stores the attachment and enqueues analysis. A failed enqueue does
// not fail the upload; the attachment simply stays unanalyzed.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Media, error) {
	m, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("store media: %w", err)
	}
	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueAnalyze(ctx, m.ID, string(m.MediaType)); err != nil {
			s.logger.Warn("enqueue media analysis",
				slog.Int64("mediaId", m.ID), slog.Any("error", err))
			s.metrics.RecordError("media_enqueue")
		}
	}
	return m, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Media, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Media, error) {
	return s.repo.List(ctx)
}

func (s *Service) SetAnalyzed(ctx context.Context, id int64, analyzed bool) (*Media, error) {
	return s.repo.SetAnalyzed(ctx, id, analyzed)
}

func (s *Service) SetResult(ctx context.Context, id int64, result string) (*Media, error) {
	return s.repo.SetResult(ctx, id, result)
}

func (s *Service) SetReason(ctx context.Context, id int64, reason string) (*Media, error) {
	return s.repo.SetReason(ctx, id, reason)
}
