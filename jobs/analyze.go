package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/opsdesk/opsdesk/internal/jobs"
	"github.com/opsdesk/opsdesk/internal/media"
	"github.com/opsdesk/opsdesk/internal/shared"
)

// AnalyzeJob processes uploaded attachments and records analysis metadata.
// The heavy content inspection is an external concern; this job validates the
// stored blob and marks the attachment analyzed so the ticket UI can surface
// it.
type AnalyzeJob struct {
	repo    media.Repository
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewAnalyzeJob initialises the analysis handler.
func NewAnalyzeJob(repo media.Repository, logger *slog.Logger, metrics *jobmetrics.Metrics) *AnalyzeJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeJob{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the analysis. A missing attachment skips retry; transient
// repository errors surface so asynq retries the task.
func (j *AnalyzeJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("media_analyze")
	return tracker.End(j.handle(ctx, t))
}

func (j *AnalyzeJob) handle(ctx context.Context, t *asynq.Task) error {
	var payload MediaAnalyzePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	m, err := j.repo.GetByID(ctx, payload.MediaID)
	if errors.Is(err, shared.ErrNotFound) {
		j.logger.Warn("analyze: media vanished", slog.Int64("mediaId", payload.MediaID))
		return asynq.SkipRetry
	}
	if err != nil {
		return fmt.Errorf("load media %d: %w", payload.MediaID, err)
	}

	if len(m.Content) == 0 {
		if _, err := j.repo.SetReason(ctx, m.ID, "empty attachment"); err != nil {
			return fmt.Errorf("record reason for media %d: %w", m.ID, err)
		}
	} else {
		summary := fmt.Sprintf("%s attachment, %d bytes, received %s",
			m.MediaType, len(m.Content), j.clock().Format(time.RFC3339))
		if _, err := j.repo.SetResult(ctx, m.ID, summary); err != nil {
			return fmt.Errorf("record result for media %d: %w", m.ID, err)
		}
	}
	if _, err := j.repo.SetAnalyzed(ctx, m.ID, true); err != nil {
		return fmt.Errorf("mark media %d analyzed: %w", m.ID, err)
	}

	j.logger.Info("media analyzed", slog.Int64("mediaId", m.ID), slog.String("mediaType", string(m.MediaType)))
	return nil
}
