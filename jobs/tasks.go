package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskMediaAnalyze is the task type for analyzing an uploaded attachment.
	TaskMediaAnalyze = "media:analyze"
)

// MediaAnalyzePayload identifies the attachment to analyze.
type MediaAnalyzePayload struct {
	MediaID   int64  `json:"mediaId"`
	MediaType string `json:"mediaType"`
}

// NewMediaAnalyzeTask constructs an Asynq task.
func NewMediaAnalyzeTask(payload MediaAnalyzePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMediaAnalyze, data), nil
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueAnalyze enqueues a media analysis task.
func (c *Client) EnqueueAnalyze(ctx context.Context, mediaID int64, mediaType string) error {
	task, err := NewMediaAnalyzeTask(MediaAnalyzePayload{MediaID: mediaID, MediaType: mediaType})
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
