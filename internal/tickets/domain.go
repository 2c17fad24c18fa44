package tickets

import (
	"fmt"
	"strings"
	"time"
)

// Status enumerates ticket statuses. Any status may transition to any other;
// no progress ordering is enforced.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusFinished   Status = "FINISHED"
	StatusClosed     Status = "CLOSED"
)

// ParseStatus normalizes and validates a status string.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusOpen, StatusInProgress, StatusFinished, StatusClosed:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// MediaType enumerates the attachment kinds a ticket can carry.
type MediaType string

const (
	MediaAudio MediaType = "AUDIO"
	MediaVideo MediaType = "VIDEO"
	MediaPhoto MediaType = "PHOTO"
)

// ParseMediaType normalizes and validates a media type string.
func ParseMediaType(s string) (MediaType, error) {
	switch mt := MediaType(strings.ToUpper(strings.TrimSpace(s))); mt {
	case MediaAudio, MediaVideo, MediaPhoto:
		return mt, nil
	default:
		return "", fmt.Errorf("unknown media type %q", s)
	}
}

// Ticket model. CreatedBy and AssignedTo are remote foreign keys into the
// user service; they are validated at write time through the existence
// oracle and can go stale if the remote user is deleted afterwards.
type Ticket struct {
	ID          int64      `json:"ticketId"`
	CreatedBy   int64      `json:"createdBy"`
	AssignedTo  *int64     `json:"assignedTo,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	DueDate     time.Time  `json:"dueDate"`
	Location    string     `json:"location"`
	MediaType   MediaType  `json:"mediaType"`
	MediaID     *int64     `json:"mediaId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CreateInput carries the fields for ticket creation. Status is not among
// them: a new ticket is always OPEN.
type CreateInput struct {
	CreatedBy   int64
	AssignedTo  *int64
	Title       string
	Description string
	DueDate     time.Time
	Location    string
	MediaType   MediaType
	MediaID     *int64
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Location    *string
	MediaType   *MediaType
	MediaID     *int64
}

// Filter narrows a listing; all fields optional and conjunctive.
type Filter struct {
	AssignedTo *int64
	CreatedBy  *int64
	Status     Status
	DueDate    *time.Time
	Location   string
	MediaType  MediaType
}
