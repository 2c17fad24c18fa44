package media

import (
	"fmt"
	"strings"
	"time"
)

// Type enumerates the supported attachment kinds.
type Type string

const (
	TypeAudio Type = "AUDIO"
	TypeVideo Type = "VIDEO"
	TypePhoto Type = "PHOTO"
)

// ParseType normalizes and validates a media type string.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToUpper(strings.TrimSpace(s))); t {
	case TypeAudio, TypeVideo, TypePhoto:
		return t, nil
	default:
		return "", fmt.Errorf("unknown media type %q", s)
	}
}

// Media is a stored attachment plus its analysis metadata. Content is kept
// out of the JSON representation; the raw blob is served on its own route.
type Media struct {
	ID        int64     `json:"mediaId"`
	MediaType Type      `json:"mediaType"`
	Content   []byte    `json:"-"`
	BlobType  string    `json:"blobType"`
	Analyzed  bool      `json:"analyzed"`
	Result    string    `json:"result"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateInput carries an uploaded attachment into the repository.
type CreateInput struct {
	MediaType Type
	Content   []byte
	BlobType  string
}
