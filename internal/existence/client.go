// Package existence implements the synchronous cross-service existence
// check. The result is deliberately three-valued: a check that fails to
// complete is Indeterminate, never a definite absence.
package existence

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Outcome is the tagged result of an existence check.
type Outcome int

const (
	// Indeterminate means the check itself failed: timeout, connection
	// refused, 5xx or a malformed response. Callers must not commit a
	// write on this outcome.
	Indeterminate Outcome = iota
	// Exists means the owning service confirmed the entity.
	Exists
	// Absent means the owning service definitively reported 404.
	Absent
)

func (o Outcome) String() string {
	switch o {
	case Exists:
		return "exists"
	case Absent:
		return "absent"
	default:
		return "indeterminate"
	}
}

// Checker asks an owning service whether an entity exists.
type Checker interface {
	Exists(ctx context.Context, kind string, id int64) (Outcome, error)
}

// DefaultTimeout bounds the remote round trip.
const DefaultTimeout = 3 * time.Second

// Client performs the check over HTTP against the owning service's read
// endpoint: GET {base}/{kind}/{id}.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a client with a bounded timeout. A non-positive
// timeout falls back to the default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Exists maps the remote response: 200 with a body means Exists, 404 means
// Absent, everything else is Indeterminate with the cause attached.
func (c *Client) Exists(ctx context.Context, kind string, id int64) (Outcome, error) {
	url := fmt.Sprintf("%s/%s/%d", c.baseURL, kind, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Indeterminate, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Indeterminate, fmt.Errorf("existence check %s/%d: %w", kind, id, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusOK:
		if _, err := io.Copy(io.Discard, resp.Body); err != nil {
			return Indeterminate, fmt.Errorf("existence check %s/%d: read body: %w", kind, id, err)
		}
		return Exists, nil
	case resp.StatusCode == http.StatusNotFound:
		return Absent, nil
	default:
		return Indeterminate, fmt.Errorf("existence check %s/%d: unexpected status %d", kind, id, resp.StatusCode)
	}
}

var _ Checker = (*Client)(nil)
