// Package brevo registers contacts with the Brevo email-marketing API.
package brevo

import (
	"context"
	"fmt"
	"time"

	"refonte-quiz-service/internal/domain"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// DefaultBaseURL is the public Brevo API.
const DefaultBaseURL = "https://api.brevo.com"

// ErrMissingAPIKey is returned by NewClient when no credential is configured.
var ErrMissingAPIKey = errors.New("brevo api key not configured")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("brevo returned status %d: %s", e.Status, e.Body)
}

type contactRequest struct {
	Email         string            `json:"email"`
	Attributes    map[string]string `json:"attributes"`
	ListIDs       []int64           `json:"listIds"`
	UpdateEnabled bool              `json:"updateEnabled"`
}

// Client calls POST /v3/contacts. Retries are disabled: at most one call per contact.
type Client struct {
	http *resty.Client
}

// NewClient builds a client. The API key stays server-side and is sent as the api-key header.
func NewClient(baseURL, apiKey string, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	rc := resty.New().
		SetBaseURL(baseURL).
		SetHeader("accept", "application/json").
		SetHeader("content-type", "application/json").
		SetHeader("api-key", apiKey).
		SetRetryCount(0)
	if timeout > 0 {
		rc.SetTimeout(timeout)
	}
	return &Client{http: rc}, nil
}

// RegisterContact creates or updates the contact. Any 2xx, including 204, is success.
func (c *Client) RegisterContact(ctx context.Context, contact domain.Contact) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(contactRequest{
			Email: contact.Email,
			Attributes: map[string]string{
				"PRENOM": contact.FirstName,
				"NOM":    contact.LastName,
			},
			ListIDs:       contact.ListIDs,
			UpdateEnabled: true,
		}).
		Post("/v3/contacts")
	if err != nil {
		return errors.Wrap(err, "brevo request")
	}
	if !resp.IsSuccess() {
		return &StatusError{Status: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}
