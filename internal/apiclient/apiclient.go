// Package apiclient owns every call the console makes to the REST backend.
// Auth state is an explicit domain.Session passed into each operation; nothing
// in here reads tokens from ambient storage.
package apiclient

import (
	"fmt"
	"io"
	"net/http"

	"github.com/taskdesk-dev/taskdesk/internal/domain"
	internal_errors "github.com/taskdesk-dev/taskdesk/internal/errors"
)

// APIClient handles all communication with the backend API.
type APIClient struct {
	BaseURL    string
	HttpClient *http.Client
}

// New creates a new client for interacting with the backend.
func New(baseURL string) *APIClient {
	return &APIClient{
		BaseURL:    baseURL,
		HttpClient: &http.Client{},
	}
}

// do is the single, unified helper for making JSON API requests. A nil session
// sends the request unauthenticated (guest endpoints, login).
func (c *APIClient) do(method, path string, body io.Reader, session *domain.Session) (*http.Response, error) {
	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if session != nil {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internal_errors.ErrBackendUnavailable, err)
	}
	return resp, nil
}

// errorFromResponse drains the body into a status-carrying error.
func errorFromResponse(resp *http.Response, context string) error {
	bodyBytes, _ := io.ReadAll(resp.Body)
	msg := fmt.Sprintf("%s (status %d)", context, resp.StatusCode)
	if len(bodyBytes) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, string(bodyBytes))
	}
	return &internal_errors.ErrorWithStatusCode{Message: msg, StatusCode: resp.StatusCode}
}
