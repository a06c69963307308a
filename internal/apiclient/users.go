package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/taskdesk-dev/taskdesk/internal/domain"
	"github.com/taskdesk-dev/taskdesk/internal/logger"
)

// GetUsers fetches the full client directory. The list shape is normalized by
// decodeList; a malformed body yields an empty directory, not an error.
func (c *APIClient) GetUsers(session *domain.Session) ([]domain.User, error) {
	resp, err := c.do("GET", "/users", nil, session)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp, "failed to fetch users")
	}
	return decodeList[domain.User](resp.Body), nil
}

// UserUpdate is a partial update; empty fields are left unchanged server-side.
type UserUpdate struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Company  string `json:"company,omitempty"`
	Password string `json:"password,omitempty"`
}

func (c *APIClient) UpdateUser(session *domain.Session, id domain.UserId, update UserUpdate) error {
	jsonBody, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal user update: %w", err)
	}

	resp, err := c.do("PUT", fmt.Sprintf("/users/%d", id), bytes.NewBuffer(jsonBody), session)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errorFromResponse(resp, fmt.Sprintf("failed to update user %d", id))
	}
	return nil
}

func (c *APIClient) DeleteUser(session *domain.Session, id domain.UserId) error {
	resp, err := c.do("DELETE", fmt.Sprintf("/users/%d", id), nil, session)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return errorFromResponse(resp, fmt.Sprintf("failed to delete user %d", id))
	}
	return nil
}

// BulkFailure records one failed deletion within a bulk operation.
type BulkFailure struct {
	Id  domain.UserId
	Err error
}

// BulkResult tells the caller exactly which rows were removed and which were
// not, instead of collapsing partial failure into one opaque alert.
type BulkResult struct {
	Succeeded []domain.UserId
	Failed    []BulkFailure
}

func (r BulkResult) AllSucceeded() bool {
	return len(r.Failed) == 0
}

// DeleteUsers removes the given users one at a time, in selection order, each
// call awaited before the next. A failure does not stop the remaining
// deletions; the per-ID outcome is returned for precise reporting.
func (c *APIClient) DeleteUsers(session *domain.Session, ids []domain.UserId) BulkResult {
	var result BulkResult
	for _, id := range ids {
		if err := c.DeleteUser(session, id); err != nil {
			logger.Log.Error("bulk delete: user deletion failed", "user_id", id, "error", err)
			result.Failed = append(result.Failed, BulkFailure{Id: id, Err: err})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result
}
