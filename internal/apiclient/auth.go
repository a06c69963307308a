package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/taskdesk-dev/taskdesk/internal/domain"
	internal_errors "github.com/taskdesk-dev/taskdesk/internal/errors"
)

// loginResponse is the backend's answer to a successful login.
type loginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Login exchanges credentials for a session. The identifier may be an email
// address or a phone number; the backend decides which.
func (c *APIClient) Login(identifier, password string) (*domain.Session, error) {
	creds := map[string]string{"login": identifier, "password": password}
	jsonBody, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal login data: %w", err)
	}

	resp, err := c.do("POST", "/auth/login", bytes.NewBuffer(jsonBody), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &internal_errors.ErrorWithStatusCode{
			Message: "Invalid login or password", StatusCode: resp.StatusCode,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp, "login failed")
	}

	var parsed loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("cannot decode login response: %w", err)
	}
	return &domain.Session{Token: parsed.Token, User: parsed.User}, nil
}

// NewUser carries the fields for creating a client account. Password is
// required on create and optional on update.
type NewUser struct {
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	Password string `json:"password" validate:"required"`
}

// CreateUser registers a new client account via the admin console.
func (c *APIClient) CreateUser(session *domain.Session, user NewUser) error {
	jsonBody, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal new user data: %w", err)
	}

	resp, err := c.do("POST", "/auth/create-user", bytes.NewBuffer(jsonBody), session)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errorFromResponse(resp, "failed to create user")
	}
	return nil
}
