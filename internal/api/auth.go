package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/xelth-com/fabtrack/internal/models"
)

// Credentials for POST /login. Workers send only an access code;
// Admins and Managers send username and password.
type Credentials struct {
	Role       models.Role
	Username   string
	Password   string
	AccessCode string
}

type loginBody struct {
	Role       models.Role `json:"role"`
	Username   string      `json:"username,omitempty"`
	Password   string      `json:"password,omitempty"`
	AccessCode string      `json:"accessCode,omitempty"`
}

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, cred Credentials) (string, error) {
	body := loginBody{Role: cred.Role}
	if cred.Role == models.RoleWorker {
		body.AccessCode = cred.AccessCode
	} else {
		body.Username = cred.Username
		body.Password = cred.Password
	}

	env, err := c.do(ctx, request{method: http.MethodPost, path: "/login", json: body}, nil)
	if err != nil {
		return "", err
	}
	if !env.Success || env.Token == "" {
		msg := env.Message
		if msg == "" {
			msg = "Invalid credentials"
		}
		return "", &Error{Status: http.StatusUnauthorized, Message: msg}
	}
	return env.Token, nil
}

// IsUnauthorized reports whether the API rejected the caller's token
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden)
}

// Message extracts the human-readable part of an API error for a flash message
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
