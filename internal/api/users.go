package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/xelth-com/fabtrack/internal/models"
)

// UserInput is the create/update payload for /admin/user
type UserInput struct {
	FullName   string
	Role       models.Role
	Username   string
	Password   string
	AccessCode string
	SectionID  string
}

// fields keeps only the credentials that belong to the role.
// Empty values are skipped so an edit never blanks a password.
func (in UserInput) fields() []Field {
	var f []Field
	add := func(name, value string) {
		if value != "" {
			f = append(f, Field{Name: name, Value: value})
		}
	}
	add("fullName", in.FullName)
	add("role", string(in.Role))
	if in.Role == models.RoleWorker {
		add("accessCode", in.AccessCode)
		add("section", in.SectionID)
	} else {
		add("username", in.Username)
		add("password", in.Password)
	}
	return f
}

// GetUser fetches one user with its section populated
func (c *Client) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/admin/user/" + segment(id)}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers lists users, optionally only those with the given role
func (c *Client) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	q := url.Values{}
	if role != "" {
		q.Set("role", string(role))
	}
	var users []models.User
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/admin/user", query: q}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser creates a user; photo may be nil
func (c *Client) CreateUser(ctx context.Context, in UserInput, photo *Upload) error {
	_, err := c.do(ctx, request{method: http.MethodPost, path: "/admin/user", fields: in.fields(), files: uploads(photo)}, nil)
	return err
}

// UpdateUser updates a user; photo may be nil
func (c *Client) UpdateUser(ctx context.Context, id string, in UserInput, photo *Upload) error {
	_, err := c.do(ctx, request{method: http.MethodPut, path: "/admin/user/" + segment(id), fields: in.fields(), files: uploads(photo)}, nil)
	return err
}

// DeleteUser deletes a user
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: "/admin/user/" + segment(id)}, nil)
	return err
}

// AssignSection moves a worker to another section
func (c *Client) AssignSection(ctx context.Context, userID, sectionID string) error {
	_, err := c.do(ctx, request{method: http.MethodPut, path: "/admin/user/" + segment(userID) + "/assign/" + segment(sectionID)}, nil)
	return err
}

func uploads(files ...*Upload) []Upload {
	var out []Upload
	for _, f := range files {
		if f != nil && len(f.Data) > 0 {
			out = append(out, *f)
		}
	}
	return out
}
