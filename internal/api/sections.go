package api

import (
	"context"
	"net/http"

	"github.com/xelth-com/fabtrack/internal/models"
)

// SectionInput is the create/update payload for sections and legacy stages
type SectionInput struct {
	Number    int                    `json:"number"`
	Name      string                 `json:"name"`
	Checklist []models.ChecklistItem `json:"checklist"`
}

// SectionAPI is the CRUD surface for checklist-bearing steps. The same shape
// is served at /admin/section and at the legacy /admin/stage.
type SectionAPI struct {
	c    *Client
	path string
}

// Sections returns the /admin/section resource
func (c *Client) Sections() SectionAPI {
	return SectionAPI{c: c, path: "/admin/section"}
}

// Stages returns the legacy /admin/stage resource
func (c *Client) Stages() SectionAPI {
	return SectionAPI{c: c, path: "/admin/stage"}
}

// List lists sections
func (s SectionAPI) List(ctx context.Context) ([]models.Section, error) {
	var sections []models.Section
	if _, err := s.c.do(ctx, request{method: http.MethodGet, path: s.path}, &sections); err != nil {
		return nil, err
	}
	return sections, nil
}

// Get fetches one section
func (s SectionAPI) Get(ctx context.Context, id string) (*models.Section, error) {
	var sec models.Section
	if _, err := s.c.do(ctx, request{method: http.MethodGet, path: s.path + "/" + segment(id)}, &sec); err != nil {
		return nil, err
	}
	return &sec, nil
}

// Create sends the whole section, checklist included, in one request
func (s SectionAPI) Create(ctx context.Context, in SectionInput) error {
	_, err := s.c.do(ctx, request{method: http.MethodPost, path: s.path, json: in}, nil)
	return err
}

// Update replaces the section, checklist included
func (s SectionAPI) Update(ctx context.Context, id string, in SectionInput) error {
	_, err := s.c.do(ctx, request{method: http.MethodPut, path: s.path + "/" + segment(id), json: in}, nil)
	return err
}

// Delete deletes a section
func (s SectionAPI) Delete(ctx context.Context, id string) error {
	_, err := s.c.do(ctx, request{method: http.MethodDelete, path: s.path + "/" + segment(id)}, nil)
	return err
}
