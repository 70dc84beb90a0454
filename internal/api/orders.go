package api

import (
	"context"
	"net/http"
	"time"

	"github.com/xelth-com/fabtrack/internal/models"
)

// OrderInput is the create/update payload for /admin/order
type OrderInput struct {
	ProjectName  string
	CustomerName string
	DueDate      time.Time
}

func (in OrderInput) fields() []Field {
	f := []Field{
		{Name: "projectName", Value: in.ProjectName},
		{Name: "customerName", Value: in.CustomerName},
	}
	if !in.DueDate.IsZero() {
		f = append(f, Field{Name: "dueDate", Value: in.DueDate.UTC().Format(time.RFC3339)})
	}
	return f
}

// ListOrders lists all orders
func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/admin/order"}, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder fetches one order
func (c *Client) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/admin/order/" + segment(id)}, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrder creates an order. Attachments (drawings, cutting sheet,
// take-off sheet) all travel under the "files" field, in that order.
func (c *Client) CreateOrder(ctx context.Context, in OrderInput, attachments ...*Upload) error {
	_, err := c.do(ctx, request{method: http.MethodPost, path: "/admin/order", fields: in.fields(), files: asFiles(attachments)}, nil)
	return err
}

// UpdateOrder updates an order; attachments replace existing ones when given
func (c *Client) UpdateOrder(ctx context.Context, id string, in OrderInput, attachments ...*Upload) error {
	_, err := c.do(ctx, request{method: http.MethodPut, path: "/admin/order/" + segment(id), fields: in.fields(), files: asFiles(attachments)}, nil)
	return err
}

// DeleteOrder deletes an order
func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: "/admin/order/" + segment(id)}, nil)
	return err
}

func asFiles(attachments []*Upload) []Upload {
	files := uploads(attachments...)
	for i := range files {
		files[i].Field = "files"
	}
	return files
}
