package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/xelth-com/fabtrack/internal/models"
)

// PieceInput is the admin edit payload for /admin/piece/{id}
type PieceInput struct {
	Number int                `json:"number"`
	Code   string             `json:"code"`
	Status models.PieceStatus `json:"status"`
}

// ListPieces lists all pieces
func (c *Client) ListPieces(ctx context.Context) ([]models.Piece, error) {
	var pieces []models.Piece
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/admin/piece"}, &pieces); err != nil {
		return nil, err
	}
	return pieces, nil
}

// OrderPieces lists the pieces belonging to one order
func (c *Client) OrderPieces(ctx context.Context, orderID string) ([]models.Piece, error) {
	all, err := c.ListPieces(ctx)
	if err != nil {
		return nil, err
	}
	var pieces []models.Piece
	for _, p := range all {
		if p.OrderID == orderID {
			pieces = append(pieces, p)
		}
	}
	return pieces, nil
}

// GetPiece fetches one piece with its history
func (c *Client) GetPiece(ctx context.Context, id string) (*models.Piece, error) {
	var p models.Piece
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/admin/piece/" + segment(id)}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePiece edits a piece's identity or status
func (c *Client) UpdatePiece(ctx context.Context, id string, in PieceInput) error {
	_, err := c.do(ctx, request{method: http.MethodPut, path: "/admin/piece/" + segment(id), json: in}, nil)
	return err
}

// DeletePiece deletes a piece
func (c *Client) DeletePiece(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: "/admin/piece/" + segment(id)}, nil)
	return err
}

// ResolvePiece clears a piece's flagged state without moving it
func (c *Client) ResolvePiece(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{method: http.MethodPost, path: "/admin/piece/resolve/" + segment(id)}, nil)
	return err
}

// Progress returns pieces with history matching the filter
func (c *Client) Progress(ctx context.Context, f models.ProgressFilter) ([]models.Piece, error) {
	q := url.Values{}
	if f.Date != "" {
		q.Set("date", f.Date)
	}
	if f.Section != "" {
		q.Set("section", f.Section)
	}
	if f.Worker != "" {
		q.Set("worker", f.Worker)
	}
	var pieces []models.Piece
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/admin/piece/progress", query: q}, &pieces); err != nil {
		return nil, err
	}
	return pieces, nil
}
