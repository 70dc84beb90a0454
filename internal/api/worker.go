package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/xelth-com/fabtrack/internal/models"
)

// Transition is one worker submission moving a piece forward. Exactly one
// of OrderID (new piece at intake) or PieceID (existing piece) is set.
type Transition struct {
	OrderID       string
	PieceID       string
	SectionNumber int
	Photo         Upload
	Notes         string
	Flagged       bool
}

// WorkerOrders lists orders with pieces relevant to a section, plus the
// section's piece count.
func (c *Client) WorkerOrders(ctx context.Context, sectionNumber int) ([]models.Order, int, error) {
	q := url.Values{"sectionNumber": {strconv.Itoa(sectionNumber)}}
	var orders []models.Order
	env, err := c.do(ctx, request{method: http.MethodGet, path: "/worker/order", query: q}, &orders)
	if err != nil {
		return nil, 0, err
	}
	return orders, env.PiecesCount, nil
}

// WorkerPiece fetches a piece by id
func (c *Client) WorkerPiece(ctx context.Context, id string) (*models.Piece, error) {
	var p models.Piece
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/worker/piece/" + segment(id)}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// WorkerPieceByCode fetches a piece by its label code and number
func (c *Client) WorkerPieceByCode(ctx context.Context, code string, number int) (*models.Piece, error) {
	var p models.Piece
	path := "/worker/piece/" + segment(code) + "/" + strconv.Itoa(number)
	if _, err := c.do(ctx, request{method: http.MethodGet, path: path}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SubmitTransition sends the photo, section number and optional notes/flag.
// New pieces are POSTed under their order; existing pieces are PUT by id.
func (c *Client) SubmitTransition(ctx context.Context, t Transition) error {
	if (t.OrderID == "") == (t.PieceID == "") {
		return errors.New("transition needs exactly one of order or piece")
	}

	photo := t.Photo
	photo.Field = "file"
	fields := []Field{{Name: "sectionNumber", Value: strconv.Itoa(t.SectionNumber)}}
	if t.Notes != "" {
		fields = append(fields, Field{Name: "notes", Value: t.Notes})
	}
	if t.Flagged {
		fields = append(fields, Field{Name: "flagged", Value: "true"})
	}

	r := request{fields: fields, files: uploads(&photo)}
	if t.OrderID != "" {
		r.method = http.MethodPost
		r.path = "/worker/piece"
		r.query = url.Values{"orderId": {t.OrderID}}
	} else {
		r.method = http.MethodPut
		r.path = "/worker/piece/" + segment(t.PieceID)
	}
	_, err := c.do(ctx, r, nil)
	return err
}

// FlagPiece marks a piece as having an issue. It carries no section
// number, so the piece never moves.
func (c *Client) FlagPiece(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{method: http.MethodPost, path: "/worker/piece/flag/" + segment(id)}, nil)
	return err
}
