package models

import "time"

// Order is a customer project that owns pieces created at section 1
type Order struct {
	ID             string     `json:"_id"`
	ProjectName    string     `json:"projectName"`
	CustomerName   string     `json:"customerName"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	Status         string     `json:"status"`
	Drawings       []Drawing  `json:"drawings"`
	CurrentPieces  []Piece    `json:"currentPieces,omitempty"`
	IncomingPieces []Piece    `json:"inComingPieces,omitempty"`
}

// Drawing is an attachment stored by the API (drawing, cutting sheet, take-off sheet)
type Drawing struct {
	RefNumber string `json:"refNumber"`
	URL       string `json:"url"`
}

// Drawing returns the URL of the i-th attachment, or "" when absent.
func (o Order) Drawing(i int) string {
	if i < 0 || i >= len(o.Drawings) {
		return ""
	}
	return o.Drawings[i].URL
}
