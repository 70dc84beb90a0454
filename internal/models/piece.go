package models

import "time"

// PieceStatus defines possible piece statuses
type PieceStatus string

const (
	PieceStatusPending    PieceStatus = "Pending"
	PieceStatusInProgress PieceStatus = "InProgress"
	PieceStatusFlagged    PieceStatus = "Flagged"
	PieceStatusCompleted  PieceStatus = "Completed"
)

// PieceStatuses lists the statuses in lifecycle order, for select boxes.
var PieceStatuses = []PieceStatus{
	PieceStatusPending,
	PieceStatusInProgress,
	PieceStatusFlagged,
	PieceStatusCompleted,
}

// Piece is a unit of manufacturing work tracked through sections.
// CurrentSection changes exactly once per accepted transition.
type Piece struct {
	ID             string         `json:"_id"`
	Number         int            `json:"number"`
	Code           string         `json:"code"`
	OrderID        string         `json:"orderId,omitempty"`
	CurrentSection SectionRef     `json:"currentSectionId"`
	Status         PieceStatus    `json:"status"`
	Flagged        bool           `json:"flagged"`
	History        []HistoryEntry `json:"history"`
}

// IsFlagged reports whether the piece awaits admin resolution
func (p Piece) IsFlagged() bool {
	return p.Flagged || p.Status == PieceStatusFlagged
}

// HistoryEntry records one accepted transition. Entries are append-only.
type HistoryEntry struct {
	Worker    UserRef    `json:"workerId"`
	Section   SectionRef `json:"section"`
	Timestamp time.Time  `json:"timestamp"`
	PhotoURL  string     `json:"photoUrl"`
	Notes     string     `json:"notes"`
	Flagged   bool       `json:"flagged"`
}
