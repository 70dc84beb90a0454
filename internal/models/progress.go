package models

import "time"

// ProgressFilter narrows /admin/piece/progress. Empty fields are omitted.
type ProgressFilter struct {
	Date    string // YYYY-MM-DD
	Section string // section id
	Worker  string // worker user id
}

// IsZero reports whether no filter is set
func (f ProgressFilter) IsZero() bool {
	return f.Date == "" && f.Section == "" && f.Worker == ""
}

// ProgressRow is one history entry of one piece, as shown on the progress report
type ProgressRow struct {
	PieceID   string
	Code      string
	Number    int
	Section   string
	Worker    string
	Timestamp time.Time
	Notes     string
	Flagged   bool
}

// FlattenProgress expands each piece's history into report rows, keeping
// only entries that match the filter. The API pre-filters pieces; entries
// are filtered again here because a matching piece carries its whole history.
func FlattenProgress(pieces []Piece, f ProgressFilter) []ProgressRow {
	var rows []ProgressRow
	for _, p := range pieces {
		for _, h := range p.History {
			if f.Date != "" && h.Timestamp.UTC().Format("2006-01-02") != f.Date {
				continue
			}
			if f.Worker != "" && h.Worker.ID != f.Worker {
				continue
			}
			if f.Section != "" && h.Section.ID != f.Section {
				continue
			}
			rows = append(rows, ProgressRow{
				PieceID:   p.ID,
				Code:      p.Code,
				Number:    p.Number,
				Section:   h.Section.Name,
				Worker:    h.Worker.FullName,
				Timestamp: h.Timestamp,
				Notes:     h.Notes,
				Flagged:   h.Flagged,
			})
		}
	}
	return rows
}
