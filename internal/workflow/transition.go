package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xelth-com/fabtrack/internal/api"
	"github.com/xelth-com/fabtrack/internal/models"
)

var (
	// ErrSectionMismatch means the piece is not in the worker's section
	ErrSectionMismatch = errors.New("piece does not belong to this section")
	// ErrBusy means a submission for this draft is already in flight
	ErrBusy = errors.New("submission already in progress")
	// ErrNotIdentified means there is no identified piece to submit
	ErrNotIdentified = errors.New("no piece selected")
	// ErrNotReady means the submission gate is not met; see NotReadyError
	ErrNotReady = errors.New("not ready")
)

// NotReadyError lists the conditions keeping the submit control disabled
type NotReadyError struct {
	Blockers []Blocker
}

func (e *NotReadyError) Error() string {
	parts := make([]string, len(e.Blockers))
	for i, b := range e.Blockers {
		parts[i] = string(b)
	}
	return "not ready: " + strings.Join(parts, ", ")
}

func (e *NotReadyError) Is(target error) bool {
	return target == ErrNotReady
}

// State of one transition draft
type State int

const (
	Idle State = iota
	Identified
	Submitting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Identified:
		return "identified"
	case Submitting:
		return "submitting"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Target is what a submission acts on: an existing piece, or an order
// receiving a new piece at intake.
type Target struct {
	PieceID string
	OrderID string
}

// IsNew reports whether the submission creates a piece
func (t Target) IsNew() bool {
	return t.OrderID != ""
}

// PieceFetcher looks pieces up for identification
type PieceFetcher interface {
	WorkerPiece(ctx context.Context, id string) (*models.Piece, error)
	WorkerPieceByCode(ctx context.Context, code string, number int) (*models.Piece, error)
}

// Submitter sends a finished transition to the API
type Submitter interface {
	SubmitTransition(ctx context.Context, t api.Transition) error
}

// CheckSection rejects a piece that is not in the worker's assigned section.
func CheckSection(piece *models.Piece, worker models.User) error {
	if worker.SectionNumber() == 0 || piece.CurrentSection.Number != worker.SectionNumber() {
		return ErrSectionMismatch
	}
	return nil
}

// IdentifyScan parses scanned label text, fetches the piece and checks
// it belongs to the worker's section.
func IdentifyScan(ctx context.Context, f PieceFetcher, text string, worker models.User) (*models.Piece, error) {
	payload, err := ParseScanPayload(text)
	if err != nil {
		return nil, err
	}
	piece, err := f.WorkerPieceByCode(ctx, payload.Code, payload.Number)
	if err != nil {
		return nil, err
	}
	if err := CheckSection(piece, worker); err != nil {
		return nil, err
	}
	return piece, nil
}

// IdentifyPiece fetches a listed piece by id and checks its section.
func IdentifyPiece(ctx context.Context, f PieceFetcher, id string, worker models.User) (*models.Piece, error) {
	piece, err := f.WorkerPiece(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckSection(piece, worker); err != nil {
		return nil, err
	}
	return piece, nil
}

// Draft is the client-side state of one piece transition. State on the
// server is authoritative; the draft only holds what the worker entered.
type Draft struct {
	mu      sync.Mutex
	state   State
	target  Target
	piece   *models.Piece
	section models.Section
	form    Form
	touched time.Time
}

// NewDraft starts an idle draft for the worker's section
func NewDraft(target Target, section models.Section) *Draft {
	return &Draft{
		target:  target,
		section: section,
		form: Form{
			Checklist: section.Checklist,
			Checked:   map[string]bool{},
		},
	}
}

// Identify moves the draft to Identified. For existing pieces the piece
// must already have passed CheckSection; intake drafts pass nil.
func (d *Draft) Identify(piece *models.Piece) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Submitting {
		return
	}
	d.piece = piece
	d.state = Identified
}

// Edit applies a change to the form unless a submission is in flight.
func (d *Draft) Edit(fn func(f *Form)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Submitting {
		return ErrBusy
	}
	fn(&d.form)
	return nil
}

// Snapshot returns a copy of the current state and form for rendering
func (d *Draft) Snapshot() (State, Form, *models.Piece) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f := d.form
	f.Checked = make(map[string]bool, len(d.form.Checked))
	for k, v := range d.form.Checked {
		f.Checked[k] = v
	}
	return d.state, f, d.piece
}

// Target returns what the draft submits against
func (d *Draft) Target() Target {
	return d.target
}

// Section is the worker's section the checklist came from
func (d *Draft) Section() models.Section {
	return d.section
}

// Submit gates the form and sends it. On success the form is cleared and
// the draft goes Idle; on failure everything entered is kept and the draft
// returns to Identified so the worker can retry.
func (d *Draft) Submit(ctx context.Context, s Submitter, requireNotes bool) error {
	d.mu.Lock()
	switch d.state {
	case Submitting:
		d.mu.Unlock()
		return ErrBusy
	case Idle:
		d.mu.Unlock()
		return ErrNotIdentified
	}
	if blockers := d.form.Blockers(requireNotes); len(blockers) > 0 {
		d.mu.Unlock()
		return &NotReadyError{Blockers: blockers}
	}

	t := api.Transition{
		SectionNumber: d.section.Number,
		Photo: api.Upload{
			Filename:    d.form.Photo.Filename,
			ContentType: d.form.Photo.ContentType,
			Data:        d.form.Photo.Data,
		},
		Notes:   strings.TrimSpace(d.form.Notes),
		Flagged: d.form.Flagged,
	}
	if d.target.IsNew() {
		t.OrderID = d.target.OrderID
	} else {
		t.PieceID = d.target.PieceID
	}
	d.state = Submitting
	d.mu.Unlock()

	err := s.SubmitTransition(ctx, t)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.state = Identified
		return err
	}
	d.form.Reset()
	d.piece = nil
	d.state = Idle
	return nil
}
