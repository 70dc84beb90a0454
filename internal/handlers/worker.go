package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xelth-com/fabtrack/internal/api"
	"github.com/xelth-com/fabtrack/internal/live"
	"github.com/xelth-com/fabtrack/internal/middleware"
	"github.com/xelth-com/fabtrack/internal/models"
	"github.com/xelth-com/fabtrack/internal/workflow"
)

// Messages shown to workers
const (
	msgInvalidQR      = "Invalid QR code"
	msgWrongSectionQR = "Piece does not belong to this section"
	msgWrongSection   = "Piece is not in this section"
	msgMoved          = "Piece successfully updated. Moved to the next section."
	msgSubmitFailed   = "Error submitting data: "
	msgBusy           = "This piece is already being submitted."
	msgFlagged        = "Piece flagged for review."
)

type workerDashboardData struct {
	Section     *models.SectionRef
	Orders      []models.Order
	PiecesCount int
	// Intake is true for section 1, which creates pieces under orders
	Intake bool
}

// workerDashboard lists orders with current and incoming pieces of the
// worker's section
func (r *Router) workerDashboard(w http.ResponseWriter, req *http.Request) {
	v := middleware.ViewerFrom(req.Context())
	data := workerDashboardData{Section: v.User.Section}

	if n := v.User.SectionNumber(); n > 0 {
		orders, count, err := v.API.WorkerOrders(req.Context(), n)
		if err != nil {
			r.failed(w, req, "Orders not loaded", err)
			return
		}
		data.Orders, data.PiecesCount, data.Intake = orders, count, n == 1
	}

	r.render(w, req, http.StatusOK, "worker_dashboard", Page{
		Title:  "Dashboard",
		Topics: []string{live.TopicPieces, live.TopicOrders},
		Data:   data,
	})
}

// scan identifies a piece from decoded QR text
func (r *Router) scan(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	v := middleware.ViewerFrom(req.Context())

	piece, err := workflow.IdentifyScan(req.Context(), v.API, req.PostForm.Get("payload"), v.User)
	switch {
	case errors.Is(err, workflow.ErrInvalidPayload):
		r.flash(req, models.FlashError, msgInvalidQR)
	case errors.Is(err, workflow.ErrSectionMismatch):
		r.flash(req, models.FlashError, msgWrongSectionQR)
	case err != nil:
		r.flash(req, models.FlashError, api.Message(err))
	default:
		r.identified(w, req, piece)
		return
	}
	r.redirect(w, req, "/worker/dashboard")
}

// movePiece is "Move to Next Section" on a listed piece
func (r *Router) movePiece(w http.ResponseWriter, req *http.Request) {
	v := middleware.ViewerFrom(req.Context())

	piece, err := workflow.IdentifyPiece(req.Context(), v.API, mux.Vars(req)["id"], v.User)
	switch {
	case errors.Is(err, workflow.ErrSectionMismatch):
		r.flash(req, models.FlashError, msgWrongSection)
	case err != nil:
		r.flash(req, models.FlashError, api.Message(err))
	default:
		r.identified(w, req, piece)
		return
	}
	r.redirect(w, req, "/worker/dashboard")
}

func (r *Router) identified(w http.ResponseWriter, req *http.Request, piece *models.Piece) {
	v := middleware.ViewerFrom(req.Context())
	d := r.drafts.Open(v.SessionID, workflow.Target{PieceID: piece.ID}, workerSection(v))
	d.Identify(piece)
	r.redirect(w, req, "/worker/piece/"+piece.ID+"/transition")
}

// pieceHistory shows a piece's transitions with the option to flag it
func (r *Router) pieceHistory(w http.ResponseWriter, req *http.Request) {
	v := middleware.ViewerFrom(req.Context())
	p, err := v.API.WorkerPiece(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		r.failed(w, req, "Piece not loaded", err)
		return
	}
	r.render(w, req, http.StatusOK, "piece", Page{
		Title:  "Piece " + p.Code,
		Topics: []string{live.TopicPieces},
		Data:   p,
	})
}

// flagPiece marks a piece for admin attention without moving it
func (r *Router) flagPiece(w http.ResponseWriter, req *http.Request) {
	v := middleware.ViewerFrom(req.Context())
	if err := v.API.FlagPiece(req.Context(), mux.Vars(req)["id"]); err != nil {
		r.flash(req, models.FlashError, "Error flagging piece: "+api.Message(err))
	} else {
		r.flash(req, models.FlashSuccess, msgFlagged)
		r.hub.Publish(live.TopicPieces)
	}
	r.redirect(w, req, "/worker/dashboard")
}

func workerSection(v *middleware.Viewer) models.Section {
	if v.User.Section == nil {
		return models.Section{}
	}
	return v.User.Section.Section
}

// draftFor finds the draft behind a transition route. Intake drafts are
// opened on demand for section-1 workers; existing pieces must have been
// identified by scan or "Move to Next Section" first.
func (r *Router) draftFor(req *http.Request) (*workflow.Draft, int) {
	v := middleware.ViewerFrom(req.Context())
	vars := mux.Vars(req)

	if orderID := vars["orderId"]; orderID != "" {
		if v.User.SectionNumber() != 1 {
			return nil, http.StatusForbidden
		}
		d := r.drafts.Open(v.SessionID, workflow.Target{OrderID: orderID}, workerSection(v))
		if state, _, _ := d.Snapshot(); state == workflow.Idle {
			d.Identify(nil)
		}
		return d, http.StatusOK
	}

	d, ok := r.drafts.Get(v.SessionID, workflow.Target{PieceID: vars["id"]})
	if !ok {
		return nil, http.StatusNotFound
	}
	if state, _, _ := d.Snapshot(); state == workflow.Idle {
		return nil, http.StatusNotFound
	}
	// a worker reassigned since the scan must identify the piece again
	if d.Section().Number != v.User.SectionNumber() {
		r.drafts.Drop(v.SessionID, d.Target())
		return nil, http.StatusConflict
	}
	return d, http.StatusOK
}

// noDraft answers a transition route whose draft is unusable
func (r *Router) noDraft(w http.ResponseWriter, req *http.Request, status int) {
	switch status {
	case http.StatusForbidden:
		http.Error(w, "Only intake can add pieces", status)
		return
	case http.StatusConflict:
		r.flash(req, models.FlashError, msgWrongSection)
	}
	r.redirect(w, req, "/worker/dashboard")
}

type transitionData struct {
	Piece    *models.Piece
	OrderID  string
	Section  models.Section
	State    string
	Form     workflow.Form
	Blockers []workflow.Blocker
	Action   string
	Strict   bool
}

func (r *Router) renderTransition(w http.ResponseWriter, req *http.Request, status int, d *workflow.Draft) {
	state, form, piece := d.Snapshot()
	target := d.Target()
	data := transitionData{
		Piece:    piece,
		OrderID:  target.OrderID,
		Section:  d.Section(),
		State:    state.String(),
		Form:     form,
		Blockers: form.Blockers(r.cfg.RequireNotes),
		Strict:   r.cfg.RequireNotes,
	}
	title := "Move to Next Section"
	if target.IsNew() {
		data.Action = "/worker/order/" + target.OrderID + "/piece/new"
		title = "Add Piece"
	} else {
		data.Action = "/worker/piece/" + target.PieceID + "/transition"
	}
	r.render(w, req, status, "transition", Page{Title: title, Data: data})
}

// transitionForm shows the checklist, photo and notes form of a draft
func (r *Router) transitionForm(w http.ResponseWriter, req *http.Request) {
	d, status := r.draftFor(req)
	if d == nil {
		r.noDraft(w, req, status)
		return
	}
	r.renderTransition(w, req, http.StatusOK, d)
}

// submitTransition stores the posted inputs in the draft and submits it.
// A failed submission keeps every input so the worker can retry.
func (r *Router) submitTransition(w http.ResponseWriter, req *http.Request) {
	d, status := r.draftFor(req)
	if d == nil {
		r.noDraft(w, req, status)
		return
	}
	if err := parseForm(req); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	photo, err := upload(req, "file")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	back := req.URL.Path
	err = d.Edit(func(f *workflow.Form) {
		f.SetChecked(req.PostForm["checklist"])
		if photo != nil {
			f.Photo = &workflow.Photo{Filename: photo.Filename, ContentType: photo.ContentType, Data: photo.Data}
		}
		f.Notes = req.PostForm.Get("notes")
		f.Flagged = req.PostForm.Get("flagged") != ""
	})
	if errors.Is(err, workflow.ErrBusy) {
		r.flash(req, models.FlashError, msgBusy)
		r.redirect(w, req, back)
		return
	}

	v := middleware.ViewerFrom(req.Context())
	err = d.Submit(req.Context(), v.API, r.cfg.RequireNotes)
	switch {
	case err == nil:
		r.drafts.Drop(v.SessionID, d.Target())
		r.flash(req, models.FlashSuccess, msgMoved)
		r.hub.Publish(live.TopicPieces, live.TopicOrders)
		r.redirect(w, req, "/worker/dashboard")
	case errors.Is(err, workflow.ErrNotReady):
		r.renderTransition(w, req, http.StatusUnprocessableEntity, d)
	case errors.Is(err, workflow.ErrBusy):
		r.flash(req, models.FlashError, msgBusy)
		r.redirect(w, req, back)
	case errors.Is(err, workflow.ErrNotIdentified):
		r.redirect(w, req, "/worker/dashboard")
	default:
		log.Printf("❌ Transition %+v failed: %v", d.Target(), err)
		r.flash(req, models.FlashError, msgSubmitFailed+api.Message(err))
		r.redirect(w, req, back)
	}
}
