package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/xelth-com/fabtrack/internal/api"
	"github.com/xelth-com/fabtrack/internal/labels"
	"github.com/xelth-com/fabtrack/internal/live"
	"github.com/xelth-com/fabtrack/internal/middleware"
	"github.com/xelth-com/fabtrack/internal/models"
)

func (r *Router) listPieces(w http.ResponseWriter, req *http.Request) {
	v := middleware.ViewerFrom(req.Context())
	pieces, err := v.API.ListPieces(req.Context())
	if err != nil {
		r.failed(w, req, "Pieces not loaded", err)
		return
	}
	r.render(w, req, http.StatusOK, "pieces", Page{
		Title:  "Pieces",
		Topics: []string{live.TopicPieces},
		Data:   pieces,
	})
}

// showPiece is the piece with its transition history
func (r *Router) showPiece(w http.ResponseWriter, req *http.Request) {
	v := middleware.ViewerFrom(req.Context())
	p, err := v.API.GetPiece(req.Context(), mux.Vars(req)["id"])
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

type pieceFormData struct {
	Piece    models.Piece
	Statuses []models.PieceStatus
}

func (r *Router) pieceForm(w http.ResponseWriter, req *http.Request) {
	v := middleware.ViewerFrom(req.Context())
	p, err := v.API.GetPiece(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		r.failed(w, req, "Piece not loaded", err)
		return
	}
	r.render(w, req, http.StatusOK, "piece_form", Page{
		Title: "Edit Piece",
		Data:  pieceFormData{Piece: *p, Statuses: models.PieceStatuses},
	})
}

// savePiece edits number, code and status
func (r *Router) savePiece(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	v := middleware.ViewerFrom(req.Context())
	id := mux.Vars(req)["id"]

	number, numErr := strconv.Atoi(strings.TrimSpace(req.PostForm.Get("number")))
	in := api.PieceInput{
		Number: number,
		Code:   strings.TrimSpace(req.PostForm.Get("code")),
		Status: models.PieceStatus(req.PostForm.Get("status")),
	}
	data := pieceFormData{
		Piece:    models.Piece{ID: id, Number: in.Number, Code: in.Code, Status: in.Status},
		Statuses: models.PieceStatuses,
	}
	fail := func(status int, msg string) {
		r.render(w, req, status, "piece_form", Page{
			Title: "Edit Piece",
			Flash: []models.FlashMessage{{Level: models.FlashError, Message: msg}},
			Data:  data,
		})
	}

	if numErr != nil || number <= 0 || in.Code == "" {
		fail(http.StatusUnprocessableEntity, "Code and a positive number are required")
		return
	}
	if !validStatus(in.Status) {
		fail(http.StatusUnprocessableEntity, "Unknown status")
		return
	}
	if err := v.API.UpdatePiece(req.Context(), id, in); err != nil {
		fail(http.StatusBadGateway, "Error saving piece: "+api.Message(err))
		return
	}

	r.flash(req, models.FlashSuccess, "Piece saved.")
	r.hub.Publish(live.TopicPieces)
	r.redirect(w, req, "/admin/piece")
}

func validStatus(s models.PieceStatus) bool {
	for _, known := range models.PieceStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// pieceLabel renders the QR label of one piece
func (r *Router) pieceLabel(w http.ResponseWriter, req *http.Request) {
	v := middleware.ViewerFrom(req.Context())
	p, err := v.API.GetPiece(req.Context(), mux.Vars(req)["id"])
	if err != nil {
		r.failed(w, req, "Piece not loaded", err)
		return
	}
	png, err := labels.PiecePNG(*p)
	if err != nil {
		r.failed(w, req, "Label not generated", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Write(png)
}
