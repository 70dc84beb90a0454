package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xelth-com/fabtrack/internal/api"
	"github.com/xelth-com/fabtrack/internal/live"
	"github.com/xelth-com/fabtrack/internal/middleware"
	"github.com/xelth-com/fabtrack/internal/models"
	"golang.org/x/sync/errgroup"
)

type dashboardData struct {
	Orders  int
	Pieces  int
	Flagged []models.Piece
}

// adminDashboard shows counts and the Action Center of flagged pieces
func (r *Router) adminDashboard(w http.ResponseWriter, req *http.Request) {
	v := middleware.ViewerFrom(req.Context())

	var (
		orders []models.Order
		pieces []models.Piece
	)
	g, ctx := errgroup.WithContext(req.Context())
	g.Go(func() (err error) {
		orders, err = v.API.ListOrders(ctx)
		return err
	})
	g.Go(func() (err error) {
		pieces, err = v.API.ListPieces(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		r.failed(w, req, "Dashboard not loaded", err)
		return
	}

	data := dashboardData{Orders: len(orders), Pieces: len(pieces)}
	for _, p := range pieces {
		if p.IsFlagged() {
			data.Flagged = append(data.Flagged, p)
		}
	}
	r.render(w, req, http.StatusOK, "dashboard", Page{
		Title:  "Dashboard",
		Topics: []string{live.TopicOrders, live.TopicPieces},
		Data:   data,
	})
}

// resolvePiece clears a flag from the Action Center
func (r *Router) resolvePiece(w http.ResponseWriter, req *http.Request) {
	v := middleware.ViewerFrom(req.Context())
	id := mux.Vars(req)["id"]

	if err := v.API.ResolvePiece(req.Context(), id); err != nil {
		r.flash(req, models.FlashError, "Error resolving piece: "+api.Message(err))
	} else {
		r.flash(req, models.FlashSuccess, "Piece resolved.")
		r.hub.Publish(live.TopicPieces)
	}
	r.redirect(w, req, "/admin/dashboard")
}

type progressData struct {
	Filter   models.ProgressFilter
	Sections []models.Section
	Workers  []models.User
	Rows     []models.ProgressRow
}

// progress lists history entries filtered by date, section and worker.
// All three lookups share the request context, so a page the browser
// abandons stops its upstream calls.
func (r *Router) progress(w http.ResponseWriter, req *http.Request) {
	v := middleware.ViewerFrom(req.Context())
	q := req.URL.Query()
	data := progressData{Filter: models.ProgressFilter{
		Date:    q.Get("date"),
		Section: q.Get("section"),
		Worker:  q.Get("worker"),
	}}

	var pieces []models.Piece
	g, ctx := errgroup.WithContext(req.Context())
	g.Go(func() (err error) {
		data.Sections, err = v.API.Sections().List(ctx)
		return err
	})
	g.Go(func() (err error) {
		data.Workers, err = v.API.ListUsers(ctx, models.RoleWorker)
		return err
	})
	g.Go(func() (err error) {
		pieces, err = v.API.Progress(ctx, data.Filter)
		return err
	})
	if err := g.Wait(); err != nil {
		r.failed(w, req, "Progress not loaded", err)
		return
	}
	data.Rows = models.FlattenProgress(pieces, data.Filter)

	r.render(w, req, http.StatusOK, "progress", Page{
		Title:  "Progress",
		Topics: []string{live.TopicPieces},
		Data:   data,
	})
}
