package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xelth-com/fabtrack/internal/api"
	"github.com/xelth-com/fabtrack/internal/live"
	"github.com/xelth-com/fabtrack/internal/middleware"
	"github.com/xelth-com/fabtrack/internal/models"
)

// deletable is an entity with a list page and a confirmed delete
type deletable struct {
	kind  string // path segment under /admin
	label string
	topic string
	del   func(c *api.Client, ctx context.Context, id string) error
}

var deletables = []deletable{
	{kind: "order", label: "Order", topic: live.TopicOrders, del: (*api.Client).DeleteOrder},
	{kind: "piece", label: "Piece", topic: live.TopicPieces, del: (*api.Client).DeletePiece},
	{kind: "user", label: "User", topic: live.TopicUsers, del: (*api.Client).DeleteUser},
	{kind: "section", label: "Section", topic: live.TopicSections, del: func(c *api.Client, ctx context.Context, id string) error {
		return c.Sections().Delete(ctx, id)
	}},
	{kind: "stage", label: "Stage", topic: live.TopicStages, del: func(c *api.Client, ctx context.Context, id string) error {
		return c.Stages().Delete(ctx, id)
	}},
}

func (d deletable) list() string {
	return "/admin/" + d.kind
}

type confirmData struct {
	Label  string
	ID     string
	Action string
	Cancel string
}

// confirmDelete holds the target until the admin confirms or cancels
func (r *Router) confirmDelete(d deletable) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		id := mux.Vars(req)["id"]
		r.render(w, req, http.StatusOK, "confirm", Page{
			Title: "Delete " + d.label,
			Data: confirmData{
				Label:  d.label,
				ID:     id,
				Action: d.list() + "/" + id + "/delete",
				Cancel: d.list(),
			},
		})
	}
}

// doDelete issues exactly one DELETE when confirmed. Cancel makes no call.
func (r *Router) doDelete(d deletable) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := req.ParseForm(); err != nil || req.PostForm.Get("confirm") != "yes" {
			r.redirect(w, req, d.list())
			return
		}

		v := middleware.ViewerFrom(req.Context())
		id := mux.Vars(req)["id"]
		if err := d.del(v.API, req.Context(), id); err != nil {
			log.Printf("❌ Delete %s %s: %v", d.kind, id, err)
			r.flash(req, models.FlashError, "Error deleting "+d.kind+": "+api.Message(err))
		} else {
			r.flash(req, models.FlashSuccess, d.label+" deleted.")
			r.hub.Publish(d.topic)
		}
		r.redirect(w, req, d.list())
	}
}
