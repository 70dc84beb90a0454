package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/xelth-com/fabtrack/internal/api"
	"github.com/xelth-com/fabtrack/internal/labels"
	"github.com/xelth-com/fabtrack/internal/live"
	"github.com/xelth-com/fabtrack/internal/middleware"
	"github.com/xelth-com/fabtrack/internal/models"
)

// orderAttachments are the upload fields of the order form, in API order
var orderAttachments = []string{"drawing", "cuttingSheet", "takeOffSheet"}

func (r *Router) listOrders(w http.ResponseWriter, req *http.Request) {
	v := middleware.ViewerFrom(req.Context())
	orders, err := v.API.ListOrders(req.Context())
	if err != nil {
		r.failed(w, req, "Orders not loaded", err)
		return
	}
	r.render(w, req, http.StatusOK, "orders", Page{
		Title:  "Orders",
		Topics: []string{live.TopicOrders},
		Data:   orders,
	})
}

type orderFormData struct {
	ID           string
	ProjectName  string
	CustomerName string
	DueDate      string
	Drawings     []models.Drawing
}

func (r *Router) orderForm(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	data := orderFormData{}
	if id != "" {
		v := middleware.ViewerFrom(req.Context())
		o, err := v.API.GetOrder(req.Context(), id)
		if err != nil {
			r.failed(w, req, "Order not loaded", err)
			return
		}
		data = orderFormData{
			ID:           o.ID,
			ProjectName:  o.ProjectName,
			CustomerName: o.CustomerName,
			Drawings:     o.Drawings,
		}
		if o.DueDate != nil {
			data.DueDate = o.DueDate.Format("2006-01-02")
		}
	}
	r.renderOrderForm(w, req, http.StatusOK, data, "")
}

func (r *Router) renderOrderForm(w http.ResponseWriter, req *http.Request, status int, data orderFormData, errMsg string) {
	p := Page{Title: "New Order", Data: data}
	if data.ID != "" {
		p.Title = "Edit Order"
	}
	if errMsg != "" {
		p.Flash = []models.FlashMessage{{Level: models.FlashError, Message: errMsg}}
	}
	r.render(w, req, status, "order_form", p)
}

// saveOrder creates or updates an order with up to three attachments
func (r *Router) saveOrder(w http.ResponseWriter, req *http.Request) {
	if err := parseForm(req); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	v := middleware.ViewerFrom(req.Context())
	id := mux.Vars(req)["id"]

	data := orderFormData{
		ID:           id,
		ProjectName:  strings.TrimSpace(req.FormValue("projectName")),
		CustomerName: strings.TrimSpace(req.FormValue("customerName")),
		DueDate:      strings.TrimSpace(req.FormValue("dueDate")),
	}
	if data.ProjectName == "" || data.CustomerName == "" {
		r.renderOrderForm(w, req, http.StatusUnprocessableEntity, data, "Project name and customer are required")
		return
	}
	in := api.OrderInput{ProjectName: data.ProjectName, CustomerName: data.CustomerName}
	if data.DueDate != "" {
		due, err := time.Parse("2006-01-02", data.DueDate)
		if err != nil {
			r.renderOrderForm(w, req, http.StatusUnprocessableEntity, data, "Due date must be YYYY-MM-DD")
			return
		}
		in.DueDate = due
	}

	var files []*api.Upload
	for _, field := range orderAttachments {
		up, err := upload(req, field)
		if err != nil {
			r.renderOrderForm(w, req, http.StatusBadRequest, data, err.Error())
			return
		}
		files = append(files, up)
	}

	var err error
	if id == "" {
		err = v.API.CreateOrder(req.Context(), in, files...)
	} else {
		err = v.API.UpdateOrder(req.Context(), id, in, files...)
	}
	if err != nil {
		r.renderOrderForm(w, req, http.StatusBadGateway, data, "Error saving order: "+api.Message(err))
		return
	}

	r.flash(req, models.FlashSuccess, "Order saved.")
	r.hub.Publish(live.TopicOrders)
	r.redirect(w, req, "/admin/order")
}

// orderLabels renders the printable label sheet of an order
func (r *Router) orderLabels(w http.ResponseWriter, req *http.Request) {
	v := middleware.ViewerFrom(req.Context())
	id := mux.Vars(req)["id"]

	order, err := v.API.GetOrder(req.Context(), id)
	if err != nil {
		r.failed(w, req, "Order not loaded", err)
		return
	}
	pieces, err := v.API.OrderPieces(req.Context(), id)
	if err != nil {
		r.failed(w, req, "Pieces not loaded", err)
		return
	}
	if len(pieces) == 0 {
		r.flash(req, models.FlashError, "Order has no pieces to label yet.")
		r.redirect(w, req, "/admin/order")
		return
	}

	pdfBytes, err := labels.OrderSheetPDF(*order, pieces)
	if err != nil {
		r.failed(w, req, "Failed to generate PDF", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"labels_%s.pdf\"", id))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))
	w.Write(pdfBytes)
}
