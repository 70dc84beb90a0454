package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/xelth-com/fabtrack/internal/api"
	"github.com/xelth-com/fabtrack/internal/live"
	"github.com/xelth-com/fabtrack/internal/middleware"
	"github.com/xelth-com/fabtrack/internal/models"
	"github.com/xelth-com/fabtrack/internal/workflow"
)

// sectionKind selects /admin/section or the legacy /admin/stage
type sectionKind struct {
	name  string
	label string
	topic string
	res   func(c *api.Client) api.SectionAPI
}

var (
	sectionsKind = sectionKind{name: "section", label: "Section", topic: live.TopicSections, res: (*api.Client).Sections}
	stagesKind   = sectionKind{name: "stage", label: "Stage", topic: live.TopicStages, res: (*api.Client).Stages}
)

type sectionListData struct {
	Kind     string
	Label    string
	Sections []models.Section
}

func (r *Router) listSections(kind sectionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		v := middleware.ViewerFrom(req.Context())
		sections, err := kind.res(v.API).List(req.Context())
		if err != nil {
			r.failed(w, req, kind.label+"s not loaded", err)
			return
		}
		r.render(w, req, http.StatusOK, "sections", Page{
			Title:  kind.label + "s",
			Topics: []string{kind.topic},
			Data:   sectionListData{Kind: kind.name, Label: kind.label, Sections: sections},
		})
	}
}

type sectionFormData struct {
	Kind      string
	Label     string
	ID        string
	Number    string
	Name      string
	Checklist []models.ChecklistItem
	// NewDescription survives a failed add
	NewDescription string
}

func (r *Router) sectionForm(kind sectionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		data := sectionFormData{Kind: kind.name, Label: kind.label, ID: mux.Vars(req)["id"]}
		if data.ID != "" {
			v := middleware.ViewerFrom(req.Context())
			sec, err := kind.res(v.API).Get(req.Context(), data.ID)
			if err != nil {
				r.failed(w, req, kind.label+" not loaded", err)
				return
			}
			data.Number = strconv.Itoa(sec.Number)
			data.Name = sec.Name
			data.Checklist = workflow.NewChecklist(sec.Checklist).Items()
		}
		r.renderSectionForm(w, req, http.StatusOK, data, "")
	}
}

func (r *Router) renderSectionForm(w http.ResponseWriter, req *http.Request, status int, data sectionFormData, errMsg string) {
	p := Page{Title: "New " + data.Label, Data: data}
	if data.ID != "" {
		p.Title = "Edit " + data.Label
	}
	if errMsg != "" {
		p.Flash = []models.FlashMessage{{Level: models.FlashError, Message: errMsg}}
	}
	r.render(w, req, status, "section_form", p)
}

// checklistFromForm rebuilds the builder from the hidden item fields
func checklistFromForm(form url.Values) *workflow.Checklist {
	ids, descs, mandatory := form["item_id"], form["item_desc"], form["item_mandatory"]
	items := make([]models.ChecklistItem, 0, len(descs))
	for i, desc := range descs {
		it := models.ChecklistItem{Description: desc}
		if i < len(ids) {
			it.ID = ids[i]
		}
		if i < len(mandatory) {
			it.IsMandatory = mandatory[i] == "true"
		}
		items = append(items, it)
	}
	return workflow.NewChecklist(items)
}

// saveSection drives the checklist builder: "add" and "remove" re-render
// the form, "save" sends the whole section in one request.
func (r *Router) saveSection(kind sectionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := req.ParseForm(); err != nil {
			http.Error(w, "Invalid form", http.StatusBadRequest)
			return
		}
		form := req.PostForm
		builder := checklistFromForm(form)
		data := sectionFormData{
			Kind:   kind.name,
			Label:  kind.label,
			ID:     mux.Vars(req)["id"],
			Number: strings.TrimSpace(form.Get("number")),
			Name:   strings.TrimSpace(form.Get("name")),
		}

		if id := form.Get("remove"); id != "" {
			builder.Remove(id)
			data.Checklist = builder.Items()
			r.renderSectionForm(w, req, http.StatusOK, data, "")
			return
		}
		if form.Get("action") == "add" {
			if _, ok := builder.Add(form.Get("new_description"), form.Get("new_mandatory") != ""); !ok {
				data.Checklist = builder.Items()
				r.renderSectionForm(w, req, http.StatusUnprocessableEntity, data, "Task description is required")
				return
			}
			data.Checklist = builder.Items()
			r.renderSectionForm(w, req, http.StatusOK, data, "")
			return
		}

		data.Checklist = builder.Items()
		number, err := strconv.Atoi(data.Number)
		if err != nil || number <= 0 || data.Name == "" {
			r.renderSectionForm(w, req, http.StatusUnprocessableEntity, data, "Name and a positive number are required")
			return
		}

		v := middleware.ViewerFrom(req.Context())
		in := api.SectionInput{Number: number, Name: data.Name, Checklist: builder.Payload()}
		res := kind.res(v.API)
		if data.ID == "" {
			err = res.Create(req.Context(), in)
		} else {
			err = res.Update(req.Context(), data.ID, in)
		}
		if err != nil {
			r.renderSectionForm(w, req, http.StatusBadGateway, data, "Error saving "+kind.name+": "+api.Message(err))
			return
		}

		r.flash(req, models.FlashSuccess, kind.label+" saved.")
		r.hub.Publish(kind.topic)
		r.redirect(w, req, "/admin/"+kind.name)
	}
}
