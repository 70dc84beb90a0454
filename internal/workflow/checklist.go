package workflow

import (
	"strings"

	"github.com/google/uuid"
	"github.com/xelth-com/fabtrack/internal/models"
)

// draftIDPrefix marks ids minted locally; they are never sent to the API.
const draftIDPrefix = "draft-"

// Checklist builds a section's ordered checklist before it is saved.
// Items are identified by id, never by description, so two tasks with the
// same text stay independent.
type Checklist struct {
	items []models.ChecklistItem
}

// NewChecklist starts from existing items, minting ids where missing.
func NewChecklist(items []models.ChecklistItem) *Checklist {
	c := &Checklist{items: make([]models.ChecklistItem, 0, len(items))}
	for _, it := range items {
		if it.ID == "" {
			it.ID = newDraftID()
		}
		c.items = append(c.items, it)
	}
	return c
}

func newDraftID() string {
	return draftIDPrefix + uuid.NewString()
}

// Add appends a task. Blank descriptions are ignored.
func (c *Checklist) Add(description string, mandatory bool) (models.ChecklistItem, bool) {
	description = strings.TrimSpace(description)
	if description == "" {
		return models.ChecklistItem{}, false
	}
	it := models.ChecklistItem{ID: newDraftID(), Description: description, IsMandatory: mandatory}
	c.items = append(c.items, it)
	return it, true
}

// Remove deletes exactly the item with the given id
func (c *Checklist) Remove(id string) bool {
	for i, it := range c.items {
		if it.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Items returns the tasks in insertion order
func (c *Checklist) Items() []models.ChecklistItem {
	out := make([]models.ChecklistItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len is the number of tasks
func (c *Checklist) Len() int {
	return len(c.items)
}

// Payload is the checklist as sent to the API: locally minted ids are
// stripped, ids the API assigned are kept.
func (c *Checklist) Payload() []models.ChecklistItem {
	out := c.Items()
	for i := range out {
		if strings.HasPrefix(out[i].ID, draftIDPrefix) {
			out[i].ID = ""
		}
	}
	return out
}
