package workflow

import (
	"strconv"
	"strings"

	"github.com/xelth-com/fabtrack/internal/models"
)

// Photo is the mandatory picture attached to a transition
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Blocker names one unmet submission condition
type Blocker string

const (
	BlockerPhoto     Blocker = "Attach a photo"
	BlockerChecklist Blocker = "Check at least one checklist item"
	BlockerNotes     Blocker = "Add notes"
)

// Form is the transient input of one transition: checklist ticks, photo,
// notes and the flagged marker.
type Form struct {
	Checklist []models.ChecklistItem
	Checked   map[string]bool
	Photo     *Photo
	Notes     string
	Flagged   bool
}

// ItemKey identifies a checklist row on the form: the item's id, or its
// position when the API sent none.
func ItemKey(i int, item models.ChecklistItem) string {
	if item.ID != "" {
		return item.ID
	}
	return "task-" + strconv.Itoa(i)
}

// Toggle flips one checklist box
func (f *Form) Toggle(key string) {
	if f.Checked == nil {
		f.Checked = map[string]bool{}
	}
	f.Checked[key] = !f.Checked[key]
}

// SetChecked replaces the checked set; unknown keys are ignored.
func (f *Form) SetChecked(keys []string) {
	valid := map[string]bool{}
	for i, item := range f.Checklist {
		valid[ItemKey(i, item)] = true
	}
	f.Checked = map[string]bool{}
	for _, k := range keys {
		if valid[k] {
			f.Checked[k] = true
		}
	}
}

// CheckedCount counts ticked boxes
func (f *Form) CheckedCount() int {
	n := 0
	for _, v := range f.Checked {
		if v {
			n++
		}
	}
	return n
}

// Blockers lists every unmet condition. Any single checked box satisfies the
// checklist condition, mandatory or not; per-item enforcement is the API's job.
func (f *Form) Blockers(requireNotes bool) []Blocker {
	var b []Blocker
	if f.Photo == nil || len(f.Photo.Data) == 0 {
		b = append(b, BlockerPhoto)
	}
	if f.CheckedCount() == 0 {
		b = append(b, BlockerChecklist)
	}
	if requireNotes && strings.TrimSpace(f.Notes) == "" {
		b = append(b, BlockerNotes)
	}
	return b
}

// CanSubmit is true when nothing blocks submission
func (f *Form) CanSubmit(requireNotes bool) bool {
	return len(f.Blockers(requireNotes)) == 0
}

// Reset clears everything the worker entered
func (f *Form) Reset() {
	f.Checked = map[string]bool{}
	f.Photo = nil
	f.Notes = ""
	f.Flagged = false
}
