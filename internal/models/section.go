package models

// Section is an ordered fabrication step a piece passes through.
// Number defines traversal order; section 1 is intake.
// Legacy screens call the same thing a Stage.
type Section struct {
	ID        string          `json:"_id,omitempty"`
	Number    int             `json:"number"`
	Name      string          `json:"name"`
	Checklist []ChecklistItem `json:"checklist"`
}

// Stage is the legacy name for Section, served under /admin/stage.
type Stage = Section

// ChecklistItem is one inspection task shown to the worker at transition time.
type ChecklistItem struct {
	ID          string `json:"_id,omitempty"`
	Description string `json:"description"`
	IsMandatory bool   `json:"isMandatory"`
}

// MandatoryCount returns how many checklist items are flagged mandatory
func (s Section) MandatoryCount() int {
	n := 0
	for _, item := range s.Checklist {
		if item.IsMandatory {
			n++
		}
	}
	return n
}
