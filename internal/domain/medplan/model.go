package medplan

import (
	"time"

	"github.com/google/uuid"

	"github.com/carehome/medplan/internal/platform/planvalidation"
)

// Status is the lifecycle state of a stored plan.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// gated reports whether writes in this status must pass validation. Closing
// a plan records history and may legitimately reference past dates.
func (s Status) gated() bool {
	return s == StatusDraft || s == StatusActive
}

// Plan maps to the medical_plan table.
type Plan struct {
	ID           uuid.UUID                         `db:"id" json:"id"`
	ResidentID   uuid.UUID                         `db:"resident_id" json:"resident_id"`
	Title        string                            `db:"title" json:"title"`
	Notes        string                            `db:"notes" json:"notes,omitempty"`
	Appointments []planvalidation.AppointmentEntry `db:"appointments" json:"appointments"`
	Score        int                               `db:"score" json:"score"`
	Level        planvalidation.Level              `db:"level" json:"level"`
	Status       Status                            `db:"status" json:"status"`
	CreatedBy    string                            `db:"created_by" json:"created_by,omitempty"`
	CreatedAt    time.Time                         `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time                         `db:"updated_at" json:"updated_at"`

	// Non-blocking findings from the last write. Not persisted.
	Diagnostics []planvalidation.Diagnostic `db:"-" json:"diagnostics,omitempty"`
}

// MedicalPlan returns the validator input for p.
func (p *Plan) MedicalPlan() planvalidation.MedicalPlan {
	return planvalidation.MedicalPlan{
		Title:        p.Title,
		Notes:        p.Notes,
		Appointments: p.Appointments,
	}
}
