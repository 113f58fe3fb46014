// Package planvalidation checks medical care plans against the static service
// catalog and working-hours table, and scores their overall quality.
//
// All functions are pure apart from reading the current date through the
// Validator's clock. Findings are returned as Diagnostic values, never as errors,
// and every rule runs even when earlier fields were invalid.
package planvalidation

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	minTitleLength      = 10
	maxPlanAppointments = 15
	minBalanceCheck     = 3
)

var medicalKeywords = []string{
	"khám", "điều trị", "chăm sóc", "theo dõi", "phục hồi",
	"xét nghiệm", "tư vấn", "sức khỏe", "y tế", "định kỳ",
}

// MedicalPlan is the aggregate passed to the plan-level checks.
type MedicalPlan struct {
	Title        string             `json:"title"`
	Notes        string             `json:"notes,omitempty"`
	Appointments []AppointmentEntry `json:"appointments"`
}

// Validator runs the plan rules. The zero value is not usable; use NewValidator.
type Validator struct {
	now func() time.Time
}

// NewValidator returns a Validator reading the current date from now.
// A nil now uses time.Now.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

// FixedClock returns a clock that always reports t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func (v *Validator) today() time.Time {
	t := v.now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ValidatePlanInfo checks the plan header. Notes are accepted for symmetry with
// the other entry points but carry no rules of their own.
func (v *Validator) ValidatePlanInfo(title, _ string) []Diagnostic {
	title = strings.TrimSpace(title)
	if title == "" {
		return []Diagnostic{{
			Field:    FieldTitle,
			Message:  "Vui lòng nhập tên kế hoạch",
			Severity: SeverityError,
			Code:     CodePlanTitleRequired,
		}}
	}

	var diags []Diagnostic
	if utf8.RuneCountInString(title) < minTitleLength {
		diags = append(diags, Diagnostic{
			Field:    FieldTitle,
			Message:  fmt.Sprintf("Tên kế hoạch quá ngắn (tối thiểu %d ký tự)", minTitleLength),
			Severity: SeverityWarning,
			Code:     CodePlanTitleTooShort,
		})
	}
	if !containsKeyword(title) {
		diags = append(diags, Diagnostic{
			Field:    FieldTitle,
			Message:  "Tên kế hoạch nên thể hiện rõ mục đích y tế (VD: khám, điều trị, chăm sóc)",
			Severity: SeverityInfo,
			Code:     CodePlanTitleNoKeyword,
		})
	}
	return diags
}

// ValidateMedicalPlan runs every rule over a full plan and returns the
// diagnostics in display order: header, appointments, conflicts, frequency,
// then plan-size and balance checks. The list is not sorted by severity.
func (v *Validator) ValidateMedicalPlan(title string, appointments []AppointmentEntry, notes string) []Diagnostic {
	diags := v.ValidatePlanInfo(title, notes)
	for i, a := range appointments {
		diags = append(diags, v.ValidateAppointment(a, i)...)
	}
	diags = append(diags, CheckScheduleConflicts(appointments)...)
	diags = append(diags, CheckServiceFrequency(appointments)...)

	var complete []AppointmentEntry
	for _, a := range appointments {
		if a.complete() {
			complete = append(complete, a)
		}
	}

	switch {
	case len(complete) == 0:
		diags = append(diags, Diagnostic{
			Field:    FieldAppointments,
			Message:  "Kế hoạch cần có ít nhất một lịch hẹn đầy đủ loại dịch vụ, ngày và giờ",
			Severity: SeverityError,
			Code:     CodePlanNoValidAppointments,
		})
	case len(complete) > maxPlanAppointments:
		diags = append(diags, Diagnostic{
			Field:    FieldAppointments,
			Message:  fmt.Sprintf("Kế hoạch có %d lịch hẹn, nên chia thành nhiều kế hoạch nhỏ hơn", len(complete)),
			Severity: SeverityWarning,
			Code:     CodePlanTooManyAppointments,
		})
	}

	if len(complete) > minBalanceCheck && singleCategory(complete) {
		diags = append(diags, Diagnostic{
			Field:    FieldAppointments,
			Message:  "Kế hoạch chưa cân bằng: tất cả lịch hẹn thuộc cùng một nhóm dịch vụ",
			Severity: SeverityInfo,
			Code:     CodePlanNotBalanced,
		})
	}
	return diags
}

// Validate is shorthand for ValidateMedicalPlan on a MedicalPlan value.
func (v *Validator) Validate(p MedicalPlan) []Diagnostic {
	return v.ValidateMedicalPlan(p.Title, p.Appointments, p.Notes)
}

func containsKeyword(title string) bool {
	lower := strings.ToLower(title)
	for _, k := range medicalKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// singleCategory reports whether every appointment maps to the same catalog category.
func singleCategory(appointments []AppointmentEntry) bool {
	var first Category
	for i, a := range appointments {
		s, ok := LookupService(strings.TrimSpace(a.Type))
		if !ok {
			return false
		}
		if i == 0 {
			first = s.Category
		} else if s.Category != first {
			return false
		}
	}
	return len(appointments) > 0
}

var defaultValidator = NewValidator(nil)

// ValidatePlanInfo checks a plan header using the system clock.
func ValidatePlanInfo(title, notes string) []Diagnostic {
	return defaultValidator.ValidatePlanInfo(title, notes)
}

// ValidateAppointment checks one appointment using the system clock.
func ValidateAppointment(a AppointmentEntry, index int) []Diagnostic {
	return defaultValidator.ValidateAppointment(a, index)
}

// ValidateMedicalPlan runs all plan rules using the system clock.
func ValidateMedicalPlan(title string, appointments []AppointmentEntry, notes string) []Diagnostic {
	return defaultValidator.ValidateMedicalPlan(title, appointments, notes)
}

// CalculatePlanQuality scores a plan using the system clock.
func CalculatePlanQuality(title string, appointments []AppointmentEntry, notes string) Quality {
	return defaultValidator.CalculatePlanQuality(title, appointments, notes)
}
