package planvalidation

import (
	"fmt"
	"sort"
)

// Severity of a validation diagnostic. Only SeverityError blocks submission.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Diagnostic codes. These are stable identifiers; clients match on them.
const (
	CodePlanTitleRequired       = "PLAN_TITLE_REQUIRED"
	CodePlanTitleTooShort       = "PLAN_TITLE_TOO_SHORT"
	CodePlanTitleNoKeyword      = "PLAN_TITLE_NO_KEYWORD"
	CodePlanNoValidAppointments = "PLAN_NO_VALID_APPOINTMENTS"
	CodePlanTooManyAppointments = "PLAN_TOO_MANY_APPOINTMENTS"
	CodePlanNotBalanced         = "PLAN_NOT_BALANCED"

	CodeTypeRequired          = "APT_TYPE_REQUIRED"
	CodeTypeUnknown           = "APT_TYPE_UNKNOWN"
	CodeServiceInfo           = "APT_SERVICE_INFO"
	CodeProviderRequired      = "APT_PROVIDER_REQUIRED"
	CodeProviderNoTitle       = "APT_PROVIDER_NO_TITLE"
	CodeProviderSkillMismatch = "APT_PROVIDER_SKILL_MISMATCH"
	CodeDateRequired          = "APT_DATE_REQUIRED"
	CodeDateInvalid           = "APT_DATE_INVALID"
	CodeDateInPast            = "APT_DATE_IN_PAST"
	CodeDateTooFar            = "APT_DATE_TOO_FAR"
	CodeDateSunday            = "APT_DATE_SUNDAY"
	CodeTimeRequired          = "APT_TIME_REQUIRED"
	CodeTimeInvalid           = "APT_TIME_INVALID"
	CodeTimeOutsideHours      = "APT_TIME_OUTSIDE_HOURS"
	CodePriorityInvalid       = "APT_PRIORITY_INVALID"
	CodePrioritySuggestion    = "APT_PRIORITY_SUGGESTION"

	CodeScheduleConflict = "SCHEDULE_CONFLICT"
	CodeServiceFrequency = "SERVICE_FREQUENCY"
)

// Plan-level field identifiers.
const (
	FieldTitle        = "title"
	FieldAppointments = "appointments"
	FieldSchedule     = "schedule"
	FieldFrequency    = "frequency"
)

// Diagnostic is a single validation finding.
type Diagnostic struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
}

func appointmentField(index int, sub string) string {
	return fmt.Sprintf("apt_%d_%s", index, sub)
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// CountBySeverity tallies diagnostics per severity.
func CountBySeverity(diags []Diagnostic) map[Severity]int {
	counts := make(map[Severity]int, 3)
	for _, d := range diags {
		counts[d.Severity]++
	}
	return counts
}

func severityRank(s Severity) int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	}
	return 3
}

// SortBySeverity returns a copy of diags ordered errors first, then warnings,
// then info. Relative order within a severity is preserved.
func SortBySeverity(diags []Diagnostic) []Diagnostic {
	out := append([]Diagnostic(nil), diags...)
	sort.SliceStable(out, func(i, j int) bool {
		return severityRank(out[i].Severity) < severityRank(out[j].Severity)
	})
	return out
}
