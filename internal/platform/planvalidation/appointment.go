package planvalidation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Priority of an appointment within a plan.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// AppointmentEntry is one scheduled visit inside a medical plan.
type AppointmentEntry struct {
	Type     string   `json:"type"`
	Provider string   `json:"provider"`
	Date     string   `json:"date"`
	Time     string   `json:"time"`
	Notes    string   `json:"notes,omitempty"`
	Priority Priority `json:"priority"`
}

// complete reports whether type, date and time are all filled in.
func (a AppointmentEntry) complete() bool {
	return strings.TrimSpace(a.Type) != "" &&
		strings.TrimSpace(a.Date) != "" &&
		strings.TrimSpace(a.Time) != ""
}

var timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

var professionalTitles = []string{
	"bs.", "bs ", "ths.", "ts.", "pgs.", "gs.", "cn.", "ktv.", "đd.",
	"bác sĩ", "y tá", "điều dưỡng", "dược sĩ", "kỹ thuật viên", "chuyên gia",
}

type minuteRange struct{ start, end int }

var (
	morningShift   = minuteRange{7 * 60, 11*60 + 30}
	afternoonShift = minuteRange{13*60 + 30, 17 * 60}
)

// workingHours lists the open ranges (inclusive, minutes since midnight) per weekday.
// Sunday has no entry.
var workingHours = map[time.Weekday][]minuteRange{
	time.Monday:    {morningShift, afternoonShift},
	time.Tuesday:   {morningShift, afternoonShift},
	time.Wednesday: {morningShift, afternoonShift},
	time.Thursday:  {morningShift, afternoonShift},
	time.Friday:    {morningShift, afternoonShift},
	time.Saturday:  {morningShift},
}

func workingHoursLabel(day time.Weekday) string {
	switch {
	case day == time.Sunday:
		return "Chủ nhật không làm việc"
	case day == time.Saturday:
		return "Thứ 7: 07:00-11:30"
	default:
		return "Thứ 2 - Thứ 6: 07:00-11:30, 13:30-17:00"
	}
}

func withinWorkingHours(day time.Weekday, minutes int) bool {
	for _, r := range workingHours[day] {
		if minutes >= r.start && minutes <= r.end {
			return true
		}
	}
	return false
}

// ValidateAppointment checks a single appointment entry at the given 0-based
// position. Every field is checked regardless of the others.
func (v *Validator) ValidateAppointment(a AppointmentEntry, index int) []Diagnostic {
	n := index + 1
	var diags []Diagnostic
	add := func(sub string, sev Severity, code, format string, args ...interface{}) {
		diags = append(diags, Diagnostic{
			Field:    appointmentField(index, sub),
			Message:  fmt.Sprintf("Lịch hẹn #%d: ", n) + fmt.Sprintf(format, args...),
			Severity: sev,
			Code:     code,
		})
	}

	// Type
	serviceName := strings.TrimSpace(a.Type)
	service, known := LookupService(serviceName)
	switch {
	case serviceName == "":
		add("type", SeverityError, CodeTypeRequired, "Vui lòng chọn loại dịch vụ")
	case !known:
		add("type", SeverityWarning, CodeTypeUnknown,
			"Dịch vụ \"%s\" không có trong danh mục, vui lòng kiểm tra lại", serviceName)
	default:
		add("type", SeverityInfo, CodeServiceInfo,
			"%s - thời gian %s, tần suất khuyến nghị %s. Chuẩn bị: %s",
			service.Name, service.Duration, service.Frequency, service.Preparation)
	}

	// Provider
	provider := strings.TrimSpace(a.Provider)
	if provider == "" {
		add("provider", SeverityError, CodeProviderRequired, "Vui lòng nhập người hoặc cơ sở phụ trách")
	} else {
		if !hasProfessionalTitle(provider) {
			add("provider", SeverityWarning, CodeProviderNoTitle,
				"Tên người phụ trách nên có chức danh chuyên môn (VD: BS., ThS., TS.)")
		}
		if known && len(service.Requirements) > 0 && !matchesRequirement(provider, service.Requirements) {
			add("provider", SeverityWarning, CodeProviderSkillMismatch,
				"Người phụ trách có thể không phù hợp với dịch vụ %s (yêu cầu: %s)",
				service.Name, strings.Join(service.Requirements, ", "))
		}
	}

	// Date
	date, dateOK := v.validateDate(a.Date, add)

	// Time
	rawTime := strings.TrimSpace(a.Time)
	switch m := timePattern.FindStringSubmatch(rawTime); {
	case rawTime == "":
		add("time", SeverityError, CodeTimeRequired, "Vui lòng chọn giờ hẹn")
	case m == nil:
		add("time", SeverityError, CodeTimeInvalid, "Giờ hẹn không hợp lệ (định dạng HH:MM)")
	case dateOK:
		minutes := atoi2(m[1])*60 + atoi2(m[2])
		day := date.Weekday()
		if !withinWorkingHours(day, minutes) {
			add("time", SeverityWarning, CodeTimeOutsideHours,
				"Giờ hẹn %s nằm ngoài giờ làm việc (%s)", rawTime, workingHoursLabel(day))
		}
	}

	// Priority
	if !a.Priority.Valid() {
		add("priority", SeverityError, CodePriorityInvalid,
			"Mức độ ưu tiên không hợp lệ, chọn một trong: low, medium, high")
	} else if known {
		switch {
		case service.Category == CategorySpecialist && a.Priority == PriorityLow:
			add("priority", SeverityInfo, CodePrioritySuggestion,
				"Khám chuyên khoa nên đặt mức ưu tiên trung bình hoặc cao")
		case service.Category == CategoryMonitoring && a.Priority == PriorityHigh:
			add("priority", SeverityInfo, CodePrioritySuggestion,
				"Dịch vụ theo dõi định kỳ thường không cần mức ưu tiên cao")
		}
	}

	return diags
}

func (v *Validator) validateDate(raw string, add func(string, Severity, string, string, ...interface{})) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		add("date", SeverityError, CodeDateRequired, "Vui lòng chọn ngày hẹn")
		return time.Time{}, false
	}
	today := v.today()
	date, err := parseDate(raw, today.Location())
	if err != nil {
		add("date", SeverityError, CodeDateInvalid, "Ngày hẹn \"%s\" không hợp lệ", raw)
		return time.Time{}, false
	}
	if date.Before(today) {
		add("date", SeverityError, CodeDateInPast, "Ngày hẹn không được ở trong quá khứ")
	} else if date.After(today.AddDate(0, 6, 0)) {
		add("date", SeverityWarning, CodeDateTooFar, "Ngày hẹn cách hiện tại hơn 6 tháng, nên xem xét lại")
	}
	if date.Weekday() == time.Sunday {
		add("date", SeverityWarning, CodeDateSunday, "Ngày hẹn rơi vào Chủ nhật, phần lớn dịch vụ không hoạt động")
	}
	return date, true
}

// parseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns midnight
// of that calendar day in loc.
func parseDate(raw string, loc *time.Location) (time.Time, error) {
	if d, err := time.ParseInLocation("2006-01-02", raw, loc); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	ts = ts.In(loc)
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, loc), nil
}

func hasProfessionalTitle(provider string) bool {
	lower := strings.ToLower(provider)
	for _, t := range professionalTitles {
		if strings.HasPrefix(lower, t) {
			return true
		}
	}
	return false
}

// matchesRequirement is a loose substring test; false positives are accepted.
func matchesRequirement(provider string, requirements []string) bool {
	lower := strings.ToLower(provider)
	for _, r := range requirements {
		if strings.Contains(lower, strings.ToLower(r)) {
			return true
		}
	}
	return false
}

// atoi2 converts a two-digit string already matched by timePattern.
func atoi2(s string) int {
	return int(s[0]-'0')*10 + int(s[1]-'0')
}
