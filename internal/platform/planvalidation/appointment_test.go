package planvalidation

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

// 2024-03-05 is a Tuesday.
var testNow = time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)

func newTestValidator() *Validator { return NewValidator(FixedClock(testNow)) }

func validAppointment() AppointmentEntry {
	return AppointmentEntry{
		Type:     "Khám sức khỏe tổng quát",
		Provider: "BS. Nguyễn Văn A",
		Date:     "2024-03-06",
		Time:     "09:00",
		Priority: PriorityMedium,
	}
}

func findCode(diags []Diagnostic, code string) (Diagnostic, bool) {
	for _, d := range diags {
		if d.Code == code {
			return d, true
		}
	}
	return Diagnostic{}, false
}

func countFor(diags []Diagnostic, field string, sev Severity) int {
	n := 0
	for _, d := range diags {
		if d.Field == field && d.Severity == sev {
			n++
		}
	}
	return n
}

func TestValidateAppointment_Valid(t *testing.T) {
	diags := newTestValidator().ValidateAppointment(validAppointment(), 0)
	if len(diags) != 1 {
		t.Fatalf("expected only the service guidance diagnostic, got %+v", diags)
	}
	if diags[0].Code != CodeServiceInfo || diags[0].Severity != SeverityInfo {
		t.Errorf("unexpected diagnostic %+v", diags[0])
	}
	if !strings.Contains(diags[0].Message, "6 tháng") {
		t.Errorf("expected frequency guidance in message, got %q", diags[0].Message)
	}
}

func TestValidateAppointment_EmptyFieldsYieldOneErrorEach(t *testing.T) {
	cases := map[string]func(*AppointmentEntry){
		"type":     func(a *AppointmentEntry) { a.Type = "" },
		"provider": func(a *AppointmentEntry) { a.Provider = "" },
		"date":     func(a *AppointmentEntry) { a.Date = "" },
		"time":     func(a *AppointmentEntry) { a.Time = "  " },
	}
	for field, clear := range cases {
		a := validAppointment()
		clear(&a)
		diags := newTestValidator().ValidateAppointment(a, 0)
		if n := countFor(diags, "apt_0_"+field, SeverityError); n != 1 {
			t.Errorf("%s: expected exactly 1 error, got %d (%+v)", field, n, diags)
		}
	}
}

func TestValidateAppointment_AllEmpty(t *testing.T) {
	diags := newTestValidator().ValidateAppointment(AppointmentEntry{}, 0)
	for _, field := range []string{"type", "provider", "date", "time", "priority"} {
		if n := countFor(diags, "apt_0_"+field, SeverityError); n != 1 {
			t.Errorf("%s: expected exactly 1 error, got %d", field, n)
		}
	}
	if len(diags) != 5 {
		t.Errorf("expected 5 diagnostics, got %d: %+v", len(diags), diags)
	}
}

func TestValidateAppointment_IndexNumbering(t *testing.T) {
	a := validAppointment()
	a.Type = ""
	diags := newTestValidator().ValidateAppointment(a, 2)
	d, ok := findCode(diags, CodeTypeRequired)
	if !ok {
		t.Fatal("expected APT_TYPE_REQUIRED")
	}
	if d.Field != "apt_2_type" {
		t.Errorf("expected field apt_2_type, got %s", d.Field)
	}
	if !strings.HasPrefix(d.Message, "Lịch hẹn #3:") {
		t.Errorf("expected 1-based numbering, got %q", d.Message)
	}
}

func TestValidateAppointment_UnknownType(t *testing.T) {
	a := validAppointment()
	a.Type = "Châm cứu"
	diags := newTestValidator().ValidateAppointment(a, 0)
	d, ok := findCode(diags, CodeTypeUnknown)
	if !ok || d.Severity != SeverityWarning {
		t.Fatalf("expected APT_TYPE_UNKNOWN warning, got %+v", diags)
	}
	if _, ok := findCode(diags, CodeProviderSkillMismatch); ok {
		t.Error("skill check needs a catalog match")
	}
}

func TestValidateAppointment_ProviderWithoutTitle(t *testing.T) {
	a := validAppointment()
	a.Provider = "Nguyễn Văn A"
	diags := newTestValidator().ValidateAppointment(a, 0)
	if d, ok := findCode(diags, CodeProviderNoTitle); !ok || d.Severity != SeverityWarning {
		t.Errorf("expected APT_PROVIDER_NO_TITLE warning, got %+v", diags)
	}
	if _, ok := findCode(diags, CodeProviderSkillMismatch); !ok {
		t.Error("expected skill mismatch for provider without BS/Bác sĩ")
	}
}

func TestValidateAppointment_ProviderTitles(t *testing.T) {
	for _, p := range []string{"BS. Lê C", "ThS. Phạm D", "Bác sĩ Hoàng E", "điều dưỡng Mai", "KTV. Vũ F"} {
		a := validAppointment()
		a.Provider = p
		diags := newTestValidator().ValidateAppointment(a, 0)
		if _, ok := findCode(diags, CodeProviderNoTitle); ok {
			t.Errorf("%q should be recognised as titled", p)
		}
	}
}

func TestValidateAppointment_SkillMismatch(t *testing.T) {
	a := validAppointment()
	a.Type = "Khám tim mạch"
	a.Provider = "BS. Trần Thị B"
	diags := newTestValidator().ValidateAppointment(a, 0)
	if d, ok := findCode(diags, CodeProviderSkillMismatch); !ok || d.Severity != SeverityWarning {
		t.Fatalf("expected skill mismatch warning, got %+v", diags)
	}

	a.Provider = "BS. Trần Thị B - khoa TIM MẠCH"
	diags = newTestValidator().ValidateAppointment(a, 0)
	if _, ok := findCode(diags, CodeProviderSkillMismatch); ok {
		t.Error("case-insensitive substring should match requirement")
	}
}

func TestValidateAppointment_InvalidDateStillChecksTime(t *testing.T) {
	a := validAppointment()
	a.Date = "2024-13-45"
	a.Time = "25:00"
	diags := newTestValidator().ValidateAppointment(a, 0)
	if d, ok := findCode(diags, CodeDateInvalid); !ok || d.Severity != SeverityError {
		t.Errorf("expected APT_DATE_INVALID error, got %+v", diags)
	}
	if _, ok := findCode(diags, CodeTimeInvalid); !ok {
		t.Errorf("expected APT_TIME_INVALID alongside date error, got %+v", diags)
	}
}

func TestValidateAppointment_DateInPast(t *testing.T) {
	a := validAppointment()
	a.Date = testNow.AddDate(0, 0, -1).Format("2006-01-02")
	diags := newTestValidator().ValidateAppointment(a, 0)
	d, ok := findCode(diags, CodeDateInPast)
	if !ok {
		t.Fatalf("expected APT_DATE_IN_PAST, got %+v", diags)
	}
	if d.Severity != SeverityError {
		t.Errorf("expected error severity, got %s", d.Severity)
	}
}

func TestValidateAppointment_TodayIsNotPast(t *testing.T) {
	a := validAppointment()
	a.Date = "2024-03-05"
	diags := newTestValidator().ValidateAppointment(a, 0)
	if _, ok := findCode(diags, CodeDateInPast); ok {
		t.Error("today must not be flagged as past")
	}
}

func TestValidateAppointment_DateTooFar(t *testing.T) {
	a := validAppointment()
	a.Date = "2024-09-06"
	diags := newTestValidator().ValidateAppointment(a, 0)
	if d, ok := findCode(diags, CodeDateTooFar); !ok || d.Severity != SeverityWarning {
		t.Errorf("expected APT_DATE_TOO_FAR warning, got %+v", diags)
	}

	a.Date = "2024-09-05"
	diags = newTestValidator().ValidateAppointment(a, 0)
	if _, ok := findCode(diags, CodeDateTooFar); ok {
		t.Error("exactly six months ahead is allowed")
	}
}

func TestValidateAppointment_Sunday(t *testing.T) {
	a := validAppointment()
	a.Date = "2024-03-10"
	diags := newTestValidator().ValidateAppointment(a, 0)
	if d, ok := findCode(diags, CodeDateSunday); !ok || d.Severity != SeverityWarning {
		t.Errorf("expected APT_DATE_SUNDAY warning, got %+v", diags)
	}
	if d, ok := findCode(diags, CodeTimeOutsideHours); !ok || d.Severity != SeverityWarning {
		t.Errorf("expected out-of-hours warning on Sunday, got %+v", diags)
	}
	if HasErrors(diags) {
		t.Errorf("Sunday scheduling must not be blocked, got %+v", diags)
	}
}

func TestValidateAppointment_LateEveningTuesday(t *testing.T) {
	a := validAppointment()
	a.Date = "2024-03-12"
	a.Time = "23:45"
	diags := newTestValidator().ValidateAppointment(a, 0)
	d, ok := findCode(diags, CodeTimeOutsideHours)
	if !ok {
		t.Fatalf("expected APT_TIME_OUTSIDE_HOURS, got %+v", diags)
	}
	if d.Severity != SeverityWarning {
		t.Errorf("expected warning, got %s", d.Severity)
	}
	if HasErrors(diags) {
		t.Errorf("out-of-hours booking must not be an error: %+v", diags)
	}
}

func TestValidateAppointment_WorkingHours(t *testing.T) {
	tests := []struct {
		date, time string
		outside    bool
	}{
		{"2024-03-11", "07:00", false},
		{"2024-03-11", "06:59", true},
		{"2024-03-11", "11:30", false},
		{"2024-03-11", "11:31", true},
		{"2024-03-11", "12:30", true},
		{"2024-03-11", "13:30", false},
		{"2024-03-11", "17:00", false},
		{"2024-03-11", "17:01", true},
		{"2024-03-09", "09:00", false},
		{"2024-03-09", "14:00", true},
	}
	for _, tt := range tests {
		a := validAppointment()
		a.Date, a.Time = tt.date, tt.time
		diags := newTestValidator().ValidateAppointment(a, 0)
		_, got := findCode(diags, CodeTimeOutsideHours)
		if got != tt.outside {
			t.Errorf("%s %s: outside=%v, want %v", tt.date, tt.time, got, tt.outside)
		}
	}
}

func TestValidateAppointment_InvalidTimeFormats(t *testing.T) {
	for _, tm := range []string{"9:00", "24:00", "12:60", "ab:cd", "0900"} {
		a := validAppointment()
		a.Time = tm
		diags := newTestValidator().ValidateAppointment(a, 0)
		if d, ok := findCode(diags, CodeTimeInvalid); !ok || d.Severity != SeverityError {
			t.Errorf("%q: expected APT_TIME_INVALID error", tm)
		}
	}
}

func TestValidateAppointment_Priority(t *testing.T) {
	for _, p := range []Priority{"", "urgent", "HIGH"} {
		a := validAppointment()
		a.Priority = p
		diags := newTestValidator().ValidateAppointment(a, 0)
		if d, ok := findCode(diags, CodePriorityInvalid); !ok || d.Severity != SeverityError {
			t.Errorf("priority %q: expected APT_PRIORITY_INVALID error", p)
		}
	}
}

func TestValidateAppointment_PrioritySuggestions(t *testing.T) {
	specialist := AppointmentEntry{
		Type: "Khám tim mạch", Provider: "BS. An - Tim mạch",
		Date: "2024-03-06", Time: "09:00", Priority: PriorityLow,
	}
	diags := newTestValidator().ValidateAppointment(specialist, 0)
	if d, ok := findCode(diags, CodePrioritySuggestion); !ok || d.Severity != SeverityInfo {
		t.Errorf("expected specialist/low suggestion, got %+v", diags)
	}

	monitoring := AppointmentEntry{
		Type: "Đo huyết áp định kỳ", Provider: "Điều dưỡng Lan",
		Date: "2024-03-06", Time: "09:00", Priority: PriorityHigh,
	}
	diags = newTestValidator().ValidateAppointment(monitoring, 0)
	if d, ok := findCode(diags, CodePrioritySuggestion); !ok || d.Severity != SeverityInfo {
		t.Errorf("expected monitoring/high suggestion, got %+v", diags)
	}

	monitoring.Priority = PriorityLow
	diags = newTestValidator().ValidateAppointment(monitoring, 0)
	if _, ok := findCode(diags, CodePrioritySuggestion); ok {
		t.Error("monitoring/low needs no suggestion")
	}
}

func TestValidateAppointment_RFC3339Date(t *testing.T) {
	a := validAppointment()
	a.Date = "2024-03-06T08:00:00Z"
	diags := newTestValidator().ValidateAppointment(a, 0)
	if HasErrors(diags) {
		t.Errorf("expected RFC 3339 date to be accepted, got %+v", diags)
	}
}

func TestValidateAppointment_Idempotent(t *testing.T) {
	v := newTestValidator()
	a := AppointmentEntry{Type: "Siêu âm bụng", Provider: "Lê Văn C", Date: "2024-03-10", Time: "18:00", Priority: "x"}
	first := v.ValidateAppointment(a, 4)
	second := v.ValidateAppointment(a, 4)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical results:\n%+v\n%+v", first, second)
	}
}
