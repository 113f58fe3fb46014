package planvalidation

import (
	"fmt"
	"strconv"
	"strings"
)

// CheckScheduleConflicts reports appointments whose date and time strings are
// identical. Entries with a blank date or time are ignored. Values are compared
// as entered, so "09:00" and " 09:00" are different slots; durations are not
// considered.
func CheckScheduleConflicts(appointments []AppointmentEntry) []Diagnostic {
	type slotKey struct{ date, time string }
	slots := make(map[slotKey][]int)
	var order []slotKey
	for i, a := range appointments {
		if strings.TrimSpace(a.Date) == "" || strings.TrimSpace(a.Time) == "" {
			continue
		}
		key := slotKey{a.Date, a.Time}
		if _, seen := slots[key]; !seen {
			order = append(order, key)
		}
		slots[key] = append(slots[key], i+1)
	}

	var diags []Diagnostic
	for _, key := range order {
		positions := slots[key]
		if len(positions) < 2 {
			continue
		}
		labels := make([]string, len(positions))
		for i, p := range positions {
			labels[i] = "#" + strconv.Itoa(p)
		}
		diags = append(diags, Diagnostic{
			Field:    FieldSchedule,
			Message:  fmt.Sprintf("Trùng lịch: các lịch hẹn %s cùng vào %s %s", strings.Join(labels, ", "), key.date, key.time),
			Severity: SeverityError,
			Code:     CodeScheduleConflict,
		})
	}
	return diags
}

// CheckServiceFrequency emits advisory notes for services booked more than
// once in a plan, stating the recommended minimum spacing. Actual gaps between
// the booked dates are not checked.
func CheckServiceFrequency(appointments []AppointmentEntry) []Diagnostic {
	counts := make(map[string]int)
	var order []string
	for _, a := range appointments {
		name := strings.TrimSpace(a.Type)
		if name == "" {
			continue
		}
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++
	}

	var diags []Diagnostic
	for _, name := range order {
		if counts[name] < 2 {
			continue
		}
		days := defaultFrequencyDays
		if s, ok := LookupService(name); ok {
			days = FrequencyDays(s.Frequency)
		}
		msg := fmt.Sprintf("Dịch vụ \"%s\" xuất hiện %d lần, nên cách nhau tối thiểu %d ngày",
			name, counts[name], days)
		diags = append(diags, Diagnostic{
			Field:    FieldFrequency,
			Message:  msg,
			Severity: SeverityInfo,
			Code:     CodeServiceFrequency,
		})
	}
	return diags
}
