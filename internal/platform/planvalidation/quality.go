package planvalidation

import (
	"strings"
	"unicode/utf8"
)

// Level is the coarse quality tier derived from a plan score.
type Level string

const (
	LevelPoor      Level = "poor"
	LevelFair      Level = "fair"
	LevelGood      Level = "good"
	LevelExcellent Level = "excellent"
)

// Quality is the result of scoring a plan.
type Quality struct {
	Score           int      `json:"score"`
	Level           Level    `json:"level"`
	Recommendations []string `json:"recommendations"`
}

const (
	maxScore = 100

	penaltyError   = 15
	penaltyWarning = 8
	penaltyInfo    = 3

	bonusPerCategory   = 5
	maxCategoryBonus   = 20
	bonusDetailedNotes = 5
	bonusAllPriorities = 10

	detailedNotesLength = 50
)

func penalty(s Severity) int {
	switch s {
	case SeverityError:
		return penaltyError
	case SeverityWarning:
		return penaltyWarning
	case SeverityInfo:
		return penaltyInfo
	}
	return 0
}

// LevelForScore maps a 0-100 score to its tier.
func LevelForScore(score int) Level {
	switch {
	case score < 50:
		return LevelPoor
	case score < 70:
		return LevelFair
	case score < 85:
		return LevelGood
	default:
		return LevelExcellent
	}
}

func summaryFor(level Level) (string, bool) {
	switch level {
	case LevelPoor:
		return "Kế hoạch cần được xem xét và chỉnh sửa toàn diện trước khi áp dụng", true
	case LevelFair:
		return "Kế hoạch cần cải thiện một số điểm để đảm bảo chất lượng chăm sóc", true
	case LevelGood:
		return "", false
	case LevelExcellent:
		return "Kế hoạch được xây dựng rất tốt, sẵn sàng áp dụng", true
	}
	return "", false
}

// CalculatePlanQuality scores a plan from 0 to 100. Each diagnostic from
// ValidateMedicalPlan costs points by severity; category variety, detailed
// notes and use of every priority earn bonuses.
func (v *Validator) CalculatePlanQuality(title string, appointments []AppointmentEntry, notes string) Quality {
	diags := v.ValidateMedicalPlan(title, appointments, notes)
	return scorePlan(diags, appointments, notes)
}

func scorePlan(diags []Diagnostic, appointments []AppointmentEntry, notes string) Quality {
	score := maxScore
	recommendations := []string{}
	for _, d := range diags {
		score -= penalty(d.Severity)
		if d.Severity == SeverityError {
			recommendations = append(recommendations, d.Message)
		}
	}

	categories := make(map[Category]bool)
	priorities := make(map[Priority]bool)
	for _, a := range appointments {
		if a.Priority.Valid() {
			priorities[a.Priority] = true
		}
		if !a.complete() {
			continue
		}
		if s, ok := LookupService(strings.TrimSpace(a.Type)); ok {
			categories[s.Category] = true
		}
	}

	categoryBonus := len(categories) * bonusPerCategory
	if categoryBonus > maxCategoryBonus {
		categoryBonus = maxCategoryBonus
	}
	score += categoryBonus
	if utf8.RuneCountInString(strings.TrimSpace(notes)) > detailedNotesLength {
		score += bonusDetailedNotes
	}
	if priorities[PriorityLow] && priorities[PriorityMedium] && priorities[PriorityHigh] {
		score += bonusAllPriorities
	}

	if score < 0 {
		score = 0
	}
	if score > maxScore {
		score = maxScore
	}

	level := LevelForScore(score)
	if summary, ok := summaryFor(level); ok {
		recommendations = append([]string{summary}, recommendations...)
	}
	return Quality{Score: score, Level: level, Recommendations: recommendations}
}

// Assess validates and scores a plan in one pass. The result is identical to
// calling ValidateMedicalPlan and CalculatePlanQuality separately.
func (v *Validator) Assess(p MedicalPlan) ([]Diagnostic, Quality) {
	diags := v.Validate(p)
	return diags, scorePlan(diags, p.Appointments, p.Notes)
}
