package planvalidation

import (
	"regexp"
	"strconv"
	"strings"
)

// Category groups catalog services for balance and priority heuristics.
type Category string

const (
	CategoryGeneral    Category = "general"
	CategorySpecialist Category = "specialist"
	CategoryLab        Category = "lab"
	CategoryImaging    Category = "imaging"
	CategoryRehab      Category = "rehabilitation"
	CategoryCounseling Category = "counseling"
	CategoryMonitoring Category = "monitoring"
)

// ServiceDefinition is a read-only catalog entry describing a medical service.
type ServiceDefinition struct {
	Name         string   `json:"name"`
	Frequency    string   `json:"frequency"`
	Duration     string   `json:"duration"`
	Preparation  string   `json:"preparation"`
	Category     Category `json:"category"`
	Requirements []string `json:"requirements"`
}

var medicalServices = []ServiceDefinition{
	{
		Name:         "Khám sức khỏe tổng quát",
		Frequency:    "6 tháng",
		Duration:     "60 phút",
		Preparation:  "Nhịn ăn sáng, mang theo hồ sơ khám lần trước",
		Category:     CategoryGeneral,
		Requirements: []string{"BS", "Bác sĩ"},
	},
	{
		Name:         "Khám tim mạch",
		Frequency:    "3 tháng",
		Duration:     "45 phút",
		Preparation:  "Mang theo kết quả điện tim và đơn thuốc đang dùng",
		Category:     CategorySpecialist,
		Requirements: []string{"Tim mạch"},
	},
	{
		Name:         "Khám thần kinh",
		Frequency:    "3 tháng",
		Duration:     "45 phút",
		Preparation:  "Ghi lại các triệu chứng bất thường gần đây",
		Category:     CategorySpecialist,
		Requirements: []string{"Thần kinh"},
	},
	{
		Name:         "Khám mắt",
		Frequency:    "6 tháng",
		Duration:     "30 phút",
		Preparation:  "Mang theo kính đang sử dụng",
		Category:     CategorySpecialist,
		Requirements: []string{"Nhãn khoa", "Mắt"},
	},
	{
		Name:         "Khám răng miệng",
		Frequency:    "6 tháng",
		Duration:     "30 phút",
		Preparation:  "Vệ sinh răng miệng trước khi khám",
		Category:     CategorySpecialist,
		Requirements: []string{"Nha khoa", "Răng"},
	},
	{
		Name:         "Xét nghiệm máu",
		Frequency:    "3 tháng",
		Duration:     "15 phút",
		Preparation:  "Nhịn ăn 8-12 tiếng trước khi lấy máu",
		Category:     CategoryLab,
		Requirements: []string{"Xét nghiệm", "KTV"},
	},
	{
		Name:         "Xét nghiệm nước tiểu",
		Frequency:    "3 tháng",
		Duration:     "15 phút",
		Preparation:  "Lấy mẫu nước tiểu buổi sáng",
		Category:     CategoryLab,
		Requirements: []string{"Xét nghiệm", "KTV"},
	},
	{
		Name:         "Chụp X-quang ngực",
		Frequency:    "12 tháng",
		Duration:     "20 phút",
		Preparation:  "Tháo bỏ trang sức và vật dụng kim loại",
		Category:     CategoryImaging,
		Requirements: []string{"Chẩn đoán hình ảnh", "X-quang"},
	},
	{
		Name:         "Siêu âm bụng",
		Frequency:    "6 tháng",
		Duration:     "30 phút",
		Preparation:  "Nhịn ăn 6 tiếng, uống nhiều nước trước khi siêu âm",
		Category:     CategoryImaging,
		Requirements: []string{"Siêu âm", "Chẩn đoán hình ảnh"},
	},
	{
		Name:         "Vật lý trị liệu",
		Frequency:    "1 tuần",
		Duration:     "45 phút",
		Preparation:  "Mặc quần áo thoải mái",
		Category:     CategoryRehab,
		Requirements: []string{"Vật lý trị liệu", "Phục hồi chức năng"},
	},
	{
		Name:         "Tư vấn dinh dưỡng",
		Frequency:    "1 tháng",
		Duration:     "30 phút",
		Preparation:  "Ghi lại thực đơn 3 ngày gần nhất",
		Category:     CategoryCounseling,
		Requirements: []string{"Dinh dưỡng"},
	},
	{
		Name:         "Tư vấn tâm lý",
		Frequency:    "2 tuần",
		Duration:     "45 phút",
		Preparation:  "Không cần chuẩn bị đặc biệt",
		Category:     CategoryCounseling,
		Requirements: []string{"Tâm lý"},
	},
	{
		Name:        "Đo huyết áp định kỳ",
		Frequency:   "1 tuần",
		Duration:    "10 phút",
		Preparation: "Nghỉ ngơi 5 phút trước khi đo",
		Category:    CategoryMonitoring,
	},
	{
		Name:        "Theo dõi đường huyết",
		Frequency:   "1 tuần",
		Duration:    "10 phút",
		Preparation: "Đo trước bữa ăn sáng",
		Category:    CategoryMonitoring,
	},
}

var servicesByName = func() map[string]*ServiceDefinition {
	m := make(map[string]*ServiceDefinition, len(medicalServices))
	for i := range medicalServices {
		m[medicalServices[i].Name] = &medicalServices[i]
	}
	return m
}()

// MedicalServices returns a copy of the static service catalog.
func MedicalServices() []ServiceDefinition {
	out := make([]ServiceDefinition, len(medicalServices))
	for i, s := range medicalServices {
		s.Requirements = append([]string(nil), s.Requirements...)
		out[i] = s
	}
	return out
}

// LookupService finds a catalog entry by exact name.
func LookupService(name string) (ServiceDefinition, bool) {
	s, ok := servicesByName[name]
	if !ok {
		return ServiceDefinition{}, false
	}
	out := *s
	out.Requirements = append([]string(nil), s.Requirements...)
	return out, true
}

const defaultFrequencyDays = 30

var frequencyPattern = regexp.MustCompile(`^\s*(\d+)\s*(\S+)`)

// FrequencyDays converts a catalog frequency such as "6 tháng" or "1 tuần" into days.
func FrequencyDays(freq string) int {
	m := frequencyPattern.FindStringSubmatch(freq)
	if m == nil {
		return defaultFrequencyDays
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return defaultFrequencyDays
	}
	switch strings.ToLower(m[2]) {
	case "ngày":
		return n
	case "tuần":
		return n * 7
	case "tháng":
		return n * 30
	case "năm":
		return n * 365
	}
	return defaultFrequencyDays
}
