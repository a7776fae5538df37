package reports

import "fmt"

// Category is the closed set of incident categories. The string value is the
// label stored in the document and shown to users.
type Category string

const (
	CategoryViolence       Category = "Bạo lực học đường"
	CategoryInfrastructure Category = "Cơ sở vật chất"
	CategoryHealth         Category = "Sức khỏe & Vệ sinh"
	CategoryHarassment     Category = "Quấy rối/Ứng xử"
	CategoryOther          Category = "Vấn đề khác"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{
		CategoryViolence,
		CategoryInfrastructure,
		CategoryHealth,
		CategoryHarassment,
		CategoryOther,
	}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryViolence, CategoryInfrastructure, CategoryHealth, CategoryHarassment, CategoryOther:
		return true
	}
	return false
}

// Key is the stable ASCII identifier used in query strings.
func (c Category) Key() string {
	switch c {
	case CategoryViolence:
		return "violence"
	case CategoryInfrastructure:
		return "infrastructure"
	case CategoryHealth:
		return "health"
	case CategoryHarassment:
		return "harassment"
	case CategoryOther:
		return "other"
	}
	return ""
}

// ParseCategory accepts either the stored label or the ASCII key.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if s == string(c) || s == c.Key() {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Status is the lifecycle state of a report.
type Status string

const (
	StatusPending    Status = "Chờ xử lý"
	StatusProcessing Status = "Đang xử lý"
	StatusResolved   Status = "Đã giải quyết"
)

// Statuses lists every status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusProcessing, StatusResolved}
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusResolved:
		return true
	}
	return false
}

func (s Status) Key() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusProcessing:
		return "processing"
	case StatusResolved:
		return "resolved"
	}
	return ""
}

func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses() {
		if s == string(st) || s == st.Key() {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Urgency is the triage severity attached by the AI pipeline.
type Urgency string

const (
	UrgencyLow       Urgency = "Thấp"
	UrgencyMedium    Urgency = "Trung bình"
	UrgencyHigh      Urgency = "Cao"
	UrgencyEmergency Urgency = "Khẩn cấp"
)

// Urgencies lists every urgency from least to most severe.
func Urgencies() []Urgency {
	return []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyEmergency}
}

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyEmergency:
		return true
	}
	return false
}

// Urgent reports whether staff should be alerted outside the dashboard.
func (u Urgency) Urgent() bool {
	return u == UrgencyHigh || u == UrgencyEmergency
}
