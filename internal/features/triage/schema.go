package triage

import (
	"fmt"
	"strings"

	"github.com/xyz-asif/schoolsafe/internal/features/reports"
)

// Schema is a provider-neutral description of the structured output the
// completion service must return.
type Schema struct {
	Type        string
	Description string
	Enum        []string
	Properties  map[string]*Schema
	Required    []string
}

const (
	TypeObject = "object"
	TypeString = "string"
)

// Response field names.
const (
	fieldUrgency         = "urgency"
	fieldSummary         = "summary"
	fieldSuggestedAction = "suggestedAction"
	fieldEducationalNote = "educationalNote"
)

// AnalysisSchema requires all four fields and limits urgency to the four levels.
func AnalysisSchema() *Schema {
	levels := make([]string, 0, len(reports.Urgencies()))
	for _, u := range reports.Urgencies() {
		levels = append(levels, string(u))
	}

	return &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			fieldUrgency: {
				Type:        TypeString,
				Enum:        levels,
				Description: "Mức độ khẩn cấp của sự việc",
			},
			fieldSummary: {
				Type:        TypeString,
				Description: "Tóm tắt ngắn gọn sự việc",
			},
			fieldSuggestedAction: {
				Type:        TypeString,
				Description: "Các bước xử lý đề xuất cho nhà trường",
			},
			fieldEducationalNote: {
				Type:        TypeString,
				Description: "Lời khuyên mang tính giáo dục và nhân văn cho GVCN",
			},
		},
		Required: []string{fieldUrgency, fieldSummary, fieldSuggestedAction, fieldEducationalNote},
	}
}

// BuildPrompt renders the report fields sent for analysis. Student identity
// is never included.
func BuildPrompt(r *reports.Report, schoolName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Phân tích sự cố học đường tại TRƯỜNG %s:\n", schoolName)
	fmt.Fprintf(&b, "Tiêu đề: %s\n", r.Title)
	fmt.Fprintf(&b, "Mô tả: %s\n", r.Description)
	fmt.Fprintf(&b, "Danh mục: %s\n", r.Category)
	fmt.Fprintf(&b, "Vị trí: %s", r.Location)
	return b.String()
}
