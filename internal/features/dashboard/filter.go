package dashboard

import (
	"fmt"
	"strings"

	"github.com/xyz-asif/schoolsafe/internal/features/reports"
)

// Filter narrows a snapshot. Empty fields match everything; set fields are
// combined with AND.
type Filter struct {
	Search     string
	Category   reports.Category
	Status     reports.Status
	ClassGroup string
}

// ParseFilter reads filter values as sent by the dashboard. "All" and ""
// are wildcards; category and status accept labels or keys.
func ParseFilter(search, category, status, classGroup string) (Filter, error) {
	f := Filter{Search: strings.TrimSpace(search)}

	if category = strings.TrimSpace(category); category != "" && category != All {
		c, err := reports.ParseCategory(category)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: %v", reports.ErrInvalidInput, err)
		}
		f.Category = c
	}

	if status = strings.TrimSpace(status); status != "" && status != All {
		s, err := reports.ParseStatus(status)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: %v", reports.ErrInvalidInput, err)
		}
		f.Status = s
	}

	if classGroup = strings.TrimSpace(classGroup); classGroup != All {
		f.ClassGroup = reports.NormalizeClassGroup(classGroup)
	}

	return f, nil
}

// Match reports whether r passes every set dimension. Search is a
// case-insensitive substring test over title or description.
func (f Filter) Match(r *reports.Report) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(r.Title), needle) &&
			!strings.Contains(strings.ToLower(r.Description), needle) {
			return false
		}
	}
	if f.Category != "" && r.Category != f.Category {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.ClassGroup != "" && r.ClassGroup != f.ClassGroup {
		return false
	}
	return true
}

// Apply returns the matching reports in their original order.
func (f Filter) Apply(list []*reports.Report) []*reports.Report {
	out := make([]*reports.Report, 0, len(list))
	for _, r := range list {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
