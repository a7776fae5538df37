package dashboard

import (
	"sort"
	"strings"

	"github.com/xyz-asif/schoolsafe/internal/features/reports"
)

// All is the wildcard accepted by every filter dimension.
const All = "All"

// StatusCount is one bucket of the status breakdown.
type StatusCount struct {
	Status reports.Status `json:"status"`
	Key    string         `json:"key"`
	Count  int            `json:"count"`
}

// CategoryCount is one bucket of the category breakdown.
type CategoryCount struct {
	Category reports.Category `json:"category"`
	Key      string           `json:"key"`
	Count    int              `json:"count"`
}

// StatusCounts returns one bucket per status in lifecycle order.
func StatusCounts(list []*reports.Report) []StatusCount {
	counts := make(map[reports.Status]int, len(list))
	for _, r := range list {
		counts[r.Status]++
	}

	out := make([]StatusCount, 0, len(reports.Statuses()))
	for _, s := range reports.Statuses() {
		out = append(out, StatusCount{Status: s, Key: s.Key(), Count: counts[s]})
	}
	return out
}

// CategoryCounts returns all five category buckets, zeros included.
func CategoryCounts(list []*reports.Report) []CategoryCount {
	counts := make(map[reports.Category]int, len(list))
	for _, r := range list {
		counts[r.Category]++
	}

	out := make([]CategoryCount, 0, len(reports.Categories()))
	for _, c := range reports.Categories() {
		out = append(out, CategoryCount{Category: c, Key: c.Key(), Count: counts[c]})
	}
	return out
}

// ClassGroups returns the distinct non-empty class groups, sorted.
func ClassGroups(list []*reports.Report) []string {
	seen := make(map[string]struct{})
	for _, r := range list {
		if g := strings.TrimSpace(r.ClassGroup); g != "" {
			seen[g] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// Summary is the dashboard view over one snapshot.
type Summary struct {
	Total          int             `json:"total"`
	Matched        int             `json:"matched"`
	StatusCounts   []StatusCount   `json:"statusCounts"`
	CategoryCounts []CategoryCount `json:"categoryCounts"`
	ClassGroups    []string        `json:"classGroups"`
	Urgent         int             `json:"urgent"`
}

// Summarize computes the counts over the whole snapshot and the size of the
// filtered subset. Counts are not narrowed by the filter.
func Summarize(list []*reports.Report, f Filter) Summary {
	urgent := 0
	for _, r := range list {
		if r.AIAnalysis != nil && r.AIAnalysis.Urgency.Urgent() {
			urgent++
		}
	}

	return Summary{
		Total:          len(list),
		Matched:        len(f.Apply(list)),
		StatusCounts:   StatusCounts(list),
		CategoryCounts: CategoryCounts(list),
		ClassGroups:    ClassGroups(list),
		Urgent:         urgent,
	}
}
