package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xyz-asif/schoolsafe/internal/features/reports"
	"github.com/xyz-asif/schoolsafe/internal/features/triage"
)

func twoReports() []*reports.Report {
	return []*reports.Report{
		{ID: "a", Title: "Đau bụng", Description: "Sau bữa trưa", Status: reports.StatusPending, Category: reports.CategoryHealth, ClassGroup: "7B"},
		{ID: "b", Title: "Đánh nhau", Description: "Ở sân sau", Status: reports.StatusResolved, Category: reports.CategoryViolence, ClassGroup: "8A"},
	}
}

func TestFilter_Composition(t *testing.T) {
	f, err := ParseFilter("", All, string(reports.StatusPending), All)
	require.NoError(t, err)

	got := f.Apply(twoReports())
	require.Len(t, got, 1)
	require.Equal(t, "a", got[0].ID)
}

func TestFilter_ZeroValueMatchesAll(t *testing.T) {
	require.Len(t, Filter{}.Apply(twoReports()), 2)

	f, err := ParseFilter("", "", "", "")
	require.NoError(t, err)
	require.Equal(t, Filter{}, f)
}

func TestFilter_SearchCaseInsensitiveTitleOrDescription(t *testing.T) {
	list := twoReports()

	require.Len(t, Filter{Search: "ĐÁNH"}.Apply(list), 1)
	require.Len(t, Filter{Search: "bữa trưa"}.Apply(list), 1)
	require.Empty(t, Filter{Search: "thư viện"}.Apply(list))
}

func TestFilter_AndAcrossDimensions(t *testing.T) {
	list := twoReports()

	f, err := ParseFilter("đau", "health", "pending", "7b")
	require.NoError(t, err)
	require.Len(t, f.Apply(list), 1)

	f, err = ParseFilter("đau", "health", "pending", "8A")
	require.NoError(t, err)
	require.Empty(t, f.Apply(list))
}

func TestParseFilter_Invalid(t *testing.T) {
	_, err := ParseFilter("", "weather", "", "")
	require.ErrorIs(t, err, reports.ErrInvalidInput)

	_, err = ParseFilter("", "", "closed", "")
	require.ErrorIs(t, err, reports.ErrInvalidInput)
}

func TestCategoryCounts_EmptyHasFiveBuckets(t *testing.T) {
	counts := CategoryCounts(nil)
	require.Len(t, counts, 5)
	for i, c := range counts {
		require.Equal(t, reports.Categories()[i], c.Category)
		require.Zero(t, c.Count)
	}
}

func TestStatusCounts(t *testing.T) {
	counts := StatusCounts(twoReports())
	require.Len(t, counts, 3)
	require.Equal(t, StatusCount{Status: reports.StatusPending, Key: "pending", Count: 1}, counts[0])
	require.Equal(t, 0, counts[1].Count)
	require.Equal(t, 1, counts[2].Count)
}

func TestClassGroups(t *testing.T) {
	list := append(twoReports(), &reports.Report{ID: "c", ClassGroup: "7B"}, &reports.Report{ID: "d"})
	require.Equal(t, []string{"7B", "8A"}, ClassGroups(list))
}

func TestSummarize(t *testing.T) {
	list := twoReports()
	list[1].AIAnalysis = &reports.AIAnalysis{Urgency: reports.UrgencyEmergency}

	s := Summarize(list, Filter{Status: reports.StatusResolved})
	require.Equal(t, 2, s.Total)
	require.Equal(t, 1, s.Matched)
	require.Equal(t, 1, s.Urgent)
	require.Len(t, s.CategoryCounts, 5)
}

type stubCompleter struct{ calls int }

func (s *stubCompleter) Complete(context.Context, string, string, *triage.Schema) (string, error) {
	s.calls++
	return `{"urgency":"Thấp","summary":"s","suggestedAction":"a","educationalNote":"n"}`, nil
}

type fixedIssuer struct{}

func (fixedIssuer) Issue(context.Context) (string, error) { return "K7Q2ZD", nil }

func setupRouter(t *testing.T) (*gin.Engine, *reports.Service, *stubCompleter) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := reports.NewMemoryRepository()
	svc := reports.NewService(repo, fixedIssuer{}, "Trường", zap.NewNop())
	completer := &stubCompleter{}
	enricher := triage.NewEnricher(triage.NewAnalyzer(completer, "Trường", "sys", zap.NewNop()), svc, nil, zap.NewNop())

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), NewHandler(svc, enricher, zap.NewNop()))
	return r, svc, completer
}

func submit(t *testing.T, svc *reports.Service, title, category string) *reports.Report {
	t.Helper()
	report, err := svc.Submit(context.Background(), reports.SubmitRequest{
		Title: title, Description: "mô tả", Category: category, ClassGroup: "7b", Anonymous: true,
	}, nil)
	require.NoError(t, err)
	return report
}

func TestHandler_List(t *testing.T) {
	r, svc, _ := setupRouter(t)
	submit(t, svc, "Cửa sổ vỡ", "infrastructure")
	submit(t, svc, "Đau đầu", "health")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports?category=health&limit=1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Reports    []map[string]any `json:"reports"`
			Pagination map[string]any   `json:"pagination"`
			Summary    Summary          `json:"summary"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data.Reports, 1)
	require.Equal(t, "Đau đầu", body.Data.Reports[0]["title"])
	require.Equal(t, 2, body.Data.Summary.Total)
	require.Equal(t, 1, body.Data.Summary.Matched)
	require.Len(t, body.Data.Summary.CategoryCounts, 5)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports?status=closed", nil))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHandler_GetRunsTriageOnce(t *testing.T) {
	r, svc, completer := setupRouter(t)
	report := submit(t, svc, "Cửa sổ vỡ", "infrastructure")

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/"+report.ID, nil))
		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), `"urgency":"Thấp"`)
	}
	require.Equal(t, 1, completer.calls)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/reports/"+report.ID+"/analysis", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 2, completer.calls)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_ListPageBeyondRange(t *testing.T) {
	r, svc, _ := setupRouter(t)
	submit(t, svc, "Đau đầu", "health")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports?page=922337203685477581", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Reports []map[string]any `json:"reports"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Empty(t, body.Data.Reports)
}
