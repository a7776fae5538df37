package dashboard

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xyz-asif/schoolsafe/internal/features/reports"
	"github.com/xyz-asif/schoolsafe/internal/features/triage"
	"github.com/xyz-asif/schoolsafe/internal/pkg/pagination"
	"github.com/xyz-asif/schoolsafe/internal/pkg/response"
)

// ListResponse is one page of the filtered snapshot plus the dashboard summary.
type ListResponse struct {
	Reports    []*reports.Report      `json:"reports"`
	Pagination *pagination.Pagination `json:"pagination"`
	Summary    Summary                `json:"summary"`
}

type Handler struct {
	reports  *reports.Service
	enricher *triage.Enricher
	logger   *zap.Logger
}

func NewHandler(reportsService *reports.Service, enricher *triage.Enricher, logger *zap.Logger) *Handler {
	return &Handler{reports: reportsService, enricher: enricher, logger: logger}
}

// List godoc
// @Summary List reports
// @Description Current reports, newest first, with filters and dashboard counts
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param search query string false "Substring of title or description"
// @Param category query string false "Category label or key, or All"
// @Param status query string false "Status label or key, or All"
// @Param classGroup query string false "Class group, or All"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} ListResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Router /reports [get]
func (h *Handler) List(c *gin.Context) {
	filter, err := ParseFilter(c.Query("search"), c.Query("category"), c.Query("status"), c.Query("classGroup"))
	if err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	list, err := h.reports.Snapshot(c.Request.Context())
	if err != nil {
		reports.WriteError(c, err)
		return
	}

	matched := filter.Apply(list)
	req := pagination.FromRequest(c.Query("page"), c.Query("limit"))
	page := pagination.New(req.Page, req.Limit, int64(len(matched)))
	start, end := page.Bounds()

	response.Success(c, ListResponse{
		Reports:    matched[start:end],
		Pagination: page,
		Summary:    Summarize(list, filter),
	})
}

// Get godoc
// @Summary Get a report
// @Description Returns one report and runs AI triage if it has none yet
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} reports.Record
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /reports/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	report, err := h.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		reports.WriteError(c, err)
		return
	}

	h.enricher.Ensure(c.Request.Context(), report)
	response.Success(c, report)
}

// Reanalyze godoc
// @Summary Re-run AI triage
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} reports.AIAnalysis
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /reports/{id}/analysis [post]
func (h *Handler) Reanalyze(c *gin.Context) {
	report, err := h.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		reports.WriteError(c, err)
		return
	}

	analysis := h.enricher.Reanalyze(c.Request.Context(), report)
	response.Success(c, analysis)
}
