package reports

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xyz-asif/schoolsafe/internal/features/identity"
	"github.com/xyz-asif/schoolsafe/internal/pkg/response"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Submit godoc
// @Summary Submit an incident report
// @Description Students submit a report, optionally anonymous, and receive a tracking code
// @Tags reports
// @Accept json
// @Produce json
// @Param request body SubmitRequest true "Report"
// @Success 201 {object} SubmitResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /reports [post]
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	report, err := h.service.Submit(c.Request.Context(), req, identity.PrincipalFrom(c))
	if err != nil {
		WriteError(c, err)
		return
	}

	response.Created(c, SubmitResponse{
		ID:           report.ID,
		TrackingCode: report.TrackingCode,
		Status:       report.Status,
	})
}

// UpdateStatus godoc
// @Summary Change report status
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param request body UpdateStatusRequest true "New status (label or key)"
// @Success 200 {object} response.SuccessResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /reports/{id}/status [patch]
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	status, err := ParseStatus(req.Status)
	if err != nil {
		response.ValidationFailed(c, err.Error())
		return
	}

	id := c.Param("id")
	if err := h.service.SetStatus(c.Request.Context(), id, status); err != nil {
		WriteError(c, err)
		return
	}

	response.Success(c, gin.H{"id": id, "status": status})
}

// Reply godoc
// @Summary Write the reply shown to the tracker
// @Tags reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param request body ReplyRequest true "Reply"
// @Success 200 {object} response.SuccessResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /reports/{id}/reply [put]
func (h *Handler) Reply(c *gin.Context) {
	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	id := c.Param("id")
	reply, err := h.service.SetAdminReply(c.Request.Context(), id, req.Reply)
	if err != nil {
		WriteError(c, err)
		return
	}

	response.Success(c, gin.H{"id": id, "adminReply": reply})
}

// WriteError maps lifecycle and store errors onto API responses.
func WriteError(c *gin.Context, err error) {
	var writeErr *StoreWriteError
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrEmptyReply), errors.Is(err, ErrInvalidStatus):
		response.ValidationFailed(c, err.Error())
	case errors.Is(err, ErrPermissionDenied):
		response.Forbidden(c, "Access restricted", "ACCESS_RESTRICTED")
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, "Report not found", "REPORT_NOT_FOUND")
	case errors.As(err, &writeErr):
		response.InternalServerError(c, "Failed to save report", "STORE_WRITE_FAILED")
	default:
		response.DatabaseError(c, "Report store unavailable")
	}
}
