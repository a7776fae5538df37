package tracking

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xyz-asif/schoolsafe/internal/features/identity"
	"github.com/xyz-asif/schoolsafe/internal/features/reports"
	"github.com/xyz-asif/schoolsafe/internal/pkg/response"
)

// LookupResponse is returned for a known code. Session is set when the
// request came without one and an anonymous session was issued.
type LookupResponse struct {
	Report  reports.TrackingView `json:"report"`
	Session *identity.Session    `json:"session,omitempty"`
}

type Handler struct {
	service *Service
	auth    *identity.Authenticator
	logger  *zap.Logger
}

func NewHandler(service *Service, auth *identity.Authenticator, logger *zap.Logger) *Handler {
	return &Handler{service: service, auth: auth, logger: logger}
}

// Lookup godoc
// @Summary Track a report
// @Description Look up a report by its tracking code. Codes are case-insensitive.
// @Tags tracking
// @Produce json
// @Param code path string true "Tracking code"
// @Success 200 {object} LookupResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /track/{code} [get]
func (h *Handler) Lookup(c *gin.Context) {
	sessions := identity.NewRequestSession(identity.PrincipalFrom(c), h.auth)

	result, err := h.service.Lookup(c.Request.Context(), sessions, c.Param("code"))
	if err != nil {
		var lookupErr *LookupError
		switch {
		case errors.Is(err, identity.ErrAuthSetup):
			response.ServiceUnavailable(c, "Could not start a session", "AUTH_SETUP_FAILED")
		case errors.As(err, &lookupErr) && lookupErr.Kind == KindPermission:
			response.ServiceUnavailable(c, "Lookup refused by store rules ("+lookupErr.Code+")", "LOOKUP_PERMISSION")
		default:
			response.ServiceUnavailable(c, "Lookup failed, please try again", "LOOKUP_FAILED")
		}
		return
	}

	if result.Status == StatusNotFound {
		response.NotFound(c, "No report matches this tracking code", "CODE_NOT_FOUND")
		return
	}

	response.Success(c, LookupResponse{
		Report:  result.Report.TrackingView(),
		Session: sessions.Issued(),
	})
}
