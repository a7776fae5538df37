package identity

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xyz-asif/schoolsafe/internal/pkg/response"
)

// LoginRequest is the staff sign-in payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"teacher@school.edu.vn"`
	Password string `json:"password" binding:"required"`
}

// MeResponse describes the caller's session.
type MeResponse struct {
	Principal *Principal `json:"principal"`
	Role      string     `json:"role" example:"teacher"`
}

type Handler struct {
	auth   *Authenticator
	logger *zap.Logger
}

func NewHandler(auth *Authenticator, logger *zap.Logger) *Handler {
	return &Handler{auth: auth, logger: logger}
}

// Anonymous godoc
// @Summary Start an anonymous session
// @Description Issue a student session with no email so reports can be submitted and tracked
// @Tags auth
// @Produce json
// @Success 201 {object} Session
// @Failure 503 {object} response.ErrorResponse
// @Router /auth/anonymous [post]
func (h *Handler) Anonymous(c *gin.Context) {
	session, err := h.auth.Anonymous(c.Request.Context())
	if err != nil {
		h.logger.Error("Anonymous session failed", zap.Error(err))
		response.ServiceUnavailable(c, "Could not start a session", "AUTH_SETUP_FAILED")
		return
	}
	response.Created(c, session)
}

// Login godoc
// @Summary Staff sign-in
// @Description Authenticate a teacher with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Staff credentials"
// @Success 200 {object} Session
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	session, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.AuthenticationError(c, ErrInvalidCredentials.Error())
			return
		}
		h.logger.Error("Staff login failed", zap.Error(err))
		response.DatabaseError(c, "Failed to sign in")
		return
	}

	response.Success(c, session)
}

// Logout godoc
// @Summary Sign out
// @Description Sessions are stateless bearer tokens; the client discards its token
// @Tags auth
// @Produce json
// @Success 200 {object} response.SuccessResponse
// @Router /auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	response.Success(c, gin.H{"signedOut": true})
}

// Me godoc
// @Summary Current session
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MeResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	p := PrincipalFrom(c)
	response.Success(c, MeResponse{Principal: p, Role: ResolveRole(p).String()})
}
