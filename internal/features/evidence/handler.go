package evidence

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xyz-asif/schoolsafe/internal/pkg/cloudinary"
	"github.com/xyz-asif/schoolsafe/internal/pkg/response"
)

// Uploader stores an evidence photo and returns where it lives.
type Uploader interface {
	UploadImage(ctx context.Context, file io.Reader, filename string) (*cloudinary.UploadResult, error)
}

type Handler struct {
	uploader Uploader
	logger   *zap.Logger
}

// NewHandler accepts a nil uploader; uploads then answer 503.
func NewHandler(uploader Uploader, logger *zap.Logger) *Handler {
	return &Handler{uploader: uploader, logger: logger}
}

// Upload godoc
// @Summary Upload evidence photo
// @Description Upload a photo for a report. Pass the returned url as evidenceUrl when submitting.
// @Tags reports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Photo"
// @Success 201 {object} response.SuccessResponse{data=cloudinary.UploadResult}
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /evidence [post]
func (h *Handler) Upload(c *gin.Context) {
	if h.uploader == nil {
		response.ServiceUnavailable(c, "Evidence upload is not configured", "UPLOAD_DISABLED")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, cloudinary.MaxImageSize+1<<20)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "File is required", "MISSING_FILE")
		return
	}
	defer file.Close()

	if err := cloudinary.ValidateImageFile(header); err != nil {
		response.ValidationError(c, err.Error(), "INVALID_FILE")
		return
	}

	result, err := h.uploader.UploadImage(c.Request.Context(), file, header.Filename)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		h.logger.Error("Evidence upload failed", zap.String("filename", header.Filename), zap.Error(err))
		response.InternalServerError(c, "Failed to upload file", "UPLOAD_FAILED")
		return
	}

	h.logger.Info("Evidence uploaded", zap.String("publicId", result.PublicID), zap.Int64("bytes", result.FileSize))
	response.Created(c, result)
}
