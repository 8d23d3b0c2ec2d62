package upload_controller

import (
	"context"
	"net/http"
	"time"

	"github.com/Modeva-Ecommerce/modeva-commerce-backend/logger"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/services"
	"github.com/gin-gonic/gin"
)

type Controller struct {
	svc *services.UploadService
	log *logger.Logger
}

func New(svc *services.UploadService, log *logger.Logger) *Controller {
	return &Controller{svc: svc, log: log.Named("upload")}
}

// UploadFiles godoc
// @Summary Upload files
// @Description Upload one or many files under the "files" field. Each file is checked against the allowed extensions and the size limit independently.
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param files formData file true "Files to upload"
// @Param folderName formData string false "Sub folder, used together with fileName"
// @Param fileName formData string false "Base name; files become <fileName>-<n>.<ext>"
// @Success 200 {object} models.ApiResponse{data=services.UploadResult}
// @Failure 400 {object} models.ApiResponse
// @Failure 422 {object} models.ApiResponse
// @Router /api/v1/upload [post]
func (uc *Controller) UploadFiles(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, uc.svc.MaxRequestSize())

	form, err := c.MultipartForm()
	if err != nil {
		uc.log.Warnw("[upload.files] failed to parse form", "error", err)
		models.Respond(c, models.KindBadRequest, "Failed to parse form data", nil)
		return
	}
	// Temp files are best effort; a failed cleanup must not fail the upload.
	defer func() { _ = form.RemoveAll() }()

	opts := services.UploadOptions{
		FolderName: firstValue(form.Value["folderName"]),
		FileName:   firstValue(form.Value["fileName"]),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	res, err := uc.svc.Upload(ctx, form.File["files"], opts)
	if err != nil {
		models.RespondError(c, err)
		return
	}

	uc.log.Infow("[upload.files] done", "uploaded", len(res.Success), "total", res.Total)
	data := gin.H{"uploadSuccess": res.Success, "uploadFailed": res.Failed}
	if len(res.Success) == 0 {
		models.Respond(c, models.KindFailure, res.Summary(), data)
		return
	}
	models.Respond(c, models.KindSuccess, res.Summary(), data)
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
