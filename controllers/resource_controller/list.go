package resource_controller

import (
	"strings"

	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/services"
	"github.com/gin-gonic/gin"
)

// List godoc
// @Summary List records
// @Description Filter with query, page/sort/select/populate with options. isCountOnly returns only the total.
// @Tags Resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param resource path string true "Resource name"
// @Param body body object false "{query, options, isCountOnly}"
// @Success 200 {object} models.ApiResponse
// @Failure 404 {object} models.ApiResponse
// @Failure 422 {object} models.ApiResponse
// @Router /api/v1/admin/{resource}/list [post]
func (rc *Controller) List(c *gin.Context) {
	var req services.ListRequest
	if !bindOptionalBody(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c.Request.Context())
	defer cancel()

	res, err := rc.svc.List(ctx, req)
	if err != nil {
		rc.fail(c, "list", err)
		return
	}
	if res.CountOnly {
		models.Respond(c, models.KindSuccess, "", gin.H{"totalRecords": res.TotalRecords})
		return
	}
	models.RespondPage(c, res.Page.Docs, res.Page.Meta())
}

type countRequest struct {
	Where map[string]any `json:"where"`
}

// Count godoc
// @Summary Count records
// @Tags Resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param resource path string true "Resource name"
// @Param body body object false "{where}"
// @Success 200 {object} models.ApiResponse
// @Failure 422 {object} models.ApiResponse
// @Router /api/v1/admin/{resource}/count [post]
func (rc *Controller) Count(c *gin.Context) {
	var req countRequest
	if !bindOptionalBody(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c.Request.Context())
	defer cancel()

	n, err := rc.svc.Count(ctx, req.Where)
	if err != nil {
		rc.fail(c, "count", err)
		return
	}
	models.Respond(c, models.KindSuccess, "", gin.H{"count": n})
}

// GetByID godoc
// @Summary Get a record by id
// @Tags Resources
// @Produce json
// @Security BearerAuth
// @Param resource path string true "Resource name"
// @Param id path string true "ObjectId"
// @Param populate query string false "Comma separated reference fields to expand"
// @Success 200 {object} models.ApiResponse
// @Failure 404 {object} models.ApiResponse
// @Failure 422 {object} models.ApiResponse
// @Router /api/v1/admin/{resource}/{id} [get]
func (rc *Controller) GetByID(c *gin.Context) {
	var populate []string
	if raw := c.Query("populate"); raw != "" {
		populate = strings.Split(raw, ",")
	}

	ctx, cancel := withTimeout(c.Request.Context())
	defer cancel()

	rec, err := rc.svc.Get(ctx, c.Param("id"), populate)
	if err != nil {
		rc.fail(c, "get", err)
		return
	}
	models.Respond(c, models.KindSuccess, "", rec)
}
