package resource_controller

import (
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/services"
	"github.com/gin-gonic/gin"
)

// Update godoc
// @Summary Replace a record's fields
// @Description Required fields must be present. addedBy and _id are never written.
// @Tags Resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param resource path string true "Resource name"
// @Param id path string true "ObjectId"
// @Param record body map[string]interface{} true "Fields"
// @Success 200 {object} models.ApiResponse
// @Failure 404 {object} models.ApiResponse
// @Failure 422 {object} models.ApiResponse
// @Router /api/v1/admin/{resource}/update/{id} [put]
func (rc *Controller) Update(c *gin.Context) {
	rc.update(c, false)
}

// PartialUpdate godoc
// @Summary Update some of a record's fields
// @Tags Resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param resource path string true "Resource name"
// @Param id path string true "ObjectId"
// @Param record body map[string]interface{} true "Fields"
// @Success 200 {object} models.ApiResponse
// @Failure 404 {object} models.ApiResponse
// @Failure 422 {object} models.ApiResponse
// @Router /api/v1/admin/{resource}/partial-update/{id} [put]
func (rc *Controller) PartialUpdate(c *gin.Context) {
	rc.update(c, true)
}

func (rc *Controller) update(c *gin.Context, partial bool) {
	p, ok := rc.principal(c)
	if !ok {
		return
	}
	var payload map[string]any
	if !bindBody(c, &payload) {
		return
	}

	ctx, cancel := withTimeout(c.Request.Context())
	defer cancel()

	rec, err := rc.svc.Update(ctx, p, c.Param("id"), payload, partial)
	if err != nil {
		rc.fail(c, "update", err)
		return
	}
	models.Respond(c, models.KindSuccess, "", rec)
}

// UpdateBulk godoc
// @Summary Update every record matching a filter
// @Tags Resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param resource path string true "Resource name"
// @Param body body object true "{filter, data}"
// @Success 200 {object} models.ApiResponse
// @Failure 400 {object} models.ApiResponse
// @Failure 404 {object} models.ApiResponse
// @Router /api/v1/admin/{resource}/updateBulk [put]
func (rc *Controller) UpdateBulk(c *gin.Context) {
	p, ok := rc.principal(c)
	if !ok {
		return
	}
	var req services.BulkUpdateRequest
	if !bindBody(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c.Request.Context())
	defer cancel()

	n, err := rc.svc.UpdateMany(ctx, p, req)
	if err != nil {
		rc.fail(c, "updateBulk", err)
		return
	}
	models.Respond(c, models.KindSuccess, "", gin.H{"count": n})
}
