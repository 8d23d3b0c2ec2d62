package resource_controller

import (
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/services"
	"github.com/gin-gonic/gin"
)

type idsRequest struct {
	IDs       []any `json:"ids"`
	IsWarning bool  `json:"isWarning"`
}

// SoftDelete godoc
// @Summary Mark a record and its dependents as deleted
// @Tags Resources
// @Produce json
// @Security BearerAuth
// @Param resource path string true "Resource name"
// @Param id path string true "ObjectId"
// @Success 200 {object} models.ApiResponse
// @Failure 404 {object} models.ApiResponse
// @Failure 422 {object} models.ApiResponse
// @Router /api/v1/admin/{resource}/softDelete/{id} [put]
func (rc *Controller) SoftDelete(c *gin.Context) {
	p, ok := rc.principal(c)
	if !ok {
		return
	}

	ctx, cancel := withTimeout(c.Request.Context())
	defer cancel()

	rec, err := rc.svc.SoftDelete(ctx, p, c.Param("id"))
	if err != nil {
		rc.fail(c, "softDelete", err)
		return
	}
	models.Respond(c, models.KindSuccess, "", rec)
}

// SoftDeleteMany godoc
// @Summary Mark many records and their dependents as deleted
// @Tags Resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param resource path string true "Resource name"
// @Param body body object true "{ids}"
// @Success 200 {object} models.ApiResponse
// @Failure 400 {object} models.ApiResponse
// @Failure 404 {object} models.ApiResponse
// @Router /api/v1/admin/{resource}/softDeleteMany [put]
func (rc *Controller) SoftDeleteMany(c *gin.Context) {
	p, ok := rc.principal(c)
	if !ok {
		return
	}
	var req idsRequest
	if !bindBody(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c.Request.Context())
	defer cancel()

	n, err := rc.svc.SoftDeleteMany(ctx, p, req.IDs)
	if err != nil {
		rc.fail(c, "softDeleteMany", err)
		return
	}
	models.Respond(c, models.KindSuccess, "", gin.H{"count": n})
}

// Delete godoc
// @Summary Delete a record and its dependents
// @Description With isWarning only the per-resource counts of what would be removed are returned.
// @Tags Resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param resource path string true "Resource name"
// @Param id path string true "ObjectId"
// @Param body body object false "{isWarning}"
// @Success 200 {object} models.ApiResponse
// @Failure 404 {object} models.ApiResponse
// @Failure 422 {object} models.ApiResponse
// @Router /api/v1/admin/{resource}/delete/{id} [delete]
func (rc *Controller) Delete(c *gin.Context) {
	var req idsRequest
	if !bindOptionalBody(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c.Request.Context())
	defer cancel()

	res, err := rc.svc.Delete(ctx, c.Param("id"), req.IsWarning)
	if err != nil {
		rc.fail(c, "delete", err)
		return
	}
	if res.Warning {
		models.Respond(c, models.KindSuccess, "", res.Affected)
		return
	}
	models.Respond(c, models.KindSuccess, "", res.Deleted[0])
}

// DeleteMany godoc
// @Summary Delete many records and their dependents
// @Tags Resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param resource path string true "Resource name"
// @Param body body object true "{ids, isWarning}"
// @Success 200 {object} models.ApiResponse
// @Failure 400 {object} models.ApiResponse
// @Failure 404 {object} models.ApiResponse
// @Router /api/v1/admin/{resource}/deleteMany [post]
func (rc *Controller) DeleteMany(c *gin.Context) {
	var req idsRequest
	if !bindBody(c, &req) {
		return
	}

	ctx, cancel := withTimeout(c.Request.Context())
	defer cancel()

	res, err := rc.svc.DeleteMany(ctx, req.IDs, req.IsWarning)
	if err != nil {
		rc.fail(c, "deleteMany", err)
		return
	}
	respondDeleted(c, res)
}

func respondDeleted(c *gin.Context, res *services.DeleteResult) {
	if res.Warning {
		models.Respond(c, models.KindSuccess, "", res.Affected)
		return
	}
	models.Respond(c, models.KindSuccess, "", gin.H{"count": len(res.Deleted)})
}
