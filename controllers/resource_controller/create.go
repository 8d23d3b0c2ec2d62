package resource_controller

import (
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/gin-gonic/gin"
)

// Create godoc
// @Summary Create a record
// @Description Validate the body against the resource schema and store it. addedBy is always the caller.
// @Tags Resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param resource path string true "Resource name, e.g. state"
// @Param record body map[string]interface{} true "Record"
// @Success 200 {object} models.ApiResponse
// @Failure 400 {object} models.ApiResponse
// @Failure 422 {object} models.ApiResponse
// @Router /api/v1/admin/{resource}/create [post]
func (rc *Controller) Create(c *gin.Context) {
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

	rec, err := rc.svc.Create(ctx, p, payload)
	if err != nil {
		rc.fail(c, "create", err)
		return
	}
	rc.log.Infow("["+rc.Resource()+".create] created", "id", rec[models.FieldID])
	models.Respond(c, models.KindSuccess, "", rec)
}

type bulkCreateRequest struct {
	Data any `json:"data"`
}

// AddBulk godoc
// @Summary Create many records
// @Description Every item is validated before any is stored; one invalid item rejects the batch.
// @Tags Resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param resource path string true "Resource name"
// @Param body body object true "{data: [...]}"
// @Success 200 {object} models.ApiResponse
// @Failure 400 {object} models.ApiResponse
// @Failure 422 {object} models.ApiResponse
// @Router /api/v1/admin/{resource}/addBulk [post]
func (rc *Controller) AddBulk(c *gin.Context) {
	p, ok := rc.principal(c)
	if !ok {
		return
	}
	var body bulkCreateRequest
	if !bindBody(c, &body) {
		return
	}
	items, isList := body.Data.([]any)
	if !isList || len(items) == 0 {
		models.Respond(c, models.KindBadRequest, "data must be a non-empty array", nil)
		return
	}

	ctx, cancel := withTimeout(c.Request.Context())
	defer cancel()

	n, err := rc.svc.CreateMany(ctx, p, items)
	if err != nil {
		rc.fail(c, "addBulk", err)
		return
	}
	models.Respond(c, models.KindSuccess, "", gin.H{"count": n})
}
