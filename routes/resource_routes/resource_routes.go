package resource_routes

import (
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/controllers/resource_controller"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/gin-gonic/gin"
)

// Tracker returns the activity middleware for one action, or nil to skip logging.
type Tracker func(action string) gin.HandlerFunc

// Register mounts the CRUD surface of one resource under rg/<resource>.
func Register(rg *gin.RouterGroup, rc *resource_controller.Controller, track Tracker) {
	r := rg.Group("/" + rc.Resource())

	with := func(action string, h gin.HandlerFunc) []gin.HandlerFunc {
		if track == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{track(action), h}
	}

	// Reads
	r.POST("/list", rc.List)
	r.POST("/count", rc.Count)
	r.GET("/:id", rc.GetByID)

	// Create
	r.POST("/create", with(models.ActionCreate, rc.Create)...)
	r.POST("/addBulk", with(models.ActionCreateMany, rc.AddBulk)...)

	// Update
	r.PUT("/update/:id", with(models.ActionUpdate, rc.Update)...)
	r.PUT("/partial-update/:id", with(models.ActionPartialUpdate, rc.PartialUpdate)...)
	r.PUT("/updateBulk", with(models.ActionUpdateMany, rc.UpdateBulk)...)

	// Delete
	r.PUT("/softDelete/:id", with(models.ActionSoftDelete, rc.SoftDelete)...)
	r.PUT("/softDeleteMany", with(models.ActionSoftDeleteMany, rc.SoftDeleteMany)...)
	r.DELETE("/delete/:id", with(models.ActionDelete, rc.Delete)...)
	r.POST("/deleteMany", with(models.ActionDeleteMany, rc.DeleteMany)...)
}
