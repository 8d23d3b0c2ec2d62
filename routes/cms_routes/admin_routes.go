package cms_routes

import (
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/controllers/activity_log_controller"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/controllers/order_controller"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/controllers/resource_controller"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/middleware"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/routes/resource_routes"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/services"
	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes mounts every resource plus the admin-only endpoints on rg,
// which must already be restricted to the admin platform.
func SetupAdminRoutes(
	rg *gin.RouterGroup,
	controllers []*resource_controller.Controller,
	activity *services.ActivityLogService,
	orders *order_controller.Controller,
) {
	for _, rc := range controllers {
		svc := rc.Service()
		track := func(action string) gin.HandlerFunc {
			return middleware.ActivityLog(activity, svc.Name(), svc.Collection(), action)
		}
		resource_routes.Register(rg, rc, track)
	}

	rg.GET("/order/:id/invoice", orders.DownloadInvoice)
	rg.GET("/activity-logs", activity_log_controller.New(activity).GetActivityLogs)
}
