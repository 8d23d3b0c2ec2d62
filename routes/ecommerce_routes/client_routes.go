package ecommerce_routes

import (
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/controllers/resource_controller"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/routes/resource_routes"
	"github.com/gin-gonic/gin"
)

// SetupClientRoutes mounts every resource on rg, which must already be
// restricted to the client platform. Client mutations are not activity logged.
func SetupClientRoutes(rg *gin.RouterGroup, controllers []*resource_controller.Controller) {
	for _, rc := range controllers {
		resource_routes.Register(rg, rc, nil)
	}
}
