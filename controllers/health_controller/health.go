package health_controller

import (
	"net/http"

	"github.com/Modeva-Ecommerce/modeva-commerce-backend/config"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/store"
	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} models.ApiResponse
// @Failure 500 {object} models.ApiResponse
// @Router /health [get]
func Health(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := config.WithRequestTimeout(c.Request.Context())
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			models.Respond(c, models.KindInternalError, "database unreachable: "+err.Error(), nil)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(c, "ok", gin.H{"status": "healthy"}))
	}
}
