package activity_log_controller

import (
	"net/http"
	"strconv"

	"github.com/Modeva-Ecommerce/modeva-commerce-backend/config"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/services"
	"github.com/gin-gonic/gin"
)

type Controller struct {
	svc *services.ActivityLogService
}

func New(svc *services.ActivityLogService) *Controller {
	return &Controller{svc: svc}
}

// GetActivityLogs godoc
// @Summary Get activity logs
// @Description Mutations recorded on the admin API, newest first
// @Tags Activity Logs
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 20, max: 100)"
// @Param action query string false "Filter by action (e.g. create, soft_delete)"
// @Param resource_type query string false "Filter by resource (e.g. state, order)"
// @Param principal_id query string false "Filter by the acting user"
// @Success 200 {object} models.ApiResponse{data=map[string]interface{}}
// @Failure 401 {object} models.ApiResponse "Unauthorized"
// @Router /api/v1/admin/activity-logs [get]
func (ac *Controller) GetActivityLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	ctx, cancel := config.WithRequestTimeout(c.Request.Context())
	defer cancel()

	logs, meta, err := ac.svc.List(ctx, services.ActivityLogQuery{
		Page:        page,
		Limit:       limit,
		Action:      c.Query("action"),
		Resource:    c.Query("resource_type"),
		PrincipalID: c.Query("principal_id"),
	})
	if err != nil {
		models.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PaginatedResponse(c, "Activity logs retrieved", gin.H{"logs": logs}, meta))
}
