// Package resource_controller holds the HTTP handlers shared by every
// resource. One Controller is built per resource and mounted under both the
// admin and the client route groups.
package resource_controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/Modeva-Ecommerce/modeva-commerce-backend/config"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/logger"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/middleware"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/services"
	"github.com/gin-gonic/gin"
)

type Controller struct {
	svc *services.ResourceService
	log *logger.Logger
}

func New(svc *services.ResourceService, log *logger.Logger) *Controller {
	return &Controller{svc: svc, log: log.Named(svc.Name())}
}

// Resource is the name of the resource served.
func (rc *Controller) Resource() string { return rc.svc.Name() }

func (rc *Controller) Service() *services.ResourceService { return rc.svc }

// principal returns the authenticated caller, responding 401 when there is none.
func (rc *Controller) principal(c *gin.Context) (models.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse(c, "Unauthorized"))
		return models.Principal{}, false
	}
	return p, true
}

// bindBody decodes a required JSON body, responding bad request on failure.
func bindBody(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		models.Respond(c, models.KindBadRequest, "Invalid request body", nil)
		return false
	}
	return true
}

// bindOptionalBody is bindBody for endpoints whose body may be empty.
func bindOptionalBody(c *gin.Context, dst any) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		models.Respond(c, models.KindBadRequest, "Invalid request body", nil)
		return false
	}
	return true
}

func (rc *Controller) fail(c *gin.Context, op string, err error) {
	kind := models.KindFromErr(err)
	if kind == models.KindInternalError {
		rc.log.Errorw("["+rc.Resource()+"."+op+"] failed", "error", err)
	} else {
		rc.log.Debugw("["+rc.Resource()+"."+op+"] rejected", "kind", kind, "error", err)
	}
	models.RespondError(c, err)
}

var withTimeout = config.WithRequestTimeout
