package middleware

import (
	"net/http"

	ierr "github.com/Modeva-Ecommerce/modeva-commerce-backend/errors"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/logger"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/services"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

const (
	principalKey = "principal"
	// TokenCookie is read before the Authorization header.
	TokenCookie = "auth_token"
)

// Auth validates the JWT from the auth_token cookie or the Authorization
// header and stores the caller's principal in the context.
func Auth(jwt *services.JWTService, log *logger.Logger) gin.HandlerFunc {
	log = log.Named("auth")
	return func(c *gin.Context) {
		token, err := c.Cookie(TokenCookie)
		if err != nil || token == "" {
			token, err = services.ExtractTokenFromHeader(c.GetHeader("Authorization"))
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse(c, "Unauthorized - "+err.Error()))
				return
			}
		}

		claims, err := jwt.Verify(token)
		if err != nil {
			log.Debugw("invalid token", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse(c, "Invalid or expired token"))
			return
		}

		c.Set(principalKey, claims.Principal())
		c.Next()
	}
}

// RequirePlatform admits only principals authenticated against one of the
// given platforms. Must run after Auth.
func RequirePlatform(platforms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse(c, "Unauthorized - no principal"))
			return
		}
		if !lo.Contains(platforms, p.Platform) {
			models.RespondError(c, ierr.NewPermissionDenied("Forbidden - "+p.Platform+" platform not allowed"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// PrincipalFromContext returns the caller set by Auth.
func PrincipalFromContext(c *gin.Context) (models.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}

// SetPrincipal stores p as the caller. Used by tools and tests that bypass Auth.
func SetPrincipal(c *gin.Context, p models.Principal) {
	c.Set(principalKey, p)
}
