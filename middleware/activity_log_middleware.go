package middleware

import (
	"context"

	"github.com/Modeva-Ecommerce/modeva-commerce-backend/config"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/schema"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/services"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/store"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/utils"
	"github.com/gin-gonic/gin"
)

// ActivityLog records the outcome of a mutating route. When the route carries
// an :id and coll is set, the record is snapshotted before and after the
// handler runs; failed requests keep only the before snapshot.
// Must be used after Auth.
func ActivityLog(activity *services.ActivityLogService, resource string, coll store.Collection, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !activity.Enabled() {
			c.Next()
			return
		}

		principal, _ := PrincipalFromContext(c)
		id := c.Param("id")
		tracked := coll != nil && schema.IsObjectID(id)

		var before models.Record
		if tracked {
			before = snapshot(c.Request.Context(), coll, id)
		}

		c.Next()

		status := c.Writer.Status()
		entry := services.LogActivityRequest{
			Principal:  principal,
			Action:     action,
			Resource:   resource,
			RecordID:   id,
			Status:     models.StatusSuccess,
			StatusCode: status,
			Client:     utils.DescribeClient(c),
		}

		var after models.Record
		if status >= 200 && status < 300 {
			if tracked {
				after = snapshot(c.Request.Context(), coll, id)
			}
		} else {
			entry.Status = models.StatusFailed
		}
		entry.Changes = services.Changes(before, after)

		// The request context may already be cancelled once the response is out.
		ctx, cancel := config.WithTimeout()
		defer cancel()
		activity.Log(ctx, entry)
	}
}

// snapshot returns the current record, or nil when it cannot be read.
func snapshot(ctx context.Context, coll store.Collection, id string) models.Record {
	filter, err := store.IDFilter(id)
	if err != nil {
		return nil
	}
	rec, err := coll.FindOne(ctx, filter)
	if err != nil {
		return nil
	}
	return rec
}
