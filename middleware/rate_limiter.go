package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Modeva-Ecommerce/modeva-commerce-backend/logger"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed window limiter keyed per IP, method and route. With a
// nil client every request passes.
func RateLimiter(client *redis.Client, maxRequests int, window time.Duration, log *logger.Logger) gin.HandlerFunc {
	if client == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log = log.Named("rate-limiter")

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := "rl:" + utils.ClientIP(c) + ":" + c.Request.Method + ":" + c.FullPath()
		resetKey := key + ":resetAt"

		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			log.Errorw("redis incr failed", "key", key, "error", err)
			models.Respond(c, models.KindInternalError, "Redis error", nil)
			c.Abort()
			return
		}

		// First request of the window fixes its expiry and reset time.
		if count == 1 {
			resetAt := time.Now().Add(window)
			pipe := client.TxPipeline()
			pipe.Expire(ctx, key, window)
			pipe.Set(ctx, resetKey, resetAt.Unix(), window)
			if _, err := pipe.Exec(ctx); err != nil {
				log.Warnw("failed to set window expiry", "key", key, "error", err)
			}
		}

		resetAtUnix, _ := client.Get(ctx, resetKey).Int64()
		resetAt := time.Unix(resetAtUnix, 0)

		rate := &models.RateLimiter{
			Limit:          maxRequests,
			Remaining:      max(maxRequests-int(count), 0),
			ResetAt:        resetAt,
			ResetInSeconds: max(int(time.Until(resetAt).Seconds()), 0),
		}
		c.Set("rateLimiter", rate)

		if int(count) > maxRequests {
			c.Header("Retry-After", strconv.Itoa(rate.ResetInSeconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ApiResponse{
				Status:  models.KindFailure,
				Message: "Too many requests",
				Error:   true,
				Rate:    rate,
			})
			return
		}

		c.Next()
	}
}
