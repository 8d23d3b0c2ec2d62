// Package routes assembles the HTTP surface: services are built once from
// explicit dependencies and mounted under /api/v1/admin and /api/v1/client.
package routes

import (
	"context"
	"fmt"
	"time"

	"github.com/Modeva-Ecommerce/modeva-commerce-backend/config"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/controllers/health_controller"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/controllers/order_controller"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/controllers/resource_controller"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/controllers/upload_controller"
	_ "github.com/Modeva-Ecommerce/modeva-commerce-backend/docs"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/logger"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/middleware"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/resources"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/routes/cms_routes"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/routes/ecommerce_routes"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/services"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/store"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Deps are the connections the router is built on. Redis and ActivityDB may
// be nil, which switches rate limiting and activity logging off.
type Deps struct {
	Config     *config.Configuration
	Store      store.Store
	Redis      *redis.Client
	ActivityDB *gorm.DB
	Log        *logger.Logger
}

// NewRouter builds every service and returns the ready engine.
func NewRouter(ctx context.Context, d Deps) (*gin.Engine, error) {
	cfg := d.Config
	registry := resources.Default()
	resolver := services.NewDependentResolver(d.Store, registry, d.Log)

	jwt, err := services.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)
	if err != nil {
		return nil, err
	}

	activity := services.NewActivityLogService(d.ActivityDB, d.Log)
	if err := activity.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate activity logs: %w", err)
	}

	placer, err := newPlacer(cfg)
	if err != nil {
		return nil, err
	}
	uploads := upload_controller.New(services.NewUploadService(cfg.Upload, placer, d.Log), d.Log)
	orders := order_controller.New(services.NewInvoiceService(d.Store, d.Log), d.Log)

	controllers := make([]*resource_controller.Controller, 0, len(registry.Names()))
	for _, name := range registry.Names() {
		svc := services.NewResourceService(d.Store, registry.MustGet(name), resolver, d.Log)
		controllers = append(controllers, resource_controller.New(svc, d.Log))
	}

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Recovery(d.Log), middleware.RequestLogger(d.Log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
		ExposeHeaders:    []string{"Content-Disposition", "Content-Length", middleware.HeaderRequestID},
	}))
	router.NoRoute(func(c *gin.Context) {
		models.Respond(c, models.KindNotFound, "route not found", nil)
	})

	router.GET("/health", health_controller.Health(d.Store))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(jwt, d.Log))

	api.POST("/upload",
		middleware.ActivityLog(activity, "upload", nil, models.ActionUpload),
		uploads.UploadFiles,
	)

	admin := api.Group("/admin")
	admin.Use(
		middleware.RequirePlatform(models.PlatformAdmin),
		middleware.RateLimiter(d.Redis, cfg.RateLimit.Requests, cfg.RateLimit.Window, d.Log),
	)
	cms_routes.SetupAdminRoutes(admin, controllers, activity, orders)

	client := api.Group("/client")
	client.Use(middleware.RequirePlatform(models.PlatformClient))
	ecommerce_routes.SetupClientRoutes(client, controllers)

	d.Log.Infow("routes registered", "resources", registry.Names())
	return router, nil
}

func newPlacer(cfg *config.Configuration) (services.Placer, error) {
	if cfg.Upload.Target != "cloudinary" {
		return services.NewDiskPlacer(cfg.Upload.Dir), nil
	}
	cld, err := services.NewCloudinaryService(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return services.NewCloudinaryPlacer(cld, cfg.Upload.Dir), nil
}
