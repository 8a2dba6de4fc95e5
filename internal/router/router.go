package router

import (
	"github.com/gin-gonic/gin"
	"github.com/pageza/recipebox/backend/internal/api"
	"github.com/pageza/recipebox/backend/internal/middleware"
	"github.com/pageza/recipebox/backend/internal/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies are the services and infrastructure the routes are built on.
type Dependencies struct {
	Users   service.IUserService
	Recipes service.IRecipeService
	Images  service.IImageService

	DB    api.HealthChecker
	Redis redis.UniversalClient
	// Limiter throttles image uploads. Nil disables throttling.
	Limiter *middleware.RateLimiter

	CORSAllowedOrigins []string
	ImageMaxBytes      int64
	Logger             *zap.Logger
}

// SetupRouter configures the application routes. Reads of recipes and
// images, account creation and the health endpoints are public; every other
// route requires HTTP Basic credentials.
func SetupRouter(deps Dependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(logger),
		middleware.RequestLogger(logger),
		middleware.CORS(deps.CORSAllowedOrigins),
		middleware.ErrorHandler(logger),
	)

	auth := middleware.BasicAuth(deps.Users)
	var limiter gin.HandlerFunc
	if deps.Limiter != nil {
		limiter = deps.Limiter.RateLimitMiddleware()
	}

	api.NewHealthHandler(deps.DB, deps.Redis).RegisterRoutes(router)

	v1 := router.Group("/v1")
	api.NewUserHandler(deps.Users, auth).RegisterRoutes(v1)
	api.NewRecipeHandler(deps.Recipes, auth).RegisterRoutes(v1)
	api.NewImageHandler(deps.Images, auth, limiter, deps.ImageMaxBytes).RegisterRoutes(v1)

	return router
}
