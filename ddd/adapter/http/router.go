package http

import (
	"github.com/gin-gonic/gin"

	"convert-service/pkg/config"
	"convert-service/pkg/middleware"
)

// Router wires the HTTP surface of the service.
type Router struct {
	controller *ConvertController
}

func NewRouter(controller *ConvertController) *Router {
	return &Router{controller: controller}
}

// SetupMiddleware installs the shared middleware chain.
func (r *Router) SetupMiddleware(engine *gin.Engine, cfg *config.Config) {
	engine.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-UUID, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})
	engine.Use(gin.Logger())
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestContextMiddleware())
	if cfg != nil {
		engine.Use(middleware.AuthMiddleware(cfg.JWT))
	}
}

// SetupRoutes registers all endpoints.
func (r *Router) SetupRoutes(engine *gin.Engine) {
	v1 := engine.Group("/api/v1")
	{
		conversions := v1.Group("/conversions")
		{
			conversions.POST("", r.controller.CreateConversion)
			conversions.GET("", r.controller.ListConversions)
			conversions.GET("/:job_uuid", r.controller.GetConversion)
			conversions.GET("/:job_uuid/progress", r.controller.GetConversionProgress)
			conversions.POST("/:job_uuid/cancel", r.controller.CancelConversion)
		}
		v1.GET("/formats", r.controller.ListFormats)
	}

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "convert-service",
			"version": "1.0.0",
		})
	})
}
