// Package http exposes the SST preview API.
package http

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"go.ngs.io/sst-prescription/internal/usecase"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(preview *usecase.PreviewService) *gin.Engine {

	router := gin.Default()

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()

	// Default to allow all origins if not specified.
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}

	router.Use(cors.New(corsConfig))

	handler := NewHandler(preview)

	v1 := router.Group("/v1")
	v1.GET("/datasets", handler.GetDatasets)

	sst := v1.Group("/sst")
	sst.GET("/filled", handler.GetFilled)
	sst.GET("/point", handler.GetPoint)
	sst.GET("/map", handler.GetMap)

	router.GET("/health", handler.HealthCheck)

	return router
}
