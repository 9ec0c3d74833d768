package api

import (
	"github.com/gin-gonic/gin"
	"github.com/use-agent/themescout/api/handler"
	"github.com/use-agent/themescout/api/middleware"
	"github.com/use-agent/themescout/config"
)

// NewRouter creates a configured Gin engine with the detection route.
//
// Middleware chain:
//
//	Recovery → RequestID → Logger
//
// Only /detect is served and no route requires auth.
func NewRouter(d handler.ThemeDetector, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	r.GET("/detect", handler.Detect(d))

	return r
}
