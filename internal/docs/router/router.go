// Package router provides document service routing.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/chopper-ai/chopper-docs/internal/docs/handler"
	"github.com/chopper-ai/chopper-docs/pkg/middleware"
)

// Register registers the document service routes on the gin engine.
func Register(engine *gin.Engine, docsHandler *handler.DocsHandler) {
	logger.Info("Registering document service routes...")

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.LoggerWithConfig(middleware.LoggerConfig{
			SkipPaths: []string{"/healthz", "/metrics"},
		}),
		middleware.CORS(),
	)

	engine.GET("/healthz", docsHandler.Healthz)
	engine.GET("/metrics", docsHandler.Metrics)

	v1 := engine.Group("/v1")
	{
		documents := v1.Group("/documents")
		{
			documents.POST("", docsHandler.Ingest)
			documents.GET("/count", docsHandler.Count)
			documents.DELETE("/:id", docsHandler.DeleteDocument)
		}

		v1.POST("/query", docsHandler.Query)
		v1.DELETE("/sessions/:session_id/documents", docsHandler.DeleteSession)
		v1.GET("/stats", docsHandler.Stats)
	}

	logger.Info("HTTP routes registered")
}
