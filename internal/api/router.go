package api

import (
	"github.com/Ayash-Bera/medquery/internal/api/handlers"
	"github.com/Ayash-Bera/medquery/internal/middleware"
	"github.com/Ayash-Bera/medquery/internal/view"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NewRouter builds the gin engine for the web UI and its JSON API.
func NewRouter(h *handlers.QueryHandler, limiter *middleware.RateLimiter, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.SetHTMLTemplate(view.Templates())

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SecurityHeaders())

	router.GET("/", h.Index)
	router.POST("/query", limiter.RateLimit(), h.SubmitForm)
	router.GET("/health", h.Health)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/query", limiter.RateLimit(), h.SubmitJSON)
		v1.GET("/state", h.State)
		v1.GET("/history", h.History)
		v1.GET("/history/:submission_id", h.Record)
	}

	return router
}
