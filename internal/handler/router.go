package handler

import (
	"vidsparrow/pkg/logger"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the panel engine with logging, recovery and request ids
func NewRouter(h *PanelHandler) *gin.Engine {
	router := gin.New()
	router.Use(logger.RequestID())
	router.Use(logger.GinLogger())
	router.Use(gin.Recovery())

	h.Register(router)
	return router
}
