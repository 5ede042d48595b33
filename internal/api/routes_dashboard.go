package api

import (
	"github.com/gin-gonic/gin"

	"github.com/msulemvn/bloggers/internal/handlers"
)

func registerDashboardRoutes(api *gin.RouterGroup, handler *handlers.DashboardHandler) {
	api.GET("/dashboard", handler.Summary)
}
