package api

import (
	"github.com/gin-gonic/gin"

	"github.com/msulemvn/bloggers/internal/handlers"
	"github.com/msulemvn/bloggers/internal/middleware"
	"github.com/msulemvn/bloggers/internal/permissions"
)

func registerActivityRoutes(api *gin.RouterGroup, handler *handlers.ActivityHandler, checker *permissions.Checker) {
	api.GET("/activities", middleware.RequirePermission(checker, "view:users"), handler.List)
}
