package api

import (
	"github.com/gin-gonic/gin"

	"github.com/msulemvn/bloggers/internal/handlers"
	"github.com/msulemvn/bloggers/internal/middleware"
	"github.com/msulemvn/bloggers/internal/permissions"
)

func registerPermissionRoutes(api *gin.RouterGroup, handler *handlers.PermissionHandler, checker *permissions.Checker) {
	perms := api.Group("/permissions")
	{
		perms.GET("", middleware.RequirePermission(checker, "view:roles"), handler.List)
		perms.GET("/my", handler.Mine)
	}
}
