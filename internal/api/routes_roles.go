package api

import (
	"github.com/gin-gonic/gin"

	"github.com/msulemvn/bloggers/internal/handlers"
	"github.com/msulemvn/bloggers/internal/middleware"
	"github.com/msulemvn/bloggers/internal/permissions"
)

func registerRoleRoutes(api *gin.RouterGroup, handler *handlers.RoleHandler, checker *permissions.Checker) {
	roles := api.Group("/roles")
	{
		roles.GET("", middleware.RequirePermission(checker, "view:roles"), handler.List)
		roles.POST("", middleware.RequirePermission(checker, "update:roles"), handler.Create)
		roles.PUT("/:id", middleware.RequirePermission(checker, "update:roles"), handler.Update)
		roles.DELETE("/:id", middleware.RequirePermission(checker, "update:roles"), handler.Delete)
		roles.GET("/:id/permissions", middleware.RequirePermission(checker, "view:roles"), handler.Permissions)
		roles.PUT("/:id/permissions", middleware.RequirePermission(checker, "update:roles"), handler.SetPermissions)
	}
}
