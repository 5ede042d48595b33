package api

import (
	"github.com/gin-gonic/gin"

	"github.com/msulemvn/bloggers/internal/handlers"
)

// Comment mutations are open to every authenticated user; ownership is
// enforced by the service layer.
func registerCommentRoutes(api *gin.RouterGroup, handler *handlers.CommentHandler) {
	comments := api.Group("/comments")
	{
		comments.POST("", handler.Create)
		comments.PUT("/:id", handler.Update)
		comments.DELETE("/:id", handler.Delete)
	}
}
