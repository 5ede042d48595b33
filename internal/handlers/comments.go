package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/msulemvn/bloggers/internal/services"
	"github.com/msulemvn/bloggers/pkg/errors"
	"github.com/msulemvn/bloggers/pkg/metrics"
	"github.com/msulemvn/bloggers/pkg/response"
)

// CommentHandler exposes comment creation, editing, deletion, and the
// threaded listing for a host record.
type CommentHandler struct {
	service *services.CommentService
	posts   *services.PostService
}

func NewCommentHandler(service *services.CommentService, posts *services.PostService) *CommentHandler {
	return &CommentHandler{service: service, posts: posts}
}

type createCommentRequest struct {
	CommentableType string  `json:"commentable_type" validate:"required"`
	CommentableID   string  `json:"commentable_id" validate:"required,uuid4"`
	Body            string  `json:"body" validate:"required,min=1"`
	ParentCommentID *string `json:"parent_comment_id" validate:"omitempty,uuid4"`
}

type updateCommentRequest struct {
	Body string `json:"body" validate:"required,min=1"`
}

// POST /api/comments
func (h *CommentHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req createCommentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	comment, err := h.service.Create(requestContext(c), userID, services.CreateCommentInput{
		HostKind:        req.CommentableType,
		HostID:          req.CommentableID,
		Body:            req.Body,
		ParentCommentID: req.ParentCommentID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.ContentMutations.WithLabelValues("comment", "create").Inc()
	response.SuccessWithMessage(c, http.StatusCreated, "Comment created", comment)
}

// PUT /api/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req updateCommentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	comment, err := h.service.Update(requestContext(c), userID, c.Param("id"), req.Body)
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.ContentMutations.WithLabelValues("comment", "update").Inc()
	response.SuccessWithMessage(c, http.StatusOK, "Comment updated", comment)
}

// DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(requestContext(c), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	metrics.ContentMutations.WithLabelValues("comment", "delete").Inc()
	response.NoContent(c)
}

// GET /api/posts/:slug/comments
func (h *CommentHandler) ListForPost(c *gin.Context) {
	ctx := requestContext(c)

	post, err := h.posts.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	tree, err := h.service.ListForHost(ctx, services.CommentableKindPosts, post.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, tree)
}
