package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/msulemvn/bloggers/internal/services"
	"github.com/msulemvn/bloggers/pkg/errors"
	"github.com/msulemvn/bloggers/pkg/metrics"
	"github.com/msulemvn/bloggers/pkg/response"
)

// TagHandler exposes the tag CRUD surface.
type TagHandler struct {
	service *services.TagService
}

func NewTagHandler(service *services.TagService) *TagHandler {
	return &TagHandler{service: service}
}

type tagRequest struct {
	Title string `json:"title" validate:"required,min=2,max=64"`
}

// GET /api/tags
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.service.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, tags)
}

// POST /api/tags
func (h *TagHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req tagRequest
	if !bindAndValidate(c, &req) {
		return
	}

	tag, err := h.service.Create(requestContext(c), userID, req.Title)
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.ContentMutations.WithLabelValues("tag", "create").Inc()
	response.SuccessWithMessage(c, http.StatusCreated, "Tag created", tag)
}

// PUT /api/tags/:id
func (h *TagHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var req tagRequest
	if !bindAndValidate(c, &req) {
		return
	}

	tag, err := h.service.Update(requestContext(c), userID, c.Param("id"), req.Title)
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.ContentMutations.WithLabelValues("tag", "update").Inc()
	response.SuccessWithMessage(c, http.StatusOK, "Tag updated", tag)
}

// DELETE /api/tags/:id
func (h *TagHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(requestContext(c), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	metrics.ContentMutations.WithLabelValues("tag", "delete").Inc()
	response.NoContent(c)
}
