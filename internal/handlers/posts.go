package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/msulemvn/bloggers/internal/services"
	"github.com/msulemvn/bloggers/pkg/errors"
	"github.com/msulemvn/bloggers/pkg/metrics"
	"github.com/msulemvn/bloggers/pkg/response"
)

// PostHandler exposes the post CRUD surface.
type PostHandler struct {
	service *services.PostService
}

func NewPostHandler(service *services.PostService) *PostHandler {
	return &PostHandler{service: service}
}

type createPostRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=255"`
	Content     string   `json:"content" validate:"required"`
	Status      string   `json:"status" validate:"omitempty,oneof=approved pending rejected"`
	IsPublished bool     `json:"is_published"`
	TagIDs      []string `json:"tag_ids" validate:"omitempty,dive,uuid4"`
}

type updatePostRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=3,max=255"`
	Content     *string  `json:"content" validate:"omitempty,min=1"`
	Status      *string  `json:"status" validate:"omitempty,oneof=approved pending rejected"`
	IsPublished *bool    `json:"is_published"`
	TagIDs      []string `json:"tag_ids" validate:"omitempty,dive,uuid4"`
}

// GET /api/posts
func (h *PostHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	per := parseIntQuery(c, "per_page", 15)

	opts := services.ListPostsOptions{Page: page, PageSize: per}
	if strings.EqualFold(c.Query("mine"), "true") {
		if userID, ok := currentUserID(c); ok {
			opts.OwnerID = userID
		}
	}

	posts, total, err := h.service.List(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, posts, &response.Meta{Page: page, PerPage: per, Total: int(total)})
}

// GET /api/posts/:slug
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.service.GetBySlug(requestContext(c), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, post)
}

// POST /api/posts
//
// Accepts multipart form data when a feature image is attached, plain JSON
// otherwise.
func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var input services.CreatePostInput
	if isMultipart(c) {
		req, upload, ok := h.bindPostForm(c)
		if !ok {
			return
		}
		input = services.CreatePostInput{
			Title:        req.Title,
			Content:      req.Content,
			Status:       req.Status,
			IsPublished:  req.IsPublished,
			TagIDs:       req.TagIDs,
			FeatureImage: upload,
		}
	} else {
		var req createPostRequest
		if !bindAndValidate(c, &req) {
			return
		}
		input = services.CreatePostInput{
			Title:       req.Title,
			Content:     req.Content,
			Status:      req.Status,
			IsPublished: req.IsPublished,
			TagIDs:      req.TagIDs,
		}
	}

	post, err := h.service.Create(requestContext(c), userID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.ContentMutations.WithLabelValues("post", "create").Inc()
	response.SuccessWithMessage(c, http.StatusCreated, "Post created", post)
}

// PUT /api/posts/:slug
func (h *PostHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	var input services.UpdatePostInput
	if isMultipart(c) {
		req, upload, ok := h.bindPostForm(c)
		if !ok {
			return
		}
		input = services.UpdatePostInput{
			Title:        optional(req.Title),
			Content:      optional(req.Content),
			Status:       optional(req.Status),
			IsPublished:  &req.IsPublished,
			TagIDs:       req.TagIDs,
			FeatureImage: upload,
		}
	} else {
		var req updatePostRequest
		if !bindAndValidate(c, &req) {
			return
		}
		input = services.UpdatePostInput{
			Title:       req.Title,
			Content:     req.Content,
			Status:      req.Status,
			IsPublished: req.IsPublished,
			TagIDs:      req.TagIDs,
		}
	}

	post, err := h.service.Update(requestContext(c), userID, c.Param("slug"), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	metrics.ContentMutations.WithLabelValues("post", "update").Inc()
	response.SuccessWithMessage(c, http.StatusOK, "Post updated", post)
}

// DELETE /api/posts/:slug
func (h *PostHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(requestContext(c), userID, c.Param("slug")); err != nil {
		response.Error(c, err)
		return
	}

	metrics.ContentMutations.WithLabelValues("post", "delete").Inc()
	response.NoContent(c)
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// bindPostForm reads post fields plus the optional feature image from a
// multipart form.
func (h *PostHandler) bindPostForm(c *gin.Context) (createPostRequest, *services.ImageUpload, bool) {
	req := createPostRequest{
		Title:   strings.TrimSpace(c.PostForm("title")),
		Content: c.PostForm("content"),
		Status:  strings.TrimSpace(c.PostForm("status")),
		TagIDs:  c.PostFormArray("tag_ids"),
	}
	if published := c.PostForm("is_published"); published != "" {
		req.IsPublished, _ = strconv.ParseBool(published)
	}

	file, err := c.FormFile("feature_image")
	if err != nil && err != http.ErrMissingFile {
		response.Error(c, errors.NewBadRequest("invalid multipart payload"))
		return req, nil, false
	}

	var upload *services.ImageUpload
	if file != nil {
		opened, err := openUpload(file)
		if err != nil {
			response.Error(c, errors.NewBadRequest("unable to read uploaded file"))
			return req, nil, false
		}
		upload = &services.ImageUpload{FileName: file.Filename, Content: opened}
	}

	return req, upload, true
}

func openUpload(file *multipart.FileHeader) (multipart.File, error) {
	return file.Open()
}

// optional returns nil for empty form fields so untouched attributes stay as
// they are on update.
func optional(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
