package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/msulemvn/bloggers/internal/services"
	"github.com/msulemvn/bloggers/pkg/response"
)

// ActivityHandler exposes the recorded activity feed.
type ActivityHandler struct {
	service *services.ActivityService
}

func NewActivityHandler(service *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// GET /api/activities
func (h *ActivityHandler) List(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	per := parseIntQuery(c, "per_page", 20)

	filters := services.ActivityFilters{
		UserID: strings.TrimSpace(c.Query("user_id")),
	}
	if showable := strings.TrimSpace(c.Query("showable")); showable != "" {
		if parsed, err := strconv.ParseBool(showable); err == nil {
			filters.Showable = &parsed
		}
	}

	entries, total, err := h.service.List(requestContext(c), services.ActivityListOptions{
		Page:     page,
		PageSize: per,
		Filters:  filters,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, entries, &response.Meta{Page: page, PerPage: per, Total: int(total)})
}
