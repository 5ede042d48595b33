package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/msulemvn/bloggers/internal/models"
	"github.com/msulemvn/bloggers/internal/services"
	"github.com/msulemvn/bloggers/pkg/errors"
	"github.com/msulemvn/bloggers/pkg/response"
)

// DashboardHandler aggregates the counters shown on the landing screen.
type DashboardHandler struct {
	db       *gorm.DB
	posts    *services.PostService
	activity *services.ActivityService
}

func NewDashboardHandler(db *gorm.DB, posts *services.PostService, activity *services.ActivityService) *DashboardHandler {
	return &DashboardHandler{db: db, posts: posts, activity: activity}
}

// GET /api/dashboard
func (h *DashboardHandler) Summary(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, errors.ErrUnauthorized)
		return
	}

	ctx := requestContext(c)

	postCount, err := h.posts.CountForDashboard(ctx, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	var userCount, tagCount, commentCount int64
	if err := h.db.WithContext(ctx).Model(&models.User{}).Count(&userCount).Error; err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}
	if err := h.db.WithContext(ctx).Model(&models.Tag{}).Count(&tagCount).Error; err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}
	if err := h.db.WithContext(ctx).Model(&models.Comment{}).Count(&commentCount).Error; err != nil {
		response.Error(c, errors.ErrInternalServer)
		return
	}

	showable := true
	recent, _, err := h.activity.List(ctx, services.ActivityListOptions{
		Page:     1,
		PageSize: 10,
		Filters:  services.ActivityFilters{Showable: &showable},
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"counts": gin.H{
			"posts":    postCount,
			"users":    userCount,
			"tags":     tagCount,
			"comments": commentCount,
		},
		"recent_activities": recent,
	})
}
