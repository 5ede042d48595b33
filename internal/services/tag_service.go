package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/msulemvn/bloggers/internal/models"
	apperrors "github.com/msulemvn/bloggers/pkg/errors"
)

// ErrTagNotFound indicates the requested tag does not exist.
var ErrTagNotFound = apperrors.New("TAG_NOT_FOUND", "Tag not found", http.StatusNotFound)

// TagService manages the tag vocabulary attached to posts.
type TagService struct {
	db       *gorm.DB
	activity *ActivityService
}

// NewTagService constructs a TagService using the provided database handle.
func NewTagService(db *gorm.DB, activity *ActivityService) (*TagService, error) {
	if db == nil {
		return nil, errors.New("tag service: db is required")
	}
	return &TagService{db: db, activity: activity}, nil
}

// Create registers a new tag. Titles are unique.
func (s *TagService) Create(ctx context.Context, actorID, title string) (*models.Tag, error) {
	ctx = ensureContext(ctx)

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewValidation("tag title is required")
	}

	tag := &models.Tag{Title: title}
	if err := s.db.WithContext(ctx).Create(tag).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewValidation("tag title already exists")
		}
		return nil, fmt.Errorf("tag service: create tag: %w", err)
	}

	recordActivity(s.activity, ctx, ActivityEntry{
		UserID:      &actorID,
		Description: "User created a new tag",
		Showable:    true,
		Metadata:    map[string]any{"tag_id": tag.ID, "title": tag.Title},
	})

	return tag, nil
}

// List returns all tags ordered by creation time descending.
func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	ctx = ensureContext(ctx)

	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("tag service: list tags: %w", err)
	}
	return tags, nil
}

// Update renames an existing tag.
func (s *TagService) Update(ctx context.Context, actorID, tagID, title string) (*models.Tag, error) {
	ctx = ensureContext(ctx)

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewValidation("tag title is required")
	}

	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", tagID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("tag service: load tag: %w", err)
	}

	if title == tag.Title {
		return &tag, nil
	}

	if err := s.db.WithContext(ctx).Model(&tag).Update("title", title).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewValidation("tag title already exists")
		}
		return nil, fmt.Errorf("tag service: update tag: %w", err)
	}

	recordActivity(s.activity, ctx, ActivityEntry{
		UserID:      &actorID,
		Description: "User updated a tag",
		Showable:    true,
		Metadata:    map[string]any{"tag_id": tag.ID},
	})

	return &tag, nil
}

// Delete removes a tag and clears its post links.
func (s *TagService) Delete(ctx context.Context, actorID, tagID string) error {
	ctx = ensureContext(ctx)

	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, "id = ?", tagID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTagNotFound
		}
		return fmt.Errorf("tag service: load tag: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&tag).Association("Posts").Clear(); err != nil {
		return fmt.Errorf("tag service: clear tag posts: %w", err)
	}

	if err := s.db.WithContext(ctx).Delete(&tag).Error; err != nil {
		return fmt.Errorf("tag service: delete tag: %w", err)
	}

	recordActivity(s.activity, ctx, ActivityEntry{
		UserID:      &actorID,
		Description: "User deleted a tag",
		Showable:    true,
		Metadata:    map[string]any{"tag_id": tag.ID, "title": tag.Title},
	})

	return nil
}
