package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/msulemvn/bloggers/internal/models"
	"github.com/msulemvn/bloggers/internal/permissions"
	"github.com/msulemvn/bloggers/internal/storage"
	apperrors "github.com/msulemvn/bloggers/pkg/errors"
)

// ErrPostNotFound indicates the requested post does not exist.
var ErrPostNotFound = apperrors.New("POST_NOT_FOUND", "Post not found", http.StatusNotFound)

var postStatuses = map[string]struct{}{
	models.StatusApproved: {},
	models.StatusPending:  {},
	models.StatusRejected: {},
}

// ImageUpload carries an uploaded feature image into the post service.
type ImageUpload struct {
	FileName string
	Content  io.Reader
}

// CreatePostInput describes the payload accepted by Create.
type CreatePostInput struct {
	Title        string
	Content      string
	Status       string
	IsPublished  bool
	TagIDs       []string
	FeatureImage *ImageUpload
}

// UpdatePostInput enumerates mutable post attributes. Nil fields are left unchanged.
type UpdatePostInput struct {
	Title        *string
	Content      *string
	Status       *string
	IsPublished  *bool
	TagIDs       []string
	FeatureImage *ImageUpload
}

// ListPostsOptions controls pagination and scoping for post listings.
type ListPostsOptions struct {
	Page     int
	PageSize int
	// OwnerID restricts the listing to posts authored by the given user.
	OwnerID string
}

// PostService manages authored posts, their tag links, and feature images.
// Ownership rules: the author may mutate their own posts; holders of the
// admin role bypass the ownership check.
type PostService struct {
	db       *gorm.DB
	pictures storage.PictureStore
	checker  *permissions.Checker
	activity *ActivityService
}

// NewPostService constructs a PostService.
func NewPostService(db *gorm.DB, pictures storage.PictureStore, checker *permissions.Checker, activity *ActivityService) (*PostService, error) {
	if db == nil {
		return nil, errors.New("post service: db is required")
	}
	return &PostService{
		db:       db,
		pictures: pictures,
		checker:  checker,
		activity: activity,
	}, nil
}

// Create stores a new post owned by authorID. The slug is derived from the
// title and uniquified; tag links and the post row are written in a single
// transaction.
func (s *PostService) Create(ctx context.Context, authorID string, input CreatePostInput) (*models.Post, error) {
	ctx = ensureContext(ctx)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidation("title is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, apperrors.NewValidation("content is required")
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = models.StatusPending
	}
	if _, ok := postStatuses[status]; !ok {
		return nil, apperrors.NewValidation(fmt.Sprintf("invalid status %q", status))
	}

	featureImage, err := s.storeImage(ctx, "", input.FeatureImage)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:        title,
		UserID:       authorID,
		Content:      input.Content,
		FeatureImage: featureImage,
		IsPublished:  input.IsPublished,
		Status:       status,
	}

	tagIDs := normaliseIDs(input.TagIDs)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slug, err := uniqueSlug(tx, title, "")
		if err != nil {
			return err
		}
		post.Slug = slug

		if err := tx.Create(post).Error; err != nil {
			return fmt.Errorf("post service: create post: %w", err)
		}

		return syncTags(tx, post, tagIDs)
	})
	if err != nil {
		if featureImage != "" {
			_ = s.pictures.Delete(ctx, featureImage)
		}
		return nil, err
	}

	recordActivity(s.activity, ctx, ActivityEntry{
		UserID:      &authorID,
		Description: "User created a new post",
		Showable:    true,
		Metadata:    map[string]any{"post_id": post.ID, "slug": post.Slug},
	})

	return s.GetBySlug(ctx, post.Slug)
}

// GetBySlug loads a post with its tags and author preloaded.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	ctx = ensureContext(ctx)

	var post models.Post
	if err := s.db.WithContext(ctx).
		Preload("Tags").
		Preload("User").
		First(&post, "slug = ?", strings.TrimSpace(slug)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("post service: load post: %w", err)
	}
	return &post, nil
}

// List returns paginated posts ordered by creation time descending.
func (s *PostService) List(ctx context.Context, opts ListPostsOptions) ([]models.Post, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	perPage := opts.PageSize
	if perPage <= 0 || perPage > 100 {
		perPage = 15
	}

	query := s.db.WithContext(ctx).Model(&models.Post{})
	if opts.OwnerID != "" {
		query = query.Where("user_id = ?", opts.OwnerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("post service: count posts: %w", err)
	}

	var posts []models.Post
	if err := query.
		Preload("Tags").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&posts).Error; err != nil {
		return nil, 0, fmt.Errorf("post service: list posts: %w", err)
	}

	return posts, total, nil
}

// Update applies changes to a post after the ownership check. Tag links are
// resynced inside the same transaction; the slug follows a title change.
func (s *PostService) Update(ctx context.Context, actorID, slug string, input UpdatePostInput) (*models.Post, error) {
	ctx = ensureContext(ctx)

	post, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeMutation(ctx, post, actorID); err != nil {
		return nil, err
	}

	if input.Status != nil {
		if _, ok := postStatuses[strings.TrimSpace(*input.Status)]; !ok {
			return nil, apperrors.NewValidation(fmt.Sprintf("invalid status %q", *input.Status))
		}
	}

	oldImage := post.FeatureImage
	newImage := ""
	if input.FeatureImage != nil {
		newImage, err = s.storeImage(ctx, "", input.FeatureImage)
		if err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{}
		if input.Title != nil {
			title := strings.TrimSpace(*input.Title)
			if title == "" {
				return apperrors.NewValidation("title is required")
			}
			if title != post.Title {
				newSlug, err := uniqueSlug(tx, title, post.ID)
				if err != nil {
					return err
				}
				updates["title"] = title
				updates["slug"] = newSlug
			}
		}
		if input.Content != nil {
			updates["content"] = *input.Content
		}
		if input.Status != nil {
			updates["status"] = strings.TrimSpace(*input.Status)
		}
		if input.IsPublished != nil {
			updates["is_published"] = *input.IsPublished
		}
		if newImage != "" {
			updates["feature_image"] = newImage
		}

		if len(updates) > 0 {
			if err := tx.Model(post).Updates(updates).Error; err != nil {
				return fmt.Errorf("post service: update post: %w", err)
			}
		}

		if input.TagIDs != nil {
			if err := syncTags(tx, post, normaliseIDs(input.TagIDs)); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if newImage != "" {
			_ = s.pictures.Delete(ctx, newImage)
		}
		return nil, err
	}

	if newImage != "" && oldImage != "" {
		_ = s.pictures.Delete(ctx, oldImage)
	}

	recordActivity(s.activity, ctx, ActivityEntry{
		UserID:      &actorID,
		Description: "User updated a post",
		Showable:    true,
		Metadata:    map[string]any{"post_id": post.ID},
	})

	var refreshed models.Post
	if err := s.db.WithContext(ctx).
		Preload("Tags").
		Preload("User").
		First(&refreshed, "id = ?", post.ID).Error; err != nil {
		return nil, fmt.Errorf("post service: reload post: %w", err)
	}
	return &refreshed, nil
}

// Delete removes a post, its tag links, and its stored feature image after
// the ownership check.
func (s *PostService) Delete(ctx context.Context, actorID, slug string) error {
	ctx = ensureContext(ctx)

	post, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}

	if err := s.authorizeMutation(ctx, post, actorID); err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(post).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("post service: clear post tags: %w", err)
		}
		if err := tx.Delete(post).Error; err != nil {
			return fmt.Errorf("post service: delete post: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if post.FeatureImage != "" && s.pictures != nil {
		_ = s.pictures.Delete(ctx, post.FeatureImage)
	}

	recordActivity(s.activity, ctx, ActivityEntry{
		UserID:      &actorID,
		Description: "User deleted a post",
		Showable:    true,
		Metadata:    map[string]any{"post_id": post.ID, "slug": post.Slug},
	})

	return nil
}

// CountForDashboard reports the post count visible to the actor: admins see
// the global count, everyone else their own.
func (s *PostService) CountForDashboard(ctx context.Context, actorID string) (int64, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Model(&models.Post{})

	admin := false
	if s.checker != nil {
		var err error
		admin, err = s.checker.HasRole(ctx, actorID, permissions.AdminRole)
		if err != nil {
			return 0, err
		}
	}
	if !admin {
		query = query.Where("user_id = ?", actorID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("post service: count posts: %w", err)
	}
	return count, nil
}

// authorizeMutation enforces the ownership policy: the author, or a holder of
// the admin role, may mutate a post. The bypass is an explicit role check.
func (s *PostService) authorizeMutation(ctx context.Context, post *models.Post, actorID string) error {
	if post.UserID == actorID {
		return nil
	}

	if s.checker != nil {
		admin, err := s.checker.HasRole(ctx, actorID, permissions.AdminRole)
		if err != nil {
			return err
		}
		if admin {
			return nil
		}
	}

	return apperrors.ErrForbidden
}

func (s *PostService) storeImage(ctx context.Context, oldName string, upload *ImageUpload) (string, error) {
	if upload == nil || upload.Content == nil {
		return "", nil
	}
	if s.pictures == nil {
		return "", errors.New("post service: picture store is not configured")
	}

	stored, err := s.pictures.Replace(ctx, oldName, upload.FileName, upload.Content)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) {
			return "", apperrors.NewValidation("feature image must be a jpeg, png, jpg, or gif file")
		}
		return "", fmt.Errorf("post service: store image: %w", err)
	}
	return stored, nil
}

// syncTags replaces the post's tag links with the provided tag IDs.
func syncTags(tx *gorm.DB, post *models.Post, tagIDs []string) error {
	if tagIDs == nil {
		return nil
	}

	if len(tagIDs) == 0 {
		return tx.Model(post).Association("Tags").Clear()
	}

	var tags []models.Tag
	if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return fmt.Errorf("post service: load tags: %w", err)
	}
	if len(tags) != len(tagIDs) {
		return apperrors.NewValidation("one or more tags do not exist")
	}

	if err := tx.Model(post).Association("Tags").Replace(tags); err != nil {
		return fmt.Errorf("post service: sync tags: %w", err)
	}
	return nil
}

// uniqueSlug derives a slug from the title, suffixing a counter until it does
// not collide with another post. excludeID skips the post being updated.
func uniqueSlug(tx *gorm.DB, title, excludeID string) (string, error) {
	base := slugify(title)
	if base == "" {
		return "", apperrors.NewValidation("title must contain at least one alphanumeric character")
	}

	slug := base
	for i := 2; ; i++ {
		query := tx.Model(&models.Post{}).Where("slug = ?", slug)
		if excludeID != "" {
			query = query.Where("id <> ?", excludeID)
		}

		var count int64
		if err := query.Count(&count).Error; err != nil {
			return "", fmt.Errorf("post service: check slug: %w", err)
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
