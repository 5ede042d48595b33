package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/msulemvn/bloggers/internal/models"
	"github.com/msulemvn/bloggers/internal/permissions"
	apperrors "github.com/msulemvn/bloggers/pkg/errors"
)

// ErrCommentNotFound indicates the requested comment does not exist.
var ErrCommentNotFound = apperrors.New("COMMENT_NOT_FOUND", "Comment not found", http.StatusNotFound)

// CreateCommentInput describes a new comment or reply.
type CreateCommentInput struct {
	HostKind        string
	HostID          string
	Body            string
	ParentCommentID *string
}

// CommentNode is a comment with its direct replies attached. Replies are
// ordered by creation time ascending at every depth.
type CommentNode struct {
	models.Comment
	Replies []*CommentNode `json:"replies"`
}

// CommentService manages threaded comments attached to host records.
// Comments reference their host through a (kind, id) pair drawn from a closed
// set of kinds, and nest arbitrarily deep through ParentCommentID.
type CommentService struct {
	db       *gorm.DB
	checker  *permissions.Checker
	activity *ActivityService
}

// NewCommentService constructs a CommentService.
func NewCommentService(db *gorm.DB, checker *permissions.Checker, activity *ActivityService) (*CommentService, error) {
	if db == nil {
		return nil, errors.New("comment service: db is required")
	}
	return &CommentService{db: db, checker: checker, activity: activity}, nil
}

// Create stores a comment authored by authorID. Replies must name a parent
// attached to the same host record.
func (s *CommentService) Create(ctx context.Context, authorID string, input CreateCommentInput) (*models.Comment, error) {
	ctx = ensureContext(ctx)

	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, apperrors.NewValidation("comment body is required")
	}

	kind, err := canonicalCommentableKind(input.HostKind)
	if err != nil {
		return nil, err
	}

	hostID := strings.TrimSpace(input.HostID)
	if hostID == "" {
		return nil, apperrors.NewValidation("commentable id is required")
	}

	comment := &models.Comment{
		UserID:          authorID,
		Body:            body,
		CommentableType: kind,
		CommentableID:   hostID,
		Status:          models.StatusApproved,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := commentableExists(ctx, tx, kind, hostID); err != nil {
			return err
		}

		if input.ParentCommentID != nil {
			parentID := strings.TrimSpace(*input.ParentCommentID)
			var parent models.Comment
			if err := tx.First(&parent, "id = ?", parentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NewNotFound("parent comment not found")
				}
				return fmt.Errorf("comment service: load parent: %w", err)
			}
			if parent.CommentableType != kind || parent.CommentableID != hostID {
				return apperrors.NewValidation("parent comment belongs to a different record")
			}
			comment.ParentCommentID = &parent.ID
		}

		if err := tx.Create(comment).Error; err != nil {
			return fmt.Errorf("comment service: create comment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	recordActivity(s.activity, ctx, ActivityEntry{
		UserID:      &authorID,
		Description: "User commented on a " + strings.TrimSuffix(kind, "s"),
		Showable:    true,
		Metadata:    map[string]any{"comment_id": comment.ID, "commentable_id": hostID},
	})

	return comment, nil
}

// Get loads a single comment by ID.
func (s *CommentService) Get(ctx context.Context, id string) (*models.Comment, error) {
	ctx = ensureContext(ctx)

	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("comment service: load comment: %w", err)
	}
	return &comment, nil
}

// Update changes a comment's body. The author is immutable; only the author
// or an admin may edit.
func (s *CommentService) Update(ctx context.Context, actorID, commentID, body string) (*models.Comment, error) {
	ctx = ensureContext(ctx)

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidation("comment body is required")
	}

	comment, err := s.Get(ctx, commentID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeMutation(ctx, comment, actorID); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(comment).Update("body", body).Error; err != nil {
		return nil, fmt.Errorf("comment service: update comment: %w", err)
	}

	recordActivity(s.activity, ctx, ActivityEntry{
		UserID:      &actorID,
		Description: "User updated a comment",
		Showable:    false,
		Metadata:    map[string]any{"comment_id": comment.ID},
	})

	return comment, nil
}

// Delete removes a comment together with its entire reply subtree in one
// transaction. Only the author or an admin may delete.
func (s *CommentService) Delete(ctx context.Context, actorID, commentID string) error {
	ctx = ensureContext(ctx)

	comment, err := s.Get(ctx, commentID)
	if err != nil {
		return err
	}

	if err := s.authorizeMutation(ctx, comment, actorID); err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := collectSubtreeIDs(tx, comment.ID)
		if err != nil {
			return err
		}
		if err := tx.Where("id IN ?", ids).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("comment service: delete comments: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	recordActivity(s.activity, ctx, ActivityEntry{
		UserID:      &actorID,
		Description: "User deleted a comment",
		Showable:    false,
		Metadata:    map[string]any{"comment_id": comment.ID},
	})

	return nil
}

// ListForHost returns the comment tree for a host record. All comments are
// loaded in one query and assembled in memory; top-level comments and each
// reply list are ordered by creation time ascending.
func (s *CommentService) ListForHost(ctx context.Context, hostKind, hostID string) ([]*CommentNode, error) {
	ctx = ensureContext(ctx)

	kind, err := canonicalCommentableKind(hostKind)
	if err != nil {
		return nil, err
	}

	if err := commentableExists(ctx, s.db, kind, hostID); err != nil {
		return nil, err
	}

	var comments []models.Comment
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("commentable_type = ? AND commentable_id = ?", kind, hostID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("comment service: list comments: %w", err)
	}

	return assembleTree(comments), nil
}

// authorizeMutation allows the comment's author or a holder of the admin
// role.
func (s *CommentService) authorizeMutation(ctx context.Context, comment *models.Comment, actorID string) error {
	if comment.UserID == actorID {
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

// collectSubtreeIDs walks the reply tree breadth-first and returns the IDs of
// the root comment and every descendant.
func collectSubtreeIDs(tx *gorm.DB, rootID string) ([]string, error) {
	ids := []string{rootID}
	frontier := []string{rootID}

	for len(frontier) > 0 {
		var children []string
		if err := tx.Model(&models.Comment{}).
			Where("parent_comment_id IN ?", frontier).
			Pluck("id", &children).Error; err != nil {
			return nil, fmt.Errorf("comment service: collect replies: %w", err)
		}
		ids = append(ids, children...)
		frontier = children
	}

	return ids, nil
}

// assembleTree links flat comments into parent/reply nodes. The input must be
// ordered by creation time ascending; the order is preserved at every level.
func assembleTree(comments []models.Comment) []*CommentNode {
	nodes := make(map[string]*CommentNode, len(comments))
	ordered := make([]*CommentNode, 0, len(comments))

	for i := range comments {
		node := &CommentNode{Comment: comments[i], Replies: []*CommentNode{}}
		nodes[node.ID] = node
		ordered = append(ordered, node)
	}

	roots := make([]*CommentNode, 0, len(ordered))
	for _, node := range ordered {
		if node.ParentCommentID != nil {
			if parent, ok := nodes[*node.ParentCommentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots
}
