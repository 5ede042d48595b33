package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/msulemvn/bloggers/internal/models"
	apperrors "github.com/msulemvn/bloggers/pkg/errors"
)

// CommentableKindPosts is the canonical host kind for post comments.
const CommentableKindPosts = "posts"

// commentableAliases maps accepted host kind spellings to their canonical
// form. Host kinds form a closed set; unknown kinds are rejected up front
// rather than resolved dynamically.
var commentableAliases = map[string]string{
	"post":  CommentableKindPosts,
	"posts": CommentableKindPosts,
}

// canonicalCommentableKind resolves a caller-supplied host kind to its
// canonical form.
func canonicalCommentableKind(kind string) (string, error) {
	canonical, ok := commentableAliases[strings.ToLower(strings.TrimSpace(kind))]
	if !ok {
		return "", apperrors.NewValidation(fmt.Sprintf("unknown commentable type %q", kind))
	}
	return canonical, nil
}

// commentableExists verifies that the host record a comment attaches to is
// present.
func commentableExists(ctx context.Context, tx *gorm.DB, kind, id string) error {
	var count int64
	var err error

	switch kind {
	case CommentableKindPosts:
		err = tx.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error
	default:
		return apperrors.NewValidation(fmt.Sprintf("unknown commentable type %q", kind))
	}
	if err != nil {
		return fmt.Errorf("comment service: check commentable: %w", err)
	}
	if count == 0 {
		return apperrors.NewNotFound(fmt.Sprintf("%s record not found", kind))
	}
	return nil
}
