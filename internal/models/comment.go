package models

// Comment is a threaded remark attached to a host entity through the
// (CommentableType, CommentableID) pair. CommentableType holds a canonical
// host kind from the commentable registry, never a runtime type name.
type Comment struct {
	BaseModel

	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Body string `gorm:"type:text;not null" json:"body"`

	CommentableType string `gorm:"not null;index:idx_commentable,priority:1" json:"commentable_type"`
	CommentableID   string `gorm:"type:uuid;not null;index:idx_commentable,priority:2" json:"commentable_id"`

	ParentCommentID *string `gorm:"type:uuid;index" json:"parent_comment_id"`

	Status string `gorm:"not null;default:approved" json:"status"`
}
