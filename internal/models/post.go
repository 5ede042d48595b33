package models

// Post statuses mirror the moderation lifecycle of published content.
const (
	StatusApproved = "approved"
	StatusPending  = "pending"
	StatusRejected = "rejected"
)

// Post is an authored content entry addressed by its unique slug.
type Post struct {
	BaseModel

	Title        string `gorm:"not null" json:"title"`
	Slug         string `gorm:"uniqueIndex;not null" json:"slug"`
	UserID       string `gorm:"type:uuid;not null;index" json:"user_id"`
	User         *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content      string `gorm:"type:text" json:"content"`
	FeatureImage string `json:"feature_image"`
	IsPublished  bool   `gorm:"default:false" json:"is_published"`
	Status       string `gorm:"not null;default:pending;index" json:"status"`

	Tags []Tag `gorm:"many2many:post_tags;" json:"tags,omitempty"`
}
