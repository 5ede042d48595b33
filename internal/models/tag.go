package models

type Tag struct {
	BaseModel

	Title string `gorm:"uniqueIndex;not null" json:"title"`

	Posts []Post `gorm:"many2many:post_tags;" json:"posts,omitempty"`
}
