package models

import (
	"time"

	"gorm.io/gorm"
)

// BlogPost represents an article on the marketplace blog
type BlogPost struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=3,max=255"`
	Slug      string         `gorm:"uniqueIndex;type:varchar(255);not null" json:"slug" validate:"required,min=3,max=255"`
	Excerpt   string         `gorm:"type:text" json:"excerpt"`
	Content   string         `gorm:"type:longtext" json:"content" validate:"required"`
	AuthorID  *uint          `gorm:"index" json:"author_id,omitempty"`
	Author    *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	ImageURL  string         `gorm:"type:varchar(255);default:null" json:"image_url"`
	Category  string         `gorm:"type:varchar(100);index" json:"category"`
	Featured  bool           `gorm:"type:tinyint(1);default:0;index" json:"featured"`
	Published bool           `gorm:"type:tinyint(1);default:0;index" json:"published"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the BlogPost model
func (BlogPost) TableName() string {
	return "blog_posts"
}
