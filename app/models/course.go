package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	CourseLevelBeginner     = "beginner"
	CourseLevelIntermediate = "intermediate"
	CourseLevelAdvanced     = "advanced"
)

// Course represents a purchasable course in the catalog. Prices are stored
// in minor units (cents) so checkout never does floating point math.
type Course struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Title         string         `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=3,max=255"`
	Slug          string         `gorm:"uniqueIndex;type:varchar(255);not null" json:"slug" validate:"required,min=3,max=255"`
	Description   string         `gorm:"type:text" json:"description" validate:"required"`
	Price         int64          `gorm:"not null" json:"price" validate:"gte=0"`
	OriginalPrice *int64         `gorm:"default:null" json:"original_price,omitempty"`
	Currency      string         `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	InstructorID  *uint          `gorm:"index" json:"instructor_id,omitempty"`
	Instructor    *User          `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	CategoryID    *uint          `gorm:"index" json:"category_id,omitempty"`
	Category      *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Level         string         `gorm:"type:varchar(20);not null;default:'beginner'" json:"level" validate:"oneof=beginner intermediate advanced"`
	Duration      string         `gorm:"type:varchar(50)" json:"duration"`
	Language      string         `gorm:"type:varchar(50);default:'English'" json:"language"`
	ImageURL      string         `gorm:"type:varchar(255);default:null" json:"image_url"`
	Featured      bool           `gorm:"type:tinyint(1);default:0;index" json:"featured"`
	Published     bool           `gorm:"type:tinyint(1);default:0;index" json:"published"`
	ViewCount     uint64         `gorm:"default:0" json:"view_count"`
	PurchaseCount uint64         `gorm:"default:0" json:"purchase_count"`
	Sections      []CourseSection `gorm:"foreignKey:CourseID" json:"sections,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Course model
func (Course) TableName() string {
	return "courses"
}

// CourseSection groups lessons inside a course curriculum.
type CourseSection struct {
	ID       uint           `gorm:"primaryKey" json:"id"`
	CourseID uint           `gorm:"not null;index" json:"course_id"`
	Title    string         `gorm:"type:varchar(255);not null" json:"title"`
	Position int            `gorm:"not null;default:0" json:"position"`
	Lessons  []CourseLesson `gorm:"foreignKey:SectionID" json:"lessons,omitempty"`
}

// TableName specifies the table name for the CourseSection model
func (CourseSection) TableName() string {
	return "course_sections"
}

// CourseLesson is a single lesson; free lessons are viewable without an
// enrollment.
type CourseLesson struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	SectionID uint   `gorm:"not null;index" json:"section_id"`
	Title     string `gorm:"type:varchar(255);not null" json:"title"`
	Duration  string `gorm:"type:varchar(20)" json:"duration"`
	IsFree    bool   `gorm:"type:tinyint(1);default:0" json:"is_free"`
	Position  int    `gorm:"not null;default:0" json:"position"`
}

// TableName specifies the table name for the CourseLesson model
func (CourseLesson) TableName() string {
	return "course_lessons"
}

// Category groups courses for browsing and filtering.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name" validate:"required,min=2,max=100"`
	Slug        string    `gorm:"uniqueIndex;type:varchar(100);not null" json:"slug" validate:"required,min=2,max=100"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the Category model
func (Category) TableName() string {
	return "categories"
}
