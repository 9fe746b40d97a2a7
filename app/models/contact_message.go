package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	ContactStatusUnread   = "unread"
	ContactStatusRead     = "read"
	ContactStatusArchived = "archived"
)

// ContactMessage stores submissions from the public contact form
type ContactMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	Email     string    `gorm:"type:varchar(200);not null" json:"email" validate:"required,email"`
	Subject   string    `gorm:"type:varchar(255);not null" json:"subject" validate:"required,min=5,max=255"`
	Message   string    `gorm:"type:text;not null" json:"message" validate:"required,min=10,max=5000"`
	Status    string    `gorm:"type:varchar(20);not null;default:'unread';index" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName specifies the table name for the ContactMessage model
func (ContactMessage) TableName() string {
	return "contact_messages"
}

func (m *ContactMessage) Validate() error {
	v := validator.New()

	return v.Struct(m)
}
