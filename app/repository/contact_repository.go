package repository

import (
	"github.com/CourseHubApp/CourseHub/app/models"
	"gorm.io/gorm"
)

// contactRepository implements the ContactRepository interface
type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new contact repository instance
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

// Create stores a new contact message
func (r *contactRepository) Create(message *models.ContactMessage) error {
	return r.db.Create(message).Error
}

// GetByID retrieves a contact message by its ID
func (r *contactRepository) GetByID(id uint) (*models.ContactMessage, error) {
	var message models.ContactMessage
	err := r.db.First(&message, id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// List retrieves contact messages, newest first
func (r *contactRepository) List(offset, limit int) ([]models.ContactMessage, error) {
	var messages []models.ContactMessage
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&messages).Error
	return messages, err
}

// CountByStatus returns the number of messages with a given status
func (r *contactRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.ContactMessage{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// UpdateStatus updates the status of a contact message
func (r *contactRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.ContactMessage{}).Where("id = ?", id).Update("status", status).Error
}
