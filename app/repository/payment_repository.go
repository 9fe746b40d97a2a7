package repository

import (
	"github.com/CourseHubApp/CourseHub/app/models"
	"gorm.io/gorm"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// GetByPaymentID retrieves a payment by its external payment id
func (r *paymentRepository) GetByPaymentID(paymentID string) (*models.PaymentRecord, error) {
	var payment models.PaymentRecord
	err := r.db.Where("payment_id = ?", paymentID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByUserID retrieves a user's payment history, newest first
func (r *paymentRepository) GetByUserID(userID uint, offset, limit int) ([]models.PaymentRecord, error) {
	var payments []models.PaymentRecord
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&payments).Error
	return payments, err
}

// CountByUserID returns the number of payments for a user
func (r *paymentRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.PaymentRecord{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// GetCompletedByUserAndCourse retrieves the completed payment backing an
// enrollment, if one exists
func (r *paymentRepository) GetCompletedByUserAndCourse(userID, courseID uint) (*models.PaymentRecord, error) {
	var payment models.PaymentRecord
	err := r.db.Where("user_id = ? AND course_id = ? AND status = ?",
		userID, courseID, models.PaymentStatusCompleted).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// TotalSpentByUserID sums a user's completed payments in minor units
func (r *paymentRepository) TotalSpentByUserID(userID uint) (int64, error) {
	var total int64
	err := r.db.Model(&models.PaymentRecord{}).
		Where("user_id = ? AND status = ?", userID, models.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&total)
	return total, err
}
