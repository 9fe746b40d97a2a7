package checkout

import (
	"time"

	"github.com/CourseHubApp/CourseHub/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the checkout service.
//
// The Create*IfNotExists methods are the serialization point for the two
// concurrent entry paths (browser confirmation and webhook): the unique key
// decides the winner at the storage layer and the loser observes the
// already-written row. No in-process locking is involved because the two
// writers may not share a process.
type Repository interface {
	CreatePaymentIfNotExists(p *models.PaymentRecord) (bool, *models.PaymentRecord, error)
	GetPaymentByPaymentID(paymentID string) (*models.PaymentRecord, error)
	TransitionPaymentStatus(paymentID, from, to string) (bool, error)
	CreateEnrollmentIfNotExists(e *models.EnrollmentRecord) (bool, *models.EnrollmentRecord, error)
	GetEnrollment(userID, courseID uint) (*models.EnrollmentRecord, error)
	CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a checkout repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreatePaymentIfNotExists(p *models.PaymentRecord) (bool, *models.PaymentRecord, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "payment_id"}},
		DoNothing: true,
	}).Create(p)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentRecord
	if err := r.db.Where("payment_id = ?", p.PaymentID).First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) GetPaymentByPaymentID(paymentID string) (*models.PaymentRecord, error) {
	var p models.PaymentRecord
	if err := r.db.Where("payment_id = ?", paymentID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// TransitionPaymentStatus moves a payment from one status to another. The
// status guard in the WHERE clause makes each transition happen at most
// once; the bool result reports whether this call performed it.
func (r *gormRepository) TransitionPaymentStatus(paymentID, from, to string) (bool, error) {
	tx := r.db.Model(&models.PaymentRecord{}).
		Where("payment_id = ? AND status = ?", paymentID, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *gormRepository) CreateEnrollmentIfNotExists(e *models.EnrollmentRecord) (bool, *models.EnrollmentRecord, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "course_id"},
		},
		DoNothing: true,
	}).Create(e)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.EnrollmentRecord
	if err := r.db.Where("user_id = ? AND course_id = ?", e.UserID, e.CourseID).First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) GetEnrollment(userID, courseID uint) (*models.EnrollmentRecord, error) {
	var e models.EnrollmentRecord
	if err := r.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
