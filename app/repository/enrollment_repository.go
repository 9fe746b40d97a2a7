package repository

import (
	"time"

	"github.com/CourseHubApp/CourseHub/app/models"
	"gorm.io/gorm"
)

// enrollmentRepository implements the EnrollmentRepository interface
type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository creates a new enrollment repository instance
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

// GetByUserID retrieves a user's enrollments with their courses, newest first
func (r *enrollmentRepository) GetByUserID(userID uint) ([]models.EnrollmentRecord, error) {
	var enrollments []models.EnrollmentRecord
	err := r.db.Preload("Course").Where("user_id = ?", userID).
		Order("enrolled_at DESC").Find(&enrollments).Error
	return enrollments, err
}

// GetByUserAndCourse retrieves a single enrollment
func (r *enrollmentRepository) GetByUserAndCourse(userID, courseID uint) (*models.EnrollmentRecord, error) {
	var enrollment models.EnrollmentRecord
	err := r.db.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// CountByUserID returns the number of courses a user is enrolled in
func (r *enrollmentRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.EnrollmentRecord{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// CountByCourseID returns the number of students enrolled in a course
func (r *enrollmentRepository) CountByCourseID(courseID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.EnrollmentRecord{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

// MarkCompleted marks an enrollment as completed
func (r *enrollmentRepository) MarkCompleted(userID, courseID uint) error {
	now := time.Now()
	return r.db.Model(&models.EnrollmentRecord{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Updates(map[string]interface{}{"completed": true, "completed_at": &now}).Error
}
