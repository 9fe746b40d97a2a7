package repository

import (
	"github.com/CourseHubApp/CourseHub/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByActivationToken(token string) (*models.User, error)
	GetByPasswordResetToken(token string) (*models.User, error)
	GetStatsByUserID(userID uint) (*UserStats, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	Search(query string) ([]models.User, error)
}

// CourseRepository defines the interface for course catalog operations
type CourseRepository interface {
	Create(course *models.Course) error
	GetByID(id uint) (*models.Course, error)
	GetBySlug(slug string) (*models.Course, error)
	GetWithCurriculum(slug string) (*models.Course, error)
	GetPublished(offset, limit int) ([]models.Course, error)
	GetAll(offset, limit int) ([]models.Course, error)
	GetFeatured(limit int) ([]models.Course, error)
	GetByCategory(categorySlug string, offset, limit int) ([]models.Course, error)
	GetByInstructor(instructorID uint, offset, limit int) ([]models.Course, error)
	Update(course *models.Course) error
	Delete(id uint) error
	Count() (int64, error)
	CountPublished() (int64, error)
	Search(query string, offset, limit int) ([]models.Course, error)
	SlugExists(slug string) (bool, error)
	SlugExistsExceptID(slug string, id uint) (bool, error)
	GetCategories() ([]models.Category, error)
	GetCategoryBySlug(slug string) (*models.Category, error)
}

// BlogRepository defines the interface for blog-related operations
type BlogRepository interface {
	Create(post *models.BlogPost) error
	GetByID(id uint) (*models.BlogPost, error)
	GetBySlug(slug string) (*models.BlogPost, error)
	GetPublished(offset, limit int) ([]models.BlogPost, error)
	GetFeatured(limit int) ([]models.BlogPost, error)
	GetByCategory(category string, offset, limit int) ([]models.BlogPost, error)
	GetAll(offset, limit int) ([]models.BlogPost, error)
	Update(post *models.BlogPost) error
	Delete(id uint) error
	Count() (int64, error)
	CountPublished() (int64, error)
	SlugExists(slug string) (bool, error)
	SlugExistsExceptID(slug string, id uint) (bool, error)
}

// PaymentRepository defines read access to the payment ledger. Writes go
// through the checkout service only.
type PaymentRepository interface {
	GetByPaymentID(paymentID string) (*models.PaymentRecord, error)
	GetByUserID(userID uint, offset, limit int) ([]models.PaymentRecord, error)
	CountByUserID(userID uint) (int64, error)
	GetCompletedByUserAndCourse(userID, courseID uint) (*models.PaymentRecord, error)
	TotalSpentByUserID(userID uint) (int64, error)
}

// EnrollmentRepository defines read access to enrollments. Grants go through
// the checkout service only.
type EnrollmentRepository interface {
	GetByUserID(userID uint) ([]models.EnrollmentRecord, error)
	GetByUserAndCourse(userID, courseID uint) (*models.EnrollmentRecord, error)
	CountByUserID(userID uint) (int64, error)
	CountByCourseID(courseID uint) (int64, error)
	MarkCompleted(userID, courseID uint) error
}

// ContactRepository defines the interface for contact message operations
type ContactRepository interface {
	Create(message *models.ContactMessage) error
	GetByID(id uint) (*models.ContactMessage, error)
	List(offset, limit int) ([]models.ContactMessage, error)
	CountByStatus(status string) (int64, error)
	UpdateStatus(id uint, status string) error
}

// UserStats provides aggregated counts for a single user's dashboard.
type UserStats struct {
	CourseCount     int64
	CompletedCount  int64
	TotalSpentMinor int64
}

// Repositories struct holds all repository instances
type Repositories struct {
	User       UserRepository
	Course     CourseRepository
	Blog       BlogRepository
	Payment    PaymentRepository
	Enrollment EnrollmentRepository
	Contact    ContactRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		Course:     NewCourseRepository(db),
		Blog:       NewBlogRepository(db),
		Payment:    NewPaymentRepository(db),
		Enrollment: NewEnrollmentRepository(db),
		Contact:    NewContactRepository(db),
	}
}
