package repository

import (
	"strings"

	"github.com/CourseHubApp/CourseHub/app/models"
	"gorm.io/gorm"
)

// courseRepository implements the CourseRepository interface
type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository creates a new course repository instance
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

// Create creates a new course in the database
func (r *courseRepository) Create(course *models.Course) error {
	return r.db.Create(course).Error
}

// GetByID retrieves a course by its ID
func (r *courseRepository) GetByID(id uint) (*models.Course, error) {
	var course models.Course
	err := r.db.Preload("Instructor").Preload("Category").First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// GetBySlug retrieves a course by its slug
func (r *courseRepository) GetBySlug(slug string) (*models.Course, error) {
	var course models.Course
	err := r.db.Preload("Instructor").Preload("Category").Where("slug = ?", slug).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// GetWithCurriculum retrieves a course with its sections and lessons ordered
// by position
func (r *courseRepository) GetWithCurriculum(slug string) (*models.Course, error) {
	var course models.Course
	err := r.db.Preload("Instructor").Preload("Category").
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("course_sections.position ASC")
		}).
		Preload("Sections.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("course_lessons.position ASC")
		}).
		Where("slug = ?", slug).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// GetPublished retrieves published courses with pagination
func (r *courseRepository) GetPublished(offset, limit int) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.Preload("Category").Where("published = ?", true).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&courses).Error
	return courses, err
}

// GetAll retrieves all courses including drafts, newest first
func (r *courseRepository) GetAll(offset, limit int) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.Preload("Category").
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&courses).Error
	return courses, err
}

// GetFeatured retrieves featured published courses for the storefront
func (r *courseRepository) GetFeatured(limit int) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.Preload("Category").Where("published = ? AND featured = ?", true, true).
		Order("purchase_count DESC").Limit(limit).Find(&courses).Error
	return courses, err
}

// GetByCategory retrieves published courses in a category
func (r *courseRepository) GetByCategory(categorySlug string, offset, limit int) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.Preload("Category").
		Joins("JOIN categories ON categories.id = courses.category_id").
		Where("categories.slug = ? AND courses.published = ?", categorySlug, true).
		Order("courses.created_at DESC").Offset(offset).Limit(limit).Find(&courses).Error
	return courses, err
}

// GetByInstructor retrieves courses created by an instructor
func (r *courseRepository) GetByInstructor(instructorID uint, offset, limit int) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.Where("instructor_id = ?", instructorID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&courses).Error
	return courses, err
}

// Update updates an existing course in the database
func (r *courseRepository) Update(course *models.Course) error {
	return r.db.Save(course).Error
}

// Delete soft deletes a course by its ID
func (r *courseRepository) Delete(id uint) error {
	return r.db.Delete(&models.Course{}, id).Error
}

// Count returns the total number of courses
func (r *courseRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Course{}).Count(&count).Error
	return count, err
}

// CountPublished returns the number of published courses
func (r *courseRepository) CountPublished() (int64, error) {
	var count int64
	err := r.db.Model(&models.Course{}).Where("published = ?", true).Count(&count).Error
	return count, err
}

// Search searches published courses by title or description
func (r *courseRepository) Search(query string, offset, limit int) ([]models.Course, error) {
	var courses []models.Course
	searchPattern := "%" + strings.TrimSpace(query) + "%"
	err := r.db.Preload("Category").
		Where("published = ? AND (title LIKE ? OR description LIKE ?)", true, searchPattern, searchPattern).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&courses).Error
	return courses, err
}

// SlugExists checks if a slug already exists
func (r *courseRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Course{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// SlugExistsExceptID checks if a slug exists excluding a specific ID
func (r *courseRepository) SlugExistsExceptID(slug string, id uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Course{}).Where("slug = ? AND id != ?", slug, id).Count(&count).Error
	return count > 0, err
}

// GetCategories retrieves all categories ordered by name
func (r *courseRepository) GetCategories() ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Order("name ASC").Find(&categories).Error
	return categories, err
}

// GetCategoryBySlug retrieves a category by its slug
func (r *courseRepository) GetCategoryBySlug(slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.Where("slug = ?", slug).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}
