package entitlements

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/CourseHubApp/CourseHub/app/models"
	"github.com/CourseHubApp/CourseHub/internal/pkg/cache"
	"github.com/CourseHubApp/CourseHub/internal/pkg/database"
)

const cacheTTL = 10 * time.Minute

func userCoursesKey(userID uint) string {
	return fmt.Sprintf("user:%d:courses", userID)
}

// EnrolledCourseIDs returns the IDs of all courses the user is enrolled in.
// Results are cached in Redis; a checkout that grants a new enrollment
// invalidates the cache so the dashboard picks it up immediately.
func EnrolledCourseIDs(userID uint) ([]uint, error) {
	key := userCoursesKey(userID)

	if raw, err := cache.Get(key); err == nil {
		var ids []uint
		if jerr := json.Unmarshal([]byte(raw), &ids); jerr == nil {
			return ids, nil
		}
		// Corrupt entry, drop it and fall through to the database
		_ = cache.Delete(key)
	} else if !errors.Is(err, redis.Nil) {
		// Cache unavailable; serve from the database
	}

	var ids []uint
	db := database.GetDB()
	if err := db.Model(&models.EnrollmentRecord{}).
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Pluck("course_id", &ids).Error; err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(ids); err == nil {
		_ = cache.Set(key, string(encoded), cacheTTL)
	}

	return ids, nil
}

// EnrolledCourses loads the full course records for a user's enrollments,
// newest enrollment first.
func EnrolledCourses(userID uint) ([]models.Course, error) {
	ids, err := EnrolledCourseIDs(userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Course{}, nil
	}

	var courses []models.Course
	db := database.GetDB()
	if err := db.Where("id IN ?", ids).Find(&courses).Error; err != nil {
		return nil, err
	}

	// Preserve enrollment order
	byID := make(map[uint]models.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}
	ordered := make([]models.Course, 0, len(courses))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

// HasAccess reports whether the user is enrolled in the given course.
func HasAccess(userID, courseID uint) (bool, error) {
	ids, err := EnrolledCourseIDs(userID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == courseID {
			return true, nil
		}
	}
	return false, nil
}

// InvalidateUserCourses drops the cached enrollment list for a user.
func InvalidateUserCourses(userID uint) error {
	return cache.Delete(userCoursesKey(userID))
}
