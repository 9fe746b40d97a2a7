package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/CourseHubApp/CourseHub/app/models"
	"github.com/CourseHubApp/CourseHub/internal/pkg/database"
	"github.com/CourseHubApp/CourseHub/internal/pkg/env"
	"github.com/CourseHubApp/CourseHub/internal/pkg/mail"
)

// processEnrollmentEmailJob sends the enrollment confirmation email for a
// freshly granted course.
func (q *Queue) processEnrollmentEmailJob(ctx context.Context, job *Job) error {
	_ = ctx
	payload, err := EnrollmentEmailJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to parse enrollment email job payload: %w", err)
	}

	db := database.GetDB()
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	var user models.User
	if err := db.First(&user, payload.UserID).Error; err != nil {
		return fmt.Errorf("failed to load user %d: %w", payload.UserID, err)
	}

	var course models.Course
	if err := db.First(&course, payload.CourseID).Error; err != nil {
		return fmt.Errorf("failed to load course %d: %w", payload.CourseID, err)
	}

	publicDomain := env.GetEnv("PUBLIC_DOMAIN", "http://localhost:8080")
	courseURL := fmt.Sprintf("%s/courses/%s", publicDomain, course.Slug)

	subject := fmt.Sprintf("You're enrolled in %s", course.Title)
	body := fmt.Sprintf(`
		<h2>Welcome aboard, %s!</h2>
		<p>Your enrollment in <strong>%s</strong> is confirmed.</p>
		<p><a href="%s">Start learning now</a></p>
		<p>You can always find your courses in your dashboard.</p>
	`, user.Name, course.Title, courseURL)

	if err := mail.SendMail(user.Email, subject, body); err != nil {
		return fmt.Errorf("failed to send enrollment email to %s: %w", user.Email, err)
	}

	log.Infof("[JobQueue] Enrollment email sent to user %d for course %d", user.ID, course.ID)
	return nil
}

// EnqueueEnrollmentEmailJob creates and enqueues an enrollment email job
func (q *Queue) EnqueueEnrollmentEmailJob(userID, courseID uint) (*Job, error) {
	payload := EnrollmentEmailJobPayload{
		UserID:   userID,
		CourseID: courseID,
	}

	return q.EnqueueJob(JobTypeEnrollmentEmail, payload.ToMap())
}

// EnqueueEnrollmentEmail enqueues an enrollment confirmation email on the
// global queue.
func EnqueueEnrollmentEmail(enrollment *models.EnrollmentRecord) error {
	_, err := GetManager().GetQueue().EnqueueEnrollmentEmailJob(enrollment.UserID, enrollment.CourseID)
	return err
}
