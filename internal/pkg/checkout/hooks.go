package checkout

import (
	"context"

	"github.com/gofiber/fiber/v2/log"

	"github.com/CourseHubApp/CourseHub/app/models"
	"github.com/CourseHubApp/CourseHub/internal/pkg/entitlements"
	"github.com/CourseHubApp/CourseHub/internal/pkg/jobqueue"
	metrics "github.com/CourseHubApp/CourseHub/internal/pkg/metrics/counter"
)

// DefaultGrantHooks wires the production side effects of a completed
// checkout: receipt archival, purchase counters, dashboard cache
// invalidation and the enrollment confirmation email. Everything here is
// best-effort; a failed hook is logged and never fails the checkout.
func DefaultGrantHooks() GrantHooks {
	return defaultGrantHooks{}
}

type defaultGrantHooks struct{}

func (defaultGrantHooks) PaymentCompleted(ctx context.Context, payment *models.PaymentRecord) {
	_ = ctx
	if err := jobqueue.EnqueueReceiptArchive(payment); err != nil {
		log.Errorf("[Checkout] Failed to enqueue receipt archive for %s: %v", payment.PaymentID, err)
	}
	if err := metrics.AddCoursePurchase(payment.CourseID); err != nil {
		log.Errorf("[Checkout] Failed to count purchase for course %d: %v", payment.CourseID, err)
	}
}

func (defaultGrantHooks) EnrollmentGranted(ctx context.Context, enrollment *models.EnrollmentRecord) {
	_ = ctx
	if err := entitlements.InvalidateUserCourses(enrollment.UserID); err != nil {
		log.Errorf("[Checkout] Failed to invalidate course cache for user %d: %v", enrollment.UserID, err)
	}
	if err := jobqueue.EnqueueEnrollmentEmail(enrollment); err != nil {
		log.Errorf("[Checkout] Failed to enqueue enrollment email for user %d: %v", enrollment.UserID, err)
	}
}
