package controllers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sujit-baniya/flash"

	"github.com/CourseHubApp/CourseHub/app/models"
	"github.com/CourseHubApp/CourseHub/app/repository"
	"github.com/CourseHubApp/CourseHub/internal/pkg/checkout"
	"github.com/CourseHubApp/CourseHub/internal/pkg/database"
	"github.com/CourseHubApp/CourseHub/internal/pkg/env"
	"github.com/CourseHubApp/CourseHub/internal/pkg/session"
)

var (
	orchestratorOnce sync.Once
	orchestrator     *checkout.Orchestrator
)

// getOrchestrator lazily builds the shared checkout orchestrator with one
// verifier per supported payment method.
func getOrchestrator() *checkout.Orchestrator {
	orchestratorOnce.Do(func() {
		svc := checkout.NewServiceFromDB(database.GetDB())
		orchestrator = checkout.NewOrchestrator(svc)
		orchestrator.RegisterVerifier(models.PaymentMethodCard, checkout.StripeVerifier{})

		if pp, err := checkout.NewPayPalVerifierFromEnv(); err == nil {
			orchestrator.RegisterVerifier(models.PaymentMethodWallet, pp)
		} else {
			log.Warnf("paypal verifier unavailable, wallet payments disabled: %v", err)
		}
	})
	return orchestrator
}

// HandleCheckoutStart opens a hosted Stripe checkout session for a course and
// redirects the buyer there.
func HandleCheckoutStart(c *fiber.Ctx) error {
	sess, _ := session.GetSessionStore().Get(c)
	userID := sess.Get(USER_ID).(uint)

	slug := c.Params("slug")
	repos := repository.GetGlobalRepositories()

	course, err := repos.Course.GetBySlug(slug)
	if err != nil || !course.Published {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Course not found"})
		return c.Redirect("/courses")
	}

	user, err := repos.User.GetByID(userID)
	if err != nil {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Please sign in again."})
		return c.Redirect("/login")
	}

	// Already enrolled: nothing to buy.
	if enrollment, err := repos.Enrollment.GetByUserAndCourse(userID, course.ID); err == nil && enrollment != nil {
		flash.WithInfo(c, fiber.Map{"type": "info", "message": "You already own this course."})
		return c.Redirect("/courses/" + slug)
	}

	ctx, cancel := context.WithTimeout(c.Context(), 15*time.Second)
	defer cancel()

	domain := env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000")
	successURL := fmt.Sprintf("%s/payment/success?course_id=%d&session_id={CHECKOUT_SESSION_ID}", domain, course.ID)
	cancelURL := fmt.Sprintf("%s/payment/cancel?course_id=%d", domain, course.ID)

	stripeSession, err := checkout.CreateCardCheckoutSession(ctx, course, user, successURL, cancelURL)
	if err != nil {
		log.Errorf("creating stripe session for course %d failed: %v", course.ID, err)
		flash.WithError(c, fiber.Map{"type": "error", "message": "Could not start the checkout. Please try again."})
		return c.Redirect("/courses/" + slug)
	}

	return c.Redirect(stripeSession.URL, fiber.StatusSeeOther)
}

// HandlePaymentSuccess is the browser's return leg from Stripe. It verifies
// the claimed session against Stripe and runs the full grant pipeline. The
// webhook races toward the same rows; whichever arrives second converges.
func HandlePaymentSuccess(c *fiber.Ctx) error {
	sess, _ := session.GetSessionStore().Get(c)
	userID := sess.Get(USER_ID).(uint)

	sessionID := c.Query("session_id")
	courseID, err := strconv.ParseUint(c.Query("course_id"), 10, 32)
	if err != nil || sessionID == "" {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Invalid payment confirmation."})
		return c.Redirect("/courses")
	}

	course, err := repository.GetGlobalRepositories().Course.GetByID(uint(courseID))
	if err != nil {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Course not found"})
		return c.Redirect("/courses")
	}

	ctx, cancel := context.WithTimeout(c.Context(), 15*time.Second)
	defer cancel()

	outcome, err := getOrchestrator().Run(ctx, checkout.CheckoutIntent{
		UserID:            userID,
		CourseID:          course.ID,
		Amount:            course.Price,
		Currency:          course.Currency,
		Method:            models.PaymentMethodCard,
		ExternalReference: sessionID,
	})
	return respondToOutcome(c, course, outcome, err)
}

// HandlePaymentCancel is the Stripe cancel return leg. Nothing was written.
func HandlePaymentCancel(c *fiber.Ctx) error {
	target := "/courses"
	if courseID, err := strconv.ParseUint(c.Query("course_id"), 10, 32); err == nil {
		if course, err := repository.GetGlobalRepositories().Course.GetByID(uint(courseID)); err == nil {
			target = "/courses/" + course.Slug
		}
	}

	flash.WithInfo(c, fiber.Map{"type": "info", "message": "Checkout cancelled. Your card was not charged."})
	return c.Redirect(target)
}

// HandlePayPalConfirm finishes a wallet purchase after the buyer approved
// and captured the order in the PayPal popup.
func HandlePayPalConfirm(c *fiber.Ctx) error {
	sess, _ := session.GetSessionStore().Get(c)
	userID := sess.Get(USER_ID).(uint)

	orderID := c.FormValue("order_id")
	courseID, err := strconv.ParseUint(c.FormValue("course_id"), 10, 32)
	if err != nil || orderID == "" {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Invalid payment confirmation."})
		return c.Redirect("/courses")
	}

	course, err := repository.GetGlobalRepositories().Course.GetByID(uint(courseID))
	if err != nil {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Course not found"})
		return c.Redirect("/courses")
	}

	ctx, cancel := context.WithTimeout(c.Context(), 15*time.Second)
	defer cancel()

	outcome, err := getOrchestrator().Run(ctx, checkout.CheckoutIntent{
		UserID:            userID,
		CourseID:          course.ID,
		Amount:            course.Price,
		Currency:          course.Currency,
		Method:            models.PaymentMethodWallet,
		ExternalReference: orderID,
	})
	return respondToOutcome(c, course, outcome, err)
}

// respondToOutcome maps a checkout outcome onto the buyer-facing redirect.
func respondToOutcome(c *fiber.Ctx, course *models.Course, outcome *checkout.Outcome, err error) error {
	if err != nil {
		var mismatch *checkout.AmountMismatchError
		var verification *checkout.VerificationError
		switch {
		case errors.As(err, &mismatch):
			log.Errorf("amount mismatch on %s: %v", mismatch.Reference, err)
			flash.WithError(c, fiber.Map{"type": "error", "message": "The payment could not be confirmed. Please contact support."})
		case errors.As(err, &verification) && verification.Retryable:
			flash.WithError(c, fiber.Map{"type": "error", "message": "We could not reach the payment provider. Please try again in a moment."})
		default:
			log.Errorf("checkout failed for course %d: %v", course.ID, err)
			flash.WithError(c, fiber.Map{"type": "error", "message": "The payment could not be confirmed."})
		}
		return c.Redirect("/courses/" + course.Slug)
	}

	switch outcome.State {
	case checkout.StateSucceeded:
		flash.WithSuccess(c, fiber.Map{"type": "success", "message": fmt.Sprintf("You are enrolled in %s. Happy learning!", course.Title)})
		return c.Redirect("/dashboard")
	case checkout.StateLedgerRecorded:
		// Delayed payment method: access is granted once the processor
		// confirms the capture via webhook.
		flash.WithInfo(c, fiber.Map{"type": "info", "message": "Your payment is processing. You will get access as soon as it settles."})
		return c.Redirect("/dashboard")
	default:
		flash.WithError(c, fiber.Map{"type": "error", "message": "The payment could not be confirmed."})
		return c.Redirect("/courses/" + course.Slug)
	}
}
