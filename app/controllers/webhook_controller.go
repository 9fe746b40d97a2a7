package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v82"

	"github.com/CourseHubApp/CourseHub/app/models"
	"github.com/CourseHubApp/CourseHub/internal/pkg/checkout"
	"github.com/CourseHubApp/CourseHub/internal/pkg/database"
	"github.com/CourseHubApp/CourseHub/internal/pkg/env"
)

// HandleStripeWebhook ingests Stripe's server-to-server confirmation with the
// production service and orchestrator wired.
func HandleStripeWebhook(c *fiber.Ctx) error {
	svc := checkout.NewServiceFromDB(database.GetDB())
	return stripeWebhook(c, svc, getOrchestrator(), env.GetEnv("STRIPE_WEBHOOK_SECRET", ""))
}

// stripeWebhook is the Webhook Receiver. Every delivery is persisted first
// with its signature verdict; a replay is acknowledged from the stored event
// only once that event settled (valid signature, processed without error) —
// a delivery that failed transiently or carried a bad signature stays
// retryable, and the retry converges on the same idempotent ledger and
// enrollment writes the browser return leg uses, so arrival order between
// the two does not matter.
func stripeWebhook(c *fiber.Ctx, svc *checkout.Service, orch *checkout.Orchestrator, secret string) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	sigHeader := strings.TrimSpace(c.Get("Stripe-Signature"))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	event, sigErr := checkout.VerifyStripeWebhook(rawBody, sigHeader, secret)
	signatureValid := sigErr == nil

	created, stored, err := svc.RecordWebhookEvent(ctx, checkout.WebhookEventInput{
		Provider:        models.PaymentProviderStripe,
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		PayloadJSON:     string(rawBody),
		SignatureValid:  signatureValid,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created && webhookEventSettled(stored) {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	}
	if !signatureValid {
		// Never acknowledged: Stripe keeps retrying on its own schedule, and
		// a later delivery with a good signature is processed normally.
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, errors.New("invalid webhook signature"))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}
	if !isCheckoutSessionEvent(string(event.Type)) {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, nil)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		_ = svc.MarkWebhookProcessed(ctx, stored.ID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
	}

	processErr := processCheckoutSessionEvent(ctx, orch, string(event.Type), &sess)
	_ = svc.MarkWebhookProcessed(ctx, stored.ID, processErr)
	if processErr != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "event_processing_failed"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

// webhookEventSettled reports whether a stored event reached a state that a
// replay may be acknowledged from: signature accepted and processing
// finished without error. Anything else must be handled again on redelivery;
// the downstream writes are idempotent, so reprocessing is safe.
func webhookEventSettled(e *models.PaymentWebhookEvent) bool {
	return e != nil && e.SignatureValid && e.ProcessedAt != nil && e.ProcessingError == ""
}

// processCheckoutSessionEvent maps one Stripe event type onto the grant
// pipeline.
func processCheckoutSessionEvent(ctx context.Context, orch *checkout.Orchestrator, eventType string, sess *stripe.CheckoutSession) error {
	switch eventType {
	case "checkout.session.completed":
		intent, err := intentFromStripeSession(sess)
		if err != nil {
			return err
		}
		status := models.PaymentStatusCompleted
		if sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
			// Delayed capture: record the ledger row now, grant on the
			// async follow-up event.
			status = models.PaymentStatusPending
		}
		_, err = orch.CompleteVerified(ctx, intent, status)
		return err
	case "checkout.session.async_payment_succeeded":
		_, err := orch.ResolvePending(ctx, sess.ID, true)
		return err
	case "checkout.session.async_payment_failed":
		_, err := orch.ResolvePending(ctx, sess.ID, false)
		return err
	default:
		return nil
	}
}

// intentFromStripeSession rebuilds the checkout intent from the metadata the
// session was created with. No browser session state is involved.
func intentFromStripeSession(sess *stripe.CheckoutSession) (checkout.CheckoutIntent, error) {
	userID, err := strconv.ParseUint(sess.Metadata["user_id"], 10, 32)
	if err != nil || userID == 0 {
		return checkout.CheckoutIntent{}, fmt.Errorf("session %s has no usable user_id metadata", sess.ID)
	}
	courseID, err := strconv.ParseUint(sess.Metadata["course_id"], 10, 32)
	if err != nil || courseID == 0 {
		return checkout.CheckoutIntent{}, fmt.Errorf("session %s has no usable course_id metadata", sess.ID)
	}

	return checkout.CheckoutIntent{
		UserID:            uint(userID),
		CourseID:          uint(courseID),
		Amount:            sess.AmountTotal,
		Currency:          checkout.NormalizeCurrency(string(sess.Currency)),
		Method:            models.PaymentMethodCard,
		ExternalReference: sess.ID,
	}, nil
}

func isCheckoutSessionEvent(eventType string) bool {
	switch eventType {
	case "checkout.session.completed",
		"checkout.session.async_payment_succeeded",
		"checkout.session.async_payment_failed":
		return true
	default:
		return false
	}
}
