package checkout

import (
	"errors"
	"strconv"
	"strings"

	"context"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/CourseHubApp/CourseHub/app/models"
	"github.com/CourseHubApp/CourseHub/internal/pkg/env"
)

// SetupStripe configures the Stripe SDK with the secret key from the
// environment. Call once during bootstrap.
func SetupStripe() {
	stripe.Key = env.GetEnv("STRIPE_SECRET_KEY", "")
}

// CreateCardCheckoutSession opens a hosted Stripe checkout session for one
// course. The course and user ids travel in the session metadata so the
// webhook receiver can rebuild the checkout intent without any session state.
func CreateCardCheckoutSession(ctx context.Context, course *models.Course, user *models.User, successURL, cancelURL string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(course.Currency)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(course.Title),
						Description: stripe.String("Enrollment for " + course.Title),
					},
					UnitAmount: stripe.Int64(course.Price),
				},
				Quantity: stripe.Int64(1),
			},
		},
		CustomerEmail: stripe.String(user.Email),
		SuccessURL:    stripe.String(successURL),
		CancelURL:     stripe.String(cancelURL),
	}
	params.Context = ctx
	params.AddMetadata("course_id", strconv.FormatUint(uint64(course.ID), 10))
	params.AddMetadata("user_id", strconv.FormatUint(uint64(user.ID), 10))

	return session.New(params)
}

// VerifyStripeWebhook validates a webhook payload against the configured
// endpoint secret and parses the event. An invalid signature is terminal for
// the request; Stripe retries delivery on its own schedule.
func VerifyStripeWebhook(payload []byte, sigHeader, secret string) (stripe.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, &SignatureError{Provider: models.PaymentProviderStripe, Err: err}
	}
	return event, nil
}

// StripeVerifier confirms card payments by looking up the checkout session
// the buyer claims to have completed. Read-only against Stripe.
type StripeVerifier struct{}

func (StripeVerifier) Verify(ctx context.Context, externalRef string) (*VerifiedPayment, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := session.Get(externalRef, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			// Definitive answer from Stripe (unknown session, bad request):
			// not retryable.
			return nil, &VerificationError{Reference: externalRef, Reason: "session lookup rejected", Err: err}
		}
		return nil, &VerificationError{Reference: externalRef, Reason: "processor unreachable", Retryable: true, Err: err}
	}
	return stripeSessionToVerified(sess), nil
}

// stripeSessionToVerified maps Stripe checkout session state onto the
// verifier contract.
func stripeSessionToVerified(sess *stripe.CheckoutSession) *VerifiedPayment {
	vp := &VerifiedPayment{
		Amount:   sess.AmountTotal,
		Currency: NormalizeCurrency(string(sess.Currency)),
	}
	switch {
	case sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid:
		vp.Verified = true
		vp.Status = models.PaymentStatusCompleted
	case sess.Status == stripe.CheckoutSessionStatusComplete && sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid:
		// Delayed payment method: the session closed but the capture is
		// still settling. Stripe follows up with an async payment event.
		vp.Verified = true
		vp.Status = models.PaymentStatusPending
	}
	return vp
}
