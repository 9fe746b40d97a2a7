package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/CourseHubApp/CourseHub/app/models"
)

func TestIsCheckoutSessionEvent(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "checkout.session.completed", want: true},
		{in: "checkout.session.async_payment_succeeded", want: true},
		{in: "checkout.session.async_payment_failed", want: true},
		{in: "checkout.session.expired", want: false},
		{in: "payment_intent.succeeded", want: false},
		{in: "", want: false},
	}

	for _, tt := range tests {
		if got := isCheckoutSessionEvent(tt.in); got != tt.want {
			t.Fatalf("isCheckoutSessionEvent(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIntentFromStripeSession(t *testing.T) {
	sess := &stripe.CheckoutSession{
		ID:          "cs_test_123",
		AmountTotal: 4999,
		Currency:    "usd",
		Metadata: map[string]string{
			"user_id":   "7",
			"course_id": "42",
		},
	}

	intent, err := intentFromStripeSession(sess)
	require.NoError(t, err)

	assert.Equal(t, uint(7), intent.UserID)
	assert.Equal(t, uint(42), intent.CourseID)
	assert.Equal(t, int64(4999), intent.Amount)
	assert.Equal(t, "USD", intent.Currency)
	assert.Equal(t, models.PaymentMethodCard, intent.Method)
	assert.Equal(t, "cs_test_123", intent.ExternalReference)
}

func TestIntentFromStripeSessionMissingMetadata(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]string
	}{
		{name: "no metadata", metadata: nil},
		{name: "missing user", metadata: map[string]string{"course_id": "42"}},
		{name: "missing course", metadata: map[string]string{"user_id": "7"}},
		{name: "zero user", metadata: map[string]string{"user_id": "0", "course_id": "42"}},
		{name: "garbage", metadata: map[string]string{"user_id": "abc", "course_id": "42"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := &stripe.CheckoutSession{ID: "cs_test_bad", Metadata: tt.metadata}
			_, err := intentFromStripeSession(sess)
			require.Error(t, err)
		})
	}
}
