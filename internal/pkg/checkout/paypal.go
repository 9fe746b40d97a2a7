package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/plutov/paypal/v4"

	"github.com/CourseHubApp/CourseHub/app/models"
	"github.com/CourseHubApp/CourseHub/internal/pkg/env"
)

// PayPalVerifier confirms wallet payments by looking up the order the
// buyer's client approved. Read-only against the PayPal Orders API; the
// capture itself happens client-side before the order id ever reaches us.
type PayPalVerifier struct {
	client *paypal.Client

	mu sync.Mutex
}

// NewPayPalVerifierFromEnv builds a verifier from PAYPAL_CLIENT_ID,
// PAYPAL_SECRET and PAYPAL_ENV (sandbox|live).
func NewPayPalVerifierFromEnv() (*PayPalVerifier, error) {
	base := paypal.APIBaseSandBox
	if env.GetEnv("PAYPAL_ENV", "sandbox") == "live" {
		base = paypal.APIBaseLive
	}
	client, err := paypal.NewClient(
		env.GetEnv("PAYPAL_CLIENT_ID", ""),
		env.GetEnv("PAYPAL_SECRET", ""),
		base,
	)
	if err != nil {
		return nil, err
	}
	return &PayPalVerifier{client: client}, nil
}

func (v *PayPalVerifier) Verify(ctx context.Context, externalRef string) (*VerifiedPayment, error) {
	if err := v.ensureToken(ctx); err != nil {
		return nil, &VerificationError{Reference: externalRef, Reason: "processor authentication failed", Retryable: true, Err: err}
	}

	order, err := v.client.GetOrder(ctx, externalRef)
	if err != nil {
		var paypalErr *paypal.ErrorResponse
		if errors.As(err, &paypalErr) {
			// PayPal answered: the order id is unknown or the request was
			// rejected. Terminal.
			return nil, &VerificationError{Reference: externalRef, Reason: "order lookup rejected", Err: err}
		}
		return nil, &VerificationError{Reference: externalRef, Reason: "processor unreachable", Retryable: true, Err: err}
	}
	return paypalOrderToVerified(order)
}

func (v *PayPalVerifier) ensureToken(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.client.Token != nil {
		return nil
	}
	_, err := v.client.GetAccessToken(ctx)
	return err
}

// paypalOrderToVerified maps PayPal order state onto the verifier contract.
// Only a COMPLETED order counts as verified: an APPROVED order has not been
// captured, so funds are not secured yet.
func paypalOrderToVerified(order *paypal.Order) (*VerifiedPayment, error) {
	if order == nil || len(order.PurchaseUnits) == 0 || order.PurchaseUnits[0].Amount == nil {
		return &VerifiedPayment{}, nil
	}
	unit := order.PurchaseUnits[0]

	amount, err := ParseAmountMinor(unit.Amount.Value)
	if err != nil {
		return nil, &VerificationError{Reference: order.ID, Reason: "unparseable order amount", Err: err}
	}

	vp := &VerifiedPayment{
		Amount:   amount,
		Currency: NormalizeCurrency(unit.Amount.Currency),
	}
	if order.Status == "COMPLETED" {
		vp.Verified = true
		vp.Status = models.PaymentStatusCompleted
	}
	return vp, nil
}
