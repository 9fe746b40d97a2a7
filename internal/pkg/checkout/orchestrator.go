package checkout

import (
	"context"

	"github.com/CourseHubApp/CourseHub/app/models"
)

// State is the position of a checkout attempt in its lifecycle.
type State string

const (
	StateInitiated      State = "INITIATED"
	StateVerifying      State = "VERIFYING"
	StateVerified       State = "VERIFIED"
	StateLedgerRecorded State = "LEDGER_RECORDED"
	StateEntitled       State = "ENTITLED"
	StateSucceeded      State = "SUCCEEDED"
	StateFailed         State = "FAILED"
)

// Outcome is the final position of a checkout attempt together with whatever
// rows it observed or produced.
type Outcome struct {
	State      State
	Payment    *models.PaymentRecord
	Enrollment *models.EnrollmentRecord
}

// Orchestrator sequences verifier, ledger writer and entitlement writer for a
// checkout attempt. The browser confirmation path and the webhook path race
// toward the same PaymentRecord/EnrollmentRecord pair; because every write
// below is idempotent, the second arrival observes the already-completed
// state and short-circuits to SUCCEEDED without repeating side effects.
type Orchestrator struct {
	service   *Service
	verifiers map[string]Verifier
}

// NewOrchestrator creates an orchestrator without any verifiers registered.
func NewOrchestrator(service *Service) *Orchestrator {
	return &Orchestrator{
		service:   service,
		verifiers: make(map[string]Verifier),
	}
}

// RegisterVerifier installs the verifier used for a payment method.
func (o *Orchestrator) RegisterVerifier(method string, v Verifier) {
	o.verifiers[method] = v
}

// Run drives a full checkout attempt from the client's claim to its terminal
// state: INITIATED -> VERIFYING -> VERIFIED -> LEDGER_RECORDED -> ENTITLED ->
// SUCCEEDED, with FAILED reachable from every non-terminal state.
func (o *Orchestrator) Run(ctx context.Context, intent CheckoutIntent) (*Outcome, error) {
	// INITIATED -> VERIFYING
	if intent.UserID == 0 {
		return &Outcome{State: StateFailed}, &InvalidPaymentError{Field: "user_id", Reason: "is required"}
	}
	if intent.CourseID == 0 {
		return &Outcome{State: StateFailed}, &InvalidPaymentError{Field: "course_id", Reason: "is required"}
	}
	if intent.ExternalReference == "" {
		return &Outcome{State: StateFailed}, &InvalidPaymentError{Field: "external_reference", Reason: "is required"}
	}
	verifier, ok := o.verifiers[intent.Method]
	if !ok {
		return &Outcome{State: StateFailed}, &InvalidPaymentError{Field: "method", Reason: "is not supported"}
	}

	verified, err := verifier.Verify(ctx, intent.ExternalReference)
	if err != nil {
		return &Outcome{State: StateFailed}, err
	}
	if !verified.Verified {
		return &Outcome{State: StateFailed}, &VerificationError{
			Reference: intent.ExternalReference,
			Reason:    "processor did not confirm the payment",
		}
	}

	// VERIFYING -> VERIFIED: the claimed amount and currency must match the
	// processor's answer exactly. A mismatch is suspected tampering and
	// never reaches the ledger.
	if verified.Amount != intent.Amount || NormalizeCurrency(verified.Currency) != NormalizeCurrency(intent.Currency) {
		return &Outcome{State: StateFailed}, &AmountMismatchError{
			Reference:        intent.ExternalReference,
			ClaimedAmount:    intent.Amount,
			VerifiedAmount:   verified.Amount,
			ClaimedCurrency:  NormalizeCurrency(intent.Currency),
			VerifiedCurrency: NormalizeCurrency(verified.Currency),
		}
	}

	return o.CompleteVerified(ctx, intent, verified.Status)
}

// CompleteVerified drives the VERIFIED -> SUCCEEDED segment. The webhook
// receiver enters here directly: a signature-validated event from the
// processor already is the trusted confirmation, so VERIFYING is skipped.
func (o *Orchestrator) CompleteVerified(ctx context.Context, intent CheckoutIntent, status string) (*Outcome, error) {
	if status == "" {
		status = models.PaymentStatusCompleted
	}

	// VERIFIED -> LEDGER_RECORDED. Whichever entry path reaches the unique
	// key first wins; the user/course of the stored row is authoritative
	// from here on and is never rewritten.
	payment, err := o.service.RecordPayment(ctx, RecordPaymentInput{
		PaymentID: intent.ExternalReference,
		UserID:    intent.UserID,
		CourseID:  intent.CourseID,
		Amount:    intent.Amount,
		Currency:  intent.Currency,
		Method:    intent.Method,
		Status:    status,
	})
	if err != nil {
		return &Outcome{State: StateFailed}, err
	}

	if payment.Status == models.PaymentStatusPending && status == models.PaymentStatusCompleted {
		// An earlier attempt recorded the pending row; finish it now.
		payment, err = o.service.CompletePayment(ctx, payment.PaymentID)
		if err != nil {
			return &Outcome{State: StateFailed, Payment: payment}, err
		}
	}

	switch payment.Status {
	case models.PaymentStatusCompleted:
	case models.PaymentStatusPending:
		// Asynchronous payment method still settling. The entitlement waits
		// for the processor's follow-up event; the ledger row is in place.
		return &Outcome{State: StateLedgerRecorded, Payment: payment}, nil
	default:
		return &Outcome{State: StateFailed, Payment: payment}, &VerificationError{
			Reference: payment.PaymentID,
			Reason:    "payment previously failed",
		}
	}

	return o.entitle(ctx, payment)
}

// ResolvePending finalizes a previously recorded pending payment once the
// processor reports the asynchronous capture outcome.
func (o *Orchestrator) ResolvePending(ctx context.Context, paymentID string, captured bool) (*Outcome, error) {
	if !captured {
		payment, err := o.service.FailPayment(ctx, paymentID)
		if err != nil {
			return &Outcome{State: StateFailed}, err
		}
		return &Outcome{State: StateFailed, Payment: payment}, nil
	}

	payment, err := o.service.CompletePayment(ctx, paymentID)
	if err != nil {
		return &Outcome{State: StateFailed, Payment: payment}, err
	}
	return o.entitle(ctx, payment)
}

// entitle drives LEDGER_RECORDED -> ENTITLED -> SUCCEEDED. Only reached once
// the payment is completed.
func (o *Orchestrator) entitle(ctx context.Context, payment *models.PaymentRecord) (*Outcome, error) {
	enrollment, err := o.service.GrantEnrollment(ctx, payment.UserID, payment.CourseID)
	if err != nil {
		return &Outcome{State: StateFailed, Payment: payment}, err
	}
	return &Outcome{State: StateSucceeded, Payment: payment, Enrollment: enrollment}, nil
}
