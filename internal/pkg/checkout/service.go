package checkout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/CourseHubApp/CourseHub/app/models"
	"gorm.io/gorm"
)

// Service provides the idempotent ledger and entitlement writes: however many
// times the browser path, the webhook path or a client retry invoke them for
// the same keys, the persisted end state is identical.
type Service struct {
	repo  Repository
	hooks GrantHooks
}

// GrantHooks receives notifications after checkout writes commit. Hooks run
// best-effort: they must not fail the checkout, only log.
type GrantHooks interface {
	// PaymentCompleted fires once per payment, on the call that moved it
	// into its completed state.
	PaymentCompleted(ctx context.Context, payment *models.PaymentRecord)
	// EnrollmentGranted fires once per enrollment, on the call that created
	// the row.
	EnrollmentGranted(ctx context.Context, enrollment *models.EnrollmentRecord)
}

// NewService creates a checkout service from an injected repository. A nil
// hooks value disables side effects (used by tests).
func NewService(repo Repository, hooks GrantHooks) *Service {
	return &Service{repo: repo, hooks: hooks}
}

// NewServiceFromDB creates a checkout service from a GORM DB handle with the
// production side effects wired.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db), DefaultGrantHooks())
}

// RecordPayment durably records an external payment. If a PaymentRecord with
// this payment id already exists the existing row is returned unchanged: the
// unique-key hit is the idempotent success path, not an error. The caller is
// trusted to have verified the payment with the processor.
func (s *Service) RecordPayment(ctx context.Context, in RecordPaymentInput) (*models.PaymentRecord, error) {
	paymentID := strings.TrimSpace(in.PaymentID)
	if paymentID == "" {
		return nil, &InvalidPaymentError{Field: "payment_id", Reason: "is required"}
	}
	if in.UserID == 0 {
		return nil, &InvalidPaymentError{Field: "user_id", Reason: "is required"}
	}
	if in.CourseID == 0 {
		return nil, &InvalidPaymentError{Field: "course_id", Reason: "is required"}
	}
	if in.Amount <= 0 {
		return nil, &InvalidPaymentError{Field: "amount", Reason: "must be positive"}
	}
	if !KnownCurrency(in.Currency) {
		return nil, &InvalidPaymentError{Field: "currency", Reason: "is not supported"}
	}
	if !models.KnownPaymentMethod(in.Method) {
		return nil, &InvalidPaymentError{Field: "method", Reason: "is not supported"}
	}
	status := in.Status
	if status == "" {
		status = models.PaymentStatusCompleted
	}
	if status != models.PaymentStatusCompleted && status != models.PaymentStatusPending {
		return nil, &InvalidPaymentError{Field: "status", Reason: "must be pending or completed"}
	}

	record := &models.PaymentRecord{
		PaymentID: paymentID,
		UserID:    in.UserID,
		CourseID:  in.CourseID,
		Amount:    in.Amount,
		Currency:  NormalizeCurrency(in.Currency),
		Method:    in.Method,
		Status:    status,
	}
	created, stored, err := s.repo.CreatePaymentIfNotExists(record)
	if err != nil {
		return nil, &StorageError{Op: "record payment", Err: err}
	}
	if created && stored.IsCompleted() && s.hooks != nil {
		s.hooks.PaymentCompleted(ctx, stored)
	}
	return stored, nil
}

// CompletePayment moves a pending payment to completed. The guarded status
// transition happens at most once; concurrent or repeated calls observe the
// already-completed row and return it unchanged.
func (s *Service) CompletePayment(ctx context.Context, paymentID string) (*models.PaymentRecord, error) {
	transitioned, err := s.repo.TransitionPaymentStatus(paymentID, models.PaymentStatusPending, models.PaymentStatusCompleted)
	if err != nil {
		return nil, &StorageError{Op: "complete payment", Err: err}
	}
	payment, err := s.repo.GetPaymentByPaymentID(paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &InvalidPaymentError{Field: "payment_id", Reason: "is unknown"}
		}
		return nil, &StorageError{Op: "load payment", Err: err}
	}
	if payment.Status == models.PaymentStatusFailed {
		return payment, &VerificationError{Reference: paymentID, Reason: "payment previously failed"}
	}
	if transitioned && s.hooks != nil {
		s.hooks.PaymentCompleted(ctx, payment)
	}
	return payment, nil
}

// FailPayment moves a pending payment to failed. A payment that already
// completed stays completed; the transition guard never rewrites a terminal
// status.
func (s *Service) FailPayment(ctx context.Context, paymentID string) (*models.PaymentRecord, error) {
	_ = ctx
	if _, err := s.repo.TransitionPaymentStatus(paymentID, models.PaymentStatusPending, models.PaymentStatusFailed); err != nil {
		return nil, &StorageError{Op: "fail payment", Err: err}
	}
	payment, err := s.repo.GetPaymentByPaymentID(paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &InvalidPaymentError{Field: "payment_id", Reason: "is unknown"}
		}
		return nil, &StorageError{Op: "load payment", Err: err}
	}
	return payment, nil
}

// GrantEnrollment durably enrolls a user in a course. Re-granting returns the
// existing row unchanged. Must only be called once the corresponding payment
// is completed; that ordering is the orchestrator's job, not this method's.
func (s *Service) GrantEnrollment(ctx context.Context, userID, courseID uint) (*models.EnrollmentRecord, error) {
	if userID == 0 || courseID == 0 {
		return nil, &InvalidPaymentError{Field: "enrollment", Reason: "requires user and course"}
	}

	created, stored, err := s.repo.CreateEnrollmentIfNotExists(&models.EnrollmentRecord{
		UserID:   userID,
		CourseID: courseID,
	})
	if err != nil {
		return nil, &StorageError{Op: "grant enrollment", Err: err}
	}
	if created && s.hooks != nil {
		s.hooks.EnrollmentGranted(ctx, stored)
	}
	return stored, nil
}

// GetPayment loads a payment by its external id.
func (s *Service) GetPayment(ctx context.Context, paymentID string) (*models.PaymentRecord, error) {
	_ = ctx
	return s.repo.GetPaymentByPaymentID(paymentID)
}

// RecordWebhookEvent persists webhook payloads idempotently. Events without a
// provider event id are deduplicated on a payload hash.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.PaymentWebhookEvent, error) {
	_ = ctx
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.PaymentWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}
