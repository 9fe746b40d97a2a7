package checkout

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/CourseHubApp/CourseHub/app/models"
)

// memRepository is an in-memory Repository used by the checkout tests. It
// enforces the same unique keys the real schema does.
type memRepository struct {
	mu          sync.Mutex
	payments    map[string]*models.PaymentRecord
	enrollments map[string]*models.EnrollmentRecord
	webhooks    map[string]*models.PaymentWebhookEvent
	nextID      uint
}

func newMemRepository() *memRepository {
	return &memRepository{
		payments:    make(map[string]*models.PaymentRecord),
		enrollments: make(map[string]*models.EnrollmentRecord),
		webhooks:    make(map[string]*models.PaymentWebhookEvent),
	}
}

func (m *memRepository) assignID() uint {
	m.nextID++
	return m.nextID
}

func (m *memRepository) CreatePaymentIfNotExists(p *models.PaymentRecord) (bool, *models.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.payments[p.PaymentID]; ok {
		cp := *existing
		return false, &cp, nil
	}
	stored := *p
	stored.ID = m.assignID()
	m.payments[p.PaymentID] = &stored
	cp := stored
	return true, &cp, nil
}

func (m *memRepository) GetPaymentByPaymentID(paymentID string) (*models.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.payments[paymentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memRepository) TransitionPaymentStatus(paymentID, from, to string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.payments[paymentID]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	return true, nil
}

func enrollmentKey(userID, courseID uint) string {
	return fmt.Sprintf("%d:%d", userID, courseID)
}

func (m *memRepository) CreateEnrollmentIfNotExists(e *models.EnrollmentRecord) (bool, *models.EnrollmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := enrollmentKey(e.UserID, e.CourseID)
	if existing, ok := m.enrollments[key]; ok {
		cp := *existing
		return false, &cp, nil
	}
	stored := *e
	stored.ID = m.assignID()
	m.enrollments[key] = &stored
	cp := stored
	return true, &cp, nil
}

func (m *memRepository) GetEnrollment(userID, courseID uint) (*models.EnrollmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.enrollments[enrollmentKey(userID, courseID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := event.Provider + ":" + event.ProviderEventID
	if existing, ok := m.webhooks[key]; ok {
		cp := *existing
		return false, &cp, nil
	}
	stored := *event
	stored.ID = m.assignID()
	m.webhooks[key] = &stored
	cp := stored
	return true, &cp, nil
}

func (m *memRepository) MarkWebhookProcessed(id uint, processingError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.webhooks {
		if e.ID == id {
			now := time.Now()
			e.ProcessedAt = &now
			e.ProcessingError = processingError
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memRepository) paymentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.payments)
}

func (m *memRepository) enrollmentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.enrollments)
}

// recordingHooks counts hook invocations per key.
type recordingHooks struct {
	mu          sync.Mutex
	completed   []string
	enrollments []string
}

func (h *recordingHooks) PaymentCompleted(_ context.Context, p *models.PaymentRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.completed = append(h.completed, p.PaymentID)
}

func (h *recordingHooks) EnrollmentGranted(_ context.Context, e *models.EnrollmentRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enrollments = append(h.enrollments, enrollmentKey(e.UserID, e.CourseID))
}

func validPaymentInput() RecordPaymentInput {
	return RecordPaymentInput{
		PaymentID: "pay_abc",
		UserID:    1,
		CourseID:  2,
		Amount:    4999,
		Currency:  "USD",
		Method:    models.PaymentMethodCard,
	}
}

func TestService_RecordPayment_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RecordPaymentInput)
		field  string
	}{
		{"Missing payment id", func(in *RecordPaymentInput) { in.PaymentID = "  " }, "payment_id"},
		{"Missing user", func(in *RecordPaymentInput) { in.UserID = 0 }, "user_id"},
		{"Missing course", func(in *RecordPaymentInput) { in.CourseID = 0 }, "course_id"},
		{"Zero amount", func(in *RecordPaymentInput) { in.Amount = 0 }, "amount"},
		{"Negative amount", func(in *RecordPaymentInput) { in.Amount = -100 }, "amount"},
		{"Unknown currency", func(in *RecordPaymentInput) { in.Currency = "XXX" }, "currency"},
		{"Unknown method", func(in *RecordPaymentInput) { in.Method = "barter" }, "method"},
		{"Failed status rejected", func(in *RecordPaymentInput) { in.Status = models.PaymentStatusFailed }, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepository()
			svc := NewService(repo, nil)

			in := validPaymentInput()
			tt.mutate(&in)

			_, err := svc.RecordPayment(context.Background(), in)
			require.Error(t, err)

			var invalid *InvalidPaymentError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.field, invalid.Field)
			assert.Equal(t, 0, repo.paymentCount(), "invalid input must not write")
		})
	}
}

func TestService_RecordPayment_Idempotent(t *testing.T) {
	repo := newMemRepository()
	hooks := &recordingHooks{}
	svc := NewService(repo, hooks)
	ctx := context.Background()

	first, err := svc.RecordPayment(ctx, validPaymentInput())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, first.Status)
	assert.Equal(t, "USD", first.Currency)

	// Same external payment id again, even with a different claimed amount
	in := validPaymentInput()
	in.Amount = 1
	second, err := svc.RecordPayment(ctx, in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Amount, second.Amount, "existing row is returned unchanged")
	assert.Equal(t, 1, repo.paymentCount())
	assert.Equal(t, []string{"pay_abc"}, hooks.completed, "completion hook fires exactly once")
}

func TestService_RecordPayment_PendingDoesNotFireHook(t *testing.T) {
	repo := newMemRepository()
	hooks := &recordingHooks{}
	svc := NewService(repo, hooks)

	in := validPaymentInput()
	in.Status = models.PaymentStatusPending
	payment, err := svc.RecordPayment(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Empty(t, hooks.completed)
}

func TestService_CompletePayment(t *testing.T) {
	repo := newMemRepository()
	hooks := &recordingHooks{}
	svc := NewService(repo, hooks)
	ctx := context.Background()

	in := validPaymentInput()
	in.Status = models.PaymentStatusPending
	_, err := svc.RecordPayment(ctx, in)
	require.NoError(t, err)

	payment, err := svc.CompletePayment(ctx, "pay_abc")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	assert.Equal(t, []string{"pay_abc"}, hooks.completed)

	// Completing again is a no-op and does not re-fire the hook
	payment, err = svc.CompletePayment(ctx, "pay_abc")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	assert.Equal(t, []string{"pay_abc"}, hooks.completed)
}

func TestService_CompletePayment_Unknown(t *testing.T) {
	svc := NewService(newMemRepository(), nil)

	_, err := svc.CompletePayment(context.Background(), "pay_missing")
	var invalid *InvalidPaymentError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "payment_id", invalid.Field)
}

func TestService_FailPayment_DoesNotRewriteCompleted(t *testing.T) {
	repo := newMemRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.RecordPayment(ctx, validPaymentInput())
	require.NoError(t, err)

	payment, err := svc.FailPayment(ctx, "pay_abc")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status, "terminal status stays")
}

func TestService_CompletePayment_PreviouslyFailed(t *testing.T) {
	repo := newMemRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	in := validPaymentInput()
	in.Status = models.PaymentStatusPending
	_, err := svc.RecordPayment(ctx, in)
	require.NoError(t, err)

	_, err = svc.FailPayment(ctx, "pay_abc")
	require.NoError(t, err)

	payment, err := svc.CompletePayment(ctx, "pay_abc")
	var verification *VerificationError
	require.ErrorAs(t, err, &verification)
	assert.Equal(t, models.PaymentStatusFailed, payment.Status)
}

func TestService_GrantEnrollment_Idempotent(t *testing.T) {
	repo := newMemRepository()
	hooks := &recordingHooks{}
	svc := NewService(repo, hooks)
	ctx := context.Background()

	first, err := svc.GrantEnrollment(ctx, 1, 2)
	require.NoError(t, err)

	second, err := svc.GrantEnrollment(ctx, 1, 2)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, repo.enrollmentCount())
	assert.Equal(t, []string{"1:2"}, hooks.enrollments, "grant hook fires exactly once")

	// A different course is a separate enrollment
	_, err = svc.GrantEnrollment(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.enrollmentCount())
}

func TestService_GrantEnrollment_Validation(t *testing.T) {
	svc := NewService(newMemRepository(), nil)

	_, err := svc.GrantEnrollment(context.Background(), 0, 2)
	assert.Error(t, err)

	_, err = svc.GrantEnrollment(context.Background(), 1, 0)
	assert.Error(t, err)
}

func TestService_RecordWebhookEvent_Dedup(t *testing.T) {
	repo := newMemRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	in := WebhookEventInput{
		Provider:        models.PaymentProviderStripe,
		ProviderEventID: "evt_123",
		EventType:       "checkout.session.completed",
		PayloadJSON:     `{"id":"evt_123"}`,
		SignatureValid:  true,
	}

	created, first, err := svc.RecordWebhookEvent(ctx, in)
	require.NoError(t, err)
	assert.True(t, created)

	created, second, err := svc.RecordWebhookEvent(ctx, in)
	require.NoError(t, err)
	assert.False(t, created, "replayed event is observed, not re-created")
	assert.Equal(t, first.ID, second.ID)
}

func TestService_RecordWebhookEvent_HashFallback(t *testing.T) {
	svc := NewService(newMemRepository(), nil)
	ctx := context.Background()

	in := WebhookEventInput{
		Provider:    models.PaymentProviderPayPal,
		PayloadJSON: `{"order_id":"ord_1"}`,
	}

	created, event, err := svc.RecordWebhookEvent(ctx, in)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Contains(t, event.ProviderEventID, "hash:")

	// Identical payload maps to the same synthetic id
	created, _, err = svc.RecordWebhookEvent(ctx, in)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestService_MarkWebhookProcessed(t *testing.T) {
	repo := newMemRepository()
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, event, err := svc.RecordWebhookEvent(ctx, WebhookEventInput{
		Provider:        models.PaymentProviderStripe,
		ProviderEventID: "evt_9",
		PayloadJSON:     "{}",
	})
	require.NoError(t, err)

	require.NoError(t, svc.MarkWebhookProcessed(ctx, event.ID, nil))
	assert.Error(t, svc.MarkWebhookProcessed(ctx, 0, nil))

	_, stored, err := svc.RecordWebhookEvent(ctx, WebhookEventInput{
		Provider:        models.PaymentProviderStripe,
		ProviderEventID: "evt_9",
		PayloadJSON:     "{}",
	})
	require.NoError(t, err)
	assert.NotNil(t, stored.ProcessedAt)
	assert.Equal(t, "", stored.ProcessingError)
}
