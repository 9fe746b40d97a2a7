package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/CourseHubApp/CourseHub/app/models"
	"github.com/CourseHubApp/CourseHub/internal/pkg/checkout"
)

const webhookTestSecret = "whsec_test_secret"

// stripeMemRepo backs the webhook handler tests in memory, enforcing the
// same unique keys the real schema does. failPaymentCreates injects that
// many transient failures into the ledger write.
type stripeMemRepo struct {
	mu                 sync.Mutex
	payments           map[string]*models.PaymentRecord
	enrollments        map[string]*models.EnrollmentRecord
	webhooks           map[string]*models.PaymentWebhookEvent
	nextID             uint
	failPaymentCreates int
}

func newStripeMemRepo() *stripeMemRepo {
	return &stripeMemRepo{
		payments:    make(map[string]*models.PaymentRecord),
		enrollments: make(map[string]*models.EnrollmentRecord),
		webhooks:    make(map[string]*models.PaymentWebhookEvent),
	}
}

func (m *stripeMemRepo) assignID() uint {
	m.nextID++
	return m.nextID
}

func (m *stripeMemRepo) CreatePaymentIfNotExists(p *models.PaymentRecord) (bool, *models.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failPaymentCreates > 0 {
		m.failPaymentCreates--
		return false, nil, fmt.Errorf("connection reset")
	}
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

func (m *stripeMemRepo) GetPaymentByPaymentID(paymentID string) (*models.PaymentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.payments[paymentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *stripeMemRepo) TransitionPaymentStatus(paymentID, from, to string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.payments[paymentID]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	return true, nil
}

func (m *stripeMemRepo) CreateEnrollmentIfNotExists(e *models.EnrollmentRecord) (bool, *models.EnrollmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := fmt.Sprintf("%d:%d", e.UserID, e.CourseID)
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

func (m *stripeMemRepo) GetEnrollment(userID, courseID uint) (*models.EnrollmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.enrollments[fmt.Sprintf("%d:%d", userID, courseID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *stripeMemRepo) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
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

func (m *stripeMemRepo) MarkWebhookProcessed(id uint, processingError string) error {
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

func (m *stripeMemRepo) paymentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.payments)
}

func (m *stripeMemRepo) enrollmentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.enrollments)
}

// newStripeWebhookApp mounts the handler over the in-memory repository. The
// orchestrator needs no verifiers: the webhook path enters at
// CompleteVerified/ResolvePending.
func newStripeWebhookApp(repo *stripeMemRepo) *fiber.App {
	svc := checkout.NewService(repo, nil)
	orch := checkout.NewOrchestrator(svc)

	app := fiber.New()
	app.Post("/webhooks/stripe", func(c *fiber.Ctx) error {
		return stripeWebhook(c, svc, orch, webhookTestSecret)
	})
	return app
}

// signStripePayload produces the Stripe-Signature header value for a payload:
// an HMAC-SHA256 over "<timestamp>.<payload>" with the endpoint secret.
func signStripePayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func completedSessionEvent(eventID, sessionID string) string {
	return fmt.Sprintf(`{
		"id": %q,
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": %q,
				"amount_total": 4999,
				"currency": "usd",
				"payment_status": "paid",
				"metadata": {"user_id": "7", "course_id": "42"}
			}
		}
	}`, eventID, sessionID)
}

func postStripeWebhook(t *testing.T, app *fiber.App, payload, sigHeader string) (int, string) {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodPost, "/webhooks/stripe", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if sigHeader != "" {
		req.Header.Set("Stripe-Signature", sigHeader)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestStripeWebhook_CompletedEventGrantsOnce(t *testing.T) {
	repo := newStripeMemRepo()
	app := newStripeWebhookApp(repo)

	payload := completedSessionEvent("evt_1", "cs_live_1")
	status, _ := postStripeWebhook(t, app, payload, signStripePayload([]byte(payload), webhookTestSecret))
	require.Equal(t, fiber.StatusOK, status)

	payment, err := repo.GetPaymentByPaymentID("cs_live_1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	assert.Equal(t, uint(7), payment.UserID)
	assert.Equal(t, uint(42), payment.CourseID)
	assert.Equal(t, 1, repo.enrollmentCount())

	// Replay of a settled event is acknowledged without reprocessing.
	status, body := postStripeWebhook(t, app, payload, signStripePayload([]byte(payload), webhookTestSecret))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"duplicate":true`)
	assert.Equal(t, 1, repo.paymentCount())
	assert.Equal(t, 1, repo.enrollmentCount())
}

func TestStripeWebhook_InvalidSignatureStaysRetryable(t *testing.T) {
	repo := newStripeMemRepo()
	app := newStripeWebhookApp(repo)

	payload := completedSessionEvent("evt_2", "cs_live_2")

	status, _ := postStripeWebhook(t, app, payload, "t=1,v1=deadbeef")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, 0, repo.paymentCount())
	assert.Equal(t, 0, repo.enrollmentCount())

	// A redelivery of the same body must not be acknowledged as a duplicate:
	// the stored row carries signature_valid=false and stays retryable.
	status, body := postStripeWebhook(t, app, payload, "t=1,v1=deadbeef")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.NotContains(t, body, "duplicate")
	assert.Equal(t, 0, repo.paymentCount())

	// Once Stripe redelivers with a good signature the event processes
	// normally.
	status, _ = postStripeWebhook(t, app, payload, signStripePayload([]byte(payload), webhookTestSecret))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, repo.paymentCount())
	assert.Equal(t, 1, repo.enrollmentCount())
}

func TestStripeWebhook_TransientFailureReprocessedOnRetry(t *testing.T) {
	repo := newStripeMemRepo()
	repo.failPaymentCreates = 1
	app := newStripeWebhookApp(repo)

	payload := completedSessionEvent("evt_3", "cs_live_3")

	// First delivery hits the injected storage failure; the 500 tells Stripe
	// to retry.
	status, _ := postStripeWebhook(t, app, payload, signStripePayload([]byte(payload), webhookTestSecret))
	require.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, 0, repo.paymentCount())

	// The retry carries the same event id. It must be reprocessed, not
	// swallowed by the dedup row of the failed attempt.
	status, body := postStripeWebhook(t, app, payload, signStripePayload([]byte(payload), webhookTestSecret))
	assert.Equal(t, fiber.StatusOK, status)
	assert.NotContains(t, body, "duplicate")
	assert.Equal(t, 1, repo.paymentCount())
	assert.Equal(t, 1, repo.enrollmentCount())
}

func TestStripeWebhook_IrrelevantEventAcknowledged(t *testing.T) {
	repo := newStripeMemRepo()
	app := newStripeWebhookApp(repo)

	payload := `{"id": "evt_4", "type": "payment_intent.succeeded", "data": {"object": {}}}`

	status, body := postStripeWebhook(t, app, payload, signStripePayload([]byte(payload), webhookTestSecret))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"ignored":true`)
	assert.Equal(t, 0, repo.paymentCount())

	// The ignored event settled, so a replay is a plain duplicate.
	status, body = postStripeWebhook(t, app, payload, signStripePayload([]byte(payload), webhookTestSecret))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `"duplicate":true`)
}

func TestWebhookEventSettled(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		event *models.PaymentWebhookEvent
		want  bool
	}{
		{name: "nil event", event: nil, want: false},
		{name: "processed cleanly", event: &models.PaymentWebhookEvent{SignatureValid: true, ProcessedAt: &now}, want: true},
		{name: "never processed", event: &models.PaymentWebhookEvent{SignatureValid: true}, want: false},
		{name: "processing failed", event: &models.PaymentWebhookEvent{SignatureValid: true, ProcessedAt: &now, ProcessingError: "connection reset"}, want: false},
		{name: "invalid signature", event: &models.PaymentWebhookEvent{SignatureValid: false, ProcessedAt: &now}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, webhookEventSettled(tt.event))
		})
	}
}
