package checkout

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CourseHubApp/CourseHub/app/models"
)

// stubVerifier returns a canned processor answer.
type stubVerifier struct {
	result *VerifiedPayment
	err    error
	calls  int
	mu     sync.Mutex
}

func (v *stubVerifier) Verify(_ context.Context, _ string) (*VerifiedPayment, error) {
	v.mu.Lock()
	v.calls++
	v.mu.Unlock()
	if v.err != nil {
		return nil, v.err
	}
	return v.result, nil
}

func confirmedCard(amount int64, currency string) *stubVerifier {
	return &stubVerifier{result: &VerifiedPayment{
		Verified: true,
		Amount:   amount,
		Currency: currency,
		Status:   models.PaymentStatusCompleted,
	}}
}

func cardIntent() CheckoutIntent {
	return CheckoutIntent{
		UserID:            1,
		CourseID:          2,
		Amount:            5000,
		Currency:          "USD",
		Method:            models.PaymentMethodCard,
		ExternalReference: "pay_abc",
	}
}

func newTestOrchestrator(repo Repository, hooks GrantHooks, v Verifier) *Orchestrator {
	o := NewOrchestrator(NewService(repo, hooks))
	o.RegisterVerifier(models.PaymentMethodCard, v)
	return o
}

func TestOrchestrator_Run_HappyPath(t *testing.T) {
	repo := newMemRepository()
	hooks := &recordingHooks{}
	o := newTestOrchestrator(repo, hooks, confirmedCard(5000, "USD"))

	outcome, err := o.Run(context.Background(), cardIntent())
	require.NoError(t, err)

	assert.Equal(t, StateSucceeded, outcome.State)
	require.NotNil(t, outcome.Payment)
	require.NotNil(t, outcome.Enrollment)
	assert.Equal(t, "pay_abc", outcome.Payment.PaymentID)
	assert.Equal(t, models.PaymentStatusCompleted, outcome.Payment.Status)
	assert.Equal(t, uint(1), outcome.Enrollment.UserID)
	assert.Equal(t, uint(2), outcome.Enrollment.CourseID)

	assert.Equal(t, 1, repo.paymentCount())
	assert.Equal(t, 1, repo.enrollmentCount())
	assert.Equal(t, []string{"pay_abc"}, hooks.completed)
	assert.Equal(t, []string{"1:2"}, hooks.enrollments)
}

func TestOrchestrator_Run_InvalidIntent(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CheckoutIntent)
	}{
		{"Missing user", func(in *CheckoutIntent) { in.UserID = 0 }},
		{"Missing course", func(in *CheckoutIntent) { in.CourseID = 0 }},
		{"Missing reference", func(in *CheckoutIntent) { in.ExternalReference = "" }},
		{"Unregistered method", func(in *CheckoutIntent) { in.Method = models.PaymentMethodWallet }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepository()
			o := newTestOrchestrator(repo, nil, confirmedCard(5000, "USD"))

			intent := cardIntent()
			tt.mutate(&intent)

			outcome, err := o.Run(context.Background(), intent)
			require.Error(t, err)

			var invalid *InvalidPaymentError
			assert.ErrorAs(t, err, &invalid)
			assert.Equal(t, StateFailed, outcome.State)
			assert.Equal(t, 0, repo.paymentCount())
			assert.Equal(t, 0, repo.enrollmentCount())
		})
	}
}

func TestOrchestrator_Run_AmountMismatch(t *testing.T) {
	repo := newMemRepository()
	hooks := &recordingHooks{}

	// The client claims 5000 but the processor charged 4900
	o := newTestOrchestrator(repo, hooks, confirmedCard(4900, "USD"))

	outcome, err := o.Run(context.Background(), cardIntent())
	require.Error(t, err)

	var mismatch *AmountMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, int64(5000), mismatch.ClaimedAmount)
	assert.Equal(t, int64(4900), mismatch.VerifiedAmount)

	assert.Equal(t, StateFailed, outcome.State)
	assert.Equal(t, 0, repo.paymentCount(), "mismatch never reaches the ledger")
	assert.Equal(t, 0, repo.enrollmentCount())
	assert.Empty(t, hooks.completed)
}

func TestOrchestrator_Run_CurrencyMismatch(t *testing.T) {
	repo := newMemRepository()
	o := newTestOrchestrator(repo, nil, confirmedCard(5000, "EUR"))

	outcome, err := o.Run(context.Background(), cardIntent())
	require.Error(t, err)

	var mismatch *AmountMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "EUR", mismatch.VerifiedCurrency)
	assert.Equal(t, StateFailed, outcome.State)
	assert.Equal(t, 0, repo.paymentCount())
}

func TestOrchestrator_Run_VerifierError(t *testing.T) {
	repo := newMemRepository()
	v := &stubVerifier{err: &VerificationError{
		Reference: "pay_abc",
		Reason:    "processor timeout",
		Retryable: true,
	}}
	o := newTestOrchestrator(repo, nil, v)

	outcome, err := o.Run(context.Background(), cardIntent())
	require.Error(t, err)

	var verification *VerificationError
	require.ErrorAs(t, err, &verification)
	assert.True(t, verification.Retryable)

	assert.Equal(t, StateFailed, outcome.State)
	assert.Equal(t, 0, repo.paymentCount(), "no write when verification is inconclusive")
	assert.Equal(t, 0, repo.enrollmentCount())
}

func TestOrchestrator_Run_NotVerified(t *testing.T) {
	repo := newMemRepository()
	v := &stubVerifier{result: &VerifiedPayment{Verified: false}}
	o := newTestOrchestrator(repo, nil, v)

	outcome, err := o.Run(context.Background(), cardIntent())
	require.Error(t, err)

	var verification *VerificationError
	require.ErrorAs(t, err, &verification)
	assert.Equal(t, StateFailed, outcome.State)
	assert.Equal(t, 0, repo.paymentCount())
}

// Both delivery paths for the same payment converge on one payment row and
// one enrollment row, with each side effect firing once.
func TestOrchestrator_BrowserAndWebhookConverge(t *testing.T) {
	repo := newMemRepository()
	hooks := &recordingHooks{}
	o := newTestOrchestrator(repo, hooks, confirmedCard(5000, "USD"))
	ctx := context.Background()

	// Browser confirmation path
	first, err := o.Run(ctx, cardIntent())
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, first.State)

	// Webhook path arrives second with the same external reference
	second, err := o.CompleteVerified(ctx, cardIntent(), models.PaymentStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, second.State)

	assert.Equal(t, first.Payment.ID, second.Payment.ID)
	assert.Equal(t, first.Enrollment.ID, second.Enrollment.ID)
	assert.Equal(t, 1, repo.paymentCount())
	assert.Equal(t, 1, repo.enrollmentCount())
	assert.Equal(t, []string{"pay_abc"}, hooks.completed)
	assert.Equal(t, []string{"1:2"}, hooks.enrollments)
}

func TestOrchestrator_ConcurrentRuns(t *testing.T) {
	repo := newMemRepository()
	hooks := &recordingHooks{}
	o := newTestOrchestrator(repo, hooks, confirmedCard(5000, "USD"))

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = o.Run(context.Background(), cardIntent())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, repo.paymentCount())
	assert.Equal(t, 1, repo.enrollmentCount())
	assert.Len(t, hooks.completed, 1)
	assert.Len(t, hooks.enrollments, 1)
}

func TestOrchestrator_PendingLifecycle(t *testing.T) {
	repo := newMemRepository()
	hooks := &recordingHooks{}
	o := newTestOrchestrator(repo, hooks, nil)
	ctx := context.Background()

	// Processor accepted the session but the charge has not settled yet
	outcome, err := o.CompleteVerified(ctx, cardIntent(), models.PaymentStatusPending)
	require.NoError(t, err)

	assert.Equal(t, StateLedgerRecorded, outcome.State)
	require.NotNil(t, outcome.Payment)
	assert.Equal(t, models.PaymentStatusPending, outcome.Payment.Status)
	assert.Nil(t, outcome.Enrollment, "no entitlement before settlement")
	assert.Equal(t, 0, repo.enrollmentCount())
	assert.Empty(t, hooks.completed)

	// The processor's follow-up event reports the capture succeeded
	outcome, err = o.ResolvePending(ctx, "pay_abc", true)
	require.NoError(t, err)

	assert.Equal(t, StateSucceeded, outcome.State)
	assert.Equal(t, models.PaymentStatusCompleted, outcome.Payment.Status)
	require.NotNil(t, outcome.Enrollment)
	assert.Equal(t, 1, repo.enrollmentCount())
	assert.Equal(t, []string{"pay_abc"}, hooks.completed)

	// A replay of the follow-up converges without duplicating anything
	outcome, err = o.ResolvePending(ctx, "pay_abc", true)
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, outcome.State)
	assert.Equal(t, 1, repo.enrollmentCount())
	assert.Equal(t, []string{"pay_abc"}, hooks.completed)
}

func TestOrchestrator_PendingCaptureFails(t *testing.T) {
	repo := newMemRepository()
	hooks := &recordingHooks{}
	o := newTestOrchestrator(repo, hooks, nil)
	ctx := context.Background()

	_, err := o.CompleteVerified(ctx, cardIntent(), models.PaymentStatusPending)
	require.NoError(t, err)

	outcome, err := o.ResolvePending(ctx, "pay_abc", false)
	require.NoError(t, err)

	assert.Equal(t, StateFailed, outcome.State)
	assert.Equal(t, models.PaymentStatusFailed, outcome.Payment.Status)
	assert.Equal(t, 0, repo.enrollmentCount())
	assert.Empty(t, hooks.completed)

	// A late "captured" report cannot resurrect a failed payment
	outcome, err = o.ResolvePending(ctx, "pay_abc", true)
	require.Error(t, err)

	var verification *VerificationError
	assert.ErrorAs(t, err, &verification)
	assert.Equal(t, StateFailed, outcome.State)
	assert.Equal(t, 0, repo.enrollmentCount())
}
