package checkout

import "fmt"

// VerificationError means the payment processor did not confirm the claimed
// payment. Retryable is true only for transport failures (timeout, network);
// a definitive "not found" or "declined" answer is terminal.
type VerificationError struct {
	Reference string
	Reason    string
	Retryable bool
	Err       error
}

func (e *VerificationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment verification failed for %s: %s: %v", e.Reference, e.Reason, e.Err)
	}
	return fmt.Sprintf("payment verification failed for %s: %s", e.Reference, e.Reason)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// AmountMismatchError means the amount or currency the client claimed differs
// from what the processor verified. Treated as suspected tampering; nothing
// is written to the ledger.
type AmountMismatchError struct {
	Reference        string
	ClaimedAmount    int64
	VerifiedAmount   int64
	ClaimedCurrency  string
	VerifiedCurrency string
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("amount mismatch for %s: claimed %d %s, verified %d %s",
		e.Reference, e.ClaimedAmount, e.ClaimedCurrency, e.VerifiedAmount, e.VerifiedCurrency)
}

// InvalidPaymentError means the payment input was malformed before the
// processor was even contacted. Only restarting checkout can fix it.
type InvalidPaymentError struct {
	Field  string
	Reason string
}

func (e *InvalidPaymentError) Error() string {
	return fmt.Sprintf("invalid payment: %s %s", e.Field, e.Reason)
}

// StorageError wraps an unexpected persistence failure. Always retryable by
// the caller because every checkout write is idempotent.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// SignatureError means a webhook payload failed its authenticity check.
// Terminal for the request; the processor retries delivery on its own
// schedule.
type SignatureError struct {
	Provider string
	Err      error
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("invalid %s webhook signature: %v", e.Provider, e.Err)
}

func (e *SignatureError) Unwrap() error {
	return e.Err
}
