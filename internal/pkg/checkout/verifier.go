package checkout

import "context"

// Verifier confirms a claimed payment against the payment processor's
// authoritative state. Implementations are read-only: verification never
// mutates processor or local state.
//
// A transport failure returns a *VerificationError with Retryable set; a
// definitive "unknown reference" or "declined" answer returns a terminal
// *VerificationError. A VerifiedPayment with Verified=false is also terminal.
type Verifier interface {
	Verify(ctx context.Context, externalRef string) (*VerifiedPayment, error)
}
