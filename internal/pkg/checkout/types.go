package checkout

import "strings"

// CheckoutIntent is the ephemeral claim a client makes after the payment UI
// reported success: "this external reference paid this amount for this
// course". It precedes a PaymentRecord and is never persisted; one intent
// yields at most one PaymentRecord.
type CheckoutIntent struct {
	UserID            uint
	CourseID          uint
	Amount            int64 // minor units
	Currency          string
	Method            string
	ExternalReference string
}

// VerifiedPayment is the processor's authoritative answer for an external
// reference.
type VerifiedPayment struct {
	Verified bool
	Amount   int64 // minor units
	Currency string
	Status   string // models.PaymentStatusCompleted or models.PaymentStatusPending
}

// RecordPaymentInput is the normalized input for the idempotent ledger write.
type RecordPaymentInput struct {
	PaymentID string
	UserID    uint
	CourseID  uint
	Amount    int64
	Currency  string
	Method    string
	Status    string
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

// knownCurrencies lists the ISO 4217 codes the marketplace sells in.
var knownCurrencies = map[string]struct{}{
	"USD": {}, "EUR": {}, "GBP": {}, "CHF": {},
	"CAD": {}, "AUD": {}, "SEK": {}, "BRL": {},
}

// KnownCurrency reports whether code is a currency the ledger accepts.
func KnownCurrency(code string) bool {
	_, ok := knownCurrencies[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
