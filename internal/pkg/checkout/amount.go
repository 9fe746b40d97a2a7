package checkout

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmountMinor converts a decimal amount string as reported by payment
// processors ("129.99", "129.9", "129") into minor units (12999). Checkout
// never does floating point arithmetic on money.
func ParseAmountMinor(value string) (int64, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	whole := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole = s[:i]
		frac = s[i+1:]
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("amount %q has more than two decimal places", value)
	}
	for len(frac) < 2 {
		frac += "0"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	f, err := strconv.ParseUint(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", value, err)
	}

	// The sign must come from the string: for "-0.50" the whole part parses
	// to 0 and the sign would be lost.
	if w < 0 {
		w = -w
	}
	minor := w*100 + int64(f)
	if strings.HasPrefix(s, "-") {
		minor = -minor
	}
	return minor, nil
}

// FormatAmountMinor renders minor units as a decimal string ("12999" ->
// "129.99") for receipts and provider-facing payloads.
func FormatAmountMinor(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}
