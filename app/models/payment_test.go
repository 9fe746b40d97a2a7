package models

import "testing"

func TestKnownPaymentMethod(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: PaymentMethodCard, want: true},
		{in: PaymentMethodWallet, want: true},
		{in: "bank_transfer", want: false},
		{in: "", want: false},
	}

	for _, tt := range tests {
		if got := KnownPaymentMethod(tt.in); got != tt.want {
			t.Fatalf("KnownPaymentMethod(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPaymentRecordIsCompleted(t *testing.T) {
	p := &PaymentRecord{Status: PaymentStatusPending}
	if p.IsCompleted() {
		t.Fatalf("pending payment must not count as completed")
	}
	p.Status = PaymentStatusCompleted
	if !p.IsCompleted() {
		t.Fatalf("completed payment must count as completed")
	}
	p.Status = PaymentStatusFailed
	if p.IsCompleted() {
		t.Fatalf("failed payment must not count as completed")
	}
}
