package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContactMessageValidate(t *testing.T) {
	valid := ContactMessage{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Subject: "Question about a course",
		Message: "Is the Go course suitable for beginners?",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(m *ContactMessage)
	}{
		{name: "missing email", mutate: func(m *ContactMessage) { m.Email = "" }},
		{name: "bad email", mutate: func(m *ContactMessage) { m.Email = "nope" }},
		{name: "short subject", mutate: func(m *ContactMessage) { m.Subject = "hi" }},
		{name: "short message", mutate: func(m *ContactMessage) { m.Message = "short" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid
			tt.mutate(&m)
			require.Error(t, m.Validate())
		})
	}
}
