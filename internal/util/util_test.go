package util

import "testing"

func TestMaskEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		email    string
		expected string
	}{
		{name: "typical address", email: "jordan@example.com", expected: "j***@example.com"},
		{name: "single char local part", email: "j@example.com", expected: "j***@example.com"},
		{name: "no at sign passes through", email: "not-an-email", expected: "not-an-email"},
		{name: "empty local part passes through", email: "@example.com", expected: "@example.com"},
		{name: "empty string", email: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := MaskEmail(tt.email); got != tt.expected {
				t.Fatalf("MaskEmail(%q) = %q, want %q", tt.email, got, tt.expected)
			}
		})
	}
}

func TestMaskPhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		phone    string
		expected string
	}{
		{name: "e164 number", phone: "+15551234567", expected: "********4567"},
		{name: "short number passes through", phone: "4567", expected: "4567"},
		{name: "empty string", phone: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := MaskPhone(tt.phone); got != tt.expected {
				t.Fatalf("MaskPhone(%q) = %q, want %q", tt.phone, got, tt.expected)
			}
		})
	}
}
