// Package util holds small presentation helpers shared across services.
package util

import "strings"

// MaskEmail keeps the first character of the local part and the full domain:
// j***@example.com. Strings without an @ pass through unchanged.
func MaskEmail(email string) string {
	local, domain, found := strings.Cut(email, "@")
	if !found || local == "" {
		return email
	}

	return local[:1] + "***@" + domain
}

// MaskPhone keeps the last four digits. Numbers of four digits or fewer pass
// through unchanged rather than masking to nothing.
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}

	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
