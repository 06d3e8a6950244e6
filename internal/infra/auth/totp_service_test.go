package auth

import (
	"encoding/base32"
	"strings"
	"testing"
	"time"

	"jobdeck/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rfc6238Secret is the ASCII seed "12345678901234567890" from the RFC's
// appendix, base32-encoded without padding.
const rfc6238Secret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func newTotp(skew int) *totpService {
	cfg := &config.Config{
		MFA: &config.MFAConfig{
			Issuer: "jobdeck",
			Digits: 6,
			Period: 30,
			Skew:   skew,
		},
	}

	return NewTotpService(cfg).(*totpService)
}

func TestTotpService_RFC6238Vectors(t *testing.T) {
	svc := newTotp(0)

	cases := []struct {
		at   int64
		code string
	}{
		{59, "287082"},
		{1111111109, "081804"},
		{1111111111, "050471"},
		{1234567890, "005924"},
		{2000000000, "279037"},
	}

	for _, tc := range cases {
		assert.True(t, svc.Verify(rfc6238Secret, tc.code, time.Unix(tc.at, 0)),
			"code %s at t=%d", tc.code, tc.at)
	}

	assert.False(t, svc.Verify(rfc6238Secret, "287082", time.Unix(1111111109, 0)))
}

func TestTotpService_SkewWindow(t *testing.T) {
	svc := newTotp(1)

	// The t=59 code stays valid one period later with skew 1, but not two.
	assert.True(t, svc.Verify(rfc6238Secret, "287082", time.Unix(59+30, 0)))
	assert.False(t, svc.Verify(rfc6238Secret, "287082", time.Unix(59+60, 0)))
}

func TestTotpService_RejectsMalformedCodes(t *testing.T) {
	svc := newTotp(1)
	now := time.Unix(59, 0)

	assert.False(t, svc.Verify(rfc6238Secret, "", now))
	assert.False(t, svc.Verify(rfc6238Secret, "28708", now))
	assert.False(t, svc.Verify(rfc6238Secret, "2870821", now))
	assert.False(t, svc.Verify(rfc6238Secret, "28708a", now))
	assert.False(t, svc.Verify("not-base32!!", "287082", now))
	assert.False(t, svc.Verify("", "287082", now))
}

func TestTotpService_VerifyTrimsWhitespace(t *testing.T) {
	svc := newTotp(0)

	assert.True(t, svc.Verify(rfc6238Secret, " 287082 ", time.Unix(59, 0)))
}

func TestTotpService_GenerateSecret(t *testing.T) {
	svc := newTotp(1)

	first, err := svc.GenerateSecret()
	require.NoError(t, err)
	second, err := svc.GenerateSecret()
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)

	// A freshly minted seed round-trips through Verify.
	code := hotpCodeForTest(t, first, time.Unix(59, 0))
	assert.True(t, svc.Verify(first, code, time.Unix(59, 0)))
}

func TestTotpService_ProvisionURI(t *testing.T) {
	svc := newTotp(1)

	uri := svc.ProvisionURI(rfc6238Secret, "dispatch@acme.test")
	assert.Contains(t, uri, "otpauth://totp/")
	assert.Contains(t, uri, "jobdeck")
	assert.Contains(t, uri, "secret="+rfc6238Secret)
	assert.Contains(t, uri, "digits=6")
	assert.Contains(t, uri, "period=30")
}

func hotpCodeForTest(t *testing.T, secret string, now time.Time) string {
	t.Helper()

	svc := newTotp(0)
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	key, err := enc.DecodeString(strings.ToUpper(secret))
	require.NoError(t, err)

	return hotpCode(key, now.Unix()/int64(svc.period), svc.digits)
}
