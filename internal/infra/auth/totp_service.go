package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jobdeck/config"
	"jobdeck/internal/domain/service"
	"jobdeck/internal/errors"
)

const totpSecretBytes = 20

// totpService implements RFC 6238 with SHA-1, the algorithm every common
// authenticator app supports.
type totpService struct {
	issuer string
	digits int
	period int
	skew   int
}

// NewTotpService is the constructor for totpService.
func NewTotpService(cfg *config.Config) service.TotpService {
	return &totpService{
		issuer: cfg.MFA.Issuer,
		digits: cfg.MFA.Digits,
		period: cfg.MFA.Period,
		skew:   cfg.MFA.Skew,
	}
}

// GenerateSecret mints a new base32-encoded TOTP seed.
func (s *totpService) GenerateSecret() (string, error) {
	raw := make([]byte, totpSecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "generate totp secret")
	}

	enc := base32.StdEncoding.WithPadding(base32.NoPadding)

	return enc.EncodeToString(raw), nil
}

// ProvisionURI builds the otpauth:// URI an authenticator app enrolls from.
func (s *totpService) ProvisionURI(secret, account string) string {
	label := url.PathEscape(s.issuer + ":" + account)

	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", s.issuer)
	v.Set("period", strconv.Itoa(s.period))
	v.Set("digits", strconv.Itoa(s.digits))
	v.Set("algorithm", "SHA1")

	return "otpauth://totp/" + label + "?" + v.Encode()
}

// Verify checks a submitted code against the seed at the given instant,
// within the configured skew window.
func (s *totpService) Verify(secret, code string, now time.Time) bool {
	trimmed := strings.TrimSpace(code)
	if len(trimmed) != s.digits || !isNumeric(trimmed) {
		return false
	}

	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	key, err := enc.DecodeString(strings.ToUpper(secret))
	if err != nil || len(key) == 0 {
		return false
	}

	baseCounter := now.Unix() / int64(s.period)
	for step := -s.skew; step <= s.skew; step++ {
		counter := baseCounter + int64(step)
		if counter < 0 {
			continue
		}
		generated := hotpCode(key, counter, s.digits)
		if subtle.ConstantTimeCompare([]byte(generated), []byte(trimmed)) == 1 {
			return true
		}
	}

	return false
}

func hotpCode(secret []byte, counter int64, digits int) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, secret)
	_, _ = mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	bin := (int(sum[offset])&0x7f)<<24 |
		(int(sum[offset+1])&0xff)<<16 |
		(int(sum[offset+2])&0xff)<<8 |
		(int(sum[offset+3]) & 0xff)

	mod := 1
	for i := 0; i < digits; i++ {
		mod *= 10
	}

	return fmt.Sprintf("%0*d", digits, bin%mod)
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
