package otp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // RFC 4226 mandates HMAC-SHA1
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"hash"
	"strconv"
	"strings"
	"time"

	"github.com/jeremyhahn/otp-keys/pkg/base32"
)

// secretSize is the length in bytes of generated secrets (160 bits, RFC 4226).
const secretSize = 20

// pow10 holds the code modulus for each supported width.
var pow10 = [maxDigits + 1]uint64{
	1, 10, 100, 1_000, 10_000, 100_000,
	1_000_000, 10_000_000, 100_000_000, 1_000_000_000, 10_000_000_000,
}

// HOTP computes the RFC 4226 code for the given counter.
func HOTP(secret string, counter uint64, digits uint, alg Algorithm) (string, error) {
	if err := checkDigits(digits); err != nil {
		return "", err
	}

	newHash, err := hashFor(alg)
	if err != nil {
		return "", err
	}

	key, err := base32.Decode(secret)
	if err != nil {
		return "", fmt.Errorf("otp: failed to decode secret: %w", err)
	}

	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(newHash, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation
	offset := sum[len(sum)-1] & 0x0f
	value := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	code := strconv.FormatUint(uint64(value)%pow10[digits], 10)
	if pad := int(digits) - len(code); pad > 0 {
		code = strings.Repeat("0", pad) + code
	}
	return code, nil
}

// TOTP computes the RFC 6238 code for the time step containing at.
func TOTP(secret string, at time.Time, period, digits uint, alg Algorithm) (string, error) {
	counter, err := timeStep(at.Unix(), period)
	if err != nil {
		return "", err
	}
	return HOTP(secret, counter, digits, alg)
}

// ComputeCode computes the TOTP code for a Unix timestamp in seconds.
func ComputeCode(secret string, digits, period uint, alg Algorithm, now int64) (string, error) {
	return TOTP(secret, time.Unix(now, 0), period, digits, alg)
}

// Generate computes the current code for a record. TOTP records use at,
// HOTP records use their counter and ignore at.
func Generate(r Record, at time.Time) (string, error) {
	switch r.Type {
	case TypeTOTP:
		return TOTP(r.Secret, at, r.Period, r.Digits, r.Algorithm)
	case TypeHOTP:
		return HOTP(r.Secret, r.Counter, r.Digits, r.Algorithm)
	default:
		return "", fmt.Errorf("%w: type must be 'totp' or 'hotp'", ErrInvalidRecord)
	}
}

// SecondsRemaining returns how many seconds are left in the TOTP time step
// containing at. It returns 0 for a zero period.
func SecondsRemaining(at time.Time, period uint) uint {
	if period == 0 {
		return 0
	}
	p := int64(period)
	elapsed := at.Unix() % p
	if elapsed < 0 {
		elapsed += p
	}
	return uint(p - elapsed)
}

// FormatForDisplay groups a code into blocks for reading: 6 digits as 3+3,
// 7 as 1+3+3 and 8 as 2+3+3. Other widths are returned unchanged.
func FormatForDisplay(code string) string {
	switch len(code) {
	case 6:
		return code[:3] + " " + code[3:]
	case 7:
		return code[:1] + " " + code[1:4] + " " + code[4:]
	case 8:
		return code[:2] + " " + code[2:5] + " " + code[5:]
	default:
		return code
	}
}

// GenerateSecret generates a cryptographically random secret key.
// The secret is returned as unpadded Base32 text suitable for
// Record.Secret.
func GenerateSecret() (string, error) {
	secret := make([]byte, secretSize)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("otp: failed to generate random secret: %w", err)
	}
	return strings.TrimRight(base32.EncodeRaw(secret), "="), nil
}

func timeStep(unix int64, period uint) (uint64, error) {
	if period == 0 {
		return 0, fmt.Errorf("%w: period must be positive", ErrInvalidPeriod)
	}
	if unix < 0 {
		return 0, fmt.Errorf("%w: %d is before the Unix epoch", ErrInvalidTime, unix)
	}
	return uint64(unix) / uint64(period), nil
}

func hashFor(alg Algorithm) (func() hash.Hash, error) {
	switch alg {
	case AlgorithmSHA1, "":
		return sha1.New, nil
	case AlgorithmSHA256:
		return sha256.New, nil
	case AlgorithmSHA512:
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}
}
