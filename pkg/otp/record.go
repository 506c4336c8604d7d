package otp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jeremyhahn/otp-keys/pkg/base32"
)

// Type represents the OTP algorithm type.
type Type string

const (
	// TypeTOTP represents Time-based OTP (RFC 6238).
	TypeTOTP Type = "totp"
	// TypeHOTP represents Counter-based OTP (RFC 4226).
	TypeHOTP Type = "hotp"
)

// Algorithm represents the HMAC hash used for OTP generation.
// Values are lower-case, matching the normalized form of the
// otpauth "algorithm" parameter.
type Algorithm string

const (
	// AlgorithmSHA1 uses HMAC-SHA1. This is the default.
	AlgorithmSHA1 Algorithm = "sha1"
	// AlgorithmSHA256 uses HMAC-SHA256.
	AlgorithmSHA256 Algorithm = "sha256"
	// AlgorithmSHA512 uses HMAC-SHA512.
	AlgorithmSHA512 Algorithm = "sha512"
	// AlgorithmMD5 can appear in migration payloads. Code generation
	// rejects it.
	AlgorithmMD5 Algorithm = "md5"
)

// Defaults applied when a source omits a parameter.
const (
	DefaultIssuer    = "otp-keys"
	DefaultDigits    = 6
	DefaultPeriod    = 30
	DefaultAlgorithm = AlgorithmSHA1
	DefaultType      = TypeTOTP
)

// Common errors returned by code generation and record validation.
var (
	// ErrInvalidCode indicates the provided OTP code is invalid.
	ErrInvalidCode = errors.New("otp: invalid code")
	// ErrInvalidRecord indicates a record violates one of its invariants.
	ErrInvalidRecord = errors.New("otp: invalid record")
	// ErrUnsupportedAlgorithm indicates an algorithm with no HMAC mapping.
	ErrUnsupportedAlgorithm = errors.New("otp: unsupported algorithm")
	// ErrInvalidDigits indicates a code width that cannot be produced.
	ErrInvalidDigits = errors.New("otp: invalid digits")
	// ErrInvalidPeriod indicates a zero TOTP period.
	ErrInvalidPeriod = errors.New("otp: invalid period")
	// ErrInvalidTime indicates a timestamp before the Unix epoch.
	ErrInvalidTime = errors.New("otp: invalid time")
	// ErrWrongType indicates an operation that does not apply to the record type.
	ErrWrongType = errors.New("otp: wrong otp type")
	// ErrNilAuthenticator indicates a nil authenticator was used.
	ErrNilAuthenticator = errors.New("otp: authenticator is nil")
)

// maxDigits is the widest code a 31-bit truncated value can fill.
const maxDigits = 10

// Record is the normalized OTP credential produced by URI parsing and
// consumed by code generation and serialization. It is a plain value.
type Record struct {
	// Username is the account label (required).
	Username string `json:"username"`
	// Issuer names the service the account belongs to.
	Issuer string `json:"issuer"`
	// Secret is the Base32-encoded shared key (required).
	Secret string `json:"secret"`
	// Digits is the code width, usually 6, 7 or 8.
	Digits uint `json:"digits"`
	// Algorithm is the HMAC hash.
	Algorithm Algorithm `json:"algorithm"`
	// Type selects TOTP or HOTP.
	Type Type `json:"type"`
	// Period is the TOTP time step in seconds. Unused for HOTP.
	Period uint `json:"period,omitempty"`
	// Counter is the HOTP moving factor. Unused for TOTP.
	Counter uint64 `json:"counter,omitempty"`
}

// ParseAlgorithm normalizes an algorithm name. The empty string maps to
// the default algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch alg := Algorithm(strings.ToLower(strings.TrimSpace(name))); alg {
	case "":
		return DefaultAlgorithm, nil
	case AlgorithmSHA1, AlgorithmSHA256, AlgorithmSHA512, AlgorithmMD5:
		return alg, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
	}
}

// ParseType normalizes an OTP type name. The empty string maps to TOTP.
func ParseType(name string) (Type, error) {
	switch typ := Type(strings.ToLower(name)); typ {
	case "":
		return DefaultType, nil
	case TypeTOTP, TypeHOTP:
		return typ, nil
	default:
		return "", fmt.Errorf("%w: unknown type %q", ErrInvalidRecord, name)
	}
}

// Validate checks that the record can be used for code generation.
func (r Record) Validate() error {
	if r.Type != TypeTOTP && r.Type != TypeHOTP {
		return fmt.Errorf("%w: type must be 'totp' or 'hotp'", ErrInvalidRecord)
	}

	if strings.TrimSpace(r.Username) == "" {
		return fmt.Errorf("%w: username must not be empty", ErrInvalidRecord)
	}

	if r.Secret == "" {
		return fmt.Errorf("%w: secret must not be empty", ErrInvalidRecord)
	}
	if _, err := base32.Decode(r.Secret); err != nil {
		return fmt.Errorf("%w: secret must be valid base32: %w", ErrInvalidRecord, err)
	}

	if err := checkDigits(r.Digits); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	if _, err := hashFor(r.Algorithm); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}

	if r.Type == TypeTOTP && r.Period == 0 {
		return fmt.Errorf("%w: %w: period must be positive", ErrInvalidRecord, ErrInvalidPeriod)
	}

	return nil
}

// WithDefaults returns a copy of r with zero-valued optional fields set to
// their defaults.
func (r Record) WithDefaults() Record {
	if r.Issuer == "" {
		r.Issuer = DefaultIssuer
	}
	if r.Digits == 0 {
		r.Digits = DefaultDigits
	}
	if r.Algorithm == "" {
		r.Algorithm = DefaultAlgorithm
	}
	if r.Type == "" {
		r.Type = DefaultType
	}
	if r.Type == TypeTOTP && r.Period == 0 {
		r.Period = DefaultPeriod
	}
	return r
}

func checkDigits(digits uint) error {
	if digits == 0 || digits > maxDigits {
		return fmt.Errorf("%w: digits must be between 1 and %d, got %d", ErrInvalidDigits, maxDigits, digits)
	}
	return nil
}
