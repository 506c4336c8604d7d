package otp

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	potp "github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"

	"github.com/jeremyhahn/otp-keys/pkg/base32"
)

// RFC 4226 / RFC 6238 test secrets.
var (
	secretSHA1   = base32.EncodeRaw([]byte("12345678901234567890"))
	secretSHA256 = base32.EncodeRaw([]byte("12345678901234567890123456789012"))
	secretSHA512 = base32.EncodeRaw([]byte(
		"1234567890123456789012345678901234567890123456789012345678901234"))
)

// TestHOTPRFC4226 tests the RFC 4226 Appendix D vectors
func TestHOTPRFC4226(t *testing.T) {
	if secretSHA1 != "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ" {
		t.Fatalf("unexpected encoded secret %q", secretSHA1)
	}

	want := []string{
		"755224", "287082", "359152", "969429", "338314",
		"254676", "287922", "162583", "399871", "520489",
	}

	for counter, code := range want {
		t.Run(fmt.Sprintf("counter %d", counter), func(t *testing.T) {
			got, err := HOTP(secretSHA1, uint64(counter), 6, AlgorithmSHA1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != code {
				t.Errorf("HOTP(counter=%d) = %s, want %s", counter, got, code)
			}
		})
	}
}

// TestTOTPRFC6238 tests the RFC 6238 Appendix B vectors
func TestTOTPRFC6238(t *testing.T) {
	tests := []struct {
		unix   int64
		alg    Algorithm
		secret string
		want   string
	}{
		{59, AlgorithmSHA1, secretSHA1, "94287082"},
		{59, AlgorithmSHA256, secretSHA256, "46119246"},
		{59, AlgorithmSHA512, secretSHA512, "90693936"},
		{1111111109, AlgorithmSHA1, secretSHA1, "07081804"},
		{1111111109, AlgorithmSHA256, secretSHA256, "68084774"},
		{1111111109, AlgorithmSHA512, secretSHA512, "25091201"},
		{1111111111, AlgorithmSHA1, secretSHA1, "14050471"},
		{1111111111, AlgorithmSHA256, secretSHA256, "67062674"},
		{1111111111, AlgorithmSHA512, secretSHA512, "99943326"},
		{1234567890, AlgorithmSHA1, secretSHA1, "89005924"},
		{1234567890, AlgorithmSHA256, secretSHA256, "91819424"},
		{1234567890, AlgorithmSHA512, secretSHA512, "93441116"},
		{2000000000, AlgorithmSHA1, secretSHA1, "69279037"},
		{2000000000, AlgorithmSHA256, secretSHA256, "90698825"},
		{2000000000, AlgorithmSHA512, secretSHA512, "38618901"},
		{20000000000, AlgorithmSHA1, secretSHA1, "65353130"},
		{20000000000, AlgorithmSHA256, secretSHA256, "77737706"},
		{20000000000, AlgorithmSHA512, secretSHA512, "47863826"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s at %d", tt.alg, tt.unix), func(t *testing.T) {
			got, err := TOTP(tt.secret, time.Unix(tt.unix, 0), 30, 8, tt.alg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("TOTP = %s, want %s", got, tt.want)
			}

			got, err = ComputeCode(tt.secret, 8, 30, tt.alg, tt.unix)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ComputeCode = %s, want %s", got, tt.want)
			}
		})
	}
}

// TestHOTPMatchesPquerna tests generation against an independent implementation
func TestHOTPMatchesPquerna(t *testing.T) {
	algs := map[Algorithm]potp.Algorithm{
		AlgorithmSHA1:   potp.AlgorithmSHA1,
		AlgorithmSHA256: potp.AlgorithmSHA256,
		AlgorithmSHA512: potp.AlgorithmSHA512,
	}
	secrets := []string{"JBSWY3DPEHPK3PXP", secretSHA1, secretSHA512}

	for alg, palg := range algs {
		for _, digits := range []uint{6, 8} {
			for _, secret := range secrets {
				for counter := uint64(0); counter < 50; counter += 7 {
					want, err := hotp.GenerateCodeCustom(secret, counter, hotp.ValidateOpts{
						Digits:    potp.Digits(digits),
						Algorithm: palg,
					})
					if err != nil {
						t.Fatalf("pquerna failed: %v", err)
					}
					got, err := HOTP(secret, counter, digits, alg)
					if err != nil {
						t.Fatalf("unexpected error: %v", err)
					}
					if got != want {
						t.Errorf("HOTP(%s, %d, %d, %s) = %s, want %s", secret, counter, digits, alg, got, want)
					}
				}
			}
		}
	}
}

// TestCodeShape tests that codes are always zero-padded decimal strings
func TestCodeShape(t *testing.T) {
	for digits := uint(1); digits <= maxDigits; digits++ {
		for counter := uint64(0); counter < 200; counter++ {
			code, err := HOTP("JBSWY3DPEHPK3PXP", counter, digits, AlgorithmSHA1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(code) != int(digits) {
				t.Fatalf("expected %d digits, got %q", digits, code)
			}
			if strings.Trim(code, "0123456789") != "" {
				t.Fatalf("code %q contains non-decimal characters", code)
			}
		}
	}
}

// TestGenerateDeterministic tests that the same inputs always yield the same code
func TestGenerateDeterministic(t *testing.T) {
	rec := Record{
		Type:      TypeTOTP,
		Username:  "alice",
		Secret:    "JBSWY3DPEHPK3PXP",
		Digits:    6,
		Period:    30,
		Algorithm: AlgorithmSHA256,
	}
	at := time.Date(2031, time.March, 4, 5, 6, 7, 0, time.UTC)

	first, err := Generate(rec, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := Generate(rec, at)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != first {
			t.Fatalf("code changed between calls: %s != %s", got, first)
		}
	}

	// Any instant inside the same step gives the same code.
	stepStart := time.Unix(at.Unix()-at.Unix()%30, 0)
	got, err := Generate(rec, stepStart)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != first {
		t.Errorf("code at step start = %s, want %s", got, first)
	}
}

// TestGenerateHOTPRecord tests that HOTP records use their counter
func TestGenerateHOTPRecord(t *testing.T) {
	rec := Record{
		Type:      TypeHOTP,
		Username:  "alice",
		Secret:    secretSHA1,
		Digits:    6,
		Algorithm: AlgorithmSHA1,
		Counter:   1,
	}

	got, err := Generate(rec, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "287082" {
		t.Errorf("expected 287082, got %s", got)
	}
}

// TestGenerateErrors tests parameter validation
func TestGenerateErrors(t *testing.T) {
	at := time.Unix(59, 0)

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{
			name: "bad secret",
			run: func() error {
				_, err := TOTP("189", at, 30, 6, AlgorithmSHA1)
				return err
			},
			wantErr: base32.ErrInvalidFormat,
		},
		{
			name: "empty secret",
			run: func() error {
				_, err := HOTP("", 0, 6, AlgorithmSHA1)
				return err
			},
			wantErr: base32.ErrInvalidFormat,
		},
		{
			name: "bad padding",
			run: func() error {
				_, err := HOTP("M=======", 0, 6, AlgorithmSHA1)
				return err
			},
			wantErr: base32.ErrInvalidPadding,
		},
		{
			name: "unknown algorithm",
			run: func() error {
				_, err := HOTP(secretSHA1, 0, 6, "sha3")
				return err
			},
			wantErr: ErrUnsupportedAlgorithm,
		},
		{
			name: "md5",
			run: func() error {
				_, err := HOTP(secretSHA1, 0, 6, AlgorithmMD5)
				return err
			},
			wantErr: ErrUnsupportedAlgorithm,
		},
		{
			name: "zero digits",
			run: func() error {
				_, err := HOTP(secretSHA1, 0, 0, AlgorithmSHA1)
				return err
			},
			wantErr: ErrInvalidDigits,
		},
		{
			name: "too many digits",
			run: func() error {
				_, err := HOTP(secretSHA1, 0, 11, AlgorithmSHA1)
				return err
			},
			wantErr: ErrInvalidDigits,
		},
		{
			name: "zero period",
			run: func() error {
				_, err := TOTP(secretSHA1, at, 0, 6, AlgorithmSHA1)
				return err
			},
			wantErr: ErrInvalidPeriod,
		},
		{
			name: "before epoch",
			run: func() error {
				_, err := TOTP(secretSHA1, time.Unix(-1, 0), 30, 6, AlgorithmSHA1)
				return err
			},
			wantErr: ErrInvalidTime,
		},
		{
			name: "unknown type",
			run: func() error {
				_, err := Generate(Record{Type: "motp", Secret: secretSHA1, Digits: 6}, at)
				return err
			},
			wantErr: ErrInvalidRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestFormatForDisplay tests digit grouping
func TestFormatForDisplay(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123456", "123 456"},
		{"1234567", "1 234 567"},
		{"12345678", "12 345 678"},
		{"12345", "12345"},
		{"1234567890", "1234567890"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := FormatForDisplay(tt.in); got != tt.want {
			t.Errorf("FormatForDisplay(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestSecondsRemaining tests the time left in a step
func TestSecondsRemaining(t *testing.T) {
	tests := []struct {
		unix   int64
		period uint
		want   uint
	}{
		{0, 30, 30},
		{1, 30, 29},
		{29, 30, 1},
		{30, 30, 30},
		{59, 60, 1},
		{10, 0, 0},
	}

	for _, tt := range tests {
		if got := SecondsRemaining(time.Unix(tt.unix, 0), tt.period); got != tt.want {
			t.Errorf("SecondsRemaining(%d, %d) = %d, want %d", tt.unix, tt.period, got, tt.want)
		}
	}
}

// TestGenerateSecret tests secret generation
func TestGenerateSecret(t *testing.T) {
	secret, err := GenerateSecret()
	if err != nil {
		t.Fatalf("failed to generate secret: %v", err)
	}

	if len(secret) != 32 {
		t.Errorf("expected 32 character secret, got %d", len(secret))
	}

	key, err := base32.Decode(secret)
	if err != nil {
		t.Fatalf("generated secret is not valid base32: %v", err)
	}
	if len(key) != secretSize {
		t.Errorf("expected %d byte key, got %d", secretSize, len(key))
	}

	other, err := GenerateSecret()
	if err != nil {
		t.Fatalf("failed to generate secret: %v", err)
	}
	if other == secret {
		t.Error("expected distinct secrets")
	}
}
