package otp

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"
)

// DefaultSkew is the number of TOTP periods accepted on either side of the
// current one.
const DefaultSkew = 1

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithSkew sets the number of TOTP periods checked before and after the
// verification time. A skew of 0 accepts only the current period.
func WithSkew(skew uint) Option {
	return func(a *Authenticator) {
		a.skew = skew
	}
}

// Authenticator verifies OTP codes for a single record.
// It is safe for concurrent use.
type Authenticator struct {
	record Record
	skew   uint
}

// NewAuthenticator creates a new OTP authenticator for a record.
// Defaults are applied to unset optional fields and the result is
// validated.
func NewAuthenticator(r Record, opts ...Option) (*Authenticator, error) {
	r = r.WithDefaults()
	if err := r.Validate(); err != nil {
		return nil, err
	}

	a := &Authenticator{
		record: r,
		skew:   DefaultSkew,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Record returns the normalized record the authenticator verifies against.
func (a *Authenticator) Record() Record {
	if a == nil {
		return Record{}
	}
	return a.record
}

// Authenticate validates an OTP code.
// For TOTP, it validates against at with skew tolerance.
// For HOTP, it validates against the record counter and ignores at.
func (a *Authenticator) Authenticate(ctx context.Context, code string, at time.Time) error {
	if a == nil {
		return ErrNilAuthenticator
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("%w: code must not be empty", ErrInvalidCode)
	}
	if len(code) != int(a.record.Digits) {
		return fmt.Errorf("%w: expected %d digits", ErrInvalidCode, a.record.Digits)
	}

	if a.record.Type == TypeHOTP {
		return a.check(code, a.record.Counter)
	}

	step, err := timeStep(at.Unix(), a.record.Period)
	if err != nil {
		return err
	}

	for i := uint64(0); i <= uint64(a.skew); i++ {
		if err := a.check(code, step+i); err == nil {
			return nil
		}
		if i > 0 && step >= i {
			if err := a.check(code, step-i); err == nil {
				return nil
			}
		}
	}
	return ErrInvalidCode
}

// ValidateCounter validates an HOTP code and returns the new counter value.
// This method is only valid for HOTP authenticators.
// The returned counter should be stored and used for the next validation.
func (a *Authenticator) ValidateCounter(ctx context.Context, code string, counter uint64) (uint64, error) {
	if a == nil {
		return 0, ErrNilAuthenticator
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if a.record.Type != TypeHOTP {
		return 0, fmt.Errorf("%w: ValidateCounter is only valid for HOTP", ErrWrongType)
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return 0, fmt.Errorf("%w: code must not be empty", ErrInvalidCode)
	}

	if err := a.check(code, counter); err != nil {
		return 0, err
	}

	return counter + 1, nil
}

// Generate generates the code for the record.
// For TOTP, at selects the time step. For HOTP, the record counter is used.
func (a *Authenticator) Generate(at time.Time) (string, error) {
	if a == nil {
		return "", ErrNilAuthenticator
	}
	return Generate(a.record, at)
}

func (a *Authenticator) check(code string, counter uint64) error {
	want, err := HOTP(a.record.Secret, counter, a.record.Digits, a.record.Algorithm)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(want)) != 1 {
		return ErrInvalidCode
	}
	return nil
}
