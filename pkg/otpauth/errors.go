package otpauth

import "errors"

// Common errors returned by URI parsing and serialization.
var (
	// ErrBadScheme indicates a URI whose scheme is neither otpauth nor
	// otpauth-migration.
	ErrBadScheme = errors.New("otpauth: unrecognized scheme")
	// ErrBadType indicates an otpauth host other than totp or hotp.
	ErrBadType = errors.New("otpauth: unrecognized otp type")
	// ErrMissingSecret indicates the resolved secret is empty.
	ErrMissingSecret = errors.New("otpauth: missing secret")
	// ErrMissingCounter indicates an hotp URI without a counter parameter.
	ErrMissingCounter = errors.New("otpauth: missing counter")
	// ErrInvalidParameter indicates a query parameter that cannot be parsed.
	ErrInvalidParameter = errors.New("otpauth: invalid parameter")
	// ErrInvalidURI indicates text that cannot be percent-decoded.
	ErrInvalidURI = errors.New("otpauth: invalid uri")
	// ErrUnspecifiedEnum indicates a migration entry whose algorithm, digits
	// or type code is unspecified or unknown.
	ErrUnspecifiedEnum = errors.New("otpauth: unspecified enum value")
	// ErrMalformedPayload indicates migration data that is not valid base64
	// or not a valid payload encoding.
	ErrMalformedPayload = errors.New("otpauth: malformed migration payload")
	// ErrEmptyPayload indicates a migration payload without entries.
	ErrEmptyPayload = errors.New("otpauth: migration payload has no entries")
)
