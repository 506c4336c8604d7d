// Package otp provides TOTP (RFC 6238) and HOTP (RFC 4226) code generation
// and verification.
//
// TOTP (Time-based One-Time Password) generates codes that change every
// period (30 seconds by default), commonly used with authenticator apps.
//
// HOTP (HMAC-based One-Time Password) generates codes based on a counter
// value, used in hardware tokens and some mobile apps.
//
// All generation functions take the time or counter explicitly, so a code
// can be re-derived for any past or future instant and tests never depend
// on the system clock.
//
// # Generating Codes
//
//	code, err := otp.TOTP("JBSWY3DPEHPK3PXP", time.Now(), 30, 6, otp.AlgorithmSHA1)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(otp.FormatForDisplay(code)) // "123 456"
//
// A Record, as produced by the otpauth package, carries every parameter:
//
//	rec := otp.Record{
//	    Type:      otp.TypeHOTP,
//	    Username:  "alice",
//	    Issuer:    "Example",
//	    Secret:    "JBSWY3DPEHPK3PXP",
//	    Digits:    6,
//	    Algorithm: otp.AlgorithmSHA1,
//	    Counter:   42,
//	}
//	code, err := otp.Generate(rec, time.Now())
//
// # Verifying Codes
//
//	auth, err := otp.NewAuthenticator(rec, otp.WithSkew(1))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = auth.Authenticate(ctx, "123456", time.Now())
//
// For HOTP, ValidateCounter returns the counter to store for the next
// validation.
//
// # Hash Algorithms
//
//   - AlgorithmSHA1 (default, widely supported)
//   - AlgorithmSHA256
//   - AlgorithmSHA512
//
// Unknown algorithm names fail with ErrUnsupportedAlgorithm rather than
// falling back to SHA1. AlgorithmMD5 exists because migration payloads can
// name it, but codes cannot be generated with it.
//
// # Thread Safety
//
// Every function in this package is pure. The Authenticator type holds an
// immutable record and is safe for concurrent use.
package otp
