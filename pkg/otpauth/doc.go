// Package otpauth parses and serializes OTP credential URIs.
//
// Two schemes are understood:
//
//	otpauth://{totp|hotp}/{label}?secret=BASE32&issuer=ISSUER&algorithm=SHA1&digits=6&period=30
//	otpauth-migration://offline?data=BASE64(payload)
//
// The whole URI is percent-decoded before it is split into scheme, host,
// path and query, and components are not decoded again. Field values that
// contain '?', '&', '=' or '#' therefore cannot round-trip.
//
// Migration URIs carry the Google Authenticator export payload, a protobuf
// message holding a repeated list of OTP parameter entries. It is read with
// a small reader over protowire rather than generated code. Parse returns
// the first entry; ParseMigration returns all of them. Entries whose
// algorithm, digit or type code is 0 ("unspecified") fail with
// ErrUnspecifiedEnum unless WithDefaults is given.
//
// Serialize is the left inverse of Parse for otpauth URIs:
//
//	rec, err := otpauth.Parse("otpauth://totp/alice?secret=JBSWY3DPEHPK3PXP")
//	// rec.Issuer == "otp-keys", rec.Digits == 6, rec.Period == 30
//	uri := otpauth.Serialize(rec)
//	again, _ := otpauth.Parse(uri) // again == rec
package otpauth
