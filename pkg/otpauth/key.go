package otpauth

import (
	"fmt"

	potp "github.com/pquerna/otp"

	"github.com/jeremyhahn/otp-keys/pkg/otp"
)

// Key converts a record into a github.com/pquerna/otp key, which can render
// QR code images and be handed to validators built on that library.
func Key(r otp.Record) (*potp.Key, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	key, err := potp.NewKeyFromURL(Serialize(r))
	if err != nil {
		return nil, fmt.Errorf("otpauth: failed to build key: %w", err)
	}
	return key, nil
}

// FromKey converts a github.com/pquerna/otp key into a record.
func FromKey(key *potp.Key) (otp.Record, error) {
	if key == nil {
		return otp.Record{}, fmt.Errorf("%w: nil key", ErrInvalidURI)
	}
	return Parse(key.URL())
}
