package base32

import (
	"bytes"
	"errors"
	"testing"
)

// TestDecode tests decoding of RFC 4648 vectors and common OTP secrets
func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"one byte", "MY======", "f"},
		{"two bytes", "MZXQ====", "fo"},
		{"three bytes", "MZXW6===", "foo"},
		{"four bytes", "MZXW6YQ=", "foob"},
		{"five bytes", "MZXW6YTB", "fooba"},
		{"six bytes", "MZXW6YTBOI======", "foobar"},
		{"unpadded", "MZXW6YTBOI", "foobar"},
		{"unpadded one byte", "MY", "f"},
		{"lower case", "mzxw6ytboi", "foobar"},
		{"mixed case", "MzXw6YtBoI", "foobar"},
		{"rfc 4226 secret", "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ", "12345678901234567890"},
		{"hello secret", "JBSWY3DPEHPK3PXP", "Hello!\xde\xad\xbe\xef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !bytes.Equal(got, []byte(tt.want)) {
				t.Errorf("Decode(%q) = %x, want %x", tt.in, got, tt.want)
			}
		})
	}
}

// TestDecodeErrors tests rejection of malformed input
func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"empty", "", ErrInvalidFormat},
		{"digits outside alphabet", "189", ErrInvalidFormat},
		{"embedded digit one", "JBSWY3DPEH1K3PXP", ErrInvalidFormat},
		{"space", "JBSW Y3DP", ErrInvalidFormat},
		{"padding in the middle", "MY=A", ErrInvalidFormat},
		{"only padding", "========", ErrInvalidFormat},
		{"single character", "M", ErrInvalidPadding},
		{"three characters", "MZX", ErrInvalidPadding},
		{"six characters", "MZXW6Y", ErrInvalidPadding},
		{"seven pad characters", "M=======", ErrInvalidPadding},
		{"extra padding group", "MZXW6YTB========", ErrInvalidPadding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.in)
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestEncodeRaw tests encoding of RFC 4648 vectors
func TestEncodeRaw(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"f", "MY======"},
		{"fo", "MZXQ===="},
		{"foo", "MZXW6==="},
		{"foob", "MZXW6YQ="},
		{"fooba", "MZXW6YTB"},
		{"foobar", "MZXW6YTBOI======"},
		{"12345678901234567890", "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"},
	}

	for _, tt := range tests {
		if got := EncodeRaw([]byte(tt.in)); got != tt.want {
			t.Errorf("EncodeRaw(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestRoundTrip tests that encoding and decoding are inverses
func TestRoundTrip(t *testing.T) {
	for n := 1; n <= 64; n++ {
		b := make([]byte, n)
		for i := range b {
			b[i] = byte(i*37 + n*11)
		}

		text := EncodeRaw(b)
		got, err := Decode(text)
		if err != nil {
			t.Fatalf("Decode(EncodeRaw(%x)) failed: %v", b, err)
		}
		if !bytes.Equal(got, b) {
			t.Errorf("round trip of %d bytes: got %x, want %x", n, got, b)
		}
		if again := EncodeRaw(got); again != text {
			t.Errorf("canonical form changed: %q != %q", again, text)
		}
	}
}

// TestValid tests the validity helper
func TestValid(t *testing.T) {
	if !Valid("JBSWY3DPEHPK3PXP") {
		t.Error("expected valid secret")
	}
	if Valid("not-base32!") {
		t.Error("expected invalid secret")
	}
}
