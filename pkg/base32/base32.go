// Package base32 decodes and encodes the RFC 4648 Base32 text used for OTP
// shared secrets.
//
// Decode accepts lower-case text and missing "=" padding, as found in
// secrets copied out of provisioning URIs. It rejects inputs whose final
// group no encoder produces.
package base32

import (
	stdbase32 "encoding/base32"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// Alphabet is the RFC 4648 Base32 alphabet. A character's value is its index.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

	// groupSize is the number of characters decoded into one 5-byte block.
	groupSize = 8
	// blockSize is the number of bytes carried by a full group.
	blockSize = 5
	padChar   = '='
)

var (
	// ErrInvalidFormat indicates the input is empty or contains characters
	// outside the alphabet and trailing padding.
	ErrInvalidFormat = errors.New("base32: invalid format")
	// ErrInvalidPadding indicates the final group carries a padding length
	// no encoder produces.
	ErrInvalidPadding = errors.New("base32: invalid padding")
)

var validText = regexp.MustCompile(`^[A-Za-z2-7]+=*$`)

// keepBytes maps the padding count of the final group to the number of
// bytes it carries.
var keepBytes = map[int]int{
	0: 5,
	1: 4,
	3: 3,
	4: 2,
	6: 1,
}

// Decode converts Base32 text into raw bytes. The input is case-insensitive
// and may omit its trailing padding.
func Decode(text string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: input is empty", ErrInvalidFormat)
	}
	if !validText.MatchString(text) {
		return nil, fmt.Errorf("%w: input contains invalid characters", ErrInvalidFormat)
	}

	data := strings.ToUpper(text)
	if r := len(data) % groupSize; r != 0 {
		data += strings.Repeat(string(padChar), groupSize-r)
	}

	last := data[len(data)-groupSize:]
	strip := len(last) - len(strings.TrimRight(last, string(padChar)))
	keep, ok := keepBytes[strip]
	if !ok {
		return nil, fmt.Errorf("%w: %d padding characters in final group", ErrInvalidPadding, strip)
	}

	out := make([]byte, 0, len(data)/groupSize*blockSize)
	for i := 0; i < len(data); i += groupSize {
		// 8 characters of 5 bits each fill exactly 40 bits.
		var buf uint64
		for j := i; j < i+groupSize; j++ {
			buf = buf<<5 | uint64(charValue(data[j]))
		}
		out = append(out,
			byte(buf>>32), byte(buf>>24), byte(buf>>16), byte(buf>>8), byte(buf))
	}

	return out[:len(out)-(blockSize-keep)], nil
}

// EncodeRaw converts raw bytes into padded Base32 text. An empty input
// yields an empty string.
func EncodeRaw(b []byte) string {
	return stdbase32.StdEncoding.EncodeToString(b)
}

// Valid reports whether text decodes without error.
func Valid(text string) bool {
	_, err := Decode(text)
	return err == nil
}

// charValue returns the 5-bit value of an upper-case alphabet character.
// Padding counts as zero so it keeps its position without adding bits.
func charValue(c byte) byte {
	switch {
	case c >= 'A' && c <= 'Z':
		return c - 'A'
	case c >= '2' && c <= '7':
		return c - '2' + 26
	default:
		return 0
	}
}
