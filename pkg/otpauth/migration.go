package otpauth

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/jeremyhahn/otp-keys/pkg/base32"
	"github.com/jeremyhahn/otp-keys/pkg/otp"
)

// MigrationAlgorithm is the algorithm code of a migration entry.
type MigrationAlgorithm int32

const (
	MigrationAlgorithmUnspecified MigrationAlgorithm = iota
	MigrationAlgorithmSHA1
	MigrationAlgorithmSHA256
	MigrationAlgorithmSHA512
	MigrationAlgorithmMD5
)

// MigrationDigits is the digit-count code of a migration entry.
type MigrationDigits int32

const (
	MigrationDigitsUnspecified MigrationDigits = iota
	MigrationDigitsSix
	MigrationDigitsEight
)

// MigrationType is the otp-type code of a migration entry.
type MigrationType int32

const (
	MigrationTypeUnspecified MigrationType = iota
	MigrationTypeHOTP
	MigrationTypeTOTP
)

var (
	migrationAlgorithms = map[MigrationAlgorithm]otp.Algorithm{
		MigrationAlgorithmSHA1:   otp.AlgorithmSHA1,
		MigrationAlgorithmSHA256: otp.AlgorithmSHA256,
		MigrationAlgorithmSHA512: otp.AlgorithmSHA512,
		MigrationAlgorithmMD5:    otp.AlgorithmMD5,
	}
	migrationDigits = map[MigrationDigits]uint{
		MigrationDigitsSix:   6,
		MigrationDigitsEight: 8,
	}
	migrationTypes = map[MigrationType]otp.Type{
		MigrationTypeHOTP: otp.TypeHOTP,
		MigrationTypeTOTP: otp.TypeTOTP,
	}
)

// Field numbers of the Google Authenticator export schema.
const (
	payloadEntries    protowire.Number = 1
	payloadVersion    protowire.Number = 2
	payloadBatchSize  protowire.Number = 3
	payloadBatchIndex protowire.Number = 4
	payloadBatchID    protowire.Number = 5

	entrySecret    protowire.Number = 1
	entryName      protowire.Number = 2
	entryIssuer    protowire.Number = 3
	entryAlgorithm protowire.Number = 4
	entryDigits    protowire.Number = 5
	entryType      protowire.Number = 6
	entryCounter   protowire.Number = 7
)

// migrationPeriod is the only TOTP period a migration payload can express.
const migrationPeriod = 30

// MigrationEntry is one OTP parameter set of a migration payload. Secret
// holds raw key bytes, not Base32 text.
type MigrationEntry struct {
	Secret    []byte
	Name      string
	Issuer    string
	Algorithm MigrationAlgorithm
	Digits    MigrationDigits
	Type      MigrationType
	Counter   uint64
}

// MigrationPayload is the decoded data parameter of an otpauth-migration URI.
type MigrationPayload struct {
	Entries    []MigrationEntry
	Version    int32
	BatchSize  int32
	BatchIndex int32
	BatchID    int32
}

type migrationOptions struct {
	substituteDefaults bool
}

// MigrationOption configures how migration entries become records.
type MigrationOption func(*migrationOptions)

// WithDefaults substitutes sha1, 6 digits and totp for unspecified enum
// codes instead of failing with ErrUnspecifiedEnum.
func WithDefaults() MigrationOption {
	return func(o *migrationOptions) {
		o.substituteDefaults = true
	}
}

func newMigrationOptions(opts []MigrationOption) migrationOptions {
	var o migrationOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// DecodeMigration reads the payload of an otpauth-migration URI.
func DecodeMigration(uri string) (*MigrationPayload, error) {
	parts, err := splitURI(uri)
	if err != nil {
		return nil, err
	}
	if parts.scheme != SchemeMigration {
		return nil, fmt.Errorf("%w: %q", ErrBadScheme, parts.scheme)
	}
	return decodeMigrationParts(parts)
}

// ParseMigration converts every entry of an otpauth-migration URI into a
// record, in payload order.
func ParseMigration(uri string, opts ...MigrationOption) ([]otp.Record, error) {
	parts, err := splitURI(uri)
	if err != nil {
		return nil, err
	}
	if parts.scheme != SchemeMigration {
		return nil, fmt.Errorf("%w: %q", ErrBadScheme, parts.scheme)
	}
	return migrationRecords(parts, newMigrationOptions(opts))
}

// EncodeMigration renders a payload as an otpauth-migration URI.
func EncodeMigration(p *MigrationPayload) string {
	data := base64.StdEncoding.EncodeToString(p.Marshal())
	return SchemeMigration + "://offline?" + paramData + "=" + url.QueryEscape(data)
}

// SerializeMigration renders records as a single-batch otpauth-migration URI.
func SerializeMigration(records ...otp.Record) (string, error) {
	if len(records) == 0 {
		return "", ErrEmptyPayload
	}

	p := &MigrationPayload{
		Version:   1,
		BatchSize: 1,
	}
	for i, r := range records {
		e, err := entryFromRecord(r)
		if err != nil {
			return "", fmt.Errorf("record %d: %w", i, err)
		}
		p.Entries = append(p.Entries, e)
	}
	return EncodeMigration(p), nil
}

func decodeMigrationParts(parts uriParts) (*MigrationPayload, error) {
	data, ok := parts.param(paramData)
	if !ok || data == "" {
		return nil, fmt.Errorf("%w: missing data parameter", ErrMalformedPayload)
	}

	raw, err := decodeData(data)
	if err != nil {
		return nil, err
	}
	return UnmarshalMigrationPayload(raw)
}

func migrationRecords(parts uriParts, opts migrationOptions) ([]otp.Record, error) {
	p, err := decodeMigrationParts(parts)
	if err != nil {
		return nil, err
	}
	if len(p.Entries) == 0 {
		return nil, ErrEmptyPayload
	}

	records := make([]otp.Record, 0, len(p.Entries))
	for i, e := range p.Entries {
		r, err := e.record(opts)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		records = append(records, r)
	}
	return records, nil
}

// decodeData accepts standard or URL-safe base64, with or without padding.
func decodeData(data string) ([]byte, error) {
	s := strings.NewReplacer("-", "+", "_", "/", " ", "+").Replace(data)
	s = strings.TrimRight(s, "=")
	raw, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return raw, nil
}

// Record converts the entry into a record. Unspecified enum codes fail
// with ErrUnspecifiedEnum.
func (e MigrationEntry) Record(opts ...MigrationOption) (otp.Record, error) {
	return e.record(newMigrationOptions(opts))
}

func (e MigrationEntry) record(opts migrationOptions) (otp.Record, error) {
	if len(e.Secret) == 0 {
		return otp.Record{}, ErrMissingSecret
	}

	alg, ok := migrationAlgorithms[e.Algorithm]
	if !ok {
		if e.Algorithm != MigrationAlgorithmUnspecified || !opts.substituteDefaults {
			return otp.Record{}, fmt.Errorf("%w: algorithm code %d", ErrUnspecifiedEnum, e.Algorithm)
		}
		alg = otp.DefaultAlgorithm
	}

	digits, ok := migrationDigits[e.Digits]
	if !ok {
		if e.Digits != MigrationDigitsUnspecified || !opts.substituteDefaults {
			return otp.Record{}, fmt.Errorf("%w: digits code %d", ErrUnspecifiedEnum, e.Digits)
		}
		digits = otp.DefaultDigits
	}

	typ, ok := migrationTypes[e.Type]
	if !ok {
		if e.Type != MigrationTypeUnspecified || !opts.substituteDefaults {
			return otp.Record{}, fmt.Errorf("%w: type code %d", ErrUnspecifiedEnum, e.Type)
		}
		typ = otp.DefaultType
	}

	r := otp.Record{
		Username:  e.Name,
		Issuer:    e.Issuer,
		Secret:    base32.EncodeRaw(e.Secret),
		Digits:    digits,
		Algorithm: alg,
		Type:      typ,
	}
	if r.Issuer == "" {
		r.Issuer = otp.DefaultIssuer
	}
	if typ == otp.TypeHOTP {
		r.Counter = e.Counter
	} else {
		r.Period = migrationPeriod
	}
	return r, nil
}

func entryFromRecord(r otp.Record) (MigrationEntry, error) {
	r = r.WithDefaults()

	secret, err := base32.Decode(r.Secret)
	if err != nil {
		return MigrationEntry{}, fmt.Errorf("%w: secret: %w", ErrInvalidParameter, err)
	}

	e := MigrationEntry{
		Secret: secret,
		Name:   r.Username,
		Issuer: r.Issuer,
	}

	switch r.Algorithm {
	case otp.AlgorithmSHA1:
		e.Algorithm = MigrationAlgorithmSHA1
	case otp.AlgorithmSHA256:
		e.Algorithm = MigrationAlgorithmSHA256
	case otp.AlgorithmSHA512:
		e.Algorithm = MigrationAlgorithmSHA512
	case otp.AlgorithmMD5:
		e.Algorithm = MigrationAlgorithmMD5
	default:
		return MigrationEntry{}, fmt.Errorf("%w: %w: %q", ErrInvalidParameter, otp.ErrUnsupportedAlgorithm, r.Algorithm)
	}

	switch r.Digits {
	case 6:
		e.Digits = MigrationDigitsSix
	case 8:
		e.Digits = MigrationDigitsEight
	default:
		return MigrationEntry{}, fmt.Errorf("%w: migration payloads carry 6 or 8 digits, got %d", ErrInvalidParameter, r.Digits)
	}

	switch r.Type {
	case otp.TypeHOTP:
		e.Type = MigrationTypeHOTP
		e.Counter = r.Counter
	case otp.TypeTOTP:
		if r.Period != migrationPeriod {
			return MigrationEntry{}, fmt.Errorf("%w: migration payloads carry a %d second period, got %d", ErrInvalidParameter, migrationPeriod, r.Period)
		}
		e.Type = MigrationTypeTOTP
	default:
		return MigrationEntry{}, fmt.Errorf("%w: %q", ErrBadType, r.Type)
	}

	return e, nil
}

// UnmarshalMigrationPayload decodes the binary payload carried in the data
// parameter. Unknown fields are skipped.
func UnmarshalMigrationPayload(b []byte) (*MigrationPayload, error) {
	p := &MigrationPayload{}
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == payloadEntries && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			e, err := unmarshalEntry(v)
			if err != nil {
				return 0, err
			}
			p.Entries = append(p.Entries, e)
			return n, nil
		case num >= payloadVersion && num <= payloadBatchID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return n, nil
			}
			switch num {
			case payloadVersion:
				p.Version = int32(v)
			case payloadBatchSize:
				p.BatchSize = int32(v)
			case payloadBatchIndex:
				p.BatchIndex = int32(v)
			case payloadBatchID:
				p.BatchID = int32(v)
			}
			return n, nil
		default:
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func unmarshalEntry(b []byte) (MigrationEntry, error) {
	var e MigrationEntry
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case entrySecret, entryName, entryIssuer:
			if typ != protowire.BytesType {
				break
			}
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			switch num {
			case entrySecret:
				e.Secret = bytes.Clone(v)
			case entryName:
				e.Name = string(v)
			case entryIssuer:
				e.Issuer = string(v)
			}
			return n, nil
		case entryAlgorithm, entryDigits, entryType, entryCounter:
			if typ != protowire.VarintType {
				break
			}
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return n, nil
			}
			switch num {
			case entryAlgorithm:
				e.Algorithm = MigrationAlgorithm(int32(v))
			case entryDigits:
				e.Digits = MigrationDigits(int32(v))
			case entryType:
				e.Type = MigrationType(int32(v))
			case entryCounter:
				e.Counter = v
			}
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	return e, err
}

// walkFields calls fn for each field of a message. fn consumes the field
// value and returns its length, or a negative protowire error code.
func walkFields(b []byte, fn func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %w", ErrMalformedPayload, protowire.ParseError(n))
		}
		b = b[n:]

		n, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %w", ErrMalformedPayload, num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return nil
}

// Marshal encodes the payload in the binary form carried by the data
// parameter. Zero-valued scalar fields are omitted.
func (p *MigrationPayload) Marshal() []byte {
	var b []byte
	for _, e := range p.Entries {
		b = protowire.AppendTag(b, payloadEntries, protowire.BytesType)
		b = protowire.AppendBytes(b, e.marshal())
	}
	b = appendVarint(b, payloadVersion, uint64(int64(p.Version)))
	b = appendVarint(b, payloadBatchSize, uint64(int64(p.BatchSize)))
	b = appendVarint(b, payloadBatchIndex, uint64(int64(p.BatchIndex)))
	b = appendVarint(b, payloadBatchID, uint64(int64(p.BatchID)))
	return b
}

func (e MigrationEntry) marshal() []byte {
	var b []byte
	if len(e.Secret) > 0 {
		b = protowire.AppendTag(b, entrySecret, protowire.BytesType)
		b = protowire.AppendBytes(b, e.Secret)
	}
	if e.Name != "" {
		b = protowire.AppendTag(b, entryName, protowire.BytesType)
		b = protowire.AppendString(b, e.Name)
	}
	if e.Issuer != "" {
		b = protowire.AppendTag(b, entryIssuer, protowire.BytesType)
		b = protowire.AppendString(b, e.Issuer)
	}
	b = appendVarint(b, entryAlgorithm, uint64(int64(e.Algorithm)))
	b = appendVarint(b, entryDigits, uint64(int64(e.Digits)))
	b = appendVarint(b, entryType, uint64(int64(e.Type)))
	b = appendVarint(b, entryCounter, e.Counter)
	return b
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}
