package otpauth

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jeremyhahn/otp-keys/pkg/base32"
	"github.com/jeremyhahn/otp-keys/pkg/otp"
)

// URI schemes understood by Parse.
const (
	SchemeOTPAuth   = "otpauth"
	SchemeMigration = "otpauth-migration"
)

// Query parameter names.
const (
	paramSecret    = "secret"
	paramIssuer    = "issuer"
	paramAlgorithm = "algorithm"
	paramDigits    = "digits"
	paramPeriod    = "period"
	paramCounter   = "counter"
	paramData      = "data"
)

// uriParts is a URI split into its components after percent-decoding.
type uriParts struct {
	scheme string
	host   string
	path   string
	query  map[string]string
}

func (p uriParts) param(name string) (string, bool) {
	v, ok := p.query[name]
	return v, ok
}

// Parse converts an otpauth or otpauth-migration URI into a record.
// Migration URIs yield their first entry; use ParseMigration to read all
// of them. Options only affect migration URIs.
func Parse(uri string, opts ...MigrationOption) (otp.Record, error) {
	parts, err := splitURI(uri)
	if err != nil {
		return otp.Record{}, err
	}

	switch parts.scheme {
	case SchemeOTPAuth:
		return parseOTPAuth(parts)
	case SchemeMigration:
		records, err := migrationRecords(parts, newMigrationOptions(opts))
		if err != nil {
			return otp.Record{}, err
		}
		return records[0], nil
	default:
		return otp.Record{}, fmt.Errorf("%w: %q", ErrBadScheme, parts.scheme)
	}
}

// Serialize renders a record as an otpauth URI with parameters in a fixed
// order: secret, issuer, algorithm, digits, then counter or period.
func Serialize(r otp.Record) string {
	var sb strings.Builder
	sb.WriteString(SchemeOTPAuth)
	sb.WriteString("://")
	sb.WriteString(string(r.Type))
	sb.WriteByte('/')
	sb.WriteString(url.PathEscape(r.Username))

	writeParam(&sb, '?', paramSecret, r.Secret)
	writeParam(&sb, '&', paramIssuer, r.Issuer)
	writeParam(&sb, '&', paramAlgorithm, strings.ToUpper(string(r.Algorithm)))
	writeParam(&sb, '&', paramDigits, strconv.FormatUint(uint64(r.Digits), 10))
	if r.Type == otp.TypeHOTP {
		writeParam(&sb, '&', paramCounter, strconv.FormatUint(r.Counter, 10))
	} else {
		writeParam(&sb, '&', paramPeriod, strconv.FormatUint(uint64(r.Period), 10))
	}
	return sb.String()
}

func writeParam(sb *strings.Builder, sep byte, name, value string) {
	sb.WriteByte(sep)
	sb.WriteString(name)
	sb.WriteByte('=')
	// Parse does not treat '+' as a space.
	sb.WriteString(strings.ReplaceAll(url.QueryEscape(value), "+", "%20"))
}

// splitURI percent-decodes the whole text, then splits it into scheme,
// host, path and query. Components are not decoded a second time.
func splitURI(text string) (uriParts, error) {
	decoded, err := url.PathUnescape(strings.TrimSpace(text))
	if err != nil {
		return uriParts{}, fmt.Errorf("%w: %w", ErrInvalidURI, err)
	}

	scheme, rest, ok := strings.Cut(decoded, "://")
	if !ok {
		return uriParts{}, fmt.Errorf("%w: %q", ErrBadScheme, decoded)
	}

	parts := uriParts{
		scheme: strings.ToLower(scheme),
		query:  map[string]string{},
	}

	rest, rawQuery, _ := strings.Cut(rest, "?")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		parts.host, parts.path = rest[:i], rest[i:]
	} else {
		parts.host = rest
	}

	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key = strings.ToLower(key)
		if _, dup := parts.query[key]; !dup {
			parts.query[key] = value
		}
	}

	return parts, nil
}

func parseOTPAuth(parts uriParts) (otp.Record, error) {
	typ, err := otp.ParseType(parts.host)
	if err != nil {
		return otp.Record{}, fmt.Errorf("%w: %q", ErrBadType, parts.host)
	}

	username := strings.TrimPrefix(parts.path, "/")
	if username == "" {
		return otp.Record{}, fmt.Errorf("%w: label must not be empty", ErrInvalidParameter)
	}

	r := otp.Record{
		Type:      typ,
		Username:  username,
		Issuer:    otp.DefaultIssuer,
		Digits:    otp.DefaultDigits,
		Algorithm: otp.DefaultAlgorithm,
	}

	secret, _ := parts.param(paramSecret)
	if secret == "" {
		return otp.Record{}, ErrMissingSecret
	}
	if _, err := base32.Decode(secret); err != nil {
		return otp.Record{}, fmt.Errorf("%w: secret: %w", ErrInvalidParameter, err)
	}
	r.Secret = secret

	if issuer, ok := parts.param(paramIssuer); ok {
		r.Issuer = issuer
	}

	if v, ok := parts.param(paramDigits); ok {
		digits, err := parseUint(paramDigits, v, 32)
		if err != nil {
			return otp.Record{}, err
		}
		if digits == 0 || digits > 10 {
			return otp.Record{}, fmt.Errorf("%w: digits must be between 1 and 10, got %d", ErrInvalidParameter, digits)
		}
		r.Digits = uint(digits)
	}

	if v, ok := parts.param(paramAlgorithm); ok {
		alg, err := otp.ParseAlgorithm(v)
		if err != nil {
			return otp.Record{}, fmt.Errorf("%w: %w", ErrInvalidParameter, err)
		}
		// md5 only appears in migration payloads.
		if alg == otp.AlgorithmMD5 {
			return otp.Record{}, fmt.Errorf("%w: %w: %q", ErrInvalidParameter, otp.ErrUnsupportedAlgorithm, v)
		}
		r.Algorithm = alg
	}

	switch typ {
	case otp.TypeTOTP:
		r.Period = otp.DefaultPeriod
		if v, ok := parts.param(paramPeriod); ok {
			period, err := parseUint(paramPeriod, v, 32)
			if err != nil {
				return otp.Record{}, err
			}
			if period == 0 {
				return otp.Record{}, fmt.Errorf("%w: period must be positive", ErrInvalidParameter)
			}
			r.Period = uint(period)
		}
	case otp.TypeHOTP:
		v, ok := parts.param(paramCounter)
		if !ok {
			return otp.Record{}, ErrMissingCounter
		}
		counter, err := parseUint(paramCounter, v, 64)
		if err != nil {
			return otp.Record{}, err
		}
		r.Counter = counter
	}

	return r, nil
}

func parseUint(name, value string, bits int) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(value), 10, bits)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not a non-negative integer", ErrInvalidParameter, name, value)
	}
	return n, nil
}
