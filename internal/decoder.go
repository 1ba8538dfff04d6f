package internal

import (
	"bytes"
	"math"
	"strconv"
	"unicode/utf8"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"
)

// ErrNumber is returned for a malformed or out-of-range number
var ErrNumber = errors.New("invalid number")

// NumberKind tells which field of Number is populated
type NumberKind uint8

const (
	NumberInt NumberKind = iota
	NumberUint
	NumberFloat
)

// Number is a decoded JSON number
type Number struct {
	Kind  NumberKind
	Int   int64
	Uint  uint64
	Float float64
}

// Literal is a decoded true/false/null
type Literal uint8

const (
	LiteralNull Literal = iota
	LiteralTrue
	LiteralFalse
)

// DecodeNumber decodes a number token. Integers are tried as int64 first,
// then uint64 for large non-negative values, then float64.
func DecodeNumber(b []byte) (Number, error) {
	integer, ok := scanNumber(b)
	if !ok {
		return Number{}, errors.Wrapf(ErrNumber, "malformed number %q", truncate(b))
	}

	if integer {
		v, err := jsonparser.ParseInt(b)
		if err == nil {
			return Number{Kind: NumberInt, Int: v}, nil
		}
		// jsonparser reports math.MinInt64 as an overflow
		if i, ierr := strconv.ParseInt(string(b), 10, 64); ierr == nil {
			return Number{Kind: NumberInt, Int: i}, nil
		}
		if u, uerr := strconv.ParseUint(string(b), 10, 64); uerr == nil {
			return Number{Kind: NumberUint, Uint: u}, nil
		}
	}

	f, err := jsonparser.ParseFloat(b)
	if err != nil {
		return Number{}, errors.Wrapf(ErrNumber, "%q: %v", truncate(b), err)
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return Number{}, errors.Wrapf(ErrNumber, "%q out of range", truncate(b))
	}
	return Number{Kind: NumberFloat, Float: f}, nil
}

// scanNumber checks b against the JSON number grammar
// -? (0 | [1-9][0-9]*) (.[0-9]+)? ([eE][+-]?[0-9]+)?
func scanNumber(b []byte) (integer bool, ok bool) {
	i, n := 0, len(b)
	if i < n && b[i] == '-' {
		i++
	}
	if i >= n {
		return false, false
	}
	if b[i] == '0' {
		i++
	} else if b[i] >= '1' && b[i] <= '9' {
		for i < n && IsDigit(b[i]) {
			i++
		}
	} else {
		return false, false
	}
	integer = true
	if i < n && b[i] == '.' {
		integer = false
		i++
		start := i
		for i < n && IsDigit(b[i]) {
			i++
		}
		if i == start {
			return false, false
		}
	}
	if i < n && (b[i] == 'e' || b[i] == 'E') {
		integer = false
		i++
		if i < n && (b[i] == '+' || b[i] == '-') {
			i++
		}
		start := i
		for i < n && IsDigit(b[i]) {
			i++
		}
		if i == start {
			return false, false
		}
	}
	return integer, i == n
}

// DecodeString unescapes a quoted string token. The result may alias b when
// no escapes are present; scratch is reused for the unescaped form when it
// is large enough.
func DecodeString(b []byte, scratch []byte) ([]byte, error) {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return nil, errors.Wrap(ErrSyntax, "malformed string token")
	}
	inner := b[1 : len(b)-1]

	if bytes.IndexByte(inner, '\\') < 0 {
		if !utf8.Valid(inner) {
			return nil, errors.Wrap(ErrEncoding, "invalid UTF-8 in string")
		}
		return inner, nil
	}

	if err := checkSurrogates(inner); err != nil {
		return nil, err
	}
	if cap(scratch) < len(inner) {
		scratch = make([]byte, len(inner))
	}
	out, err := jsonparser.Unescape(inner, scratch[:len(inner)])
	if err != nil {
		return nil, errors.Wrapf(ErrEncoding, "bad escape sequence: %v", err)
	}
	if !utf8.Valid(out) {
		return nil, errors.Wrap(ErrEncoding, "invalid UTF-8 in string")
	}
	return out, nil
}

// checkSurrogates requires every \uD800-\uDBFF escape to be followed by a
// \uDC00-\uDFFF escape and rejects low surrogates on their own.
func checkSurrogates(b []byte) error {
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' {
			continue
		}
		if i+1 >= len(b) || b[i+1] != 'u' {
			i++
			continue
		}
		r, ok := hex4(b, i+2)
		if !ok {
			return errors.Wrap(ErrEncoding, "bad \\u escape")
		}
		switch {
		case r >= 0xD800 && r <= 0xDBFF:
			var lo rune
			if i+11 < len(b) && b[i+6] == '\\' && b[i+7] == 'u' {
				lo, ok = hex4(b, i+8)
			} else {
				ok = false
			}
			if !ok || lo < 0xDC00 || lo > 0xDFFF {
				return errors.Wrapf(ErrEncoding, "unpaired surrogate \\u%04x", r)
			}
			i += 11
		case r >= 0xDC00 && r <= 0xDFFF:
			return errors.Wrapf(ErrEncoding, "unpaired surrogate \\u%04x", r)
		default:
			i += 5
		}
	}
	return nil
}

func hex4(b []byte, at int) (rune, bool) {
	if at+4 > len(b) {
		return 0, false
	}
	var r rune
	for _, c := range b[at : at+4] {
		switch {
		case c >= '0' && c <= '9':
			r = r<<4 | rune(c-'0')
		case c >= 'a' && c <= 'f':
			r = r<<4 | rune(c-'a'+10)
		case c >= 'A' && c <= 'F':
			r = r<<4 | rune(c-'A'+10)
		default:
			return 0, false
		}
	}
	return r, true
}

// DecodeLiteral decodes true, false or null
func DecodeLiteral(b []byte) (Literal, error) {
	if string(b) == "null" {
		return LiteralNull, nil
	}
	v, err := jsonparser.ParseBoolean(b)
	if err != nil {
		return 0, errors.Wrapf(ErrSyntax, "invalid literal %q", truncate(b))
	}
	if v {
		return LiteralTrue, nil
	}
	return LiteralFalse, nil
}

func truncate(b []byte) []byte {
	if len(b) > 32 {
		return b[:32]
	}
	return b
}
