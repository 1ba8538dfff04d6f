package internal

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Scanner errors. Callers match them with errors.Is.
var (
	ErrSyntax   = errors.New("syntax error")
	ErrEncoding = errors.New("invalid encoding")
	ErrDepth    = errors.New("nesting depth exceeded")
	ErrTooLarge = errors.New("input too large")
)

// SyntaxError reports a scanner or decoder failure at a byte offset
type SyntaxError struct {
	Offset int
	Msg    string
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Tokens is the structural index of a JSON document: the raw bytes plus the
// strictly increasing offsets of every structural byte ({ } [ ] : , the
// opening quote of a string, the first byte of a number or literal).
// It is read-only once built and safe to share between goroutines.
type Tokens struct {
	Data    []byte
	Offsets []uint32
}

// Len returns the number of structural tokens
func (t *Tokens) Len() int {
	return len(t.Offsets)
}

// Byte returns the structural byte that starts token i
func (t *Tokens) Byte(i int) byte {
	return t.Data[t.Offsets[i]]
}

// Offset returns the byte offset of token i
func (t *Tokens) Offset(i int) int {
	return int(t.Offsets[i])
}

// Span returns the bytes of token i up to the next structural token,
// without trailing whitespace
func (t *Tokens) Span(i int) []byte {
	start := int(t.Offsets[i])
	end := len(t.Data)
	if i+1 < len(t.Offsets) {
		end = int(t.Offsets[i+1])
	}
	for end > start && IsSpace(t.Data[end-1]) {
		end--
	}
	return t.Data[start:end]
}

// Scan builds the structural index of data. It checks lexical structure only:
// strings are terminated and free of raw control bytes, every byte outside
// strings is whitespace, punctuation or part of a scalar, and brackets nest no
// deeper than maxDepth. Grammar is left to the chunk validator.
func Scan(data []byte, maxDepth int) (*Tokens, error) {
	if uint64(len(data)) > math.MaxUint32 {
		return nil, errors.Wrapf(ErrTooLarge, "%d bytes", len(data))
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxNestingDepth
	}

	// Dense documents average roughly one structural byte in four
	offsets := make([]uint32, 0, len(data)/4+4)
	depth := 0
	n := len(data)

	for i := 0; i < n; {
		c := data[i]
		switch {
		case IsSpace(c):
			i++
		case c == '{' || c == '[':
			depth++
			if depth > maxDepth {
				return nil, &SyntaxError{Offset: i, Msg: fmt.Sprintf("nesting deeper than %d", maxDepth), Err: ErrDepth}
			}
			offsets = append(offsets, uint32(i))
			i++
		case c == '}' || c == ']':
			if depth > 0 {
				depth--
			}
			offsets = append(offsets, uint32(i))
			i++
		case c == ':' || c == ',':
			offsets = append(offsets, uint32(i))
			i++
		case c == '"':
			offsets = append(offsets, uint32(i))
			end, err := skipString(data, i)
			if err != nil {
				return nil, err
			}
			i = end
		case c == '-' || IsDigit(c) || c == 't' || c == 'f' || c == 'n':
			offsets = append(offsets, uint32(i))
			i++
			for i < n && !isDelimiter(data[i]) {
				i++
			}
		default:
			return nil, &SyntaxError{Offset: i, Msg: fmt.Sprintf("unexpected byte %q", c), Err: ErrSyntax}
		}
	}

	if len(offsets) == 0 {
		return nil, &SyntaxError{Offset: 0, Msg: "empty document", Err: ErrSyntax}
	}
	return &Tokens{Data: data, Offsets: offsets}, nil
}

// skipString returns the offset just past the closing quote of the string
// whose opening quote is at data[start]
func skipString(data []byte, start int) (int, error) {
	for i := start + 1; i < len(data); i++ {
		switch c := data[i]; {
		case c == '"':
			return i + 1, nil
		case c == '\\':
			i++
		case c < 0x20:
			return 0, &SyntaxError{Offset: i, Msg: "control character in string", Err: ErrEncoding}
		}
	}
	return 0, &SyntaxError{Offset: start, Msg: "unterminated string", Err: ErrSyntax}
}

// isDelimiter reports whether c ends a number or literal
func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '{', '}', '[', ']', ':', ',', '"':
		return true
	}
	return false
}

// IsSpace reports whether the character is a JSON whitespace character
func IsSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// IsDigit reports whether the character is a digit
func IsDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
