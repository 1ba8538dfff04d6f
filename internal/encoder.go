package internal

import (
	"math"
	"strconv"
	"sync"

	"github.com/pkg/errors"
)

// ErrUnsupportedFloat is returned for NaN and infinities, which JSON cannot represent
var ErrUnsupportedFloat = errors.New("unsupported float value")

// ============================================================================
// LOOKUP TABLES FOR STRING ESCAPING
// ============================================================================

// needsEscapeTable marks the bytes that must be escaped inside a JSON string
var needsEscapeTable = [256]bool{
	0x00: true, 0x01: true, 0x02: true, 0x03: true, 0x04: true, 0x05: true, 0x06: true, 0x07: true,
	0x08: true, 0x09: true, 0x0A: true, 0x0B: true, 0x0C: true, 0x0D: true, 0x0E: true, 0x0F: true,
	0x10: true, 0x11: true, 0x12: true, 0x13: true, 0x14: true, 0x15: true, 0x16: true, 0x17: true,
	0x18: true, 0x19: true, 0x1A: true, 0x1B: true, 0x1C: true, 0x1D: true, 0x1E: true, 0x1F: true,
	'"':  true,
	'\\': true,
}

const hexChars = "0123456789abcdef"

// ============================================================================
// SEGMENT ENCODER
// Growable output buffer for one serialization segment
// ============================================================================

// Encoder appends JSON text to a private buffer. One encoder is owned by one
// goroutine at a time.
type Encoder struct {
	buf []byte
}

var encoderPool = sync.Pool{
	New: func() any {
		return &Encoder{buf: make([]byte, 0, 256)}
	},
}

var largeEncoderPool = sync.Pool{
	New: func() any {
		return &Encoder{buf: make([]byte, 0, 8192)}
	},
}

// GetEncoderWithSize retrieves an encoder whose buffer suits the size hint
func GetEncoderWithSize(hint int) *Encoder {
	var e *Encoder
	if hint <= 1024 {
		e = encoderPool.Get().(*Encoder)
	} else {
		e = largeEncoderPool.Get().(*Encoder)
	}
	e.buf = e.buf[:0]
	if hint > cap(e.buf) {
		e.buf = make([]byte, 0, hint)
	}
	return e
}

// PutEncoder returns an encoder to its pool. Buffers over 64KB are dropped.
func PutEncoder(e *Encoder) {
	if e == nil {
		return
	}
	c := cap(e.buf)
	e.buf = e.buf[:0]
	switch {
	case c <= 1024:
		encoderPool.Put(e)
	case c <= 65536:
		largeEncoderPool.Put(e)
	}
}

// Bytes returns the encoded bytes. The slice is only valid until the
// encoder is reused.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of buffered bytes
func (e *Encoder) Len() int {
	return len(e.buf)
}

// Reset clears the encoder buffer
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// WriteByte appends a single byte
func (e *Encoder) WriteByte(c byte) error {
	e.buf = append(e.buf, c)
	return nil
}

// WriteRaw appends s without escaping
func (e *Encoder) WriteRaw(s string) {
	e.buf = append(e.buf, s...)
}

// EncodeString appends s as a quoted JSON string
func (e *Encoder) EncodeString(s []byte) {
	e.buf = append(e.buf, '"')
	if !needsEscape(s) {
		e.buf = append(e.buf, s...)
	} else {
		e.escapeString(s)
	}
	e.buf = append(e.buf, '"')
}

// needsEscape checks 8 bytes per step for control characters, quotes and
// backslashes before falling back to the table
func needsEscape(s []byte) bool {
	n := len(s)
	for i := 0; i+8 <= n; i += 8 {
		b0, b1, b2, b3 := s[i], s[i+1], s[i+2], s[i+3]
		b4, b5, b6, b7 := s[i+4], s[i+5], s[i+6], s[i+7]

		// (b - 0x20) has the high bit set for every byte below 0x20
		ctrlMask := ((b0 - 0x20) & 0x80) | ((b1 - 0x20) & 0x80) | ((b2 - 0x20) & 0x80) | ((b3 - 0x20) & 0x80) |
			((b4 - 0x20) & 0x80) | ((b5 - 0x20) & 0x80) | ((b6 - 0x20) & 0x80) | ((b7 - 0x20) & 0x80)

		if ctrlMask != 0 ||
			b0 == '"' || b1 == '"' || b2 == '"' || b3 == '"' ||
			b4 == '"' || b5 == '"' || b6 == '"' || b7 == '"' ||
			b0 == '\\' || b1 == '\\' || b2 == '\\' || b3 == '\\' ||
			b4 == '\\' || b5 == '\\' || b6 == '\\' || b7 == '\\' {
			if needsEscapeTable[b0] || needsEscapeTable[b1] || needsEscapeTable[b2] || needsEscapeTable[b3] ||
				needsEscapeTable[b4] || needsEscapeTable[b5] || needsEscapeTable[b6] || needsEscapeTable[b7] {
				return true
			}
		}
	}

	for i := n &^ 7; i < n; i++ {
		if needsEscapeTable[s[i]] {
			return true
		}
	}
	return false
}

func (e *Encoder) escapeString(s []byte) {
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !needsEscapeTable[c] {
			continue
		}
		if start < i {
			e.buf = append(e.buf, s[start:i]...)
		}
		switch c {
		case '"':
			e.buf = append(e.buf, '\\', '"')
		case '\\':
			e.buf = append(e.buf, '\\', '\\')
		case '\b':
			e.buf = append(e.buf, '\\', 'b')
		case '\f':
			e.buf = append(e.buf, '\\', 'f')
		case '\n':
			e.buf = append(e.buf, '\\', 'n')
		case '\r':
			e.buf = append(e.buf, '\\', 'r')
		case '\t':
			e.buf = append(e.buf, '\\', 't')
		default:
			e.buf = append(e.buf, '\\', 'u', '0', '0', hexChars[c>>4], hexChars[c&0x0f])
		}
		start = i + 1
	}
	if start < len(s) {
		e.buf = append(e.buf, s[start:]...)
	}
}

// EncodeInt appends a signed integer
func (e *Encoder) EncodeInt(n int64) {
	if n >= 0 && n < 100 {
		e.buf = append(e.buf, smallInts[n]...)
		return
	}
	e.buf = strconv.AppendInt(e.buf, n, 10)
}

// EncodeUint appends an unsigned integer
func (e *Encoder) EncodeUint(n uint64) {
	if n < 100 {
		e.buf = append(e.buf, smallInts[n]...)
		return
	}
	e.buf = strconv.AppendUint(e.buf, n, 10)
}

// EncodeFloat appends a float so that it decodes back as a float: integral
// values keep a ".0" suffix and very large or small magnitudes use exponent
// form.
func (e *Encoder) EncodeFloat(f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return errors.Wrapf(ErrUnsupportedFloat, "%v", f)
	}

	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	start := len(e.buf)
	e.buf = strconv.AppendFloat(e.buf, f, format, -1, 64)

	for _, c := range e.buf[start:] {
		if c == '.' || c == 'e' {
			return nil
		}
	}
	e.buf = append(e.buf, '.', '0')
	return nil
}

// EncodeBool appends true or false
func (e *Encoder) EncodeBool(b bool) {
	if b {
		e.buf = append(e.buf, "true"...)
	} else {
		e.buf = append(e.buf, "false"...)
	}
}

// EncodeNull appends null
func (e *Encoder) EncodeNull() {
	e.buf = append(e.buf, "null"...)
}

// Pre-computed string representations of integers 0-99
var smallInts [100][]byte

func init() {
	for i := range smallInts {
		smallInts[i] = strconv.AppendInt(nil, int64(i), 10)
	}
}
