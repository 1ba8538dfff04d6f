package parjson

import (
	"errors"
	"fmt"

	"github.com/cybergodev/parjson/internal"
)

// Core error definitions
var (
	// Grammar errors: malformed brackets, missing colon or comma, non-string
	// keys, inconsistent chunk boundaries
	ErrGrammar = errors.New("invalid JSON grammar")
	// More than one value at the document root
	ErrMultipleRoots = errors.New("multiple JSON values at the document root")
	// Invalid UTF-8 or invalid escape sequences
	ErrEncoding = errors.New("invalid string encoding")
	// Allocation or buffer failures
	ErrResource = errors.New("resource exhausted")

	ErrSizeLimit  = errors.New("size limit exceeded")
	ErrDepthLimit = errors.New("depth limit exceeded")

	// A tree that cannot be serialized: NaN/Inf floats, typeless values,
	// scratch containers
	ErrInvalidValue = errors.New("invalid value")

	ErrParserClosed = errors.New("parser is closed")
	ErrInvalidPath  = errors.New("invalid file path")
)

// Error codes for machine-readable error identification
const (
	ErrCodeGrammar       = "ERR_GRAMMAR"
	ErrCodeMultipleRoots = "ERR_MULTIPLE_ROOTS"
	ErrCodeEncoding      = "ERR_ENCODING"
	ErrCodeResource      = "ERR_RESOURCE"
	ErrCodeSizeLimit     = "ERR_SIZE_LIMIT"
	ErrCodeDepthLimit    = "ERR_DEPTH_LIMIT"
	ErrCodeInvalidValue  = "ERR_INVALID_VALUE"
	ErrCodeParserClosed  = "ERR_PARSER_CLOSED"
	ErrCodeInvalidPath   = "ERR_INVALID_PATH"
	ErrCodeUnknown       = "ERR_UNKNOWN"
)

// Error is a parse or serialize failure with its location
type Error struct {
	Op      string `json:"op"`      // Operation that failed
	Offset  int    `json:"offset"`  // Byte offset in the input, -1 when unknown
	Chunk   int    `json:"chunk"`   // Chunk or segment index, -1 when not chunk-specific
	Message string `json:"message"` // Human-readable error message
	Err     error  `json:"err"`     // Underlying error
}

func (e *Error) Error() string {
	switch {
	case e.Offset >= 0 && e.Chunk >= 0:
		return fmt.Sprintf("JSON %s failed at offset %d (chunk %d): %s", e.Op, e.Offset, e.Chunk, e.Message)
	case e.Offset >= 0:
		return fmt.Sprintf("JSON %s failed at offset %d: %s", e.Op, e.Offset, e.Message)
	case e.Chunk >= 0:
		return fmt.Sprintf("JSON %s failed in chunk %d: %s", e.Op, e.Chunk, e.Message)
	}
	return fmt.Sprintf("JSON %s failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error for error chain support
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same operation and cause, or the cause
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if t, ok := target.(*Error); ok {
		return e.Op == t.Op && e.Err == t.Err
	}
	return errors.Is(e.Err, target)
}

// Status returns the negative status code of the error
func (e *Error) Status() int {
	switch {
	case errors.Is(e.Err, ErrGrammar):
		return -1
	case errors.Is(e.Err, ErrMultipleRoots):
		return -2
	case errors.Is(e.Err, ErrEncoding):
		return -3
	case errors.Is(e.Err, ErrResource), errors.Is(e.Err, ErrSizeLimit):
		return -4
	case errors.Is(e.Err, ErrDepthLimit):
		return -5
	case errors.Is(e.Err, ErrInvalidValue):
		return -6
	case errors.Is(e.Err, ErrParserClosed):
		return -7
	}
	return -100
}

// Code returns the machine-readable code for err
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrGrammar):
		return ErrCodeGrammar
	case errors.Is(err, ErrMultipleRoots):
		return ErrCodeMultipleRoots
	case errors.Is(err, ErrEncoding):
		return ErrCodeEncoding
	case errors.Is(err, ErrResource):
		return ErrCodeResource
	case errors.Is(err, ErrSizeLimit):
		return ErrCodeSizeLimit
	case errors.Is(err, ErrDepthLimit):
		return ErrCodeDepthLimit
	case errors.Is(err, ErrInvalidValue):
		return ErrCodeInvalidValue
	case errors.Is(err, ErrParserClosed):
		return ErrCodeParserClosed
	case errors.Is(err, ErrInvalidPath):
		return ErrCodeInvalidPath
	}
	return ErrCodeUnknown
}

// newGrammarError reports a malformed token at a byte offset
func newGrammarError(offset, chunk int, message string) error {
	return &Error{Op: "parse", Offset: offset, Chunk: chunk, Message: message, Err: ErrGrammar}
}

// newParseError wraps an error of a known category
func newParseError(offset, chunk int, message string, err error) error {
	return &Error{Op: "parse", Offset: offset, Chunk: chunk, Message: message, Err: err}
}

// newOperationError creates an Error that is not tied to an input position
func newOperationError(operation, message string, err error) error {
	return &Error{Op: operation, Offset: -1, Chunk: -1, Message: message, Err: err}
}

// classifyInternal maps a scanner or decoder error onto the public taxonomy
func classifyInternal(err error, chunk int) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}

	offset := -1
	var se *internal.SyntaxError
	if errors.As(err, &se) {
		offset = se.Offset
	}

	var category error
	switch {
	case errors.Is(err, internal.ErrEncoding):
		category = ErrEncoding
	case errors.Is(err, internal.ErrDepth):
		category = ErrDepthLimit
	case errors.Is(err, internal.ErrTooLarge):
		category = ErrSizeLimit
	default:
		category = ErrGrammar
	}
	return &Error{Op: "parse", Offset: offset, Chunk: chunk, Message: err.Error(), Err: fmt.Errorf("%w: %w", category, err)}
}
