package parjson

import (
	"sync"
	"sync/atomic"
)

var (
	defaultParser   atomic.Pointer[Parser]
	defaultParserMu sync.Mutex
)

// getDefaultParser returns the shared parser, creating it on first use or
// after it was closed
func getDefaultParser() *Parser {
	if p := defaultParser.Load(); p != nil && !p.IsClosed() {
		return p
	}

	defaultParserMu.Lock()
	defer defaultParserMu.Unlock()

	if p := defaultParser.Load(); p != nil && !p.IsClosed() {
		return p
	}
	p := New()
	defaultParser.Store(p)
	return p
}

// SetGlobalParser replaces the parser used by the package-level functions.
// The previous parser is closed.
func SetGlobalParser(p *Parser) {
	if p == nil {
		return
	}
	defaultParserMu.Lock()
	old := defaultParser.Swap(p)
	defaultParserMu.Unlock()
	if old != nil && old != p {
		old.Close()
	}
}

// ShutdownGlobalParser closes the default parser
func ShutdownGlobalParser() {
	defaultParserMu.Lock()
	old := defaultParser.Swap(nil)
	defaultParserMu.Unlock()
	if old != nil {
		old.Close()
	}
}

// Parse parses data with the default parser split across threads chunks
func Parse(data []byte, threads int) (*Document, error) {
	return getDefaultParser().ParseThreads(data, threads)
}

// ParseString is Parse for a string input
func ParseString(s string, threads int) (*Document, error) {
	return getDefaultParser().ParseThreads([]byte(s), threads)
}

// ParseFile reads and parses a file with the default parser
func ParseFile(path string, threads int) (*Document, error) {
	return getDefaultParser().ParseFileThreads(path, threads)
}

// Serialize renders v with the default parser
func Serialize(v *Value, threads int, pretty bool) ([]byte, error) {
	return getDefaultParser().Serialize(v, threads, pretty)
}

// SerializeSingle renders v on the calling goroutine
func SerializeSingle(v *Value, pretty bool) ([]byte, error) {
	return getDefaultParser().SerializeSingle(v, pretty)
}

// Valid reports whether data is a single well-formed JSON document. Invalid
// input is not logged or counted as a failure.
func Valid(data []byte) bool {
	_, err := getDefaultParser().parse(data, 1, nil)
	return err == nil
}
