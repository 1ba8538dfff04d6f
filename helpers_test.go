package parjson

import (
	"io"
	"log/slog"
	"testing"

	"github.com/cybergodev/parjson/internal"
)

// newTestParser returns a parser that splits even tiny inputs
func newTestParser(t *testing.T, threads int) *Parser {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Threads = threads
	cfg.MinParallelTokens = 1
	cfg.MinParallelEvents = 1
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	p := New(cfg)
	t.Cleanup(func() { p.Close() })
	return p
}

// mustParse parses s on one worker and fails the test on error
func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := newTestParser(t, 1).ParseSingle([]byte(s))
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return doc
}

// assertSameTree fails when got and want differ structurally
func assertSameTree(t *testing.T, want, got *Value, msg string) {
	t.Helper()
	if !want.Equal(got) {
		t.Errorf("%s\nwant: %s\ngot:  %s", msg, want.String(), got.String())
	}
}

// validCuts returns every token index a chunk may start at
func validCuts(t *testing.T, s string) []int {
	t.Helper()
	tok := scanForTest(t, s)
	var cuts []int
	for i := 1; i < tok.Len(); i++ {
		if cutAllowed(tok, i) {
			cuts = append(cuts, i)
		}
	}
	return cuts
}

func scanForTest(t *testing.T, s string) *internal.Tokens {
	t.Helper()
	tok, err := internal.Scan([]byte(s), 0)
	if err != nil {
		t.Fatalf("scan %q: %v", s, err)
	}
	return tok
}
