package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kingpin/v2"
	"github.com/stretchr/testify/require"

	"github.com/cybergodev/parjson"
)

func writeRelativeDoc(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.json"), []byte(`{"a":[1,2]}`), 0o644))
	return filepath.Join(dir, "sub", "..", "data.json")
}

func parserFromArgs(t *testing.T, args ...string) *parjson.Parser {
	t.Helper()
	app := kingpin.New("parjson", "")
	g := newGlobalFlags(app)
	_, err := app.Parse(args)
	require.NoError(t, err)

	p, err := g.newParser(nil)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestNewParser_AcceptsOperatorPaths(t *testing.T) {
	path := writeRelativeDoc(t)
	p := parserFromArgs(t, "--threads", "2")
	require.False(t, p.Config().ValidateFilePath)

	doc, err := p.ParseFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, doc.Root().Size())
}

func TestNewParser_ValidatePathsFlag(t *testing.T) {
	path := writeRelativeDoc(t)
	p := parserFromArgs(t, "--validate-paths")
	require.True(t, p.Config().ValidateFilePath)

	_, err := p.ParseFile(path)
	require.True(t, errors.Is(err, parjson.ErrInvalidPath), "got %v", err)
}
