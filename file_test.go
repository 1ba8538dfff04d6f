package parjson

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestParseFile(t *testing.T) {
	const content = `{"users":[{"name":"a"},{"name":"b"}],"count":2}`
	want := mustParse(t, content).Root()
	p := newTestParser(t, 3)

	t.Run("plain", func(t *testing.T) {
		doc, err := p.ParseFile(writeFile(t, "data.json", []byte(content)))
		require.NoError(t, err)
		assertSameTree(t, want, doc.Root(), "plain file")
	})

	t.Run("gzip", func(t *testing.T) {
		doc, err := p.ParseFileThreads(writeFile(t, "data.json.gz", gzipBytes(t, []byte(content))), 2)
		require.NoError(t, err)
		assertSameTree(t, want, doc.Root(), "gzip file")
	})

	t.Run("missing", func(t *testing.T) {
		_, err := p.ParseFile(filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("corrupt gzip", func(t *testing.T) {
		_, err := p.ParseFile(writeFile(t, "bad.gz", []byte{0x1f, 0x8b, 0x00, 0x01}))
		assert.Error(t, err)
	})

	t.Run("malformed content", func(t *testing.T) {
		_, err := p.ParseFile(writeFile(t, "bad.json", []byte(`{"a":`)))
		assert.ErrorIs(t, err, ErrGrammar)
	})
}

func TestParseFile_SizeLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxJSONSize = 16
	p := New(cfg)
	defer p.Close()

	big := []byte("[" + strings.Repeat("1,", 20) + "1]")
	_, err := p.ParseFile(writeFile(t, "big.json", big))
	assert.ErrorIs(t, err, ErrSizeLimit)

	// compressed input small on disk but large once inflated
	_, err = p.ParseFile(writeFile(t, "big.json.gz", gzipBytes(t, big)))
	assert.ErrorIs(t, err, ErrSizeLimit)

	cfg.ValidateFilePath = false
	unchecked := New(cfg)
	defer unchecked.Close()
	_, err = unchecked.ParseFile(writeFile(t, "big2.json", big))
	assert.ErrorIs(t, err, ErrSizeLimit)

	// compressed file already over the limit on disk
	_, err = unchecked.ParseFile(writeFile(t, "big2.json.gz", gzipBytes(t, big)))
	assert.ErrorIs(t, err, ErrSizeLimit)
	assert.Equal(t, ErrCodeSizeLimit, Code(err))
}

func TestParseFile_GzipInflatesPastLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxJSONSize = 128
	cfg.ValidateFilePath = false
	p := New(cfg)
	defer p.Close()

	big := []byte("[" + strings.Repeat("1,", 200) + "1]")
	compressed := gzipBytes(t, big)
	require.Less(t, len(compressed), 128)

	_, err := p.ParseFile(writeFile(t, "inflated.json.gz", compressed))
	assert.ErrorIs(t, err, ErrSizeLimit)
	assert.Equal(t, ErrCodeSizeLimit, Code(err))
}

func TestValidateFilePath(t *testing.T) {
	p := newTestParser(t, 1)
	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"nul byte", "data\x00.json"},
		{"too long", strings.Repeat("a", MaxPathLength+1)},
		{"traversal", "../secret.json"},
		{"nested traversal", "data/../../secret.json"},
		{"encoded traversal", "data/%2e%2e/secret.json"},
		{"double encoded traversal", "data/%252e%252e/secret.json"},
		{"backslash traversal", `data\..\secret.json`},
		{"proc", "/proc/self/environ"},
		{"dev", "/dev/null"},
		{"shadow", "/etc/shadow"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.validateFilePath(tt.path)
			assert.ErrorIs(t, err, ErrInvalidPath)
			assert.Equal(t, ErrCodeInvalidPath, Code(err))
		})
	}

	ok := writeFile(t, "fine..json", []byte("[]"))
	assert.NoError(t, p.validateFilePath(ok), "dots inside a name are not traversal")
}

func TestParseFile_ClosedParser(t *testing.T) {
	p := New()
	p.Close()
	_, err := p.ParseFile(writeFile(t, "x.json", []byte("[]")))
	assert.ErrorIs(t, err, ErrParserClosed)
}
