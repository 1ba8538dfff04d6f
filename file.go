package parjson

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/text/unicode/norm"
)

var gzipMagic = []byte{0x1f, 0x8b}

// ParseFile reads and parses a JSON file using the configured number of
// threads. Gzip-compressed files are decompressed transparently.
func (p *Parser) ParseFile(path string) (*Document, error) {
	return p.ParseFileThreads(path, p.config.Threads)
}

// ParseFileThreads is ParseFile with an explicit thread count
func (p *Parser) ParseFileThreads(path string, threads int) (*Document, error) {
	if err := p.checkClosed("parse_file"); err != nil {
		return nil, err
	}
	data, err := p.readFile(path)
	if err != nil {
		p.logError(context.Background(), "parse_file", err)
		return nil, err
	}
	return p.ParseThreads(data, threads)
}

// readFile validates path and returns the file contents, decompressed when
// the file starts with the gzip magic bytes
func (p *Parser) readFile(path string) ([]byte, error) {
	if p.config.ValidateFilePath {
		if err := p.validateFilePath(path); err != nil {
			return nil, err
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, newOperationError("read_file", fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()

	limit := p.config.MaxJSONSize
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, newOperationError("read_file", fmt.Sprintf("failed to read %s", path), err)
	}
	if int64(len(data)) > limit {
		return nil, newOperationError("read_file", fmt.Sprintf("%s exceeds %d bytes", path, limit), ErrSizeLimit)
	}
	if !bytes.HasPrefix(data, gzipMagic) {
		return data, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, newOperationError("read_file", fmt.Sprintf("invalid gzip stream in %s", path), err)
	}
	defer zr.Close()
	out, err := io.ReadAll(io.LimitReader(zr, limit+1))
	if err != nil {
		return nil, newOperationError("read_file", fmt.Sprintf("failed to decompress %s", path), err)
	}
	if int64(len(out)) > limit {
		return nil, newOperationError("read_file", fmt.Sprintf("%s decompresses past %d bytes", path, limit), ErrSizeLimit)
	}
	return out, nil
}

// validateFilePath rejects empty, over-long and traversing paths, NUL bytes,
// system directories and files over the size limit
func (p *Parser) validateFilePath(filePath string) error {
	if filePath == "" {
		return newOperationError("validate_file_path", "file path cannot be empty", ErrInvalidPath)
	}
	if strings.ContainsRune(filePath, 0) {
		return newOperationError("validate_file_path", "null byte in path", ErrInvalidPath)
	}
	if len(filePath) > MaxPathLength {
		return newOperationError("validate_file_path",
			fmt.Sprintf("path too long: %d > %d", len(filePath), MaxPathLength), ErrInvalidPath)
	}
	if containsPathTraversal(filePath) {
		return newOperationError("validate_file_path", "path traversal detected", ErrInvalidPath)
	}

	absPath, err := filepath.Abs(filepath.Clean(filePath))
	if err != nil {
		return newOperationError("validate_file_path", "invalid path", err)
	}
	if runtime.GOOS != "windows" {
		if err := validateUnixPath(absPath); err != nil {
			return err
		}
		if real, err := filepath.EvalSymlinks(absPath); err == nil && real != absPath {
			if err := validateUnixPath(real); err != nil {
				return err
			}
		}
	}

	if info, err := os.Stat(absPath); err == nil && info.Size() > p.config.MaxJSONSize {
		return newOperationError("validate_file_path",
			fmt.Sprintf("file size %d exceeds limit %d", info.Size(), p.config.MaxJSONSize), ErrSizeLimit)
	}
	return nil
}

// containsPathTraversal looks for ".." after NFC normalization and up to
// three rounds of URL decoding
func containsPathTraversal(path string) bool {
	decoded := norm.NFC.String(path)
	for range 3 {
		next, err := url.PathUnescape(decoded)
		if err != nil || next == decoded {
			break
		}
		decoded = next
	}
	for _, s := range []string{path, decoded} {
		for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '\\' }) {
			if part == ".." {
				return true
			}
		}
	}
	return false
}

func validateUnixPath(absPath string) error {
	for _, dir := range []string{"/dev/", "/proc/", "/sys/", "/etc/shadow", "/etc/sudoers"} {
		if strings.HasPrefix(absPath, dir) {
			return newOperationError("validate_file_path", "access to system directory not allowed", ErrInvalidPath)
		}
	}
	return nil
}
