package util

import (
	"crypto/sha1"
	"fmt"
	"io"
	"os"
)

// GenerateSimpleFileKey creates a cheap key from size and mtime. The
// transfer executor compares a source file's key before and after its
// copy to notice a file that changed mid-move. The key says nothing
// about contents: identical files with different mtimes get different
// keys, and matching keys do not prove identical bytes.
func GenerateSimpleFileKey(size int64, mtimeUnix int64) string {
	h := sha1.New()
	fmt.Fprintf(h, "%d:%d", size, mtimeUnix)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// GenerateContentHash returns the SHA1 of a file's contents, for the
// apply verb's VerifyHash mode: after a move's copy completes, the
// source and destination hashes must match before the source is removed.
func GenerateContentHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// GetFileMetadata extracts the size and mtime GenerateSimpleFileKey needs.
func GetFileMetadata(path string) (size int64, mtime int64, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to stat file: %w", err)
	}

	return info.Size(), info.ModTime().Unix(), nil
}
