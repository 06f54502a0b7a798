// Package security provides file access guards for reading locale documents
// and writing reports.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxDocumentSize caps how much SafeReadFile will load into memory.
const MaxDocumentSize int64 = 32 << 20

// ErrFileTooLarge is returned by SafeReadFile for files above MaxDocumentSize.
var ErrFileTooLarge = errors.New("file exceeds maximum document size")

// ErrNotRegularFile is returned by SafeReadFile for directories and devices.
var ErrNotRegularFile = errors.New("path is not a regular file")

// ValidateFilePath validates that a file path is safe to use.
// Relative paths may climb out of the working directory, since locale
// files commonly live in sibling directories; when allowedDirs are given
// the resolved path must stay inside one of them.
func ValidateFilePath(path string, allowedDirs ...string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is empty")
	}
	if strings.ContainsRune(path, 0) {
		return fmt.Errorf("path contains a NUL byte: %q", path)
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if len(allowedDirs) == 0 {
		return nil
	}

	for _, allowedDir := range allowedDirs {
		absAllowedDir, err := filepath.Abs(allowedDir)
		if err != nil {
			continue
		}

		relPath, err := filepath.Rel(absAllowedDir, absPath)
		if err == nil && relPath != ".." && !strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
			return nil
		}
	}

	return fmt.Errorf("path is not within allowed directories: %s", path)
}

// SafeReadFile reads a regular file after path validation, refusing
// anything larger than MaxDocumentSize. Errors from os.Stat are returned
// unwrapped so callers can test them with os.IsNotExist and os.IsPermission.
func SafeReadFile(path string, allowedDirs ...string) ([]byte, error) {
	if err := ValidateFilePath(path, allowedDirs...); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotRegularFile, path)
	}
	if info.Size() > MaxDocumentSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrFileTooLarge, path, info.Size())
	}

	// #nosec G304 - path is validated by ValidateFilePath above
	return os.ReadFile(path)
}

// SafeWriteFile writes a file with path validation and secure permissions
func SafeWriteFile(path string, data []byte, allowedDirs ...string) error {
	if err := ValidateFilePath(path, allowedDirs...); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}
