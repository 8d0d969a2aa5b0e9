// Package iohelper reads rule files and package records with size limits.
package iohelper

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Size limits for inputs.
const (
	// MaxRuleFileSize bounds a single rule document (4MB).
	MaxRuleFileSize int64 = 4 * 1024 * 1024

	// MaxRecordsSize bounds a package records document (64MB).
	MaxRecordsSize int64 = 64 * 1024 * 1024
)

// ErrTooLarge is returned when an input exceeds its limit.
var ErrTooLarge = errors.New("iohelper: input exceeds size limit")

// ReadAll reads r to EOF, failing with ErrTooLarge past maxSize bytes.
// A nil reader yields an empty slice.
func ReadAll(r io.Reader, maxSize int64) ([]byte, error) {
	if r == nil {
		return []byte{}, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, maxSize)
	}
	return data, nil
}

// ReadFile reads the file at path with the same limit as ReadAll.
// Open errors are returned unwrapped so errors.Is(err, fs.ErrNotExist) holds.
func ReadFile(path string, maxSize int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := ReadAll(f, maxSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}
