package iohelper

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/depgate/depgate/pkg/testutil"
)

func TestReadAll(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		max     int64
		wantErr error
	}{
		{name: "under limit", input: "abc", max: 10},
		{name: "at limit", input: "abcdefghij", max: 10},
		{name: "over limit", input: "abcdefghijk", max: 10, wantErr: ErrTooLarge},
		{name: "empty", input: "", max: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ReadAll(strings.NewReader(tt.input), tt.max)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, string(data))
		})
	}
}

func TestReadAll_NilReader(t *testing.T) {
	data, err := ReadAll(nil, 10)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestReadAll_ReaderError(t *testing.T) {
	_, err := ReadAll(&testutil.FailingReader{}, 10)
	assert.True(t, errors.Is(err, testutil.ErrFault))
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o644))

	data, err := ReadFile(path, MaxRuleFileSize)
	require.NoError(t, err)
	assert.Equal(t, "a: 1\n", string(data))

	_, err = ReadFile(path, 2)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Contains(t, err.Error(), "rules.yaml")

	_, err = ReadFile(filepath.Join(dir, "missing"), 10)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
