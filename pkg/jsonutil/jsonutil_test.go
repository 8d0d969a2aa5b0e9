package jsonutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshal(t *testing.T) {
	t.Run("valid object", func(t *testing.T) {
		var result map[string]any
		require.NoError(t, Unmarshal([]byte(`{"name":"left-pad","score":0.42}`), &result))
		assert.Equal(t, "left-pad", result["name"])
		assert.Equal(t, 0.42, result["score"])
	})

	t.Run("invalid json", func(t *testing.T) {
		var result map[string]any
		assert.Error(t, Unmarshal([]byte(`{invalid}`), &result))
	})

	t.Run("duplicate member", func(t *testing.T) {
		var result map[string]any
		assert.Error(t, Unmarshal([]byte(`{"a":1,"a":2}`), &result))
	})
}

func TestUnmarshalRead(t *testing.T) {
	var result []int
	require.NoError(t, UnmarshalRead(strings.NewReader(`[1,2,3]`), &result))
	assert.Equal(t, []int{1, 2, 3}, result)
}

func TestMarshalIndent(t *testing.T) {
	data, err := MarshalIndent(map[string]int{"a": 1}, "  ")
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"a\": 1")
}

func TestMarshalWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, MarshalWrite(&buf, []string{"x"}, ""))
	assert.Equal(t, "[\"x\"]\n", buf.String())
}

func TestValid(t *testing.T) {
	assert.True(t, Valid([]byte(`{"a":[1,2]}`)))
	assert.False(t, Valid([]byte(`{"a":`)))
}

func TestNewDecoderTokens(t *testing.T) {
	dec := NewDecoder(strings.NewReader(`{"b":1,"a":2}`))
	tok, err := dec.ReadToken()
	require.NoError(t, err)
	assert.Equal(t, jsontext.Kind('{'), tok.Kind())

	tok, err = dec.ReadToken()
	require.NoError(t, err)
	assert.Equal(t, "b", tok.String())
}
