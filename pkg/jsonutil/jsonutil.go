// Package jsonutil wraps github.com/go-json-experiment/json for the rest of
// the module.
//
// Every JSON read and write in depgate goes through here so the decoding
// options (strict member names, duplicate rejection) stay in one place.
//
//	var pkgs []raw
//	err := jsonutil.Unmarshal(data, &pkgs)
package jsonutil

import (
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Unmarshal parses the JSON-encoded data and stores the result in v.
// Duplicate object members are rejected.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// UnmarshalRead is Unmarshal over a reader.
func UnmarshalRead(r io.Reader, v any) error {
	return json.UnmarshalRead(r, v)
}

// Marshal returns the JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// MarshalIndent returns the indented JSON encoding of v.
func MarshalIndent(v any, indent string) ([]byte, error) {
	return json.Marshal(v, jsontext.WithIndent(indent))
}

// MarshalWrite writes the indented JSON encoding of v to w, followed by a newline.
func MarshalWrite(w io.Writer, v any, indent string) error {
	var err error
	if indent != "" {
		err = json.MarshalWrite(w, v, jsontext.WithIndent(indent))
	} else {
		err = json.MarshalWrite(w, v)
	}
	if err != nil {
		return err
	}
	_, err = w.Write([]byte{'\n'})
	return err
}

// NewDecoder returns a token decoder that reads from r.
func NewDecoder(r io.Reader, opts ...jsontext.Options) *jsontext.Decoder {
	return jsontext.NewDecoder(r, opts...)
}

// Valid reports whether data is a valid JSON encoding.
func Valid(data []byte) bool {
	return jsontext.Value(data).IsValid()
}
