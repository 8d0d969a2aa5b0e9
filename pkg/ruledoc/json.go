package ruledoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/depgate/depgate/pkg/jsonutil"
)

// FromJSON decodes a JSON rule document, keeping member order. The document
// must hold exactly one top-level value.
func FromJSON(data []byte) (*Map, error) {
	dec := jsonutil.NewDecoder(bytes.NewReader(data), jsontext.AllowDuplicateNames(true))
	v, err := readValue(dec)
	if err != nil {
		return nil, err
	}
	if tok, err := dec.ReadToken(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return nil, fmt.Errorf("%w: trailing data after top-level value: %v", ErrSyntax, tok.Kind())
	}
	m, ok := v.AsMap()
	if !ok {
		return nil, fmt.Errorf("%w: top level is a %s", ErrNotMapping, v.Kind())
	}
	return m, nil
}

func readValue(dec *jsontext.Decoder) (Value, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	switch tok.Kind() {
	case 'n':
		return Null(), nil
	case 't', 'f':
		return Bool(tok.Bool()), nil
	case '"':
		return String(tok.String()), nil
	case '0':
		return Number(tok.Float()), nil
	case '[':
		var vs []Value
		for dec.PeekKind() != ']' {
			v, err := readValue(dec)
			if err != nil {
				return Value{}, err
			}
			vs = append(vs, v)
		}
		if _, err := dec.ReadToken(); err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return List(vs...), nil
	case '{':
		m := NewMap()
		for dec.PeekKind() != '}' {
			name, err := dec.ReadToken()
			if err != nil {
				return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
			}
			// tokens are voided by the next decoder call
			key := name.String()
			v, err := readValue(dec)
			if err != nil {
				return Value{}, err
			}
			m.Append(Field(key, v))
		}
		if _, err := dec.ReadToken(); err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return MapValue(m), nil
	default:
		return Value{}, fmt.Errorf("%w: unexpected token %v", ErrSyntax, tok)
	}
}
