package ruledoc

import (
	"errors"
	"strconv"
	"strings"
)

// Sentinel errors for document decoding.
var (
	// ErrNotMapping is returned when a document's top level is not a mapping.
	ErrNotMapping = errors.New("ruledoc: document is not a mapping")

	// ErrSyntax wraps a YAML or JSON syntax error.
	ErrSyntax = errors.New("ruledoc: syntax error")
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is one node of a rule document. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	list []Value
	m    *Map
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool wraps b.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps n.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String wraps s.
func String(s string) Value { return Value{kind: KindString, s: s} }

// List wraps vs.
func List(vs ...Value) Value { return Value{kind: KindList, list: vs} }

// Strings wraps each element of ss as a string value.
func Strings(ss ...string) Value {
	vs := make([]Value, len(ss))
	for i, s := range ss {
		vs[i] = String(s)
	}
	return List(vs...)
}

// MapValue wraps m.
func MapValue(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: KindMap, m: m}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsNumber returns the number held by v.
func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == KindNumber }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsList returns the elements held by v.
func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

// AsMap returns the mapping held by v.
func (v Value) AsMap() (*Map, bool) { return v.m, v.kind == KindMap }

// AsStrings returns the elements of a list of strings.
// It reports false if v is not a list or any element is not a string.
func (v Value) AsStrings() ([]string, bool) {
	if v.kind != KindList {
		return nil, false
	}
	out := make([]string, 0, len(v.list))
	for _, e := range v.list {
		s, ok := e.AsString()
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// String renders v compactly, for error messages.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		return v.m.String()
	default:
		return "null"
	}
}

// Entry is one key/value pair of a Map.
type Entry struct {
	Key   string
	Value Value
}

// Field builds an Entry.
func Field(key string, v Value) Entry { return Entry{Key: key, Value: v} }

// Map is an ordered mapping. Duplicate keys are kept in order; Get returns
// the first.
type Map struct {
	entries []Entry
}

// NewMap builds a Map from entries, in order.
func NewMap(entries ...Entry) *Map {
	return &Map{entries: append([]Entry(nil), entries...)}
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Entries returns a copy of the entries in document order.
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	return append([]Entry(nil), m.entries...)
}

// Keys returns the keys in document order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys
}

// Get returns the value of the first entry named key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	for _, e := range m.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Append adds entries after the existing ones.
func (m *Map) Append(entries ...Entry) {
	m.entries = append(m.entries, entries...)
}

func (m *Map) String() string {
	if m == nil {
		return "{}"
	}
	parts := make([]string, len(m.entries))
	for i, e := range m.entries {
		parts[i] = e.Key + ": " + e.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
