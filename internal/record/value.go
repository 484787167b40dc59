package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Value is a sealed interface over the JSON-like value types a record may hold.
// Only Null, String, Int, Float, Bool, Array, and Object implement it.
type Value interface {
	recordValue()
}

// Null represents a JSON null.
type Null struct{}

func (Null) recordValue() {}

// String is a string value.
type String string

func (String) recordValue() {}

// Int is an integral number that fits in int64.
type Int int64

func (Int) recordValue() {}

// Float is a non-integral (or out of int64 range) number.
// NaN and infinities cannot be serialized.
type Float float64

func (Float) recordValue() {}

// Bool is a boolean value.
type Bool bool

func (Bool) recordValue() {}

// Array is an ordered list of values.
type Array []Value

func (Array) recordValue() {}

// Object maps string keys to values. Iterate with SortedKeys for
// deterministic order.
type Object map[string]Value

func (Object) recordValue() {}

// Record is a single stored invoice.
type Record = Object

// SortedKeys returns keys ordered by UTF-16 code units.
// Go's native string order compares UTF-8 bytes, which disagrees for
// characters above U+FFFF.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

// compareUTF16 compares two strings by UTF-16 code units.
func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// Clone returns a deep copy of obj.
func (obj Object) Clone() Object {
	if obj == nil {
		return nil
	}
	out := make(Object, len(obj))
	for k, v := range obj {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v Value) Value {
	switch val := v.(type) {
	case Array:
		arr := make(Array, len(val))
		for i, elem := range val {
			arr[i] = cloneValue(elem)
		}
		return arr
	case Object:
		return val.Clone()
	default:
		return v
	}
}

// MarshalJSON encodes obj in canonical form.
func (obj Object) MarshalJSON() ([]byte, error) {
	return Marshal(obj)
}

// MarshalJSON encodes arr in canonical form.
func (arr Array) MarshalJSON() ([]byte, error) {
	return Marshal(arr)
}

// UnmarshalJSON implements json.Unmarshaler for Object.
func (obj *Object) UnmarshalJSON(data []byte) error {
	v, err := decodeValue(data)
	if err != nil {
		return err
	}
	o, ok := v.(Object)
	if !ok {
		return fmt.Errorf("record: expected JSON object, got %T", v)
	}
	*obj = o
	return nil
}

// FromJSON parses a JSON document that must be an object.
func FromJSON(data []byte) (Record, error) {
	var obj Object
	if err := obj.UnmarshalJSON(bytes.TrimSpace(data)); err != nil {
		return nil, err
	}
	return obj, nil
}

// ParseValue parses any JSON document into a Value.
func ParseValue(data []byte) (Value, error) {
	return decodeValue(bytes.TrimSpace(data))
}

// decodeValue decodes a single JSON value, keeping integers exact.
func decodeValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("record: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("record: trailing data after JSON value")
	}
	return FromGo(raw)
}

// FromGo converts decoded JSON or YAML data (and plain Go scalars) into a Value.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int32:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint:
		if uint64(val) > math.MaxInt64 {
			return Float(float64(val)), nil
		}
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return Float(float64(val)), nil
		}
		return Int(val), nil
	case float32:
		return Float(val), nil
	case float64:
		return Float(val), nil
	case json.Number:
		return numberValue(string(val))
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			e, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = e
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			e, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = e
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("record: unsupported type %T", v)
	}
}

// numberValue picks Int for integral literals that fit in int64 and Float otherwise.
func numberValue(s string) (Value, error) {
	if !strings.ContainsAny(s, ".eE") {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int(n), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("record: invalid number %q: %w", s, err)
	}
	return Float(f), nil
}
