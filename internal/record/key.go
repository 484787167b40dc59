package record

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"
)

// MaxSafeInteger is the largest magnitude an integer key may have. Number
// keys are float64, so larger integers would collide with their neighbors.
const MaxSafeInteger = 1<<53 - 1

var (
	// ErrMissingKey is returned when a record has no value at its key path.
	ErrMissingKey = errors.New("record: missing key")

	// ErrInvalidKey is returned when a key value is not a string or finite number.
	ErrInvalidKey = errors.New("record: invalid key")
)

// KeyKind distinguishes number keys from string keys.
// The numeric values define cross-kind ordering: numbers sort before strings.
type KeyKind int

const (
	KeyNumber KeyKind = 0
	KeyString KeyKind = 1
)

// Key is a primary key value: a finite number or a string.
type Key struct {
	kind KeyKind
	num  float64
	str  string
}

// NumberKey returns a number key. -0 is folded into 0.
func NumberKey(n float64) Key {
	if n == 0 {
		n = 0
	}
	return Key{kind: KeyNumber, num: n}
}

// StringKey returns a string key.
func StringKey(s string) Key {
	return Key{kind: KeyString, str: s}
}

// KeyOf converts a record value into a key.
func KeyOf(v Value) (Key, error) {
	switch val := v.(type) {
	case String:
		if !utf8.ValidString(string(val)) {
			return Key{}, fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidKey, string(val))
		}
		return StringKey(string(val)), nil
	case Int:
		if val > MaxSafeInteger || val < -MaxSafeInteger {
			return Key{}, fmt.Errorf("%w: %d exceeds the exact integer range", ErrInvalidKey, int64(val))
		}
		return NumberKey(float64(val)), nil
	case Float:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Key{}, fmt.Errorf("%w: %v", ErrInvalidKey, f)
		}
		return NumberKey(f), nil
	case nil:
		return Key{}, ErrMissingKey
	default:
		return Key{}, fmt.Errorf("%w: %T is not a string or number", ErrInvalidKey, v)
	}
}

// ParseKey interprets text as a key. With numeric set, text must parse as a
// finite number; otherwise it is taken verbatim as a string key and must be
// valid UTF-8.
func ParseKey(text string, numeric bool) (Key, error) {
	if !numeric {
		return KeyOf(String(text))
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return KeyOf(Int(n))
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Key{}, fmt.Errorf("%w: %q is not a finite number", ErrInvalidKey, text)
	}
	return NumberKey(f), nil
}

// Key extracts the primary key stored at path.
func (obj Object) Key(path string) (Key, error) {
	v, ok := obj[path]
	if !ok {
		return Key{}, fmt.Errorf("%w: %q", ErrMissingKey, path)
	}
	k, err := KeyOf(v)
	if err != nil {
		return Key{}, fmt.Errorf("key path %q: %w", path, err)
	}
	return k, nil
}

// Kind reports whether k is a number or a string key.
func (k Key) Kind() KeyKind { return k.kind }

// Number returns the numeric value of a number key.
func (k Key) Number() float64 { return k.num }

// Text returns the string value of a string key.
func (k Key) Text() string { return k.str }

// String renders the key for logs and error messages.
func (k Key) String() string {
	if k.kind == KeyNumber {
		return strconv.FormatFloat(k.num, 'g', -1, 64)
	}
	return k.str
}

// Compare orders keys: numbers before strings, numbers numerically,
// strings by UTF-16 code units.
func (k Key) Compare(other Key) int {
	if k.kind != other.kind {
		if k.kind < other.kind {
			return -1
		}
		return 1
	}
	if k.kind == KeyNumber {
		switch {
		case k.num < other.num:
			return -1
		case k.num > other.num:
			return 1
		}
		return 0
	}
	return compareUTF16(k.str, other.str)
}

// Equal reports whether two keys identify the same record.
func (k Key) Equal(other Key) bool {
	return k.Compare(other) == 0
}
