package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Marshal produces the canonical JSON encoding of v.
//
// Differences from encoding/json:
//  1. Object keys sorted by UTF-16 code units
//  2. No HTML escaping (< > & are written as-is)
//  3. Floats always carry a fraction or exponent, so they never decode as Int
//  4. NaN and infinities are rejected
//  5. Strings that are not valid UTF-8 are rejected rather than replaced
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalNormalized is Marshal with every string and key NFC-normalized.
// Only used for fingerprints; stored records keep their original text.
func MarshalNormalized(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v, true); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v Value, nfc bool) error {
	switch val := v.(type) {
	case nil, Null:
		buf.WriteString("null")
	case String:
		return encodeString(buf, string(val), nfc)
	case Int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case Float:
		s, err := formatFloat(float64(val))
		if err != nil {
			return err
		}
		buf.WriteString(s)
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Array:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeValue(buf, elem, nfc); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case Object:
		return encodeObject(buf, val, nfc)
	default:
		return fmt.Errorf("record: unknown value type %T", v)
	}
	return nil
}

func encodeObject(buf *bytes.Buffer, obj Object, nfc bool) error {
	keys := obj.SortedKeys()
	if nfc {
		// Normalizing can merge keys that differ only in composition.
		normalized := make(Object, len(obj))
		for _, k := range keys {
			normalized[norm.NFC.String(k)] = obj[k]
		}
		obj = normalized
		keys = obj.SortedKeys()
	}

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeString(buf, k, false); err != nil {
			return fmt.Errorf("key %q: %w", k, err)
		}
		buf.WriteByte(':')
		if err := encodeValue(buf, obj[k], nfc); err != nil {
			return fmt.Errorf("value for key %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

func encodeString(buf *bytes.Buffer, s string, nfc bool) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("record: string %q is not valid UTF-8", s)
	}
	if nfc {
		s = norm.NFC.String(s)
	}
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// json.Encoder adds a trailing newline
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'}))
	return nil
}

func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("record: unsupported float value %v", f)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s, nil
}
