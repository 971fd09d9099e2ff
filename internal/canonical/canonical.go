// Package canonical provides RFC 8785 canonical JSON and domain-separated
// hashing for content-addressed identities (trace hashes, tree hashes).
package canonical

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// Marshal produces RFC 8785 canonical JSON.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping
//  3. Strings are NFC normalized
//  4. Floats and null are rejected
//
// Supported values: string, int, int64, bool, []any, map[string]any.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshal(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshal(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		return marshalString(buf, val)
	case int:
		fmt.Fprintf(buf, "%d", val)
	case int64:
		fmt.Fprintf(buf, "%d", val)
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshal(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		buf.WriteByte('{')
		for i, k := range SortedKeys(val) {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshalString(buf, k); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			buf.WriteByte(':')
			if err := marshal(buf, val[k]); err != nil {
				return fmt.Errorf("value for key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	case float32, float64:
		return fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

// marshalString writes an NFC-normalized JSON string without HTML escaping.
// U+2028 and U+2029 are written literally as RFC 8785 requires.
func marshalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	out := bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'})
	buf.Write(unescapeLineSeparators(out))
	return nil
}

// unescapeLineSeparators turns the encoder's \u2028 and \u2029 escapes back
// into literal characters. An escape preceded by an odd run of backslashes
// is literal text ("\\u2028") and is kept.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if i+6 <= len(data) && bytes.HasPrefix(data[i:], []byte(`\u202`)) && (data[i+5] == '8' || data[i+5] == '9') {
			slashes := 0
			for j := len(out) - 1; j >= 0 && out[j] == '\\'; j-- {
				slashes++
			}
			if slashes%2 == 0 {
				if data[i+5] == '8' {
					out = append(out, "\u2028"...)
				} else {
					out = append(out, "\u2029"...)
				}
				i += 5
				continue
			}
		}
		out = append(out, data[i])
	}
	return out
}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units).
// sort.Strings orders by UTF-8 bytes, which differs for supplementary planes.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}

// HashWithDomain computes SHA256(domain + 0x00 + data) as lowercase hex.
// The separator keeps domain and data boundaries unambiguous.
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
