package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Unmarshal decodes JSON with best effort: a direct decode first, then a
// retry after normalizing double-escaped unicode sequences. Model output
// that passed through an HTML-escaping serializer on the provider side
// arrives with sequences like "\\u003c" inside string values; the retry
// makes those payloads decodable without the caller caring.
func Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err == nil {
		return nil
	}
	norm, err := normalizeUnicode(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(norm, v)
}

// MarshalNoEscape encodes v into JSON without escaping <, >, & into
// \u003c etc. Artifact file contents are code; HTML escaping would make
// them unreadable in transcripts and diffs.
func MarshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// MarshalNoEscapeIndent is MarshalNoEscape with indentation.
func MarshalNoEscapeIndent(v any, prefix, indent string) ([]byte, error) {
	raw, err := MarshalNoEscape(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, prefix, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// normalizeUnicode parses JSON bytes and recursively unescapes remaining
// double-escaped unicode sequences inside string values, re-encoding
// without HTML escaping.
func normalizeUnicode(raw []byte) ([]byte, error) {
	var anyVal any
	if err := json.Unmarshal(raw, &anyVal); err != nil {
		return nil, err
	}
	// a double-encoded payload decodes to one JSON string; unwrap it
	if s, ok := anyVal.(string); ok {
		if err := json.Unmarshal([]byte(s), &anyVal); err != nil {
			return nil, errors.New("jsonutil: cannot parse JSON payload")
		}
	}
	return MarshalNoEscape(deepUnescape(anyVal))
}

func deepUnescape(v any) any {
	switch x := v.(type) {
	case string:
		if s, err := unescapeString(x); err == nil {
			return s
		}
		return x
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = deepUnescape(x[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, vv := range x {
			out[k] = deepUnescape(vv)
		}
		return out
	default:
		return v
	}
}

// unescapeString converts unicode escapes like \u003e into actual
// characters, including double-escaped sequences.
func unescapeString(s string) (string, error) {
	if !strings.Contains(s, `\u`) {
		return s, nil
	}
	esc := strings.ReplaceAll(s, `"`, `\"`)
	esc = strings.ReplaceAll(esc, "\n", `\n`)
	esc = strings.ReplaceAll(esc, "\r", `\r`)
	esc = strings.ReplaceAll(esc, "\t", `\t`)
	var out string
	if err := json.Unmarshal([]byte(`"`+esc+`"`), &out); err != nil {
		return "", err
	}
	return out, nil
}
