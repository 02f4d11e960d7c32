package jsonutil

import (
	"strings"
	"testing"
)

func TestMarshalNoEscape(t *testing.T) {
	b, err := MarshalNoEscape(map[string]string{"code": "<h1>&</h1>"})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(b), "<h1>&</h1>") {
		t.Fatalf("HTML characters escaped: %s", b)
	}
	if strings.HasSuffix(string(b), "\n") {
		t.Fatalf("trailing newline not trimmed: %q", b)
	}
}

func TestMarshalNoEscapeIndent(t *testing.T) {
	b, err := MarshalNoEscapeIndent(map[string]string{"a": "<b>"}, "", "  ")
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(b), "\n  ") {
		t.Fatalf("output not indented: %q", b)
	}
	if !strings.Contains(string(b), "<b>") {
		t.Fatalf("HTML characters escaped: %s", b)
	}
}

func TestUnmarshal_Direct(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	if err := Unmarshal([]byte(`{"a":1}`), &v); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if v.A != 1 {
		t.Fatalf("got %d", v.A)
	}
}

func TestUnmarshal_DoubleEncodedPayload(t *testing.T) {
	// whole payload delivered as one quoted JSON string
	raw := []byte(`"{\"a\":\"<h1>\"}"`)
	var v struct {
		A string `json:"a"`
	}
	if err := Unmarshal(raw, &v); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if v.A != "<h1>" {
		t.Fatalf("got %q", v.A)
	}
}

func TestUnmarshal_Invalid(t *testing.T) {
	var v any
	if err := Unmarshal([]byte(`{broken`), &v); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestUnescapeString(t *testing.T) {
	got, err := unescapeString(`\u003ch1\u003e`)
	if err != nil {
		t.Fatalf("unescape failed: %v", err)
	}
	if got != "<h1>" {
		t.Fatalf("got %q", got)
	}

	plain := "no escapes here"
	if got, err := unescapeString(plain); err != nil || got != plain {
		t.Fatalf("plain string mangled: %q %v", got, err)
	}
}
