package classify

import (
	"testing"

	"codecanvas/internal/artifact"
)

func TestRouting_MutuallyExclusiveAndExhaustive(t *testing.T) {
	for _, lang := range artifact.Languages() {
		fe := IsFrontendLanguage(lang)
		be := IsBackendLanguage(lang)
		if fe == be {
			t.Fatalf("language %q: frontend=%v backend=%v, expected exactly one", lang, fe, be)
		}
	}
}

func TestRouting_UnknownLanguage(t *testing.T) {
	if IsFrontendLanguage("cobol") || IsBackendLanguage("cobol") {
		t.Fatal("unknown language must route nowhere")
	}
}

func TestCheck(t *testing.T) {
	mismatched := &artifact.Artifact{Type: artifact.TypeFrontend, Language: artifact.LangPython}
	mm := Check(mismatched)
	if mm == nil {
		t.Fatal("expected mismatch for frontend/python")
	}
	if mm.Routed != artifact.TypeBackend {
		t.Fatalf("expected backend routing, got %q", mm.Routed)
	}

	agreeing := &artifact.Artifact{Type: artifact.TypeBackend, Language: artifact.LangNode}
	if mm := Check(agreeing); mm != nil {
		t.Fatalf("unexpected mismatch: %v", mm)
	}

	hybrid := &artifact.Artifact{Type: artifact.TypeHybrid, Language: artifact.LangHTML}
	if mm := Check(hybrid); mm != nil {
		t.Fatalf("hybrid must never mismatch, got %v", mm)
	}

	unknown := &artifact.Artifact{Type: artifact.TypeBackend, Language: "cobol"}
	if mm := Check(unknown); mm != nil {
		t.Fatalf("unknown language must not mismatch, got %v", mm)
	}
	if mm := Check(nil); mm != nil {
		t.Fatalf("nil artifact must not mismatch, got %v", mm)
	}
}
