package generate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"codecanvas/internal/artifact"
	"codecanvas/internal/llm"
)

func TestGenerate_ValidArtifact(t *testing.T) {
	client := &llm.FakeClient{Response: `{"artifact_type":"backend","language":"python","files":[{"path":"main.py","content":"print(1)"}],"run":"python main.py"}`}
	o := New(client)

	res, err := o.Generate(context.Background(), "print one", Preferences{})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if res.Artifact.Type != artifact.TypeBackend || res.Artifact.Language != artifact.LangPython {
		t.Fatalf("unexpected artifact: %+v", res.Artifact)
	}
	if res.Model != "FakeLLM" {
		t.Fatalf("unexpected model name: %q", res.Model)
	}
}

func TestGenerate_FencedOutputTolerated(t *testing.T) {
	client := &llm.FakeClient{Response: "```json\n" + `{"artifact_type":"frontend","language":"html","files":[{"path":"index.html","content":"<h1>x</h1>"}]}` + "\n```"}
	o := New(client)

	res, err := o.Generate(context.Background(), "a page", Preferences{})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if res.Artifact.Files[0].Content != "<h1>x</h1>" {
		t.Fatalf("unexpected content: %q", res.Artifact.Files[0].Content)
	}
}

func TestGenerate_InvalidOutputIsTypedFailure(t *testing.T) {
	client := &llm.FakeClient{Response: "I cannot produce that artifact, sorry."}
	o := New(client)

	_, err := o.Generate(context.Background(), "do something", Preferences{})
	var gerr *GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	var verr *artifact.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected wrapped ValidationError, got %v", err)
	}
}

func TestGenerate_ProviderErrorIsTypedFailure(t *testing.T) {
	client := &llm.FakeClient{Err: errors.New("rate limited")}
	o := New(client)

	_, err := o.Generate(context.Background(), "anything", Preferences{})
	var gerr *GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
}

func TestGenerate_EmptyPrompt(t *testing.T) {
	o := New(llm.NewFakeClient())
	if _, err := o.Generate(context.Background(), "   ", Preferences{}); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}

func TestUserPrompt_PreferenceHints(t *testing.T) {
	got := userPrompt("build a timer", Preferences{FrontendFramework: "react", BackendLanguage: "python"})
	if !strings.Contains(got, "build a timer") {
		t.Fatalf("prompt lost: %q", got)
	}
	if !strings.Contains(got, "Preferred frontend framework: react") {
		t.Fatalf("frontend hint missing: %q", got)
	}
	if !strings.Contains(got, "Preferred backend language: python") {
		t.Fatalf("backend hint missing: %q", got)
	}
	if plain := userPrompt("build a timer", Preferences{}); plain != "build a timer" {
		t.Fatalf("hints appended for empty preferences: %q", plain)
	}
}
