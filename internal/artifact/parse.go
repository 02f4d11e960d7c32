package artifact

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"codecanvas/internal/util/jsonutil"
)

// ValidationError reports why raw model output could not be coerced into an
// artifact. It is a value, not a panic: Parse never throws past this boundary
// and never returns a partially valid artifact.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "artifact: invalid model output: " + e.Reason
}

func invalid(format string, args ...any) (*Artifact, error) {
	err := &ValidationError{Reason: fmt.Sprintf(format, args...)}
	log.Printf("artifact: parse rejected: %s", err.Reason)
	return nil, err
}

// Parse coerces free-form LLM text output into a validated Artifact.
// The input may be wrapped in a markdown code fence, surrounded by prose the
// model ignored instructions about, or be malformed JSON. Any parse or
// structural failure yields a *ValidationError; callers must treat that as
// "regenerate or surface to the user", never best-effort render.
func Parse(raw string) (*Artifact, error) {
	text := stripFence(raw)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return invalid("no JSON object found")
	}
	text = text[start : end+1]

	var wire struct {
		ArtifactType *string           `json:"artifact_type"`
		Language     *string           `json:"language"`
		Files        []json.RawMessage `json:"files"`
		Run          *string           `json:"run"`
	}
	if err := jsonutil.Unmarshal([]byte(text), &wire); err != nil {
		return invalid("parse JSON: %v", err)
	}
	if wire.ArtifactType == nil {
		return invalid("missing artifact_type")
	}
	if wire.Language == nil {
		return invalid("missing language")
	}
	if wire.Files == nil {
		return invalid("missing files")
	}
	if len(wire.Files) == 0 {
		return invalid("files is empty")
	}

	a := &Artifact{
		Type:     Type(strings.TrimSpace(*wire.ArtifactType)),
		Language: Language(strings.TrimSpace(*wire.Language)),
	}
	if wire.Run != nil && a.Type != TypeFrontend {
		// frontend artifacts are pure browser surfaces; a run command has
		// no meaning for them and is dropped.
		a.Run = strings.TrimSpace(*wire.Run)
	}
	for i, rawFile := range wire.Files {
		var f struct {
			Path    *string          `json:"path"`
			Content *json.RawMessage `json:"content"`
		}
		if err := jsonutil.Unmarshal(rawFile, &f); err != nil {
			return invalid("files[%d]: %v", i, err)
		}
		if f.Path == nil || strings.TrimSpace(*f.Path) == "" {
			return invalid("files[%d]: missing path", i)
		}
		if f.Content == nil {
			return invalid("files[%d] %q: missing content", i, *f.Path)
		}
		var content string
		if err := json.Unmarshal(*f.Content, &content); err != nil {
			return invalid("files[%d] %q: content is not a string", i, *f.Path)
		}
		a.Files = append(a.Files, File{
			Path:    strings.TrimSpace(*f.Path),
			Content: content,
		})
	}
	return a, nil
}

// Serialize renders the artifact in its wire shape. Round-trips through
// Parse for any structurally valid artifact.
func Serialize(a *Artifact) (string, error) {
	if a == nil {
		return "", fmt.Errorf("artifact is nil")
	}
	b, err := jsonutil.MarshalNoEscapeIndent(a, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// stripFence removes a single outer markdown code fence (``` or ```json)
// when the whole payload is fenced. Inner fences are left alone.
func stripFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.Index(t, "\n"); nl >= 0 {
		// drop the language tag line (```json, ```javascript, bare ```)
		t = t[nl+1:]
	}
	if idx := strings.LastIndex(t, "```"); idx >= 0 {
		t = t[:idx]
	}
	return t
}
