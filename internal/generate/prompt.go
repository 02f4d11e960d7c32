package generate

import (
	"strings"
)

// systemInstruction constrains the model to emit exactly one artifact JSON
// object and nothing else. The validator stays the authoritative gate; this
// text plus temperature 0 only narrow the failure surface.
const systemInstruction = `[PURPOSE]
You generate small, runnable code artifacts from a user request.

[OUTPUT]
Respond with exactly one JSON object and nothing else. No prose, no markdown fencing.
- artifact_type (string, required): one of "frontend", "backend", "hybrid"
- language (string, required): one of "html", "css", "javascript", "react", "vue", "python", "node", "bash"
- files (array, required, non-empty): objects with "path" (string) and "content" (string, full file text, never a diff)
- run (string or null): shell command to start a backend artifact; null for frontend artifacts

[RULES]
- The first file is the entry point unless "run" names another file.
- frontend artifacts must be renderable in a plain browser page with no build step.
- backend artifacts must run to completion and print their output.
- Prefer a single file unless the request clearly needs more.

[CONSTRAINTS]
- Do not wrap the JSON in a code fence.
- Every file content must be complete and self-contained.`

// Preferences are plain-text hints appended to the user turn. The model is
// not guaranteed to honor them; they are not structured fields.
type Preferences struct {
	FrontendFramework string
	BackendLanguage   string
}

// userPrompt assembles the user-turn content from the request plus
// preference hints.
func userPrompt(prompt string, prefs Preferences) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(prompt))
	if fw := strings.TrimSpace(prefs.FrontendFramework); fw != "" {
		b.WriteString("\n\nPreferred frontend framework: ")
		b.WriteString(fw)
	}
	if bl := strings.TrimSpace(prefs.BackendLanguage); bl != "" {
		b.WriteString("\nPreferred backend language: ")
		b.WriteString(bl)
	}
	return b.String()
}
