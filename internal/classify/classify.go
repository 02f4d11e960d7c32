// Package classify inspects artifacts to decide where they run and which
// third-party packages they need.
package classify

import (
	"fmt"

	"codecanvas/internal/artifact"
)

// routing is the canonical language → surface table. The declared
// artifact_type is authoritative for routing, but disagreements with this
// table are a defect worth logging, not silently trusting.
var routing = map[artifact.Language]artifact.Type{
	artifact.LangHTML:       artifact.TypeFrontend,
	artifact.LangCSS:        artifact.TypeFrontend,
	artifact.LangJavaScript: artifact.TypeFrontend,
	artifact.LangReact:      artifact.TypeFrontend,
	artifact.LangVue:        artifact.TypeFrontend,
	artifact.LangPython:     artifact.TypeBackend,
	artifact.LangNode:       artifact.TypeBackend,
	artifact.LangBash:       artifact.TypeBackend,
}

// IsFrontendLanguage reports whether lang renders in the browser.
func IsFrontendLanguage(lang artifact.Language) bool {
	return routing[lang] == artifact.TypeFrontend
}

// IsBackendLanguage reports whether lang executes in the remote sandbox.
// Mutually exclusive and jointly exhaustive with IsFrontendLanguage over the
// defined language enum.
func IsBackendLanguage(lang artifact.Language) bool {
	return routing[lang] == artifact.TypeBackend
}

// Mismatch describes a disagreement between the declared artifact type and
// the canonical routing for its language.
type Mismatch struct {
	Declared artifact.Type
	Language artifact.Language
	Routed   artifact.Type
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("classify: declared type %q disagrees with %q routing for language %q",
		m.Declared, m.Routed, m.Language)
}

// Check cross-checks the declared type against the routing table. A non-nil
// Mismatch is diagnostic information for the caller to log; routing still
// follows the declared type (hybrid artifacts never mismatch).
func Check(a *artifact.Artifact) *Mismatch {
	if a == nil || a.Type == artifact.TypeHybrid {
		return nil
	}
	routed, ok := routing[a.Language]
	if !ok || routed == a.Type {
		return nil
	}
	return &Mismatch{Declared: a.Type, Language: a.Language, Routed: routed}
}
