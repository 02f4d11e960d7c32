// Package preview compiles a validated frontend artifact into one
// self-contained HTML document safe to render in a sandboxed iframe.
package preview

import (
	"fmt"
	"log"
	"regexp"

	"codecanvas/internal/artifact"
)

// Generate transforms the artifact into a renderable HTML document. It is
// pure and deterministic for identical input, and never propagates a
// failure: internal errors degrade to an inline error document. The
// sandboxed iframe remains the primary security boundary; the sanitation
// pass here is defense in depth only.
func Generate(a *artifact.Artifact) (doc string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("preview: recovered from %v", r)
			doc = errorDocument(fmt.Sprintf("preview compiler error: %v", r))
		}
	}()

	if a == nil || len(a.Files) == 0 {
		return errorDocument("artifact has no files to preview")
	}

	switch a.Language {
	case artifact.LangReact:
		doc = reactDocument(a)
	case artifact.LangVue:
		doc = vueDocument(a)
	default:
		// html, css, javascript all share the vanilla path
		doc = htmlDocument(a)
	}
	return sanitize(doc)
}

var (
	reFileScheme  = regexp.MustCompile(`(?is)<script[^>]*src=["']file://[^"']*["'][^>]*>\s*(?:</script>)?`)
	reMetaRefresh = regexp.MustCompile(`(?is)<meta[^>]*http-equiv=["']?refresh["']?[^>]*/?>`)
)

// sanitize strips script tags pointing at file:// URLs and meta-refresh
// tags. Not a full sanitizer: the iframe sandbox carries the real isolation.
func sanitize(doc string) string {
	doc = reFileScheme.ReplaceAllString(doc, "")
	doc = reMetaRefresh.ReplaceAllString(doc, "")
	return doc
}
