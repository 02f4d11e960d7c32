package preview

import (
	"strings"

	"codecanvas/internal/artifact"
)

// htmlDocument handles plain html/css/javascript artifacts: one HTML file
// (or a synthesized shell) with every CSS file injected before </head> and
// every non-component JS file injected before </body>.
func htmlDocument(a *artifact.Artifact) string {
	var htmlFile *artifact.File
	var css, js []string
	for i := range a.Files {
		f := &a.Files[i]
		switch {
		case hasExt(f.Path, ".html", ".htm"):
			if htmlFile == nil {
				htmlFile = f
			}
		case hasExt(f.Path, ".css"):
			css = append(css, f.Content)
		case hasExt(f.Path, ".js", ".mjs"):
			js = append(js, f.Content)
		}
	}

	doc := ""
	if htmlFile != nil {
		doc = htmlFile.Content
	} else {
		doc = "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n</head>\n<body>\n</body>\n</html>"
	}
	if len(css) > 0 {
		style := "<style>\n" + strings.Join(css, "\n") + "\n</style>\n"
		doc = injectBefore(doc, "</head>", style)
	}
	if len(js) > 0 {
		script := "<script>\n" + strings.Join(js, "\n") + "\n</script>\n"
		doc = injectBefore(doc, "</body>", script)
	}
	return doc
}

// injectBefore inserts payload ahead of the first case-insensitive match of
// marker. When the marker is absent the payload is appended.
func injectBefore(doc, marker, payload string) string {
	idx := strings.Index(strings.ToLower(doc), strings.ToLower(marker))
	if idx < 0 {
		return doc + payload
	}
	return doc[:idx] + payload + doc[idx:]
}

func hasExt(path string, exts ...string) bool {
	lower := strings.ToLower(path)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
