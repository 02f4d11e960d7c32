package preview

import (
	"fmt"
	"strings"

	"codecanvas/internal/artifact"
	"codecanvas/internal/classify"
)

// vueDocument embeds the artifact's sources as Vue 3 global-build script
// blocks. Simpler than the react path: no JSX, so no in-browser transpiler.
func vueDocument(a *artifact.Artifact) string {
	src := componentSource(a)
	if pkgs := classify.Packages(src); classify.Unsatisfiable(pkgs) {
		return warningDocument(pkgs)
	}

	var css, scripts, markup []string
	for _, f := range a.Files {
		switch {
		case hasExt(f.Path, ".css"):
			css = append(css, f.Content)
		case hasExt(f.Path, ".js", ".mjs", ".vue"):
			scripts = append(scripts, vueScript(f.Content))
		case hasExt(f.Path, ".html", ".htm"):
			markup = append(markup, f.Content)
		}
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<script src=%q></script>\n", vueCDN)
	fmt.Fprintf(&b, "<script src=%q></script>\n", twindCDN)
	if len(css) > 0 {
		b.WriteString("<style>\n")
		b.WriteString(strings.Join(css, "\n"))
		b.WriteString("\n</style>\n")
	}
	b.WriteString("<script>")
	b.WriteString(errorOverlayScript)
	b.WriteString("</script>\n")
	b.WriteString("</head>\n<body>\n")
	if len(markup) > 0 {
		b.WriteString(strings.Join(markup, "\n"))
		b.WriteString("\n")
	} else {
		b.WriteString("<div id=\"app\"></div>\n")
	}
	for _, s := range scripts {
		b.WriteString("<script>\n")
		b.WriteString(s)
		b.WriteString("\n</script>\n")
	}
	if len(scripts) == 0 {
		// nothing declared an app; mount an empty shell so the surface is
		// visibly alive rather than blank
		b.WriteString("<script>\nVue.createApp({}).mount('#app');\n</script>\n")
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// vueScript rewrites module syntax for the global build: vue imports become
// destructuring from the Vue global, other imports are dropped, exports are
// stripped. A trailing createApp call is appended when the source never
// mounts itself.
func vueScript(src string) string {
	var bindings []string
	for _, m := range reVueNamed.FindAllStringSubmatch(src, -1) {
		for _, name := range strings.Split(m[1], ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				bindings = append(bindings, name)
			}
		}
	}
	out := reImportLine.ReplaceAllString(src, "")
	out = stripExports(out)
	out = strings.TrimSpace(out)
	if len(bindings) > 0 {
		out = "const { " + strings.Join(bindings, ", ") + " } = Vue;\n" + out
	}
	if !strings.Contains(out, ".mount(") {
		out += "\nif (typeof App !== 'undefined') { Vue.createApp(App).mount('#app'); }"
	}
	return out
}
