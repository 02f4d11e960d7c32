package preview

import (
	"fmt"
	"regexp"
	"strings"

	"codecanvas/internal/artifact"
	"codecanvas/internal/classify"
)

// hookNames is the fixed set of framework hooks the compiler knows how to
// auto-bind. LLM output references hooks without importing them often enough
// that the binding cannot be left to the model.
var hookNames = []string{
	"useState", "useEffect", "useMemo", "useCallback", "useRef",
	"useContext", "useReducer", "useLayoutEffect", "useTransition",
	"useDeferredValue", "useId", "useImperativeHandle",
}

var (
	reExportDefaultFn   = regexp.MustCompile(`export\s+default\s+function\s+([A-Z][A-Za-z0-9_]*)`)
	reExportDefaultName = regexp.MustCompile(`export\s+default\s+([A-Z][A-Za-z0-9_]*)\s*;?`)
	rePascalFn          = regexp.MustCompile(`(?m)^\s*function\s+([A-Z][A-Za-z0-9_]*)\s*\(`)
	rePascalArrow       = regexp.MustCompile(`(?m)^\s*(?:const|let|var)\s+([A-Z][A-Za-z0-9_]*)\s*=\s*(?:async\s*)?(?:\([^)]*\)|[A-Za-z0-9_]+)?\s*=>`)

	reImportLine   = regexp.MustCompile(`(?m)^\s*import\s[^'"]*?['"][^'"]+['"]\s*;?\s*$`)
	reReactNamed   = regexp.MustCompile(`import\s+(?:React\s*,\s*)?\{([^}]+)\}\s+from\s+['"]react['"]`)
	reVueNamed     = regexp.MustCompile(`import\s+\{([^}]+)\}\s+from\s+['"]vue['"]`)
	reExportNamed  = regexp.MustCompile(`(?m)^(\s*)export\s+(const|let|var|function|class)\b`)
	reExportDecl   = regexp.MustCompile(`(?m)^(\s*)export\s+default\s+`)
	reExportBraces = regexp.MustCompile(`(?m)^\s*export\s*\{[^}]*\}\s*;?\s*$`)
)

// reactDocument compiles a React artifact into a standalone document that
// transpiles JSX in the browser. When the component needs packages the CDN
// shell cannot provide, the output is the warning surface instead of a
// render that would come up blank.
func reactDocument(a *artifact.Artifact) string {
	src := componentSource(a)

	if pkgs := classify.Packages(src); classify.Unsatisfiable(pkgs) {
		return warningDocument(pkgs)
	}

	entry := detectEntry(src)
	code := rewriteImports(src)
	code = stripExports(code)
	code = bindHooks(code, src)

	var css []string
	for _, f := range a.Files {
		if hasExt(f.Path, ".css") {
			css = append(css, f.Content)
		}
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	fmt.Fprintf(&b, "<script crossorigin src=%q></script>\n", reactCDN)
	fmt.Fprintf(&b, "<script crossorigin src=%q></script>\n", reactDOMCDN)
	fmt.Fprintf(&b, "<script src=%q></script>\n", babelCDN)
	fmt.Fprintf(&b, "<script src=%q></script>\n", twindCDN)
	if len(css) > 0 {
		b.WriteString("<style>\n")
		b.WriteString(strings.Join(css, "\n"))
		b.WriteString("\n</style>\n")
	}
	b.WriteString("<script>")
	b.WriteString(errorOverlayScript)
	b.WriteString("</script>\n")
	b.WriteString("</head>\n<body>\n<div id=\"root\"></div>\n")
	b.WriteString("<script type=\"text/babel\" data-presets=\"react,typescript\" data-type=\"module\">\n")
	b.WriteString(code)
	b.WriteString("\n")
	b.WriteString(mountScript(entry))
	b.WriteString("</script>\n</body>\n</html>\n")
	return b.String()
}

// componentSource joins every script-like file in declared order.
func componentSource(a *artifact.Artifact) string {
	var parts []string
	for _, f := range a.Files {
		if hasExt(f.Path, ".js", ".jsx", ".ts", ".tsx", ".mjs") {
			parts = append(parts, f.Content)
		}
	}
	if len(parts) == 0 {
		// single-file artifacts sometimes arrive with an html or txt path
		return a.Source()
	}
	return strings.Join(parts, "\n\n")
}

// detectEntry finds the component to mount, by priority: explicit default
// export, PascalCase function declaration, PascalCase arrow assignment,
// conventional fallback.
func detectEntry(src string) string {
	if m := reExportDefaultFn.FindStringSubmatch(src); m != nil {
		return m[1]
	}
	if m := reExportDefaultName.FindStringSubmatch(src); m != nil {
		return m[1]
	}
	if m := rePascalFn.FindStringSubmatch(src); m != nil {
		return m[1]
	}
	if m := rePascalArrow.FindStringSubmatch(src); m != nil {
		return m[1]
	}
	return "App"
}

// rewriteImports converts module imports into what a script-tag execution
// context can satisfy: named react imports become destructuring from the
// React global, everything else is stripped (no resolver exists to honor
// package or relative imports).
func rewriteImports(src string) string {
	var bindings []string
	for _, m := range reReactNamed.FindAllStringSubmatch(src, -1) {
		for _, name := range strings.Split(m[1], ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			// honor aliases: { useState as useLocal }
			if parts := strings.SplitN(name, " as ", 2); len(parts) == 2 {
				name = strings.TrimSpace(parts[0]) + ": " + strings.TrimSpace(parts[1])
			}
			bindings = append(bindings, name)
		}
	}
	out := reImportLine.ReplaceAllString(src, "")
	out = strings.TrimLeft(out, "\n")
	if len(bindings) > 0 {
		out = "const { " + strings.Join(bindings, ", ") + " } = React;\n" + out
	}
	return out
}

// stripExports removes export syntax without touching the underlying
// declarations.
func stripExports(src string) string {
	src = reExportBraces.ReplaceAllString(src, "")
	src = reExportDecl.ReplaceAllString(src, "$1")
	src = reExportNamed.ReplaceAllString(src, "$1$2")
	return src
}

// bindHooks prepends a destructuring statement for hooks that are called in
// the source but were never imported or destructured. original is consulted
// so hooks the author did import (and rewriteImports already bound) are not
// bound twice.
func bindHooks(code, original string) string {
	var missing []string
	for _, hook := range hookNames {
		call := regexp.MustCompile(`\b` + hook + `\s*\(`)
		if !call.MatchString(original) {
			continue
		}
		bound := regexp.MustCompile(`(?:\{[^}]*\b` + hook + `\b[^}]*\}\s*(?:=\s*React|from))|React\.` + hook)
		if bound.MatchString(original) {
			continue
		}
		missing = append(missing, hook)
	}
	if len(missing) == 0 {
		return code
	}
	return "const { " + strings.Join(missing, ", ") + " } = React;\n" + code
}

// mountScript waits for the styling engine (or a fixed timeout, whichever
// first) and mounts the entry component, surfacing mount failures in the
// error panel.
func mountScript(entry string) string {
	return fmt.Sprintf(`
function __mount() {
  try {
    const root = ReactDOM.createRoot(document.getElementById('root'));
    root.render(React.createElement(%s));
  } catch (err) {
    window.__showError((err && err.stack) ? err.stack : String(err));
  }
}
if (window.twind && window.twind.ready) {
  Promise.race([
    window.twind.ready,
    new Promise(function (res) { setTimeout(res, %d); })
  ]).then(__mount);
} else {
  setTimeout(__mount, 0);
}
`, entry, mountTimeoutMs)
}
