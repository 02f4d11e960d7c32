package classify

import (
	"regexp"
	"sort"
	"strings"
)

// corePackages are always implicitly available in the lightweight preview
// document (loaded from fixed CDN URLs), so they never count as external.
var corePackages = map[string]bool{
	"react":     true,
	"react-dom": true,
	"vue":       true,
}

var (
	reImport    = regexp.MustCompile(`(?m)^\s*import\s+(?:[^'"]*?\s+from\s+)?['"]([^'"]+)['"]`)
	reRequire   = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)
	reDirective = regexp.MustCompile(`(?m)^\s*//\s*DEPENDENCIES:\s*(.+)$`)
	reDynImport = regexp.MustCompile(`import\(\s*['"]([^'"]+)['"]\s*\)`)
)

// Packages extracts the third-party package names a source string depends
// on. Scoped imports contribute their two-segment name (@org/pkg), bare
// imports their first segment; relative and core-framework imports are
// excluded. An explicit leading "// DEPENDENCIES: pkgA, pkgB@1.2.3"
// directive is authoritative and merged with the statically detected set.
func Packages(src string) []string {
	seen := map[string]bool{}

	add := func(spec string) {
		name := packageName(spec)
		if name == "" || corePackages[name] || seen[name] {
			return
		}
		seen[name] = true
	}

	for _, re := range []*regexp.Regexp{reImport, reRequire, reDynImport} {
		for _, m := range re.FindAllStringSubmatch(src, -1) {
			add(m[1])
		}
	}
	for _, m := range reDirective.FindAllStringSubmatch(src, -1) {
		for _, part := range strings.Split(m[1], ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			// directive entries may pin a version: pkg@1.2.3
			add(strippedDirectiveName(part))
		}
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Unsatisfiable reports whether any detected package lies outside what the
// lightweight CDN-based preview can provide. Any non-core package does: the
// preview document has no module resolver, so a broken blank-screen render
// is replaced by an explicit warning surface.
func Unsatisfiable(pkgs []string) bool {
	return len(pkgs) > 0
}

// packageName normalizes an import specifier to its package name, or ""
// when the specifier is local or empty.
func packageName(spec string) string {
	spec = strings.TrimSpace(spec)
	if spec == "" || strings.HasPrefix(spec, ".") || strings.HasPrefix(spec, "/") {
		return ""
	}
	parts := strings.Split(spec, "/")
	if strings.HasPrefix(spec, "@") {
		if len(parts) < 2 {
			return ""
		}
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

// strippedDirectiveName drops a trailing @version pin, preserving the
// leading @ of scoped names.
func strippedDirectiveName(entry string) string {
	if strings.HasPrefix(entry, "@") {
		if at := strings.LastIndex(entry, "@"); at > 0 {
			return entry[:at]
		}
		return entry
	}
	if at := strings.Index(entry, "@"); at > 0 {
		return entry[:at]
	}
	return entry
}
