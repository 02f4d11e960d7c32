package preview

import (
	"html"
	"strings"
)

// Fixed CDN URLs for the lightweight preview document. The styling engine is
// twind rather than the Tailwind CDN script because twind keeps working
// under the cross-origin-isolation headers the execution surface sends.
const (
	reactCDN    = "https://unpkg.com/react@18/umd/react.production.min.js"
	reactDOMCDN = "https://unpkg.com/react-dom@18/umd/react-dom.production.min.js"
	babelCDN    = "https://unpkg.com/@babel/standalone/babel.min.js"
	vueCDN      = "https://unpkg.com/vue@3/dist/vue.global.prod.js"
	twindCDN    = "https://cdn.jsdelivr.net/npm/@twind/cdn@1/cdn.global.js"
)

// mountTimeoutMs bounds the wait for the styling engine before mounting
// anyway.
const mountTimeoutMs = 1500

// errorOverlayScript installs a global error handler that renders any
// uncaught exception as a visible in-page panel. A silent blank iframe gives
// the user nothing to act on.
const errorOverlayScript = `
window.__showError = function (msg) {
  var panel = document.createElement('div');
  panel.style.cssText = 'position:fixed;inset:12px;overflow:auto;background:#fef2f2;border:1px solid #fca5a5;border-radius:8px;color:#991b1b;font:13px/1.5 monospace;padding:16px;white-space:pre-wrap;z-index:9999';
  panel.textContent = 'Preview error:\n' + msg;
  document.body.appendChild(panel);
};
window.onerror = function (msg, src, line, col, err) {
  window.__showError((err && err.stack) ? err.stack : String(msg));
  return true;
};
window.addEventListener('unhandledrejection', function (ev) {
  window.__showError(String(ev.reason));
});
`

// errorDocument is the degraded output when preview synthesis itself fails.
func errorDocument(msg string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Preview error</title>\n</head>\n<body style=\"font-family:monospace;background:#fef2f2;color:#991b1b;padding:24px\">\n")
	b.WriteString("<h3>Preview unavailable</h3>\n<pre>")
	b.WriteString(html.EscapeString(msg))
	b.WriteString("</pre>\n</body>\n</html>\n")
	return b.String()
}

// warningDocument tells the user which packages the lightweight preview
// cannot satisfy and how to proceed. Deliberate policy: an explicit,
// actionable message instead of a broken blank render.
func warningDocument(pkgs []string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>External packages required</title>\n</head>\n<body style=\"font-family:system-ui,sans-serif;background:#fffbeb;color:#92400e;padding:24px\">\n")
	b.WriteString("<h3>This component needs external packages</h3>\n")
	b.WriteString("<p>The quick preview cannot load these from a CDN:</p>\n<ul>\n")
	for _, p := range pkgs {
		b.WriteString("<li><code>")
		b.WriteString(html.EscapeString(p))
		b.WriteString("</code></li>\n")
	}
	b.WriteString("</ul>\n<p>Switch to the live preview runtime to install them and run the component for real.</p>\n")
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
