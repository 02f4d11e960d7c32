package livepreview

import (
	"sort"
	"strings"

	"codecanvas/internal/util/jsonutil"
)

// defaultDependencies are always present in the synthesized project.
var defaultDependencies = map[string]string{
	"react":     "^18.3.1",
	"react-dom": "^18.3.1",
}

var defaultDevDependencies = map[string]string{
	"@vitejs/plugin-react": "^4.3.1",
	"vite":                 "^5.4.0",
}

// Spec is the input to one runtime boot: the component source, its
// stylesheet, and the packages the classifier detected.
type Spec struct {
	Code         string
	CSS          string
	Dependencies []string
}

// synthesizeProject builds the minimal virtual file tree the runtime
// mounts: manifest, dev-server config, HTML entry, framework entry point,
// wrapped component, stylesheet, and a tailwind config when the stylesheet
// asks for it.
func synthesizeProject(spec Spec) map[string]string {
	files := map[string]string{
		"package.json":   packageJSON(spec.Dependencies),
		"vite.config.js": viteConfig,
		"index.html":     indexHTML,
		"src/main.jsx":   mainEntry,
		"src/App.jsx":    wrapComponent(spec.Code),
		"src/index.css":  spec.CSS,
	}
	if strings.Contains(spec.CSS, "@tailwind") {
		files["tailwind.config.js"] = tailwindConfig
		files["postcss.config.js"] = postcssConfig
	}
	return files
}

func packageJSON(deps []string) string {
	dependencies := map[string]string{}
	for k, v := range defaultDependencies {
		dependencies[k] = v
	}
	for _, d := range deps {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		if _, ok := dependencies[d]; !ok {
			dependencies[d] = "latest"
		}
	}
	manifest := map[string]any{
		"name":    "codecanvas-preview",
		"private": true,
		"type":    "module",
		"scripts": map[string]string{
			"dev": "vite --host",
		},
		"dependencies":    sortedMap(dependencies),
		"devDependencies": sortedMap(defaultDevDependencies),
	}
	b, err := jsonutil.MarshalNoEscapeIndent(manifest, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b) + "\n"
}

// sortedMap gives deterministic manifest output for identical input.
func sortedMap(m map[string]string) map[string]string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[string]string, len(m))
	for _, k := range keys {
		out[k] = m[k]
	}
	return out
}

// wrapComponent guarantees the mounted file default-exports a component
// even when the generated source forgot to.
func wrapComponent(code string) string {
	if strings.Contains(code, "export default") {
		return code
	}
	return code + "\n\nexport default typeof App !== 'undefined' ? App : function App() { return null; };\n"
}

const viteConfig = `import { defineConfig } from 'vite';
import react from '@vitejs/plugin-react';

export default defineConfig({
  plugins: [react()],
  server: {
    host: true,
    strictPort: false,
  },
});
`

const indexHTML = `<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Live preview</title>
  </head>
  <body>
    <div id="root"></div>
    <script type="module" src="/src/main.jsx"></script>
  </body>
</html>
`

const mainEntry = `import React from 'react';
import ReactDOM from 'react-dom/client';
import App from './App.jsx';
import './index.css';

ReactDOM.createRoot(document.getElementById('root')).render(
  React.createElement(React.StrictMode, null, React.createElement(App))
);
`

const tailwindConfig = `export default {
  content: ['./index.html', './src/**/*.{js,jsx}'],
  theme: { extend: {} },
  plugins: [],
};
`

const postcssConfig = `export default {
  plugins: { tailwindcss: {}, autoprefixer: {} },
};
`
