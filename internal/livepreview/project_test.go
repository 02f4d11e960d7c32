package livepreview

import (
	"strings"
	"testing"

	"codecanvas/internal/util/jsonutil"
)

func TestSynthesizeProject_Layout(t *testing.T) {
	files := synthesizeProject(Spec{Code: "const App = () => null;", CSS: "body { margin: 0; }"})
	for _, path := range []string{"package.json", "vite.config.js", "index.html", "src/main.jsx", "src/App.jsx", "src/index.css"} {
		if _, ok := files[path]; !ok {
			t.Fatalf("missing %s", path)
		}
	}
	if _, ok := files["tailwind.config.js"]; ok {
		t.Fatal("tailwind config synthesized without @tailwind directives")
	}
	if files["src/index.css"] != "body { margin: 0; }" {
		t.Fatalf("stylesheet not carried: %q", files["src/index.css"])
	}
}

func TestSynthesizeProject_TailwindOnDemand(t *testing.T) {
	files := synthesizeProject(Spec{Code: "x", CSS: "@tailwind base;\n@tailwind utilities;"})
	if _, ok := files["tailwind.config.js"]; !ok {
		t.Fatal("missing tailwind config")
	}
	if _, ok := files["postcss.config.js"]; !ok {
		t.Fatal("missing postcss config")
	}
}

func TestPackageJSON_Dependencies(t *testing.T) {
	raw := packageJSON([]string{"framer-motion", "react", "", "d3"})

	var manifest struct {
		Dependencies map[string]string `json:"dependencies"`
		Scripts      map[string]string `json:"scripts"`
	}
	if err := jsonutil.Unmarshal([]byte(raw), &manifest); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	if manifest.Dependencies["react"] != "^18.3.1" {
		t.Fatalf("detected react must not override the pinned version: %q", manifest.Dependencies["react"])
	}
	if manifest.Dependencies["framer-motion"] != "latest" || manifest.Dependencies["d3"] != "latest" {
		t.Fatalf("detected packages missing: %v", manifest.Dependencies)
	}
	if manifest.Scripts["dev"] == "" {
		t.Fatal("missing dev script")
	}

	if again := packageJSON([]string{"framer-motion", "react", "", "d3"}); again != raw {
		t.Fatal("manifest output must be deterministic")
	}
}

func TestWrapComponent(t *testing.T) {
	kept := "export default function App() { return null; }"
	if got := wrapComponent(kept); got != kept {
		t.Fatalf("existing default export must pass through, got %q", got)
	}
	wrapped := wrapComponent("const App = () => null;")
	if !strings.Contains(wrapped, "export default") {
		t.Fatalf("missing appended default export: %q", wrapped)
	}
}
