package artifact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const validBackendJSON = `{
  "artifact_type": "backend",
  "language": "python",
  "files": [
    {"path": "main.py", "content": "print('hello')"},
    {"path": "lib/util.py", "content": "x = 1"}
  ],
  "run": "python main.py"
}`

func TestParse_ValidBackend(t *testing.T) {
	a, err := Parse(validBackendJSON)
	require.NoError(t, err)
	require.Equal(t, TypeBackend, a.Type)
	require.Equal(t, LangPython, a.Language)
	require.Equal(t, "python main.py", a.Run)
	require.Len(t, a.Files, 2)
	require.Equal(t, "main.py", a.Files[0].Path)
	require.Equal(t, "print('hello')", a.Files[0].Content)
}

func TestParse_RoundTrip(t *testing.T) {
	orig, err := Parse(validBackendJSON)
	require.NoError(t, err)

	out, err := Serialize(orig)
	require.NoError(t, err)

	again, err := Parse(out)
	require.NoError(t, err)
	require.Equal(t, orig, again)
}

func TestParse_FenceAndProseTolerance(t *testing.T) {
	bare := `{"artifact_type":"frontend","language":"html","files":[{"path":"index.html","content":"<h1>hi</h1>"}]}`

	variants := map[string]string{
		"bare":         bare,
		"fenced":       "```json\n" + bare + "\n```",
		"fenced plain": "```\n" + bare + "\n```",
		"prose":        "Sure! Here is your artifact:\n" + bare + "\nLet me know if you need changes.",
	}
	for name, raw := range variants {
		a, err := Parse(raw)
		require.NoError(t, err, name)
		require.Equal(t, TypeFrontend, a.Type, name)
		require.Equal(t, "<h1>hi</h1>", a.Files[0].Content, name)
	}
}

func TestParse_FrontendDropsRun(t *testing.T) {
	a, err := Parse(`{"artifact_type":"frontend","language":"html","files":[{"path":"index.html","content":"<p>x</p>"}],"run":"serve ."}`)
	require.NoError(t, err)
	require.Empty(t, a.Run)
}

func TestParse_StructuralRejections(t *testing.T) {
	cases := map[string]string{
		"no JSON object":     "the model refused to answer",
		"missing type":       `{"language":"html","files":[{"path":"a.html","content":"x"}]}`,
		"missing language":   `{"artifact_type":"frontend","files":[{"path":"a.html","content":"x"}]}`,
		"missing files":      `{"artifact_type":"frontend","language":"html"}`,
		"empty files":        `{"artifact_type":"frontend","language":"html","files":[]}`,
		"file missing path":  `{"artifact_type":"frontend","language":"html","files":[{"content":"x"}]}`,
		"non-string content": `{"artifact_type":"frontend","language":"html","files":[{"path":"a.html","content":42}]}`,
		"truncated JSON":     `{"artifact_type":"frontend","language":"html","files":[{"path":"a.html`,
	}
	for name, raw := range cases {
		a, err := Parse(raw)
		require.Nil(t, a, name)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, name)
	}
}

func TestEntryFile(t *testing.T) {
	a := &Artifact{
		Type:     TypeBackend,
		Language: LangPython,
		Files: []File{
			{Path: "lib/util.py", Content: "x = 1"},
			{Path: "main.py", Content: "print('hi')"},
		},
		Run: "python main.py",
	}
	f := a.EntryFile()
	require.NotNil(t, f)
	require.Equal(t, "main.py", f.Path)

	a.Run = "make all"
	require.Equal(t, "lib/util.py", a.EntryFile().Path)

	var nilArtifact *Artifact
	require.Nil(t, nilArtifact.EntryFile())
	require.Nil(t, (&Artifact{}).EntryFile())
}
