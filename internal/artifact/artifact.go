package artifact

import "strings"

// Type determines which execution surface an artifact is routed to.
type Type string

const (
	TypeFrontend Type = "frontend"
	TypeBackend  Type = "backend"
	TypeHybrid   Type = "hybrid"
)

// Language determines which transform or executor applies.
type Language string

const (
	LangHTML       Language = "html"
	LangCSS        Language = "css"
	LangJavaScript Language = "javascript"
	LangReact      Language = "react"
	LangVue        Language = "vue"
	LangPython     Language = "python"
	LangNode       Language = "node"
	LangBash       Language = "bash"
)

// Languages lists every defined language value, in a stable order.
func Languages() []Language {
	return []Language{
		LangHTML, LangCSS, LangJavaScript, LangReact,
		LangVue, LangPython, LangNode, LangBash,
	}
}

// File is one complete file inside an artifact. Content is the full file
// text, never a diff.
type File struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Artifact is the value object produced by generation and consumed by both
// the preview compiler and the execution driver. Files keep their declared
// order; the first file is the conventional entry point unless Run names
// another.
type Artifact struct {
	Type     Type     `json:"artifact_type"`
	Language Language `json:"language"`
	Files    []File   `json:"files"`
	Run      string   `json:"run,omitempty"`
}

// File returns the file at path, or nil.
func (a *Artifact) File(path string) *File {
	if a == nil {
		return nil
	}
	path = strings.TrimSpace(path)
	for i := range a.Files {
		if a.Files[i].Path == path {
			return &a.Files[i]
		}
	}
	return nil
}

// EntryFile resolves the file the executor should run: the file named by the
// Run command when one of its tokens matches a declared path, otherwise the
// first declared file.
func (a *Artifact) EntryFile() *File {
	if a == nil || len(a.Files) == 0 {
		return nil
	}
	if run := strings.TrimSpace(a.Run); run != "" {
		fields := strings.Fields(run)
		for i := len(fields) - 1; i >= 0; i-- {
			if f := a.File(fields[i]); f != nil {
				return f
			}
		}
	}
	return &a.Files[0]
}

// Source concatenates every file's content in declared order. Helper for
// transforms and scans that treat the artifact as one compilation unit.
func (a *Artifact) Source() string {
	if a == nil {
		return ""
	}
	var b strings.Builder
	for i, f := range a.Files {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(f.Content)
	}
	return b.String()
}
