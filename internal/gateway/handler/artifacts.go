package handler

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"codecanvas/internal/artifact"
	"codecanvas/internal/generate"
	"codecanvas/internal/preview"
)

type generateRequest struct {
	Prompt      string `json:"prompt"`
	Preferences struct {
		FrontendFramework string `json:"frontend_framework"`
		BackendLanguage   string `json:"backend_language"`
	} `json:"preferences"`
}

type generateResponse struct {
	SessionID string               `json:"session_id"`
	Artifact  *artifact.Artifact   `json:"artifact"`
	FileTree  []*artifact.TreeNode `json:"file_tree"`
	Model     string               `json:"model"`
	Usage     any                  `json:"usage,omitempty"`
}

// HandleGenerate runs one prompt through the orchestrator and snapshots the
// validated artifact.
func (h *Handlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("decode request: %w", err)))
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("prompt is required")))
		return
	}

	res, err := h.Orchestrator.Generate(r.Context(), req.Prompt, generate.Preferences{
		FrontendFramework: req.Preferences.FrontendFramework,
		BackendLanguage:   req.Preferences.BackendLanguage,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	sessionID := newSessionID()
	h.snapshotArtifact(r, sessionID, res.Artifact)

	writeJSON(w, http.StatusOK, generateResponse{
		SessionID: sessionID,
		Artifact:  res.Artifact,
		FileTree:  artifact.FileTree(res.Artifact),
		Model:     res.Model,
		Usage:     res.Usage,
	})
}

// artifactFromRequest decodes {"artifact": {...}} and runs the payload
// through the validator, so every entry point shares one gate.
func artifactFromRequest(r *http.Request) (*artifact.Artifact, error) {
	var req struct {
		Artifact json.RawMessage `json:"artifact"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("decode request: %w", err))
	}
	if len(req.Artifact) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("artifact is required"))
	}
	return artifact.Parse(string(req.Artifact))
}

// HandlePreview compiles a frontend artifact into its preview document.
func (h *Handlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	a, err := artifactFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	doc := preview.Generate(a)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// HandleExecute runs a backend artifact to completion and returns the
// buffered result.
func (h *Handlers) HandleExecute(w http.ResponseWriter, r *http.Request) {
	a, err := artifactFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.Driver.Execute(r.Context(), a)
	if err != nil {
		writeError(w, err)
		return
	}

	sessionID := newSessionID()
	h.snapshotResult(r, sessionID, result)

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"result":     result,
	})
}

// HandleSnapshotList lists the stored files for one session.
func (h *Handlers) HandleSnapshotList(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session")
	paths, err := h.Snapshots.List(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": sessionID, "paths": paths})
}

// HandleSnapshotGet returns one stored file's content.
func (h *Handlers) HandleSnapshotGet(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session")
	path := strings.TrimSpace(r.URL.Query().Get("path"))
	content, err := h.Snapshots.Get(r.Context(), sessionID, path)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(content)
}

func (h *Handlers) snapshotArtifact(r *http.Request, sessionID string, a *artifact.Artifact) {
	if h.Snapshots == nil {
		return
	}
	if text, err := artifact.Serialize(a); err == nil {
		if err := h.Snapshots.Put(r.Context(), sessionID, "artifact.json", []byte(text)); err != nil {
			log.Printf("handler: snapshot artifact: %v", err)
		}
	}
	for _, f := range a.Files {
		if err := h.Snapshots.Put(r.Context(), sessionID, "files/"+f.Path, []byte(f.Content)); err != nil {
			log.Printf("handler: snapshot file %s: %v", f.Path, err)
		}
	}
}

func (h *Handlers) snapshotResult(r *http.Request, sessionID string, result any) {
	if h.Snapshots == nil {
		return
	}
	body, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := h.Snapshots.Put(r.Context(), sessionID, "result.json", body); err != nil {
		log.Printf("handler: snapshot result: %v", err)
	}
}
