// Package handler exposes the artifact pipeline over JSON HTTP, SSE, and
// websocket endpoints.
package handler

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"codecanvas/internal/generate"
	"codecanvas/internal/gateway/repository/snapshot"
	"codecanvas/internal/livepreview"
	"codecanvas/internal/sandbox"
	"codecanvas/internal/util/jsonutil"
)

// Handlers bundles the pipeline components the HTTP surface fronts.
type Handlers struct {
	Orchestrator *generate.Orchestrator
	Driver       *sandbox.Driver
	Runtime      *livepreview.Runtime
	Snapshots    snapshot.Store
}

func New(orc *generate.Orchestrator, driver *sandbox.Driver, runtime *livepreview.Runtime, snapshots snapshot.Store) *Handlers {
	return &Handlers{
		Orchestrator: orc,
		Driver:       driver,
		Runtime:      runtime,
		Snapshots:    snapshots,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := jsonutil.MarshalNoEscape(v)
	if err != nil {
		http.Error(w, `{"error":"encoding failed"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// newSessionID labels one pipeline invocation for snapshot storage.
func newSessionID() string {
	var buf [4]byte
	_, _ = rand.Read(buf[:])
	return fmt.Sprintf("s-%s-%s", time.Now().UTC().Format("20060102t150405"), hex.EncodeToString(buf[:]))
}
