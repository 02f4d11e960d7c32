package handler

import (
	"fmt"
	"net/http"

	"codecanvas/internal/util/jsonutil"
)

// HandleExecuteStream runs a backend artifact and relays execution chunks
// as Server-Sent-Events frames: "data: <json>\n\n" per chunk. The driver
// guarantees environment teardown even when the client disconnects.
func (h *Handlers) HandleExecuteStream(w http.ResponseWriter, r *http.Request) {
	a, err := artifactFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, fmt.Errorf("streaming unsupported by connection"))
		return
	}

	chunks, err := h.Driver.ExecuteStream(r.Context(), a)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for chunk := range chunks {
		body, err := jsonutil.MarshalNoEscape(chunk)
		if err != nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", body); err != nil {
			// client went away; drain so the driver's teardown runs
			for range chunks {
			}
			return
		}
		flusher.Flush()
	}
}
