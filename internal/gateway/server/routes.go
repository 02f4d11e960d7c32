package server

import (
	"net/http"

	"codecanvas/internal/gateway/handler"
	"codecanvas/internal/gateway/middleware"
)

func NewMux(h *handler.Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/artifacts/generate", h.HandleGenerate)
	mux.HandleFunc("POST /v1/artifacts/preview", h.HandlePreview)
	mux.HandleFunc("POST /v1/artifacts/execute", h.HandleExecute)
	mux.HandleFunc("POST /v1/artifacts/execute/stream", h.HandleExecuteStream)
	mux.HandleFunc("GET /v1/livepreview/ws", h.HandleLivePreviewWS)
	mux.HandleFunc("GET /v1/snapshots/{session}", h.HandleSnapshotList)
	mux.HandleFunc("GET /v1/snapshots/{session}/file", h.HandleSnapshotGet)

	return middleware.CORS(mux)
}
