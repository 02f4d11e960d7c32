package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"codecanvas/internal/livepreview"
)

const (
	previewWSWriteWait = 10 * time.Second
	previewWSPongWait  = 60 * time.Second
	previewWSPingEvery = (previewWSPongWait * 9) / 10
)

var previewWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type previewWSInbound struct {
	Code         string   `json:"code"`
	CSS          string   `json:"css,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

type previewWSOutbound struct {
	Type    string `json:"type"`
	State   string `json:"state,omitempty"`
	Stream  string `json:"stream,omitempty"`
	Content string `json:"content,omitempty"`
	URL     string `json:"url,omitempty"`
}

// HandleLivePreviewWS boots the heavyweight runtime for the component the
// client sends, relaying status, install/server output, and the embeddable
// URL over the socket. Closing the socket tears the session down.
func (h *Handlers) HandleLivePreviewWS(w http.ResponseWriter, r *http.Request) {
	conn, err := previewWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(previewWSPongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(previewWSPongWait))
	})

	var in previewWSInbound
	if err := conn.ReadJSON(&in); err != nil {
		return
	}

	writeCh := make(chan previewWSOutbound, 64)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(previewWSPingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(previewWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(previewWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	push := func(out previewWSOutbound) {
		select {
		case writeCh <- out:
		case <-ctx.Done():
		}
	}

	sess, err := h.Runtime.Boot(ctx, livepreview.Spec{
		Code:         in.Code,
		CSS:          in.CSS,
		Dependencies: in.Dependencies,
	}, livepreview.Callbacks{
		OnStatus: func(state livepreview.State, detail string) {
			push(previewWSOutbound{Type: "status", State: string(state), Content: detail})
		},
		OnServerReady: func(url string) {
			push(previewWSOutbound{Type: "ready", URL: url})
		},
		OnOutput: func(stream, line string) {
			push(previewWSOutbound{Type: "output", Stream: stream, Content: line})
		},
	})
	if err != nil {
		push(previewWSOutbound{Type: "error", Content: err.Error()})
		cancel()
		<-writerDone
		return
	}
	defer sess.Teardown()

	// block until the client goes away; reads also service pong frames
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Printf("livepreview ws: closed: %v", err)
			return
		}
	}
}
