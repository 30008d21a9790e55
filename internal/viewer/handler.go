package viewer

import (
	"embed"
	"encoding/json"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

//go:embed static/*
var staticFiles embed.FS

var upgrader = websocket.Upgrader{
	// The viewer is a local development tool.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler serves the page, the WebSocket feed and the replay buffer.
func Handler(hub *Hub) http.Handler {
	r := chi.NewRouter()
	r.Get("/ws", wsHandler(hub))
	r.Get("/api/recent", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(hub.Recent())
	})

	staticFS, _ := fs.Sub(staticFiles, "static")
	r.Handle("/*", http.FileServer(http.FS(staticFS)))
	return r
}

func wsHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.logger.Warn().Err(err).Msg("WebSocket upgrade error")
			return
		}
		if !hub.join(conn) {
			conn.Close()
			return
		}

		// Reads only detect disconnects.
		go func() {
			defer hub.leave(conn)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}
