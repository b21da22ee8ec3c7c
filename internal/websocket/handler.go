package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/sharearecipe/internal/auth"
)

// HandleWebSocket upgrades authenticated requests to WebSocket connections
// and runs them as Hub clients.
func HandleWebSocket(hub *Hub, opts *ws.AcceptOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := auth.UserID(r.Context())
		if uid == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, opts)
		if err != nil {
			hub.logger.Warn("websocket accept", "error", err)
			return
		}
		defer conn.CloseNow()

		client := NewClient(hub, conn, uid)
		client.Run(r.Context())
		conn.Close(ws.StatusNormalClosure, "")
	}
}
