package web

import (
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/sweeney/reaction-arcade/internal/status"
)

// handleLive streams the compact status JSON over a websocket until the
// client goes away.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("http: live accept: %v", err)
		return
	}
	defer conn.CloseNow()

	// The stream is one-way; CloseRead handles control frames and cancels
	// ctx when the client closes.
	ctx := conn.CloseRead(r.Context())

	ticker := time.NewTicker(s.liveInterval)
	defer ticker.Stop()

	for {
		if err := conn.Write(ctx, websocket.MessageText, status.FormatCompact(s.tracker.Snapshot())); err != nil {
			return
		}
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-ticker.C:
		}
	}
}
