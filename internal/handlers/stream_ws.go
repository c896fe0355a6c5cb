// internal/handlers/stream_ws.go
package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"memscramble/internal/board"
	"memscramble/internal/middleware"
)

// StreamWSHandler upgrades GET /stream/{player} to a WebSocket and pushes a
// fresh snapshot from that player's perspective after every board change.
// The client never sends messages; its read side is drained only to learn
// about disconnects, which cancel the underlying watch.
func StreamWSHandler(logger *logrus.Logger, s *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player := r.PathValue("player")
		if !board.ValidPlayerID(player) {
			http.Error(w, fmt.Sprintf("invalid player ID: %q", player), http.StatusBadRequest)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"watch"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error for player %s: %v", player, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != "watch" {
			logger.Warnf("Client %s connected with invalid subprotocol: %s", player, c.Subprotocol())
			c.Close(websocket.StatusPolicyViolation, "Client must use the 'watch' subprotocol.")
			return
		}

		sessionID := uuid.New()
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)
		logger.Infof("Stream session %s opened for player %s", sessionID, player)

		// CloseRead drains incoming frames and cancels ctx when the client
		// goes away, which unblocks the watch below.
		ctx := c.CloseRead(r.Context())

		err = streamSnapshots(ctx, s.Board, c, player)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, err)
		c.Close(websocket.StatusNormalClosure, "stream finished")
	}
}

// streamSnapshots sends the current snapshot, then one more after every
// change, until ctx is cancelled or a write fails.
func streamSnapshots(ctx context.Context, b *board.Board, c *websocket.Conn, player string) error {
	for {
		if err := c.Write(ctx, websocket.MessageText, []byte(b.Look(player))); err != nil {
			return err
		}
		if err := b.Watch(ctx); err != nil {
			return err
		}
	}
}
