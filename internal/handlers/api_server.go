// internal/handlers/api_server.go
package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"memscramble/internal/board"
	"memscramble/internal/middleware"
)

// GameServer is a high-level struct that holds the shared board and wires
// the HTTP and WebSocket routes onto it.
type GameServer struct {
	Board  *board.Board
	Logger *logrus.Logger
}

func NewGameServer(b *board.Board, logger *logrus.Logger) *GameServer {
	return &GameServer{
		Board:  b,
		Logger: logger,
	}
}

// Routes builds the full route table:
//
//	GET /look/{player}
//	GET /flip/{player}/{location}        location is "row,col"
//	GET /replace/{player}/{from}/{to}
//	GET /watch/{player}
//	GET /reset/{player}
//	GET /stream/{player}                 websocket
//
// Every route is wrapped in CORS and request logging.
func (s *GameServer) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /look/{player}", s.handleLook)
	mux.HandleFunc("GET /flip/{player}/{location}", s.handleFlip)
	mux.HandleFunc("GET /replace/{player}/{from}/{to}", s.handleReplace)
	mux.HandleFunc("GET /watch/{player}", s.handleWatch)
	mux.HandleFunc("GET /reset/{player}", s.handleReset)
	mux.Handle("GET /stream/{player}", StreamWSHandler(s.Logger, s))

	return middleware.CORSMiddleware(middleware.LogMiddleware(s.Logger)(mux))
}
