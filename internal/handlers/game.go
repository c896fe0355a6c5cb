// internal/handlers/game.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"memscramble/internal/board"
	"memscramble/internal/feed"
)

// playerFromRequest validates the {player} path segment against the opaque
// token grammar the board expects.
func playerFromRequest(r *http.Request) (string, error) {
	player := r.PathValue("player")
	if !board.ValidPlayerID(player) {
		return "", fmt.Errorf("%w: %q", board.ErrBadPlayerID, player)
	}
	return player, nil
}

// writeSnapshot responds with the board rendered from player's perspective.
func (s *GameServer) writeSnapshot(w http.ResponseWriter, player string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(s.Board.Look(player)))
}

// writeFlipError maps a board error onto an HTTP status: game-rule failures
// are 409 (the request was well-formed, the rules said no), validation
// failures are 400.
func (s *GameServer) writeFlipError(w http.ResponseWriter, err error) {
	switch {
	case board.IsRuleError(err):
		http.Error(w, fmt.Sprintf("cannot flip this card: %v", err), http.StatusConflict)
	case errors.Is(err, board.ErrOutOfBounds), errors.Is(err, board.ErrBadPlayerID):
		http.Error(w, fmt.Sprintf("invalid input: %v", err), http.StatusBadRequest)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Client went away while blocked; nothing useful to write.
		http.Error(w, "request cancelled", http.StatusRequestTimeout)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// publishAction pushes an action record to the feed when one is configured.
// Feed failures never affect the response; they only log.
func (s *GameServer) publishAction(player, action string, row, col int) {
	if !feed.Enabled() {
		return
	}
	rec := feed.BoardActionRecord{
		ID:        uuid.New(),
		Player:    player,
		Action:    action,
		Row:       row,
		Col:       col,
		Version:   s.Board.Version(),
		Timestamp: time.Now().UnixMilli(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := feed.PublishBoardAction(ctx, rec); err != nil {
			s.Logger.Warnf("feed publish failed: %v", err)
		}
	}()
}

// handleLook serves GET /look/{player}: the board from player's perspective.
func (s *GameServer) handleLook(w http.ResponseWriter, r *http.Request) {
	player, err := playerFromRequest(r)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid player ID: %v", err), http.StatusBadRequest)
		return
	}
	s.writeSnapshot(w, player)
}

// handleFlip serves GET /flip/{player}/{location} where location is
// "row,col". The call may block while the target card is controlled by
// another player; closing the connection aborts the wait.
func (s *GameServer) handleFlip(w http.ResponseWriter, r *http.Request) {
	player, err := playerFromRequest(r)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid player ID: %v", err), http.StatusBadRequest)
		return
	}

	location := r.PathValue("location")
	parts := strings.Split(location, ",")
	if len(parts) != 2 {
		http.Error(w, "invalid location format: expected 'row,col'", http.StatusBadRequest)
		return
	}
	row, errRow := strconv.Atoi(parts[0])
	col, errCol := strconv.Atoi(parts[1])
	if errRow != nil || errCol != nil {
		http.Error(w, "invalid location: row and column must be integers", http.StatusBadRequest)
		return
	}

	if err := s.Board.Flip(r.Context(), player, row, col); err != nil {
		s.writeFlipError(w, err)
		return
	}

	s.publishAction(player, "flip", row, col)
	s.writeSnapshot(w, player)
}

// handleReplace serves GET /replace/{player}/{from}/{to}: rewrites every
// card labeled {from} to {to}, leaving all other labels alone. This is the
// transport's specialization of Board.Map.
func (s *GameServer) handleReplace(w http.ResponseWriter, r *http.Request) {
	player, err := playerFromRequest(r)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid player ID: %v", err), http.StatusBadRequest)
		return
	}

	from := r.PathValue("from")
	to := r.PathValue("to")
	if from == "" || to == "" {
		http.Error(w, "invalid input: card labels must be non-empty", http.StatusBadRequest)
		return
	}

	err = s.Board.Map(r.Context(), func(ctx context.Context, value string) (string, error) {
		if value == from {
			return to, nil
		}
		return value, nil
	})
	if err != nil {
		http.Error(w, fmt.Sprintf("cannot replace cards: %v", err), http.StatusBadRequest)
		return
	}

	s.publishAction(player, "replace", 0, 0)
	s.writeSnapshot(w, player)
}

// handleWatch serves GET /watch/{player}: long-polls until the next board
// change, then responds with the fresh snapshot. An abandoned poll is torn
// down through the request context.
func (s *GameServer) handleWatch(w http.ResponseWriter, r *http.Request) {
	player, err := playerFromRequest(r)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid player ID: %v", err), http.StatusBadRequest)
		return
	}

	if err := s.Board.Watch(r.Context()); err != nil {
		http.Error(w, "watch cancelled", http.StatusRequestTimeout)
		return
	}

	s.writeSnapshot(w, player)
}

// handleReset serves GET /reset/{player}: returns the board to its initial
// state and responds with the fresh snapshot.
func (s *GameServer) handleReset(w http.ResponseWriter, r *http.Request) {
	player, err := playerFromRequest(r)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid player ID: %v", err), http.StatusBadRequest)
		return
	}

	s.Board.Reset()
	s.publishAction(player, "reset", 0, 0)
	s.writeSnapshot(w, player)
}
