// internal/board/errors.go
package board

import (
	"errors"
	"fmt"
)

// Game-rule and validation failures surfaced by Board operations. The
// transport maps game-rule errors (ErrNoCard, ErrContended, ErrSameCard) to
// 409 and validation errors to 400; the board itself knows nothing of HTTP.
var (
	// ErrNoCard means the targeted cell is empty (its card was removed).
	ErrNoCard = errors.New("no card at that position")

	// ErrContended means a second-card flip targeted a cell controlled by
	// another player. Second flips never wait; they fail fast.
	ErrContended = errors.New("card is controlled by another player")

	// ErrSameCard means a second-card flip targeted the player's own first card.
	ErrSameCard = errors.New("second card is the same as the first")

	// ErrOutOfBounds means the position is outside the grid. Detected before
	// any state changes.
	ErrOutOfBounds = errors.New("position out of bounds")

	// ErrBadPlayerID means the player id is empty or has characters outside
	// [A-Za-z0-9_].
	ErrBadPlayerID = errors.New("invalid player id")
)

// IsRuleError reports whether err is a game-rule failure rather than a
// validation failure or cancellation.
func IsRuleError(err error) bool {
	return errors.Is(err, ErrNoCard) || errors.Is(err, ErrContended) || errors.Is(err, ErrSameCard)
}

// ParseError describes why a board file could not be parsed.
type ParseError struct {
	Line int // 1-based line number, 0 if not tied to a line
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse board: line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("parse board: %s", e.Msg)
}
