// internal/board/render.go
package board

import (
	"fmt"
	"strings"
)

// Look renders the grid from player's perspective as a consistent snapshot:
//
//	ROWSxCOLS
//	none         removed cell
//	down         face-down card
//	up VALUE     face-up card not controlled by player
//	my VALUE     face-up card controlled by player
//
// Cells appear in row-major order, one per line, with no trailing newline.
// The snapshot is taken under the board mutex, so it reflects a single
// instant of play.
func (b *Board) Look(player string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.renderLocked(player)
}

func (b *Board) renderLocked(player string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%dx%d", b.rows, b.cols)

	for _, c := range b.grid {
		sb.WriteByte('\n')
		switch {
		case !c.onBoard:
			sb.WriteString("none")
		case !c.faceUp:
			sb.WriteString("down")
		case c.controller == player:
			sb.WriteString("my ")
			sb.WriteString(c.value)
		default:
			sb.WriteString("up ")
			sb.WriteString(c.value)
		}
	}

	return sb.String()
}
