// internal/board/board.go
package board

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pos addresses one cell, row-major, 0-based.
type Pos struct {
	Row int
	Col int
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// waiter is one blocked first-card flip queued on a contended cell. ready is
// closed exactly once when the waiter is handed a wake-up; signaled records
// that hand-off so a cancelled waiter can pass it along instead of losing it.
type waiter struct {
	ready    chan struct{}
	signaled bool
}

// Board is the shared Memory Scramble game state: a fixed-size grid of cards
// plus per-player turn context.
//
// A single mutex guards every field. The mutex is never held across a
// suspension: blocked flips park on per-cell FIFO queues and watchers park on
// the change channel, both outside the lock. All blocking entry points take a
// context and return ctx.Err() on cancellation without touching board state.
type Board struct {
	rows int
	cols int

	mu      sync.Mutex
	grid    []*Card  // row-major, rows*cols entries
	initial []string // values at construction, for Reset
	players map[string]*playerState

	// queues holds, per contended cell, the flips waiting for its controller
	// to relinquish, in arrival order. A relinquish wakes only the head;
	// waiters that fail on wake pass the signal to the next in line.
	queues map[Pos][]*waiter

	// version counts observable changes. changed is closed and replaced on
	// every bump, under the mutex, so a woken watcher observes the new state.
	version uint64
	changed chan struct{}
}

// Transform rewrites one card value. It is invoked without any board lock
// held and may block; ctx is the Map call's context.
type Transform func(ctx context.Context, value string) (string, error)

// FromValues builds a board of rows x cols cards from values in row-major
// order. Cards start on the board, face down, uncontrolled.
func FromValues(rows, cols int, values []string) (*Board, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("board dimensions must be positive, got %dx%d", rows, cols)
	}
	if len(values) != rows*cols {
		return nil, fmt.Errorf("expected %d card values for a %dx%d board, got %d", rows*cols, rows, cols, len(values))
	}

	grid := make([]*Card, 0, len(values))
	for i, v := range values {
		c, err := newCard(v)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
		grid = append(grid, c)
	}

	initial := make([]string, len(values))
	copy(initial, values)

	return &Board{
		rows:    rows,
		cols:    cols,
		grid:    grid,
		initial: initial,
		players: make(map[string]*playerState),
		queues:  make(map[Pos][]*waiter),
		changed: make(chan struct{}),
	}, nil
}

// Size returns the board dimensions.
func (b *Board) Size() (rows, cols int) {
	return b.rows, b.cols
}

// Version returns the current change counter.
func (b *Board) Version() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version
}

func (b *Board) checkPos(row, col int) error {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return fmt.Errorf("%w: (%d,%d) on a %dx%d board", ErrOutOfBounds, row, col, b.rows, b.cols)
	}
	return nil
}

// cardAt returns the card at pos. Caller holds the mutex and has bounds-checked pos.
func (b *Board) cardAt(pos Pos) *Card {
	return b.grid[pos.Row*b.cols+pos.Col]
}

// playerFor lazily creates turn context. Entries are never removed except by
// Reset. Caller holds the mutex.
func (b *Board) playerFor(id string) *playerState {
	p, ok := b.players[id]
	if !ok {
		p = &playerState{}
		b.players[id] = p
	}
	return p
}

// bump records an observable change and wakes every watcher. Caller holds the
// mutex, so a watcher that wakes and re-locks sees the state the bump covers.
func (b *Board) bump() {
	b.version++
	close(b.changed)
	b.changed = make(chan struct{})
}

// wakeNext hands the cell's next queued waiter a wake-up. Caller holds the
// mutex.
func (b *Board) wakeNext(pos Pos) {
	q := b.queues[pos]
	if len(q) == 0 {
		return
	}
	w := q[0]
	if len(q) == 1 {
		delete(b.queues, pos)
	} else {
		b.queues[pos] = q[1:]
	}
	w.signaled = true
	close(w.ready)
}

// abandon removes a cancelled waiter from the cell's queue. If the waiter had
// already been signaled, the wake-up is forwarded so it is not lost. Caller
// holds the mutex.
func (b *Board) abandon(pos Pos, w *waiter) {
	if w.signaled {
		b.wakeNext(pos)
		return
	}
	q := b.queues[pos]
	for i, qw := range q {
		if qw == w {
			q = append(q[:i], q[i+1:]...)
			break
		}
	}
	if len(q) == 0 {
		delete(b.queues, pos)
	} else {
		b.queues[pos] = q
	}
}

// cleanupTurnStart applies the turn-boundary rules for a player about to pick
// a first card: a pending matched pair is removed from the board; otherwise a
// held-over mismatched pair is flipped back down where still eligible (on
// board, face up, uncontrolled). Returns the positions whose cells changed.
// Caller holds the mutex.
func (b *Board) cleanupTurnStart(p *playerState) []Pos {
	var changed []Pos

	switch {
	case p.matched != nil:
		for _, pos := range p.matched {
			b.cardAt(pos).remove()
			changed = append(changed, pos)
		}
		p.clear()

	case p.first != nil || p.second != nil:
		for _, pos := range []*Pos{p.first, p.second} {
			if pos == nil {
				continue
			}
			c := b.cardAt(*pos)
			if c.onBoard && c.faceUp && c.controller == "" {
				c.flipDown()
				changed = append(changed, *pos)
			}
		}
		p.clear()
	}

	return changed
}

// Flip is the unified flip operation. It routes to the first- or second-card
// rules based on the caller's turn context: a player holding exactly one
// uncommitted card is on their second pick; everyone else starts a fresh turn
// (running turn-start cleanup first).
//
// A first pick blocks, FIFO-fairly, while the target is controlled by another
// player; a second pick never blocks. ctx cancels a blocked first pick with
// no state change.
func (b *Board) Flip(ctx context.Context, player string, row, col int) error {
	if err := b.checkPos(row, col); err != nil {
		return err
	}
	pos := Pos{row, col}

	b.mu.Lock()
	p := b.playerFor(player)

	if p.activeFirst() {
		err := b.flipSecond(p, player, pos)
		b.mu.Unlock()
		return err
	}

	err := b.flipFirst(ctx, player, pos)
	b.mu.Unlock()
	return err
}

// flipFirst runs the first-card rules: turn-start cleanup, then acquisition
// of the target cell. Called and returns with the mutex held; the mutex is
// released around each suspension on the cell's queue.
func (b *Board) flipFirst(ctx context.Context, player string, pos Pos) error {
	if changed := b.cleanupTurnStart(b.playerFor(player)); len(changed) > 0 {
		for _, cp := range changed {
			b.wakeNext(cp)
		}
		b.bump()
	}

	fromFront := false
	for {
		c := b.cardAt(pos)

		if !c.onBoard {
			// The card vanished; pass any wake-up down the line so later
			// waiters also get to observe the empty cell.
			b.wakeNext(pos)
			return ErrNoCard
		}

		if c.controller == "" {
			p := b.playerFor(player)
			if !c.faceUp {
				c.flipUp()
				c.controller = player
				b.bump()
				b.wakeNext(pos)
			} else {
				// Taking control of an already face-up card changes nothing
				// a viewer can see, so the version stays put.
				c.controller = player
			}
			p.first = &pos
			return nil
		}

		// Controlled by another player: queue up and suspend. A waiter woken
		// into a still-contended cell goes back to the head so arrival order
		// is preserved.
		w := &waiter{ready: make(chan struct{})}
		if fromFront {
			b.queues[pos] = append([]*waiter{w}, b.queues[pos]...)
		} else {
			b.queues[pos] = append(b.queues[pos], w)
		}

		b.mu.Unlock()
		select {
		case <-w.ready:
			b.mu.Lock()
			fromFront = true
		case <-ctx.Done():
			b.mu.Lock()
			b.abandon(pos, w)
			return ctx.Err()
		}
	}
}

// flipSecond runs the second-card rules. It never blocks: a contended target
// fails fast, since waiting while holding the first card could deadlock
// against another player holding the target. Every failure relinquishes the
// first card (it stays face up, uncontrolled) and resets the turn. Caller
// holds the mutex throughout.
func (b *Board) flipSecond(p *playerState, player string, pos Pos) error {
	first := *p.first

	if pos == first {
		b.relinquishFirst(p, first)
		return ErrSameCard
	}

	c2 := b.cardAt(pos)

	if !c2.onBoard {
		b.relinquishFirst(p, first)
		return ErrNoCard
	}
	if c2.controller != "" {
		// Controlled by another player, or (unreachably, see invariants) by
		// the caller on a different cell; either way the pick is refused.
		b.relinquishFirst(p, first)
		return ErrContended
	}

	if !c2.faceUp {
		c2.flipUp()
		c2.controller = player
		b.bump()
		b.wakeNext(pos)
	} else {
		c2.controller = player
	}

	c1 := b.cardAt(first)
	if c1.value == c2.value {
		// Match: keep control of both; removal happens at this player's next
		// turn start.
		p.matched = &[2]Pos{first, pos}
		p.first = nil
		p.second = nil
	} else {
		// Mismatch: both cards stay face up but lose their controller. The
		// positions are remembered so the next turn start can flip them down.
		c1.controller = ""
		c2.controller = ""
		p.second = &pos
		b.bump()
		b.wakeNext(first)
		b.wakeNext(pos)
	}

	return nil
}

// relinquishFirst releases the player's first card on a failed second pick.
// The card stays face up. Caller holds the mutex.
func (b *Board) relinquishFirst(p *playerState, first Pos) {
	b.cardAt(first).controller = ""
	p.clear()
	b.bump()
	b.wakeNext(first)
}

// Watch suspends until the board's version moves past its value at entry,
// then returns nil. Cancellation returns ctx.Err() with no side effects.
func (b *Board) Watch(ctx context.Context) error {
	b.mu.Lock()
	entry := b.version
	for b.version == entry {
		ch := b.changed
		b.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
		b.mu.Lock()
	}
	b.mu.Unlock()
	return nil
}

// Map rewrites every card value with transform while preserving
// match-equivalence: cards equal before the call are equal after, and cards
// that differed still differ (unless transform itself collapses two classes,
// which is allowed).
//
// Three phases: snapshot the positions of each distinct value under the
// mutex; run transform once per distinct value with no lock held; commit
// class by class under the mutex, skipping cards that were removed or whose
// value moved on in the meantime. Play continues between class commits, but
// any consistent observation still sees whole classes.
//
// A transform error, a produced value that is empty or contains whitespace,
// or a ctx cancelled while the transforms ran fails the whole call before
// any commit. Once committing has begun it runs to the end.
func (b *Board) Map(ctx context.Context, transform Transform) error {
	b.mu.Lock()
	groups := make(map[string][]Pos)
	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			pos := Pos{r, c}
			card := b.cardAt(pos)
			if card.onBoard {
				groups[card.value] = append(groups[card.value], pos)
			}
		}
	}
	b.mu.Unlock()

	if len(groups) == 0 {
		return nil
	}

	var (
		rewriteMu sync.Mutex
		rewrites  = make(map[string]string, len(groups))
	)
	g, gctx := errgroup.WithContext(ctx)
	for value := range groups {
		g.Go(func() error {
			out, err := transform(gctx, value)
			if err != nil {
				return fmt.Errorf("transform %q: %w", value, err)
			}
			if !validValue(out) {
				return fmt.Errorf("transform %q produced invalid card value %q", value, out)
			}
			rewriteMu.Lock()
			rewrites[value] = out
			rewriteMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for value, positions := range groups {
		next := rewrites[value]
		b.mu.Lock()
		for _, pos := range positions {
			c := b.cardAt(pos)
			// Cards removed or rewritten since the snapshot no longer belong
			// to this equivalence class.
			if c.onBoard && c.value == value {
				c.value = next
			}
		}
		b.bump()
		b.mu.Unlock()
	}

	return nil
}

// Reset restores every cell to its initial value, face down and uncontrolled,
// and drops all player turn context. Every queued waiter is woken so its
// retry re-examines the fresh board, and all watchers fire.
func (b *Board) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, c := range b.grid {
		c.restore(b.initial[i])
	}
	b.players = make(map[string]*playerState)

	for pos, q := range b.queues {
		for _, w := range q {
			w.signaled = true
			close(w.ready)
		}
		delete(b.queues, pos)
	}

	b.bump()
}
