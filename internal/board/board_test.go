// internal/board/board_test.go
package board

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// perfectValues is the 3x3 template used throughout the tests:
//
//	🦄 🦄 🌈
//	🌈 🌈 🦄
//	🌈 🦄 🌈
var perfectValues = []string{"🦄", "🦄", "🌈", "🌈", "🌈", "🦄", "🌈", "🦄", "🌈"}

func perfectBoard(t *testing.T) *Board {
	t.Helper()
	b, err := FromValues(3, 3, perfectValues)
	require.NoError(t, err)
	return b
}

// mustFlip fails the test if the flip errors.
func mustFlip(t *testing.T, b *Board, player string, row, col int) {
	t.Helper()
	require.NoError(t, b.Flip(context.Background(), player, row, col))
}

// cellLine returns the rendered line for (row, col) in player's snapshot.
func cellLine(t *testing.T, b *Board, player string, row, col int) string {
	t.Helper()
	lines := splitSnapshot(t, b.Look(player))
	_, cols := b.Size()
	return lines[1+row*cols+col]
}

func splitSnapshot(t *testing.T, snapshot string) []string {
	t.Helper()
	var lines []string
	start := 0
	for i := 0; i < len(snapshot); i++ {
		if snapshot[i] == '\n' {
			lines = append(lines, snapshot[start:i])
			start = i + 1
		}
	}
	return append(lines, snapshot[start:])
}

// waitForQueue polls until exactly n flips are parked on pos.
func waitForQueue(t *testing.T, b *Board, pos Pos, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		b.mu.Lock()
		got := len(b.queues[pos])
		b.mu.Unlock()
		if got == n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d waiters on %v", n, pos)
}

func TestFromValuesValidation(t *testing.T) {
	_, err := FromValues(0, 3, nil)
	assert.Error(t, err)

	_, err = FromValues(3, -1, nil)
	assert.Error(t, err)

	_, err = FromValues(2, 2, []string{"A", "B", "A"})
	assert.Error(t, err)

	_, err = FromValues(1, 2, []string{"A", "a b"})
	assert.Error(t, err)

	b, err := FromValues(1, 2, []string{"A", "A"})
	require.NoError(t, err)
	rows, cols := b.Size()
	assert.Equal(t, 1, rows)
	assert.Equal(t, 2, cols)
}

func TestVersionMonotonic(t *testing.T) {
	b := perfectBoard(t)

	v0 := b.Version()
	mustFlip(t, b, "alice", 0, 0)
	v1 := b.Version()
	assert.Greater(t, v1, v0, "flipping a card up must bump the version")

	b.Reset()
	v2 := b.Version()
	assert.Greater(t, v2, v1, "reset must bump the version")
}

func TestTakeControlWithoutFlipDoesNotBump(t *testing.T) {
	b := perfectBoard(t)

	// Mismatch leaves (0,0) and (0,2) face up, uncontrolled.
	mustFlip(t, b, "alice", 0, 0)
	mustFlip(t, b, "alice", 0, 2)

	v := b.Version()
	mustFlip(t, b, "bob", 0, 0)
	assert.Equal(t, v, b.Version(), "taking control of a face-up card is not an observable change")
	assert.Equal(t, "my 🦄", cellLine(t, b, "bob", 0, 0))
}

func TestResetRoundTrip(t *testing.T) {
	b := perfectBoard(t)
	fresh := perfectBoard(t)

	// Play a bit: a removed pair, a second pair left pending.
	mustFlip(t, b, "alice", 0, 0)
	mustFlip(t, b, "alice", 0, 1) // match
	mustFlip(t, b, "alice", 2, 0) // cleanup removes the pair
	mustFlip(t, b, "bob", 1, 1)
	mustFlip(t, b, "bob", 0, 2) // match, pending removal

	b.Reset()

	assert.Equal(t, fresh.Look("carol"), b.Look("carol"))

	// Player state is gone too: alice's next flip is a fresh first pick.
	mustFlip(t, b, "alice", 2, 2)
	assert.Equal(t, "my 🌈", cellLine(t, b, "alice", 2, 2))
}

func TestResetWakesWaiters(t *testing.T) {
	b := perfectBoard(t)

	mustFlip(t, b, "alice", 0, 0)

	done := make(chan error, 1)
	go func() {
		done <- b.Flip(context.Background(), "bob", 0, 0)
	}()
	waitForQueue(t, b, Pos{0, 0}, 1)

	b.Reset()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter not woken by reset")
	}

	// Bob acquired the freshly face-down card.
	assert.Equal(t, "my 🦄", cellLine(t, b, "bob", 0, 0))
}

func TestOutOfBoundsDetectedBeforeMutation(t *testing.T) {
	b := perfectBoard(t)

	mustFlip(t, b, "alice", 0, 0)
	before := b.Look("alice")

	err := b.Flip(context.Background(), "alice", 5, 0)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	err = b.Flip(context.Background(), "alice", 0, -1)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	// The failed flips left alice's turn untouched: she still holds (0,0).
	assert.Equal(t, before, b.Look("alice"))
	mustFlip(t, b, "alice", 0, 1)
	assert.Equal(t, "my 🦄", cellLine(t, b, "alice", 0, 1))
}
