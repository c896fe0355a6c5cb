// internal/sim/sim.go
package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"memscramble/internal/board"
)

// Options controls a bot simulation run.
type Options struct {
	Players  int           // number of concurrent bots
	Tries    int           // flip-pair attempts per bot
	MaxDelay time.Duration // upper bound on the random pause before each flip
}

// Stats aggregates what the bots observed.
type Stats struct {
	mu         sync.Mutex
	Flips      int
	Matches    int
	RuleErrors int
}

func (st *Stats) String() string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return fmt.Sprintf("flips=%d matches=%d ruleErrors=%d", st.Flips, st.Matches, st.RuleErrors)
}

// Run drives Options.Players bots against the board concurrently. Each bot
// repeatedly picks two random cells and flips them, pausing a random slice of
// MaxDelay before each pick, the way human players trickle in requests. Rule
// errors are part of normal play and only counted; Run returns once every bot
// has finished its tries or ctx is cancelled.
func Run(ctx context.Context, logger *logrus.Logger, b *board.Board, opts Options) *Stats {
	rows, cols := b.Size()
	stats := &Stats{}

	var wg sync.WaitGroup
	for i := 0; i < opts.Players; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			bot(ctx, logger, b, rows, cols, fmt.Sprintf("bot_%d", n), opts, stats)
		}(i)
	}
	wg.Wait()

	return stats
}

func bot(ctx context.Context, logger *logrus.Logger, b *board.Board, rows, cols int, name string, opts Options, stats *Stats) {
	for try := 0; try < opts.Tries; try++ {
		if !pause(ctx, opts.MaxDelay) {
			return
		}
		if err := flipOnce(ctx, b, name, rows, cols, stats); err != nil {
			return
		}

		if !pause(ctx, opts.MaxDelay) {
			return
		}
		if err := flipOnce(ctx, b, name, rows, cols, stats); err != nil {
			return
		}

		if matchedPending(b, name) {
			stats.mu.Lock()
			stats.Matches++
			stats.mu.Unlock()
			logger.Debugf("%s matched a pair on try %d", name, try)
		}
	}
}

// flipOnce flips a random cell, counting rule errors as ordinary outcomes.
// A non-nil return means the simulation is shutting down.
func flipOnce(ctx context.Context, b *board.Board, name string, rows, cols int, stats *Stats) error {
	err := b.Flip(ctx, name, rand.Intn(rows), rand.Intn(cols))
	stats.mu.Lock()
	defer stats.mu.Unlock()
	switch {
	case err == nil:
		stats.Flips++
	case board.IsRuleError(err):
		stats.RuleErrors++
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return nil
}

// matchedPending checks whether the bot's last pair matched, by reading its
// own two "my" cells out of a snapshot.
func matchedPending(b *board.Board, name string) bool {
	count := 0
	for _, line := range strings.Split(b.Look(name), "\n")[1:] {
		if strings.HasPrefix(line, "my ") {
			count++
		}
	}
	return count == 2
}

func pause(ctx context.Context, max time.Duration) bool {
	if max <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(time.Duration(rand.Int63n(int64(max))))
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
