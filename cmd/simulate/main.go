// cmd/simulate/main.go
package main

import (
	"context"
	"flag"
	"log"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"memscramble/internal/board"
	"memscramble/internal/sim"
)

func main() {
	var (
		boardFile = flag.String("board", "boards/ab.txt", "board file to play on")
		players   = flag.Int("players", 4, "number of concurrent bots")
		tries     = flag.Int("tries", 10, "flip-pair attempts per bot")
		maxDelay  = flag.Duration("max-delay", 100*time.Millisecond, "upper bound on random pause between flips")
		timeout   = flag.Duration("timeout", 30*time.Second, "overall run deadline")
	)
	flag.Parse()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	b, err := board.ParseFile(*boardFile)
	if err != nil {
		log.Fatalf("cannot load board %s: %v", *boardFile, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	stats := sim.Run(ctx, logger, b, sim.Options{
		Players:  *players,
		Tries:    *tries,
		MaxDelay: *maxDelay,
	})
	logger.Infof("Simulation finished: %s", stats)
}
