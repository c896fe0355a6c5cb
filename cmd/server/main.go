// cmd/server/main.go
package main

import (
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"memscramble/internal/board"
	"memscramble/internal/config"
	"memscramble/internal/feed"
	"memscramble/internal/handlers"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	if os.Getenv("DEBUG") != "" {
		logger.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("bad configuration: %v", err)
	}

	b, err := board.ParseFile(cfg.BoardFile)
	if err != nil {
		log.Fatalf("cannot load board %s: %v", cfg.BoardFile, err)
	}
	rows, cols := b.Size()
	logger.Infof("Loaded %dx%d board from %s", rows, cols, cfg.BoardFile)

	if os.Getenv("REDIS_ADDR") != "" {
		if err := feed.ConnectRedis(); err != nil {
			logger.Warnf("action feed disabled: %v", err)
		} else {
			logger.Info("Action feed connected")
		}
	}

	srv := handlers.NewGameServer(b, logger)
	server := &http.Server{
		Handler:      srv.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // watch and stream responses are open-ended
	}

	l, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	logger.Infof("Server now listening at http://%s", l.Addr())

	errc := make(chan error, 1)
	go func() {
		errc <- server.Serve(l)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err := <-errc:
		logger.Errorf("failed to serve: %v", err)
	case sig := <-sigs:
		logger.Infof("terminating: %v", sig)
	}
}
