// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Defaults when neither arguments nor environment say otherwise.
const (
	DefaultPort      = 8080
	DefaultHost      = "localhost"
	DefaultBoardFile = "boards/perfect.txt"
)

// Config is the server's runtime configuration.
type Config struct {
	Port      int // 0 means pick a free port
	Host      string
	BoardFile string
}

// Load resolves configuration with precedence: command-line arguments
// (PORT [BOARD_FILE]) over environment (PORT, HOST, BOARD_FILE) over
// defaults. An unparseable PORT environment variable falls back to the
// default; an unparseable PORT argument is an error.
func Load(args []string) (Config, error) {
	cfg := Config{
		Port:      DefaultPort,
		Host:      DefaultHost,
		BoardFile: DefaultBoardFile,
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port >= 0 {
			cfg.Port = port
		}
	}
	if v := os.Getenv("HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("BOARD_FILE"); v != "" {
		cfg.BoardFile = v
	}

	if len(args) >= 1 {
		port, err := strconv.Atoi(args[0])
		if err != nil || port < 0 {
			return Config{}, fmt.Errorf("invalid PORT argument %q", args[0])
		}
		cfg.Port = port
	}
	if len(args) >= 2 {
		cfg.BoardFile = args[1]
	}

	return cfg, nil
}

// Addr returns the host:port the server should listen on.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
