// internal/feed/redis.go
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the global Redis client. Connect it once at application startup;
// when it stays nil the feed is disabled and publishing is a no-op.
var Rdb *redis.Client

// DefaultQueueName is the Redis list (queue) name for board action records.
var DefaultQueueName = "memscramble_actions"

// BoardActionRecord holds the minimal info an external consumer needs to
// follow the game: which player did what, where, and the board version the
// action produced.
type BoardActionRecord struct {
	ID        uuid.UUID `json:"id"`
	Player    string    `json:"player"`
	Action    string    `json:"action"` // "flip", "replace", "reset"
	Row       int       `json:"row,omitempty"`
	Col       int       `json:"col,omitempty"`
	Version   uint64    `json:"version"`
	Timestamp int64     `json:"timestamp"`
}

// Enabled reports whether a Redis connection was established.
func Enabled() bool {
	return Rdb != nil
}

// ConnectRedis initializes the global Redis client with environment variables:
//   - REDIS_ADDR (default "localhost:6379")
//   - REDIS_DB (optional, default 0)
func ConnectRedis() error {
	addr := getEnv("REDIS_ADDR", "localhost:6379")
	dbIdx := getEnvInt("REDIS_DB", 0)

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   dbIdx,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	Rdb = client
	return nil
}

// PublishBoardAction serializes the given record to JSON, then pushes it to
// the Redis queue. This does not block the calling logic (other than a quick
// network send). No-op when the feed is disabled.
func PublishBoardAction(ctx context.Context, record BoardActionRecord) error {
	if Rdb == nil {
		return nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal BoardActionRecord: %w", err)
	}

	queueName := getEnv("FEED_QUEUE_NAME", DefaultQueueName)
	if err := Rdb.RPush(ctx, queueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", queueName, err)
	}
	return nil
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
