// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultBoardFile, cfg.BoardFile)
	assert.Equal(t, "localhost:8080", cfg.Addr())
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("HOST", "0.0.0.0")
	t.Setenv("BOARD_FILE", "boards/ab.txt")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "boards/ab.txt", cfg.BoardFile)
}

func TestLoadBadEnvPortFallsBack(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
}

func TestLoadArgsWinOverEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("BOARD_FILE", "boards/ab.txt")

	cfg, err := Load([]string{"0", "boards/hearts.txt"})
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Port)
	assert.Equal(t, "boards/hearts.txt", cfg.BoardFile)
}

func TestLoadBadArgPortIsError(t *testing.T) {
	_, err := Load([]string{"eighty"})
	assert.Error(t, err)

	_, err = Load([]string{"-1"})
	assert.Error(t, err)
}
