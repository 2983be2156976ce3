package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Canvas{Width: 800, Height: 500}, cfg.Canvas)
	assert.Equal(t, 20, cfg.Board.HistoryCap)
	assert.Equal(t, 40, cfg.Board.MaxBrush)
	assert.Equal(t, "#000000", cfg.Board.DefaultColor)
	assert.Equal(t, "gemini-pro", cfg.Intent.Model)
	assert.Equal(t, 10*time.Second, cfg.Intent.Timeout)
	assert.Equal(t, 8888, cfg.Mirror.Port)
	assert.True(t, cfg.Mirror.Enabled)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SAHAYAK_CANVAS_WIDTH", "1024")
	t.Setenv("SAHAYAK_BOARD_HISTORYCAP", "50")
	t.Setenv("SAHAYAK_INTENT_TIMEOUT", "3s")
	t.Setenv("SAHAYAK_MIRROR_ENABLED", "false")
	t.Setenv("SAHAYAK_LOG_LEVEL", "debug")
	t.Setenv("GEMINI_API_KEY", "from-gemini-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Canvas.Width)
	assert.Equal(t, 50, cfg.Board.HistoryCap)
	assert.Equal(t, 3*time.Second, cfg.Intent.Timeout)
	assert.False(t, cfg.Mirror.Enabled)
	assert.Equal(t, "from-gemini-env", cfg.Intent.APIKey)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SAHAYAK_MIRROR_PORT=9999\nSAHAYAK_INTENT_APIKEY=abc123\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("SAHAYAK_MIRROR_PORT")
		os.Unsetenv("SAHAYAK_INTENT_APIKEY")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Mirror.Port)
	assert.Equal(t, "abc123", cfg.Intent.APIKey)
}

func TestMissingDotEnvIsIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestValidation(t *testing.T) {
	tests := map[string]string{
		"SAHAYAK_BOARD_DEFAULTCOLOR": "black",
		"SAHAYAK_BOARD_DEFAULTSIZE":  "41",
		"SAHAYAK_MIRROR_PORT":        "70000",
		"SAHAYAK_LOG_LEVEL":          "loud",
		"SAHAYAK_CANVAS_HEIGHT":      "10",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestValidationMessage(t *testing.T) {
	t.Setenv("SAHAYAK_BOARD_DEFAULTCOLOR", "black")
	_, err := Load("")
	require.Error(t, err)
	assert.Equal(t, "invalid config: DefaultColor must be a color like #1A2B3C", err.Error())
}
