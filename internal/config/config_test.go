package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestLoad_Defaults проверяет дефолтные значения без окружения
func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "ws://localhost:8080", cfg.WSURL)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatInterval)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, time.Second, cfg.PhaseDebounce)
	assert.Equal(t, 1500*time.Millisecond, cfg.ProcessingTTL)
	assert.Equal(t, time.Second, cfg.BackoffBase)
	assert.Equal(t, 30*time.Second, cfg.BackoffCap)
	assert.Equal(t, 30*time.Second, cfg.ResyncStaleAfter)
	assert.Equal(t, uint64(5), cfg.MaxReconnectAttempts)
}

// TestLoad_EnvOverride проверяет переопределение через переменные окружения
func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("BINGO_API_URL", "https://bingo.example.com")
	t.Setenv("BINGO_WS_URL", "wss://bingo.example.com")
	t.Setenv("BINGO_POLL_INTERVAL", "2s")
	t.Setenv("BINGO_MAX_RECONNECT_ATTEMPTS", "8")

	cfg := Load()

	assert.Equal(t, "https://bingo.example.com", cfg.BaseURL)
	assert.Equal(t, "wss://bingo.example.com", cfg.WSURL)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, uint64(8), cfg.MaxReconnectAttempts)
}

// TestLoad_InvalidDuration проверяет откат к дефолту при мусоре в окружении
func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("BINGO_POLL_INTERVAL", "not-a-duration")

	cfg := Load()
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
}
