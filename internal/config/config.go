package config

import (
	"os"
	"strconv"
	"time"
)

// Config содержит настройки клиента. Все значения имеют рабочие
// дефолты для локальной разработки; продакшн переопределяет их
// через переменные окружения.
type Config struct {
	BaseURL string // базовый URL REST API
	WSURL   string // базовый URL push-канала (ws:// или wss://)
	DBPath  string // путь к локальной BoltDB базе

	HeartbeatInterval time.Duration // период PING по push-каналу
	PollInterval      time.Duration // период REST-опроса состояния игры
	PhaseDebounce     time.Duration // минимальный интервал между сменами фазы от polling
	PushFreshness     time.Duration // окно, в котором push-фаза считается свежей
	ProcessingTTL     time.Duration // сколько держится processing-маркер карточки
	BackoffBase       time.Duration // стартовая задержка переподключения
	BackoffCap        time.Duration // потолок задержки переподключения
	ResyncStaleAfter  time.Duration // принудительный ресинк при отсутствии sync дольше этого

	MaxReconnectAttempts uint64 // подряд неудачных попыток до терминального отказа
}

// Load читает конфигурацию из окружения
func Load() Config {
	return Config{
		BaseURL: getEnv("BINGO_API_URL", "http://localhost:8080"),
		WSURL:   getEnv("BINGO_WS_URL", "ws://localhost:8080"),
		DBPath:  getEnv("BINGO_DB_PATH", "bingosync-client.db"),

		HeartbeatInterval: getEnvDuration("BINGO_HEARTBEAT_INTERVAL", 30*time.Second),
		PollInterval:      getEnvDuration("BINGO_POLL_INTERVAL", 5*time.Second),
		PhaseDebounce:     getEnvDuration("BINGO_PHASE_DEBOUNCE", time.Second),
		PushFreshness:     getEnvDuration("BINGO_PUSH_FRESHNESS", 10*time.Second),
		ProcessingTTL:     getEnvDuration("BINGO_PROCESSING_TTL", 1500*time.Millisecond),
		BackoffBase:       getEnvDuration("BINGO_BACKOFF_BASE", time.Second),
		BackoffCap:        getEnvDuration("BINGO_BACKOFF_CAP", 30*time.Second),
		ResyncStaleAfter:  getEnvDuration("BINGO_RESYNC_STALE_AFTER", 30*time.Second),

		MaxReconnectAttempts: getEnvUint("BINGO_MAX_RECONNECT_ATTEMPTS", 5),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvUint(key string, fallback uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
