package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	SourceURL      string
	HistoryDir     string
	HistoryBackend string
	SQLitePath     string
	LocatorMode    string

	FetchMaxAttempts int
	FetchRetryDelay  time.Duration
	FetchWaitTimeout time.Duration
	FetchSettleDelay time.Duration
	ChromePath       string
	UserAgent        string

	DatabaseURL string
	RedisURL    string
	LockTTL     time.Duration
	MetricsPort string
	HTTPAddr    string
	ViewsDir    string
}

func Load() *Config {
	// Carrega .env da raiz do projeto
	_ = godotenv.Load("../../.env")
	// Se não encontrar, tenta no diretório atual
	_ = godotenv.Load()
	return &Config{
		SourceURL:      getEnv("BALANCA_URL", "https://balanca.economia.gov.br/balanca/pg_principal_bc/principais_resultados.html"),
		HistoryDir:     getEnv("HISTORY_DIR", "."),
		HistoryBackend: getEnv("HISTORY_BACKEND", "csv"), // Pode ser "csv" ou "sqlite"
		SQLitePath:     getEnv("SQLITE_PATH", "historico.db"),
		LocatorMode:    getEnv("LOCATOR_MODE", "fingerprint"), // "positional" só se a página perder os cabeçalhos

		FetchMaxAttempts: getInt("FETCH_MAX_ATTEMPTS", 3),
		FetchRetryDelay:  getDuration("FETCH_RETRY_DELAY", 5*time.Second),
		FetchWaitTimeout: getDuration("FETCH_WAIT_TIMEOUT", 30*time.Second),
		FetchSettleDelay: getDuration("FETCH_SETTLE_DELAY", 10*time.Second),
		ChromePath:       os.Getenv("CHROME_PATH"),
		UserAgent:        os.Getenv("USER_AGENT"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		LockTTL:     getDuration("LOCK_TTL", 5*time.Minute),
		MetricsPort: getEnv("METRICS_PORT", "9090"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8090"),
		ViewsDir:    getEnv("VIEWS_DIR", "./views"),
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getInt(k string, d int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return d
}

// getDuration aceita "30s", "2m" ou um número simples em segundos.
func getDuration(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return d
}
