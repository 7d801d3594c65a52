package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	AppPort string
	AppEnv  string

	JWTSecret string

	// StoreDriver selects the local-store backend: "sqlite" (per-device
	// cache file, the default) or "postgres" (shared kiosk install).
	StoreDriver string
	StorePath   string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Remote registration source.
	RemoteBaseURL    string
	RemoteAPIKey     string
	RemoteTimeoutSec int

	// Background schedules (seconds).
	SyncIntervalSec  int
	SweepIntervalSec int
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func Load() *Config {
	return &Config{
		AppPort: get("APP_PORT", "8080"),
		AppEnv:  get("APP_ENV", "dev"),

		JWTSecret: get("JWT_SECRET", ""),

		StoreDriver: get("STORE_DRIVER", "sqlite"),
		StorePath:   get("STORE_PATH", "scanner.db"),

		DBHost:     get("DB_HOST", "localhost"),
		DBPort:     get("DB_PORT", "5432"),
		DBUser:     get("DB_USER", "postgres"),
		DBPassword: get("DB_PASSWORD", ""),
		DBName:     get("DB_NAME", "orbitx_scanner"),
		DBSSLMode:  get("DB_SSLMODE", "disable"),

		RemoteBaseURL:    get("REMOTE_BASE_URL", "http://localhost:9090"),
		RemoteAPIKey:     get("REMOTE_API_KEY", ""),
		RemoteTimeoutSec: getInt("REMOTE_TIMEOUT_SEC", 10),

		SyncIntervalSec:  getInt("SYNC_INTERVAL_SEC", 60),
		SweepIntervalSec: getInt("SWEEP_INTERVAL_SEC", 600),
	}
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}
