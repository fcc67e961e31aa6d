package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Backend Backend
	Push    Push
	Sync    Sync
	Metrics Metrics
	Stub    Stub
}

type Backend struct {
	BaseURL string
	Timeout time.Duration
}

type Push struct {
	// RelayURL is the WebSocket endpoint foreground messages are delivered on.
	RelayURL string
	// PermissionGranted stands in for the browser permission prompt: a headless
	// agent either runs with notifications allowed or it doesn't.
	PermissionGranted bool
}

type Sync struct {
	BurstInterval   time.Duration
	BurstDuration   time.Duration
	SteadyInterval  time.Duration
	Debounce        time.Duration
	RegisterTimeout time.Duration
	RecentLimit     int
}

type Metrics struct {
	Addr string // empty disables the /metrics listener
}

// Stub configures the development backend (cmd/stubserver).
type Stub struct {
	Port                       string
	DBPath                     string
	JWTSecret                  string
	AccessExpiry               time.Duration
	AdminEmail                 string
	AdminPassword              string
	FirebaseServiceAccountPath string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[Config] no .env file loaded: %v", err)
	}
	return &Config{
		Backend: Backend{
			BaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:8099"),
			Timeout: getEnvDuration("BACKEND_TIMEOUT", 10*time.Second),
		},
		Push: Push{
			RelayURL:          getEnv("PUSH_RELAY_URL", "ws://localhost:8099/fcm/ws"),
			PermissionGranted: getEnvBool("PUSH_PERMISSION_GRANTED", true),
		},
		Sync: Sync{
			BurstInterval:   getEnvDuration("SYNC_BURST_INTERVAL", 3*time.Second),
			BurstDuration:   getEnvDuration("SYNC_BURST_DURATION", 60*time.Second),
			SteadyInterval:  getEnvDuration("SYNC_STEADY_INTERVAL", 5*time.Second),
			Debounce:        getEnvDuration("SYNC_DEBOUNCE", time.Second),
			RegisterTimeout: getEnvDuration("SYNC_REGISTER_TIMEOUT", 5*time.Second),
			RecentLimit:     getEnvInt("SYNC_RECENT_LIMIT", 10),
		},
		Metrics: Metrics{
			Addr: getEnv("METRICS_ADDR", ""),
		},
		Stub: Stub{
			Port:                       getEnv("STUB_PORT", "8099"),
			DBPath:                     getEnv("STUB_DB_PATH", "stub.db"),
			JWTSecret:                  getEnv("STUB_JWT_SECRET", "dev-secret"),
			AccessExpiry:               getEnvDuration("STUB_ACCESS_EXPIRY", 24*time.Hour),
			AdminEmail:                 getEnv("STUB_ADMIN_EMAIL", "admin@hrpulse.local"),
			AdminPassword:              getEnv("STUB_ADMIN_PASSWORD", "admin123"),
			FirebaseServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
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
