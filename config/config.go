package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the typed runtime configuration for the DI runtime and its
// diagnostics surface.
type Config struct {
	App  AppConfig
	Diag DiagConfig
}

type AppConfig struct {
	Name     string
	Env      string // local | production | testing
	Debug    bool
	Manifest string // path to the service manifest YAML
}

type DiagConfig struct {
	Enabled bool
	Addr    string // listen address for the diagnostics endpoint
}

// Load reads .env (if present) and populates a Config from environment
// variables. Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	return &Config{
		App: AppConfig{
			Name:     env("APP_NAME", "go-ioc"),
			Env:      env("APP_ENV", "local"),
			Debug:    envBool("APP_DEBUG", true),
			Manifest: env("IOC_MANIFEST", "services.yaml"),
		},
		Diag: DiagConfig{
			Enabled: envBool("IOC_DIAG_ENABLED", false),
			Addr:    env("IOC_DIAG_ADDR", ":9180"),
		},
	}
}

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
