package config_test

import (
	"testing"

	"github.com/km-arc/go-ioc/config"
)

// ── Load ─────────────────────────────────────────────────────────────────────

func TestLoad_Defaults(t *testing.T) {
	// No env set → verify all defaults
	cfg := config.Load("testdata/empty.env")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"App.Name", cfg.App.Name, "go-ioc"},
		{"App.Env", cfg.App.Env, "local"},
		{"App.Manifest", cfg.App.Manifest, "services.yaml"},
		{"Diag.Addr", cfg.Diag.Addr, ":9180"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}

	if !cfg.App.Debug {
		t.Error("App.Debug should default to true")
	}
	if cfg.Diag.Enabled {
		t.Error("Diag.Enabled should default to false")
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("APP_NAME", "erp-runtime")
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_DEBUG", "false")
	t.Setenv("IOC_MANIFEST", "wiring/services.yaml")
	t.Setenv("IOC_DIAG_ENABLED", "true")
	t.Setenv("IOC_DIAG_ADDR", ":9999")

	cfg := config.Load("testdata/empty.env")

	if cfg.App.Name != "erp-runtime" {
		t.Errorf("App.Name: got %q", cfg.App.Name)
	}
	if cfg.App.Env != "production" {
		t.Errorf("App.Env: got %q", cfg.App.Env)
	}
	if cfg.App.Debug {
		t.Error("App.Debug: should be overridden to false")
	}
	if cfg.App.Manifest != "wiring/services.yaml" {
		t.Errorf("App.Manifest: got %q", cfg.App.Manifest)
	}
	if !cfg.Diag.Enabled || cfg.Diag.Addr != ":9999" {
		t.Errorf("Diag: got %+v", cfg.Diag)
	}
}

// ── Raw getters ──────────────────────────────────────────────────────────────

func TestGetters(t *testing.T) {
	t.Setenv("SOME_INT", "42")
	t.Setenv("SOME_BOOL", "true")
	t.Setenv("SOME_STR", "hello")

	if got := config.Get("SOME_STR", "x"); got != "hello" {
		t.Errorf("Get: got %q", got)
	}
	if got := config.Get("MISSING", "fallback"); got != "fallback" {
		t.Errorf("Get fallback: got %q", got)
	}
	if got := config.GetInt("SOME_INT", 0); got != 42 {
		t.Errorf("GetInt: got %d", got)
	}
	if got := config.GetInt("SOME_STR", 7); got != 7 {
		t.Errorf("GetInt non-numeric should fall back: got %d", got)
	}
	if got := config.GetBool("SOME_BOOL", false); !got {
		t.Error("GetBool: got false")
	}
}
