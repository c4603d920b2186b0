package config

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	if cfg.API.BaseURL == "" {
		t.Fatalf("expected default API base url")
	}
	if cfg.API.TimeoutSeconds <= 0 {
		t.Fatalf("expected positive default timeout")
	}
	if cfg.App.DefaultLanguage != "en" {
		t.Fatalf("expected default language en, got %s", cfg.App.DefaultLanguage)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("GARAGELINK_API_BASE_URL", "https://api.example.test")
	t.Setenv("GARAGELINK_API_TIMEOUT", "25")
	t.Setenv("GARAGELINK_LOG_LEVEL", "warn")

	cfg := defaultConfig()
	applyEnvOverrides(cfg)

	if cfg.API.BaseURL != "https://api.example.test" {
		t.Fatalf("base url override not applied: %s", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSeconds != 25 {
		t.Fatalf("timeout override not applied: %d", cfg.API.TimeoutSeconds)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("log level override not applied: %s", cfg.Log.Level)
	}
}

func TestApplyEnvOverridesIgnoresBadTimeout(t *testing.T) {
	t.Setenv("GARAGELINK_API_TIMEOUT", "not-a-number")

	cfg := defaultConfig()
	want := cfg.API.TimeoutSeconds
	applyEnvOverrides(cfg)

	if cfg.API.TimeoutSeconds != want {
		t.Fatalf("bad timeout should be ignored, got %d", cfg.API.TimeoutSeconds)
	}
}
