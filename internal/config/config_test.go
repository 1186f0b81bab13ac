package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var configKeys = []string{
	"CHITRA_DB_PATH", "PORT", "SECRET_KEY", "TZ", "DEFAULT_LOCALE", "CHITRA_STORAGE_DIR",
	"CHITRA_STARTUP_TIMEOUT", "CHITRA_REMINDER_SWEEP", "CHITRA_NATIVE", "CHITRA_UNLOCK_TTL", "COOKIE_SECURE",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.DBPath != filepath.Join("data", "chitra.db") || cfg.Port != "8080" || cfg.DefaultLocale != "en" {
		t.Fatalf("unexpected defaults: %#v", cfg)
	}
	if cfg.StartupTimeout != 15*time.Second || cfg.UnlockTTL != 12*time.Hour {
		t.Fatalf("unexpected default durations: %#v", cfg)
	}
	if cfg.ReminderSweep != "@every 15m" || cfg.NativeNotifications {
		t.Fatalf("unexpected reminder defaults: %#v", cfg)
	}
	if cfg.Location != time.UTC {
		t.Fatalf("expected UTC location, got %s", cfg.Location)
	}
}

func TestLoadReadsEnvFileWithoutOverridingEnvironment(t *testing.T) {
	clearConfigEnv(t)
	for _, key := range configKeys {
		_ = os.Unsetenv(key)
	}
	t.Setenv("PORT", "9090")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := strings.Join([]string{
		"PORT=7000",
		"CHITRA_DB_PATH=/tmp/chitra-test.db",
		"CHITRA_NATIVE=true",
		"CHITRA_UNLOCK_TTL=30m",
	}, "\n")
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() {
		for _, key := range []string{"CHITRA_DB_PATH", "CHITRA_NATIVE", "CHITRA_UNLOCK_TTL"} {
			_ = os.Unsetenv(key)
		}
	})

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("expected environment to win over .env, got port %q", cfg.Port)
	}
	if cfg.DBPath != "/tmp/chitra-test.db" || !cfg.NativeNotifications || cfg.UnlockTTL != 30*time.Minute {
		t.Fatalf("expected .env values applied, got %#v", cfg)
	}
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{key: "CHITRA_STARTUP_TIMEOUT", value: "soon"},
		{key: "CHITRA_UNLOCK_TTL", value: "-1h"},
		{key: "CHITRA_NATIVE", value: "maybe"},
		{key: "COOKIE_SECURE", value: "sure"},
	}

	for _, testCase := range tests {
		t.Run(testCase.key, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv(testCase.key, testCase.value)

			if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
				t.Fatalf("expected %s=%q to be rejected", testCase.key, testCase.value)
			}
		})
	}
}

func TestLoadFallsBackToUTCForUnknownZone(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("TZ", "Mars/Olympus_Mons")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Location != time.UTC {
		t.Fatalf("expected UTC fallback, got %s", cfg.Location)
	}
}
