// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath              string
	Port                string
	SecretKey           string
	Location            *time.Location
	DefaultLocale       string
	StorageFolder       string
	StartupTimeout      time.Duration
	ReminderSweep       string
	NativeNotifications bool
	UnlockTTL           time.Duration
	CookieSecure        bool
}

const defaultSecretKey = "change_me_in_production"

// Load reads the given .env files (".env" when none are named) and then the
// process environment. Variables already set in the environment win. Missing
// .env files are not an error.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	}

	startupTimeout, err := getEnvAsDuration("CHITRA_STARTUP_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	unlockTTL, err := getEnvAsDuration("CHITRA_UNLOCK_TTL", 12*time.Hour)
	if err != nil {
		return nil, err
	}
	native, err := getEnvAsBool("CHITRA_NATIVE", false)
	if err != nil {
		return nil, err
	}
	cookieSecure, err := getEnvAsBool("COOKIE_SECURE", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DBPath:              getEnv("CHITRA_DB_PATH", filepath.Join("data", "chitra.db")),
		Port:                getEnv("PORT", "8080"),
		SecretKey:           getEnv("SECRET_KEY", defaultSecretKey),
		Location:            loadLocation(getEnv("TZ", "UTC")),
		DefaultLocale:       getEnv("DEFAULT_LOCALE", "en"),
		StorageFolder:       getEnv("CHITRA_STORAGE_DIR", filepath.Join("data", "files")),
		StartupTimeout:      startupTimeout,
		ReminderSweep:       getEnv("CHITRA_REMINDER_SWEEP", "@every 15m"),
		NativeNotifications: native,
		UnlockTTL:           unlockTTL,
		CookieSecure:        cookieSecure,
	}
	if cfg.SecretKey == defaultSecretKey {
		log.Printf("config: SECRET_KEY is not set, using the development default")
	}
	return cfg, nil
}

func loadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("config: invalid TZ %q, falling back to UTC", name)
		return time.UTC
	}
	return location
}

func getEnv(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, raw)
	}
	return value, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return value, nil
}
