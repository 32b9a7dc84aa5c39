package config

import (
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	configViper := NewViper()
	configViper.Set("auth.signing_secret", "secret")

	cfg, err := Load(configViper)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Fatalf("expected 7 day token ttl, got %s", cfg.TokenTTL)
	}
	if cfg.DatabaseDriver != DatabaseDriverSQLite {
		t.Fatalf("expected sqlite driver, got %q", cfg.DatabaseDriver)
	}
	if cfg.StorageDriver != StorageDriverDisk {
		t.Fatalf("expected disk storage, got %q", cfg.StorageDriver)
	}
	if cfg.ExposeResetToken {
		t.Fatalf("reset token exposure must default to false")
	}
	if cfg.MailEnabled() {
		t.Fatalf("mail should be disabled without smtp.host")
	}
	if cfg.CalendarLocation == nil || cfg.CalendarLocation.String() != "UTC" {
		t.Fatalf("expected UTC calendar location, got %v", cfg.CalendarLocation)
	}
}

func TestLoadValidation(t *testing.T) {
	testCases := []struct {
		name     string
		settings map[string]any
	}{
		{name: "missing-secret", settings: map[string]any{}},
		{name: "unknown-driver", settings: map[string]any{"auth.signing_secret": "s", "database.driver": "oracle"}},
		{name: "empty-dsn", settings: map[string]any{"auth.signing_secret": "s", "database.dsn": " "}},
		{name: "minio-without-endpoint", settings: map[string]any{"auth.signing_secret": "s", "storage.driver": "minio"}},
		{name: "non-positive-ttl", settings: map[string]any{"auth.signing_secret": "s", "auth.token_ttl": "0s"}},
		{name: "unknown-time-zone", settings: map[string]any{"auth.signing_secret": "s", "scheduling.time_zone": "Mars/Olympus_Mons"}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			configViper := NewViper()
			for key, value := range testCase.settings {
				configViper.Set(key, value)
			}
			if _, err := Load(configViper); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadTrimsBaseURL(t *testing.T) {
	configViper := NewViper()
	configViper.Set("auth.signing_secret", "secret")
	configViper.Set("app.base_url", "https://legal.example.com/")

	cfg, err := Load(configViper)
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if cfg.AppBaseURL != "https://legal.example.com" {
		t.Fatalf("expected trailing slash to be trimmed, got %q", cfg.AppBaseURL)
	}
}
