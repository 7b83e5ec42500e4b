// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func noDotenv(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(noDotenv(t))
	if err != nil {
		t.Fatalf("Should not fail loading defaults: %s", err)
	}

	if cfg.HibpURL != "https://api.pwnedpasswords.com/range/" {
		t.Errorf("Default range URL should be the Pwned Passwords API, got %s", cfg.HibpURL)
	}
	if cfg.HibpTimeout != 5*time.Second {
		t.Errorf("Default timeout should be 5s, got %v", cfg.HibpTimeout)
	}
	if !cfg.BreachCheck || cfg.BreachRequired {
		t.Errorf("Breach check should be enabled and optional by default")
	}
	if !cfg.AuditEnabled || cfg.AuditFile == "" {
		t.Errorf("Audit log should be enabled by default")
	}
	if cfg.CacheTTL != 10*time.Minute || cfg.Port != 3100 {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PWDSTRENGTH_HIBP_TIMEOUT", "750ms")
	t.Setenv("PWDSTRENGTH_BREACH_CHECK", "false")
	t.Setenv("PWDSTRENGTH_BREACH_REQUIRED", "true")
	t.Setenv("PWDSTRENGTH_AUDIT_FILE", "/tmp/audit.log")
	t.Setenv("PWDSTRENGTH_HIBP_RETRIES", "0")

	cfg, err := Load(noDotenv(t))
	if err != nil {
		t.Fatalf("Should not fail loading: %s", err)
	}

	if cfg.HibpTimeout != 750*time.Millisecond {
		t.Errorf("Timeout should be read from the environment, got %v", cfg.HibpTimeout)
	}
	if cfg.BreachCheck || !cfg.BreachRequired {
		t.Errorf("Breach flags should be read from the environment")
	}
	if cfg.AuditFile != "/tmp/audit.log" || cfg.HibpRetries != 0 {
		t.Errorf("Unexpected configuration: %+v", cfg)
	}
}

func TestLoad_Dotenv(t *testing.T) {
	file := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(file, []byte("PWDSTRENGTH_USER_AGENT=dotenv-agent\n"), 0o600); err != nil {
		t.Fatalf("Should not fail writing the dotenv file: %s", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("PWDSTRENGTH_USER_AGENT") })

	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("Should not fail loading: %s", err)
	}

	if cfg.UserAgent != "dotenv-agent" {
		t.Errorf("User agent should come from the dotenv file, got %s", cfg.UserAgent)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("PWDSTRENGTH_HIBP_URL", "not a url")
	t.Setenv("PWDSTRENGTH_HIBP_RETRIES", "42")

	_, err := Load(noDotenv(t))
	if err == nil {
		t.Fatalf("Invalid configuration should fail")
	}

	msg := err.Error()
	if !strings.Contains(msg, "HIBP_URL: This field must be a valid URL") {
		t.Errorf("Error should name HIBP_URL, got %s", msg)
	}
	if !strings.Contains(msg, "HIBP_RETRIES: This field must be at most 10") {
		t.Errorf("Error should name HIBP_RETRIES, got %s", msg)
	}
}

func TestValidate_AuditFileRequired(t *testing.T) {
	cfg, err := Load(noDotenv(t))
	if err != nil {
		t.Fatalf("Should not fail loading: %s", err)
	}

	cfg.AuditFile = ""
	if err = Validate(cfg); err == nil || !strings.Contains(err.Error(), "AUDIT_FILE") {
		t.Errorf("Audit file should be required when auditing is enabled, got %v", err)
	}

	cfg.AuditEnabled = false
	if err = Validate(cfg); err != nil {
		t.Errorf("Audit file should be optional when auditing is disabled, got %s", err)
	}
}
