package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigAppliesFlagOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte("bus:\n  address: broker.lan\ntopics:\n  host: kitchen\n")
	if err := os.WriteFile(path, yaml, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	prev := configPath
	configPath = path
	t.Cleanup(func() { configPath = prev })

	cmd := newRunCmd()
	if err := cmd.Flags().Set("port", "8883"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if err := cmd.Flags().Set("log-level", "debug"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	cfg, err := loadConfig(cmd, runFlags{port: 8883, logLevel: "debug"})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Bus.Address != "broker.lan" {
		t.Fatalf("unset flag must keep the file value, got %q", cfg.Bus.Address)
	}
	if cfg.Bus.Port != 8883 || cfg.Log.Level != "debug" {
		t.Fatalf("expected flag overrides, got port=%d level=%s", cfg.Bus.Port, cfg.Log.Level)
	}
	if cfg.Topics.Host != "kitchen" {
		t.Fatalf("expected host from file, got %q", cfg.Topics.Host)
	}
}

func TestLoadConfigRejectsBadPort(t *testing.T) {
	prev := configPath
	configPath = filepath.Join(t.TempDir(), "missing.yaml")
	t.Cleanup(func() { configPath = prev })

	cmd := newRunCmd()
	if err := cmd.Flags().Set("port", "70000"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if _, err := loadConfig(cmd, runFlags{port: 70000}); err == nil {
		t.Fatalf("expected out-of-range port to be rejected")
	}
}
