package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func withTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	SetConfigDir(dir)
	t.Cleanup(func() { SetConfigDir("") })
	return dir
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	withTempConfigDir(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StoragePrefix != "" || cfg.IgnoreListExtra != nil || cfg.FreezeIntervalMS != 0 {
		t.Fatalf("expected zero-value Config, got %+v", cfg)
	}
	if got, want := cfg.FreezeInterval(), time.Millisecond; got != want {
		t.Fatalf("FreezeInterval: got %v want %v", got, want)
	}
}

func TestLoadValidConfig(t *testing.T) {
	dir := withTempConfigDir(t)
	body := "storage_prefix = \"/var/lib/memscan\"\n" +
		"ignore_list_extra = [\"/dev/\", \"[vvar]\"]\n" +
		"freeze_interval_ms = 5\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StoragePrefix != "/var/lib/memscan" {
		t.Fatalf("StoragePrefix: got %q", cfg.StoragePrefix)
	}
	if len(cfg.IgnoreListExtra) != 2 || cfg.IgnoreListExtra[0] != "/dev/" {
		t.Fatalf("IgnoreListExtra: got %v", cfg.IgnoreListExtra)
	}
	if got, want := cfg.FreezeInterval(), 5*time.Millisecond; got != want {
		t.Fatalf("FreezeInterval: got %v want %v", got, want)
	}
}

func TestLoadMalformedTOML(t *testing.T) {
	dir := withTempConfigDir(t)
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("storage_prefix = ["), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for malformed config.toml")
	}
	if got := err.Error(); !strings.Contains(got, "parsing config.toml") {
		t.Fatalf("error %q does not mention parsing config.toml", got)
	}
}

func TestPathJoinsHomeAndFilename(t *testing.T) {
	dir := withTempConfigDir(t)
	if got, want := Path(), filepath.Join(dir, "config.toml"); got != want {
		t.Fatalf("Path: got %q want %q", got, want)
	}
}

func TestResolveFlagStoragePrefixWins(t *testing.T) {
	dir := withTempConfigDir(t)
	body := "storage_prefix = \"/from/config\"\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	resolved, err := Resolve("/from/flag", 0)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.StoragePrefix != "/from/flag" {
		t.Fatalf("StoragePrefix: got %q, want flag value", resolved.StoragePrefix)
	}
}

func TestResolveConfigStoragePrefixFallback(t *testing.T) {
	dir := withTempConfigDir(t)
	body := "storage_prefix = \"/from/config\"\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	resolved, err := Resolve("", 0)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.StoragePrefix != "/from/config" {
		t.Fatalf("StoragePrefix: got %q, want config value", resolved.StoragePrefix)
	}
}

func TestResolveDefaultsToDot(t *testing.T) {
	withTempConfigDir(t)

	resolved, err := Resolve("", 0)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.StoragePrefix != "." {
		t.Fatalf("StoragePrefix: got %q, want \".\"", resolved.StoragePrefix)
	}
}

func TestResolveFreezeIntervalFlagWinsOverConfig(t *testing.T) {
	dir := withTempConfigDir(t)
	body := "freeze_interval_ms = 20\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	resolved, err := Resolve("", 7)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got, want := resolved.FreezeInterval, 7*time.Millisecond; got != want {
		t.Fatalf("FreezeInterval: got %v want %v", got, want)
	}
}

func TestResolveFreezeIntervalDefaultsWhenUnset(t *testing.T) {
	withTempConfigDir(t)

	resolved, err := Resolve("", 0)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got, want := resolved.FreezeInterval, time.Millisecond; got != want {
		t.Fatalf("FreezeInterval: got %v want %v", got, want)
	}
}
