package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxInputChars != 50000 {
		t.Errorf("MaxInputChars = %d, want 50000", cfg.MaxInputChars)
	}
	if cfg.ExampleMaxChars != 20000 {
		t.Errorf("ExampleMaxChars = %d, want 20000", cfg.ExampleMaxChars)
	}
	if cfg.Defaults.DocumentType != "audit-finding" {
		t.Errorf("Defaults.DocumentType = %q, want audit-finding", cfg.Defaults.DocumentType)
	}
	if cfg.Defaults.EnglishVariant != "en-GB" {
		t.Errorf("Defaults.EnglishVariant = %q, want en-GB", cfg.Defaults.EnglishVariant)
	}
	if !cfg.Defaults.AuditSafe() {
		t.Error("Defaults.AuditSafe() = false, want true")
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"max_input_chars": 500, "defaults": {"english_variant": "en-US", "audit_safe_mode": false, "owner": "Finance"}}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxInputChars != 500 {
		t.Errorf("MaxInputChars = %d, want 500", cfg.MaxInputChars)
	}
	if cfg.ExampleMaxChars != 20000 {
		t.Errorf("ExampleMaxChars = %d, want 20000 (default)", cfg.ExampleMaxChars)
	}
	if cfg.Defaults.EnglishVariant != "en-US" {
		t.Errorf("Defaults.EnglishVariant = %q, want en-US", cfg.Defaults.EnglishVariant)
	}
	if cfg.Defaults.DocumentType != "audit-finding" {
		t.Errorf("Defaults.DocumentType = %q, want audit-finding (default)", cfg.Defaults.DocumentType)
	}
	if cfg.Defaults.AuditSafe() {
		t.Error("Defaults.AuditSafe() = true, want false")
	}
	if cfg.Defaults.Owner != "Finance" {
		t.Errorf("Defaults.Owner = %q, want Finance", cfg.Defaults.Owner)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{not json}`)

	if _, err := Load(tmpDir); err == nil {
		t.Fatal("Load() expected error, got nil")
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"disabled_tools": ["example_delete", " example_import "]}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
	if cfg.DisabledTools[1] != "example_import" {
		t.Errorf("DisabledTools[1] = %q, want trimmed %q", cfg.DisabledTools[1], "example_import")
	}
}

func TestLoadWithRepo_BothPresent(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	writeConfig(t, globalDir, `{"max_input_chars": 8000, "disabled_tools": ["example_delete"], "defaults": {"owner": "Finance"}}`)
	writeConfig(t, filepath.Join(repoRoot, ".cleansheet"), `{"max_input_chars": 5000, "disabled_tools": ["example_import"], "defaults": {"owner": "Operations"}}`)

	cfg, err := LoadWithRepo(globalDir, repoRoot)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.MaxInputChars != 5000 {
		t.Errorf("MaxInputChars = %d, want 5000 (repo override)", cfg.MaxInputChars)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Errorf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
	if cfg.Defaults.Owner != "Operations" {
		t.Errorf("Defaults.Owner = %q, want Operations (repo override)", cfg.Defaults.Owner)
	}
}

func TestLoadWithRepo_NeitherPresent(t *testing.T) {
	cfg, err := LoadWithRepo(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.MaxInputChars != 50000 {
		t.Errorf("MaxInputChars = %d, want 50000", cfg.MaxInputChars)
	}
	if len(cfg.DisabledTools) != 0 {
		t.Errorf("DisabledTools = %v, want empty", cfg.DisabledTools)
	}
}

func TestLoadWithRepo_WalksUpward(t *testing.T) {
	repoRoot := t.TempDir()
	writeConfig(t, filepath.Join(repoRoot, ".cleansheet"), `{"disabled_types": ["settings"]}`)

	subdir := filepath.Join(repoRoot, "reports", "2026")
	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	cfg, err := LoadWithRepo(t.TempDir(), subdir)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if len(cfg.DisabledTypes) != 1 || cfg.DisabledTypes[0] != "settings" {
		t.Errorf("DisabledTypes = %v, want [settings]", cfg.DisabledTypes)
	}
}

func TestMerge(t *testing.T) {
	on, off := true, false
	base := &Config{
		MaxInputChars:    10000,
		DBMaxOpenConns:   5,
		AllowUnsafePaths: true,
		DisabledTools:    []string{"example_delete", "example_import"},
		Defaults:         Defaults{DocumentType: "general", AuditSafeMode: &on},
	}
	overlay := &Config{
		MaxInputChars: 5000,
		DisabledTools: []string{"example_import", "settings_update"},
		Defaults:      Defaults{AuditSafeMode: &off},
	}

	result := Merge(base, overlay)

	if result.MaxInputChars != 5000 {
		t.Errorf("MaxInputChars = %d, want 5000 (overlay)", result.MaxInputChars)
	}
	if result.DBMaxOpenConns != 5 {
		t.Errorf("DBMaxOpenConns = %d, want 5 (base, overlay is zero)", result.DBMaxOpenConns)
	}
	if !result.AllowUnsafePaths {
		t.Error("AllowUnsafePaths should be true (base OR overlay)")
	}
	if len(result.DisabledTools) != 3 {
		t.Errorf("DisabledTools = %v, want 3 merged entries", result.DisabledTools)
	}
	if result.Defaults.DocumentType != "general" {
		t.Errorf("Defaults.DocumentType = %q, want general (base)", result.Defaults.DocumentType)
	}
	if result.Defaults.AuditSafe() {
		t.Error("Defaults.AuditSafe() = true, want false (overlay)")
	}
}

func TestFindRepoConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeConfig(t, filepath.Join(tmpDir, ".cleansheet"), `{}`)

	subdir := filepath.Join(tmpDir, "a", "b")
	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	if found := FindRepoConfig(tmpDir); found != configPath {
		t.Errorf("FindRepoConfig(root) = %q, want %q", found, configPath)
	}
	if found := FindRepoConfig(subdir); found != configPath {
		t.Errorf("FindRepoConfig(subdir) = %q, want %q", found, configPath)
	}
	if found := FindRepoConfig(t.TempDir()); found != "" {
		t.Errorf("FindRepoConfig(empty) = %q, want empty string", found)
	}
}
