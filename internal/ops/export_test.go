package ops

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/bigviv/CleanSheet/internal/config"
	"github.com/bigviv/CleanSheet/internal/errors"
	"github.com/bigviv/CleanSheet/internal/example"
)

// testConfig allows import/export paths directly inside dir.
func testConfig(dir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{dir}
	return cfg
}

func readExportLines(t *testing.T, path string) []example.ExportRecord {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()

	var records []example.ExportRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r example.ExportRecord
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			t.Fatalf("invalid JSON line %q: %v", scanner.Text(), err)
		}
		records = append(records, r)
	}
	return records
}

func TestExport_HappyPath(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	ctx := context.Background()
	cfg := testConfig(tmpDir)

	storeForTest(t, ctx, database, "First", "First text.")
	storeForTest(t, ctx, database, "Second", "Second text.")

	exportPath := filepath.Join(tmpDir, "export.jsonl")
	output, err := Export(ctx, database, cfg, ExportInput{Path: exportPath})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if output.Path != exportPath {
		t.Errorf("Path = %q, want %q", output.Path, exportPath)
	}
	if output.Count != 2 {
		t.Errorf("Count = %d, want 2", output.Count)
	}
	if output.SettingsSaved {
		t.Error("no settings were saved, none should be exported")
	}

	records := readExportLines(t, exportPath)
	if len(records) != 3 {
		t.Fatalf("got %d lines, want 3 (header + 2)", len(records))
	}
	if !records[0].CleanSheetExport || records[0].SchemaVersion != ExportSchemaVersion {
		t.Errorf("header = %+v", records[0])
	}
	if records[1].Title != "First" || records[2].Title != "Second" {
		t.Errorf("examples out of order: %q, %q", records[1].Title, records[2].Title)
	}

	info, err := os.Stat(exportPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("perm = %o, want 600", info.Mode().Perm())
	}

	matches, _ := filepath.Glob(filepath.Join(tmpDir, "*.tmp"))
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestExport_IncludesSettings(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	ctx := context.Background()
	cfg := testConfig(tmpDir)

	if _, err := GetSettings(ctx, database, cfg); err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}

	exportPath := filepath.Join(tmpDir, "with-settings.jsonl")
	output, err := Export(ctx, database, cfg, ExportInput{Path: exportPath})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !output.SettingsSaved {
		t.Error("SettingsSaved should be true")
	}

	records := readExportLines(t, exportPath)
	if len(records) != 2 || records[1].Settings == nil {
		t.Fatalf("want header + settings line, got %+v", records)
	}
	if records[1].Settings.DocumentType != "audit-finding" {
		t.Errorf("settings = %+v", records[1].Settings)
	}
}

func TestExport_RejectsPaths(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	cfg := testConfig(tmpDir)

	tests := []struct {
		name string
		path string
	}{
		{"wrong extension", filepath.Join(tmpDir, "export.json")},
		{"traversal", tmpDir + "/../export.jsonl"},
		{"outside allowed dirs", filepath.Join(t.TempDir(), "export.jsonl")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Export(context.Background(), database, cfg, ExportInput{Path: tt.path})
			if !errors.Is(err, errors.ErrInvalidRequest) {
				t.Errorf("err = %v, want INVALID_REQUEST", err)
			}
		})
	}
}

func TestExport_RejectsSymlink(t *testing.T) {
	database, tmpDir := setupTestDB(t)
	cfg := testConfig(tmpDir)

	target := filepath.Join(tmpDir, "target.jsonl")
	if err := os.WriteFile(target, []byte("keep"), 0600); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(tmpDir, "link.jsonl")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	if _, err := Export(context.Background(), database, cfg, ExportInput{Path: link}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("err = %v, want INVALID_REQUEST", err)
	}
	data, _ := os.ReadFile(target)
	if string(data) != "keep" {
		t.Error("symlink target was overwritten")
	}
}
