package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bigviv/CleanSheet/internal/config"
	"github.com/bigviv/CleanSheet/internal/db"
	"github.com/bigviv/CleanSheet/internal/ops"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// cliResult captures one CLI run.
type cliResult struct {
	stdout string
	stderr string
	err    error
}

// runCLI runs the app with args, feeding stdin and capturing both outputs.
func runCLI(t *testing.T, database *sql.DB, cfg *config.Config, stdin string, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newCLIApp(database, cfg)
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(append([]string{"cleansheet"}, args...))
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// decodeJSON unmarshals CLI stdout into T.
func decodeJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("failed to parse output %q: %v", s, err)
	}
	return v
}

// addExample stores an example through the CLI and returns its ID.
func addExample(t *testing.T, database *sql.DB, cfg *config.Config, title, text string) string {
	t.Helper()
	res := runCLI(t, database, cfg, "", "example", "add", "--title", title, "--text", text, "--tags", "itgc")
	if res.err != nil {
		t.Fatalf("example add failed: %v", res.err)
	}
	return decodeJSON[ops.StoreOutput](t, res.stdout).ID
}

// TestParseTags tests the parseTags helper function.
func TestParseTags(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "single tag",
			input:    "itgc",
			expected: []string{"itgc"},
		},
		{
			name:     "tags with spaces",
			input:    " itgc , access , payroll ",
			expected: []string{"itgc", "access", "payroll"},
		},
		{
			name:     "empty tags filtered",
			input:    "itgc,,access,",
			expected: []string{"itgc", "access"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseTags(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("expected %d tags, got %d", len(tt.expected), len(result))
				return
			}
			for i, tag := range result {
				if tag != tt.expected[i] {
					t.Errorf("expected tag[%d]=%q, got %q", i, tt.expected[i], tag)
				}
			}
		})
	}
}

// TestIsCLIMode tests routing between CLI and MCP server modes.
func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"cleansheet"}, false},
		{[]string{"cleansheet", "rewrite"}, true},
		{[]string{"cleansheet", "example"}, true},
		{[]string{"cleansheet", "serve"}, true},
		{[]string{"cleansheet", "--version"}, true},
		{[]string{"cleansheet", "-h"}, true},
		{[]string{"cleansheet", "bogus"}, false},
	}

	for _, tt := range tests {
		if got := isCLIMode(tt.args); got != tt.want {
			t.Errorf("isCLIMode(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestCLIVersion(t *testing.T) {
	res := runCLI(t, nil, nil, "", "--version")
	if res.err != nil {
		t.Fatalf("--version failed: %v", res.err)
	}
	if !strings.Contains(res.stdout, "cleansheet version") {
		t.Errorf("stdout = %q", res.stdout)
	}
}

func TestCLIRewrite(t *testing.T) {
	database := setupTestDB(t)
	cfg := config.DefaultConfig()

	t.Run("stdin with saved settings", func(t *testing.T) {
		res := runCLI(t, database, cfg, "The organization analyzed behavior.\n", "rewrite")
		if res.err != nil {
			t.Fatalf("rewrite failed: %v", res.err)
		}
		if res.stdout != "The organisation analysed behaviour.\n" {
			t.Errorf("stdout = %q", res.stdout)
		}
		if !strings.Contains(res.stderr, "Changes:") || !strings.Contains(res.stderr, "[spelling]") {
			t.Errorf("stderr should list the spelling change, got %q", res.stderr)
		}
	})

	t.Run("option flags override saved settings", func(t *testing.T) {
		res := runCLI(t, database, cfg, "",
			"rewrite",
			"--text", "The review was not completed on time.",
			"--active-voice", "--clear-ownership", "--owner", "Operations",
			"--concise=false", "--calm-tone=false", "--sharper-impact=false",
			"--standardise-spelling=false",
			"--document-type", "general",
			"--format", "json",
		)
		if res.err != nil {
			t.Fatalf("rewrite failed: %v", res.err)
		}
		out := decodeJSON[ops.RewriteOutput](t, res.stdout)
		if out.RewrittenText != "Operations did not complete the review on time." {
			t.Errorf("RewrittenText = %q", out.RewrittenText)
		}
		if out.Options.Owner != "Operations" {
			t.Errorf("Options.Owner = %q", out.Options.Owner)
		}

		// Flags without --save leave the saved settings alone.
		saved, err := ops.GetSettings(t.Context(), database, cfg)
		if err != nil {
			t.Fatalf("GetSettings failed: %v", err)
		}
		if saved.Options.Owner != "" {
			t.Errorf("saved owner = %q, want empty", saved.Options.Owner)
		}
	})

	t.Run("save persists options", func(t *testing.T) {
		res := runCLI(t, database, cfg, "", "rewrite", "--text", "Hello.", "--owner", "Finance", "--save")
		if res.err != nil {
			t.Fatalf("rewrite failed: %v", res.err)
		}
		saved, err := ops.GetSettings(t.Context(), database, cfg)
		if err != nil {
			t.Fatalf("GetSettings failed: %v", err)
		}
		if saved.Options.Owner != "Finance" {
			t.Errorf("saved owner = %q, want Finance", saved.Options.Owner)
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		res := runCLI(t, database, cfg, "", "rewrite", "--text", "x", "--format", "xml")
		if res.err == nil || !strings.Contains(res.err.Error(), "[INVALID_REQUEST]") {
			t.Errorf("err = %v, want INVALID_REQUEST", res.err)
		}
	})

	t.Run("invalid option", func(t *testing.T) {
		res := runCLI(t, database, cfg, "", "rewrite", "--text", "x", "--english-variant", "en-AU")
		if res.err == nil || !strings.Contains(res.err.Error(), "[INVALID_OPTIONS]") {
			t.Errorf("err = %v, want INVALID_OPTIONS", res.err)
		}
	})
}

func TestCLIExampleLifecycle(t *testing.T) {
	database := setupTestDB(t)
	cfg := config.DefaultConfig()

	id := addExample(t, database, cfg, "Access review", "Management did not complete the quarterly access review.")

	res := runCLI(t, database, cfg, "", "example", "get", id)
	if res.err != nil {
		t.Fatalf("example get failed: %v", res.err)
	}
	fetched := decodeJSON[ops.FetchOutput](t, res.stdout)
	if fetched.Title != "Access review" || !fetched.IsActive {
		t.Errorf("fetched = %+v", fetched)
	}

	res = runCLI(t, database, cfg, "", "example", "deactivate", id)
	if res.err != nil {
		t.Fatalf("example deactivate failed: %v", res.err)
	}
	if decodeJSON[ops.UpdateOutput](t, res.stdout).IsActive {
		t.Error("deactivate should clear is_active")
	}

	res = runCLI(t, database, cfg, "", "example", "list", "--active", "true")
	if res.err != nil {
		t.Fatalf("example list failed: %v", res.err)
	}
	if n := len(decodeJSON[ops.ListOutput](t, res.stdout).Items); n != 0 {
		t.Errorf("active list has %d items, want 0", n)
	}

	res = runCLI(t, database, cfg, "", "example", "activate", id)
	if res.err != nil {
		t.Fatalf("example activate failed: %v", res.err)
	}

	res = runCLI(t, database, cfg, "Rewritten example text.", "example", "update", "--title", "Renamed", id)
	if res.err != nil {
		t.Fatalf("example update failed: %v", res.err)
	}
	res = runCLI(t, database, cfg, "", "example", "get", id)
	fetched = decodeJSON[ops.FetchOutput](t, res.stdout)
	if fetched.Title != "Renamed" || fetched.Text != "Rewritten example text." {
		t.Errorf("after update = %+v", fetched)
	}

	res = runCLI(t, database, cfg, "", "example", "list", "--tag", "itgc")
	if n := len(decodeJSON[ops.ListOutput](t, res.stdout).Items); n != 1 {
		t.Errorf("tag list has %d items, want 1", n)
	}

	res = runCLI(t, database, cfg, "", "example", "delete", id)
	if res.err != nil {
		t.Fatalf("example delete failed: %v", res.err)
	}

	res = runCLI(t, database, cfg, "", "example", "get", id)
	if res.err == nil || !strings.Contains(res.err.Error(), "[NOT_FOUND]") {
		t.Errorf("get after delete: err = %v, want NOT_FOUND", res.err)
	}
}

func TestCLIExampleAdd_Errors(t *testing.T) {
	database := setupTestDB(t)
	cfg := config.DefaultConfig()

	t.Run("missing title", func(t *testing.T) {
		res := runCLI(t, database, cfg, "", "example", "add", "--text", "x")
		if res.err == nil {
			t.Error("expected error for missing --title")
		}
	})

	t.Run("empty text", func(t *testing.T) {
		res := runCLI(t, database, cfg, "", "example", "add", "--title", "Empty")
		if res.err == nil || !strings.Contains(res.err.Error(), "[INVALID_REQUEST]") {
			t.Errorf("err = %v, want INVALID_REQUEST", res.err)
		}
	})

	t.Run("bad active filter", func(t *testing.T) {
		res := runCLI(t, database, cfg, "", "example", "list", "--active", "maybe")
		if res.err == nil || !strings.Contains(res.err.Error(), "[INVALID_REQUEST]") {
			t.Errorf("err = %v, want INVALID_REQUEST", res.err)
		}
	})
}

func TestCLISettings(t *testing.T) {
	database := setupTestDB(t)
	cfg := config.DefaultConfig()

	res := runCLI(t, database, cfg, "", "settings", "show")
	if res.err != nil {
		t.Fatalf("settings show failed: %v", res.err)
	}
	shown := decodeJSON[ops.SettingsOutput](t, res.stdout)
	if string(shown.Options.EnglishVariant) != "en-GB" {
		t.Errorf("default variant = %q, want en-GB", shown.Options.EnglishVariant)
	}

	res = runCLI(t, database, cfg, "", "settings", "set", "--english-variant", "en-US", "--concise=false")
	if res.err != nil {
		t.Fatalf("settings set failed: %v", res.err)
	}
	set := decodeJSON[ops.SettingsOutput](t, res.stdout)
	if string(set.Options.EnglishVariant) != "en-US" || set.Options.Concise {
		t.Errorf("after set = %+v", set.Options)
	}
	if !set.Options.CalmTone {
		t.Error("unset flags should keep their saved values")
	}

	res = runCLI(t, database, cfg, "", "settings", "set")
	if res.err == nil || !strings.Contains(res.err.Error(), "[INVALID_REQUEST]") {
		t.Errorf("set without flags: err = %v, want INVALID_REQUEST", res.err)
	}
}

func TestCLIExportImport(t *testing.T) {
	database := setupTestDB(t)
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{tmpDir}

	addExample(t, database, cfg, "First", "The first example sentence.")
	addExample(t, database, cfg, "Second", "The second example sentence.")

	exportPath := filepath.Join(tmpDir, "examples.jsonl")
	res := runCLI(t, database, cfg, "", "export", "--path", exportPath)
	if res.err != nil {
		t.Fatalf("export failed: %v", res.err)
	}
	exported := decodeJSON[ops.ExportOutput](t, res.stdout)
	if exported.Count != 2 {
		t.Errorf("exported count = %d, want 2", exported.Count)
	}
	if _, err := os.Stat(exportPath); err != nil {
		t.Fatalf("export file missing: %v", err)
	}

	fresh := setupTestDB(t)
	res = runCLI(t, fresh, cfg, "", "import", "--path", exportPath)
	if res.err != nil {
		t.Fatalf("import failed: %v", res.err)
	}
	imported := decodeJSON[ops.ImportOutput](t, res.stdout)
	if imported.Imported != 2 {
		t.Errorf("imported = %d, want 2", imported.Imported)
	}

	res = runCLI(t, fresh, cfg, "", "import", "--path", exportPath, "--mode", "rename")
	if res.err != nil {
		t.Fatalf("import rename failed: %v", res.err)
	}
	if n := decodeJSON[ops.ImportOutput](t, res.stdout).Imported; n != 2 {
		t.Errorf("rename imported = %d, want 2", n)
	}

	res = runCLI(t, fresh, cfg, "", "import", "--path", exportPath, "--mode", "merge")
	if res.err == nil || !strings.Contains(res.err.Error(), "[INVALID_REQUEST]") {
		t.Errorf("bad mode: err = %v, want INVALID_REQUEST", res.err)
	}
}

func TestCLIImport_YAMLPack(t *testing.T) {
	database := setupTestDB(t)
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{tmpDir}

	pack := `settings:
  concise: true
  owner: Internal Audit
  document_type: audit-report
  english_variant: en-US
examples:
  - title: Plain finding
    text: Finance did not reconcile the suspense account.
    tags: [finance]
`
	packPath := filepath.Join(tmpDir, "pack.yaml")
	if err := os.WriteFile(packPath, []byte(pack), 0600); err != nil {
		t.Fatal(err)
	}

	res := runCLI(t, database, cfg, "", "import", "--path", packPath)
	if res.err != nil {
		t.Fatalf("import failed: %v", res.err)
	}
	out := decodeJSON[ops.ImportOutput](t, res.stdout)
	if out.Imported != 1 || !out.SettingsApplied {
		t.Errorf("out = %+v", out)
	}
}

func TestCLIServe_InvalidPort(t *testing.T) {
	database := setupTestDB(t)
	res := runCLI(t, database, config.DefaultConfig(), "", "serve", "--port", "70000")
	if res.err == nil || !strings.Contains(res.err.Error(), "invalid port") {
		t.Errorf("err = %v, want invalid port", res.err)
	}
}
