package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// MaxInputChars is the maximum character count accepted by a rewrite.
	MaxInputChars int `json:"max_input_chars"`

	// ExampleMaxChars is the maximum character count of a stored style example.
	ExampleMaxChars int `json:"example_max_chars"`

	// AllowedPaths is an allowlist of directories for import/export operations.
	// Paths outside ~/.cleansheet/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use the sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of type names to disable entirely.
	// Known types: "rewrite", "example", "settings".
	DisabledTypes []string `json:"disabled_types,omitempty"`

	// Defaults seed the saved rewrite settings the first time they are read.
	Defaults Defaults `json:"defaults"`
}

// Defaults are the rewrite options used until the user saves their own.
type Defaults struct {
	DocumentType   string `json:"document_type,omitempty"`
	EnglishVariant string `json:"english_variant,omitempty"`
	AuditSafeMode  *bool  `json:"audit_safe_mode,omitempty"`
	Owner          string `json:"owner,omitempty"`
}

// AuditSafe reports the effective audit-safe default. Unset means on.
func (d Defaults) AuditSafe() bool {
	return d.AuditSafeMode == nil || *d.AuditSafeMode
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxInputChars:   50000,
		ExampleMaxChars: 20000,
		Defaults: Defaults{
			DocumentType:   "audit-finding",
			EnglishVariant: "en-GB",
		},
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads the global config from globalDir and the nearest
// .cleansheet/config.json found walking upward from startDir.
// Repo config takes precedence for scalar values; arrays are merged.
// Either or both configs may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest
// .cleansheet/config.json. Returns "" if there is none.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".cleansheet", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw returns a zero-valued config (not defaults) when the file is missing.
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		MaxInputChars:    firstNonZero(overlay.MaxInputChars, base.MaxInputChars),
		ExampleMaxChars:  firstNonZero(overlay.ExampleMaxChars, base.ExampleMaxChars),
		DBMaxOpenConns:   firstNonZero(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:   firstNonZero(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
		AllowUnsafePaths: base.AllowUnsafePaths || overlay.AllowUnsafePaths,
		AllowedPaths:     mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths),
		DisabledTools:    mergeStringSlice(base.DisabledTools, overlay.DisabledTools),
		DisabledTypes:    mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes),
	}

	result.Defaults = base.Defaults
	if v := strings.TrimSpace(overlay.Defaults.DocumentType); v != "" {
		result.Defaults.DocumentType = v
	}
	if v := strings.TrimSpace(overlay.Defaults.EnglishVariant); v != "" {
		result.Defaults.EnglishVariant = v
	}
	if v := strings.TrimSpace(overlay.Defaults.Owner); v != "" {
		result.Defaults.Owner = v
	}
	if overlay.Defaults.AuditSafeMode != nil {
		v := *overlay.Defaults.AuditSafeMode
		result.Defaults.AuditSafeMode = &v
	}

	return result
}

func firstNonZero(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
