package ops

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bigviv/CleanSheet/internal/config"
	"github.com/bigviv/CleanSheet/internal/db"
	"github.com/bigviv/CleanSheet/internal/errors"
	"github.com/bigviv/CleanSheet/internal/example"
	"github.com/bigviv/CleanSheet/internal/rewrite"
)

// ImportMode controls collision behavior during import.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // fail on collision (atomic)
	ImportModeReplace ImportMode = "replace" // overwrite on collision
	ImportModeRename  ImportMode = "rename"  // new ID on collision
)

// maxImportLine bounds a single JSONL line. Example text is capped in
// characters, so a line can be several times that in bytes.
const maxImportLine = 1 << 20

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     // required; .jsonl export or .yaml/.yml style pack
	Mode ImportMode // default: error
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported        int           `json:"imported"`
	Skipped         int           `json:"skipped"`
	SettingsApplied bool          `json:"settings_applied"`
	Errors          []ImportError `json:"errors"`
}

// ImportError represents a record that could not be imported.
type ImportError struct {
	Line    int    `json:"line,omitempty"`
	ID      string `json:"id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type importRecord struct {
	line int
	e    *example.Example
}

// importBatch is a parsed and validated import file.
type importBatch struct {
	settings *rewrite.Options
	records  []importRecord
	errors   []ImportError
}

// Import loads style examples, and saved settings when present, from a
// JSONL export or a YAML style pack.
func Import(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	if input.Mode == "" {
		input.Mode = ImportModeError
	}
	if input.Mode != ImportModeError && input.Mode != ImportModeReplace && input.Mode != ImportModeRename {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace, rename")
	}
	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		var csErr *errors.CleanSheetError
		if stderrors.As(err, &csErr) {
			return nil, csErr
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	var batch *importBatch
	switch strings.ToLower(filepath.Ext(input.Path)) {
	case ".yaml", ".yml":
		batch, err = parsePack(file, cfg)
	default:
		batch, err = parseExportFile(file, cfg)
	}
	if err != nil {
		return nil, err
	}

	// mode:error is all-or-nothing, including invalid records.
	if input.Mode == ImportModeError && len(batch.errors) > 0 {
		return &ImportOutput{Errors: batch.errors}, nil
	}

	switch input.Mode {
	case ImportModeError:
		return importModeError(ctx, database, batch)
	default:
		return importEach(ctx, database, batch, input.Mode)
	}
}

// parseExportFile reads a JSONL export: header, optional settings line,
// then one example per line.
func parseExportFile(r io.Reader, cfg *config.Config) (*importBatch, error) {
	batch := &importBatch{errors: make([]ImportError, 0)}
	now := time.Now().Unix()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLine)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var record example.ExportRecord
		if err := json.Unmarshal(line, &record); err != nil {
			batch.errors = append(batch.errors, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}

		if record.CleanSheetExport {
			continue
		}
		if record.Settings != nil {
			batch.addSettings(lineNum, record.Settings)
			continue
		}
		if record.ID == "" {
			batch.errors = append(batch.errors, ImportError{
				Line:    lineNum,
				Code:    "INVALID_RECORD",
				Message: "missing id field",
			})
			continue
		}

		batch.addRecord(cfg, lineNum, &record, now)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.NewMalformedImport(lineNum+1, err.Error())
	}
	return batch, nil
}

var yamlLineRe = regexp.MustCompile(`line (\d+)`)

// parsePack reads a YAML style pack. Unlike JSONL, a pack is one document,
// so a syntax error rejects the whole file.
func parsePack(r io.Reader, cfg *config.Config) (*importBatch, error) {
	var pack example.Pack
	if err := yaml.NewDecoder(r).Decode(&pack); err != nil && err != io.EOF {
		line := 1
		if m := yamlLineRe.FindStringSubmatch(err.Error()); m != nil {
			line, _ = strconv.Atoi(m[1])
		}
		return nil, errors.NewMalformedImport(line, err.Error())
	}

	batch := &importBatch{errors: make([]ImportError, 0)}
	if pack.Settings != nil {
		batch.addSettings(0, pack.Settings)
	}

	now := time.Now().Unix()
	for i, p := range pack.Examples {
		record := p.ToExportRecord()
		if record.ID == "" {
			id, err := generateULID()
			if err != nil {
				return nil, errors.NewInternal(err)
			}
			record.ID = id
		}
		// Pack entries are numbered from 1 in place of line numbers.
		batch.addRecord(cfg, i+1, record, now)
	}
	return batch, nil
}

func (b *importBatch) addSettings(line int, opts *rewrite.Options) {
	o := *opts
	o.Owner = strings.TrimSpace(o.Owner)
	if err := ValidateOptions(o); err != nil {
		b.errors = append(b.errors, ImportError{
			Line:    line,
			Code:    "INVALID_SETTINGS",
			Message: err.Error(),
		})
		return
	}
	b.settings = &o
}

func (b *importBatch) addRecord(cfg *config.Config, line int, record *example.ExportRecord, now int64) {
	e, err := buildExample(cfg, record.Title, record.Text, record.Tags)
	if err != nil {
		code := "INVALID_RECORD"
		if errors.Is(err, errors.ErrTextTooLarge) {
			code = string(errors.ErrTextTooLarge)
		}
		msg := err.Error()
		var csErr *errors.CleanSheetError
		if stderrors.As(err, &csErr) {
			msg = csErr.Message
		}
		b.errors = append(b.errors, ImportError{Line: line, ID: record.ID, Code: code, Message: msg})
		return
	}

	e.ID = record.ID
	e.IsActive = record.IsActive
	e.CreatedAt = record.CreatedAt
	if e.CreatedAt == 0 {
		e.CreatedAt = now
	}
	e.UpdatedAt = record.UpdatedAt
	if e.UpdatedAt < e.CreatedAt {
		e.UpdatedAt = e.CreatedAt
	}
	b.records = append(b.records, importRecord{line: line, e: e})
}

// importModeError imports everything in one transaction, rolling back on
// the first ID collision.
func importModeError(ctx context.Context, database *sql.DB, batch *importBatch) (*ImportOutput, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	out := &ImportOutput{Errors: make([]ImportError, 0)}
	for _, r := range batch.records {
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("import")
		}
		exists, err := db.ExampleExists(ctx, tx, r.e.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return &ImportOutput{
				Errors: []ImportError{{
					Line:    r.line,
					ID:      r.e.ID,
					Code:    "ID_COLLISION",
					Message: fmt.Sprintf("style example with id %q already exists", r.e.ID),
				}},
			}, nil
		}
		if err := db.InsertExample(ctx, tx, r.e); err != nil {
			return nil, err
		}
		out.Imported++
	}

	if batch.settings != nil {
		if err := db.PutSetting(ctx, tx, SettingsKey, batch.settings); err != nil {
			return nil, err
		}
		out.SettingsApplied = true
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// importEach imports record by record for the replace and rename modes.
// Invalid records are reported and skipped.
func importEach(ctx context.Context, database *sql.DB, batch *importBatch, mode ImportMode) (*ImportOutput, error) {
	out := &ImportOutput{
		Skipped: len(batch.errors),
		Errors:  batch.errors,
	}

	for _, r := range batch.records {
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("import")
		}

		if mode == ImportModeReplace {
			if err := db.UpsertExample(ctx, database, r.e); err != nil {
				return nil, err
			}
			out.Imported++
			continue
		}

		exists, err := db.ExampleExists(ctx, database, r.e.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			id, err := generateULID()
			if err != nil {
				return nil, errors.NewInternal(err)
			}
			r.e.ID = id
		}
		if err := db.InsertExample(ctx, database, r.e); err != nil {
			out.Errors = append(out.Errors, ImportError{
				Line:    r.line,
				ID:      r.e.ID,
				Code:    "INSERT_FAILED",
				Message: fmt.Sprintf("failed to insert: %v", err),
			})
			out.Skipped++
			continue
		}
		out.Imported++
	}

	if batch.settings != nil {
		if err := db.PutSetting(ctx, database, SettingsKey, batch.settings); err != nil {
			return nil, err
		}
		out.SettingsApplied = true
	}
	return out, nil
}
