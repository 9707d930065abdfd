package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/bigviv/CleanSheet/internal/config"
	"github.com/bigviv/CleanSheet/internal/db"
	"github.com/bigviv/CleanSheet/internal/errors"
	"github.com/bigviv/CleanSheet/internal/example"
	"github.com/bigviv/CleanSheet/internal/rewrite"
)

// ExportSchemaVersion is written to the header line of every export.
const ExportSchemaVersion = "1.0"

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path string // optional, default: ~/.cleansheet/exports/examples-<timestamp>.jsonl
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path          string `json:"path"`
	Count         int    `json:"count"`
	SettingsSaved bool   `json:"settings_saved"`
	ExportedAt    int64  `json:"exported_at"`
}

// Export writes the saved settings and every style example to a JSONL file.
// The file is written to a temp sibling and renamed into place, so a failed
// export never clobbers an existing file.
func Export(ctx context.Context, database *sql.DB, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	exportPath := input.Path
	if exportPath == "" {
		dir, err := DefaultExportsDir()
		if err != nil {
			return nil, err
		}
		exportPath = filepath.Join(dir, fmt.Sprintf("examples-%s.jsonl", now.Format("2006-01-02T150405")))
	}
	if err := ValidatePath(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	out := &ExportOutput{Path: exportPath, ExportedAt: now.Unix()}
	if err := writeExport(ctx, database, file, out); err != nil {
		return nil, err
	}

	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}
	// Close before the rename (required on Windows).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination.
	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInvalidRequest("export path is a symlink")
	}
	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return out, nil
}

// writeExport emits the header, the settings line (when settings have been
// saved), then one line per example in curation order.
func writeExport(ctx context.Context, database *sql.DB, w io.Writer, out *ExportOutput) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	header := example.ExportRecord{
		CleanSheetExport: true,
		SchemaVersion:    ExportSchemaVersion,
		ExportedAt:       out.ExportedAt,
	}
	if err := enc.Encode(header); err != nil {
		return errors.NewInternal(err)
	}

	var opts rewrite.Options
	found, err := db.GetSetting(ctx, database, SettingsKey, &opts)
	if err != nil {
		return err
	}
	if found {
		if err := enc.Encode(example.ExportRecord{Settings: &opts}); err != nil {
			return errors.NewInternal(err)
		}
		out.SettingsSaved = true
	}

	rows, err := db.StreamExamples(ctx, database)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if ctx.Err() != nil {
			return errors.NewCancelled("export")
		}
		e, err := db.ScanExampleFromRows(rows)
		if err != nil {
			return errors.NewInternal(err)
		}
		if err := enc.Encode(example.ToExportRecord(e)); err != nil {
			return errors.NewInternal(err)
		}
		out.Count++
	}
	if err := rows.Err(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}
