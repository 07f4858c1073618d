package ops

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hpungsan/intelliclip/internal/config"
	"github.com/hpungsan/intelliclip/internal/errors"
	"github.com/hpungsan/intelliclip/internal/store"
)

// ExportSchemaVersion is written to the export header.
const ExportSchemaVersion = "1.0"

// ExportHeader is the first line of a JSONL export.
type ExportHeader struct {
	IntelliclipExport bool   `json:"_intelliclip_export"`
	SchemaVersion     string `json:"schema_version"`
	ExportedAt        int64  `json:"exported_at"`
	Count             int    `json:"count"`
}

// ExportRecord is one snippet line in an export. ID is informational;
// import always assigns fresh ids.
type ExportRecord struct {
	ID        int64   `json:"id,omitempty"`
	Content   string  `json:"content"`
	Timestamp int64   `json:"timestamp"`
	Language  *string `json:"language,omitempty"`
	Tags      *string `json:"tags,omitempty"`
	Summary   *string `json:"summary,omitempty"`
}

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path string // optional, default: <exports dir>/intelliclip-<timestamp>.jsonl
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Count      int    `json:"count"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes every snippet to a JSONL file, oldest first. The file is
// written to a temp name and renamed into place, so an existing export at
// the same path survives a failed run.
func Export(ctx context.Context, st *store.Store, cfg *config.Config, exportsDir string, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	exportPath := input.Path
	if exportPath == "" {
		exportPath = filepath.Join(exportsDir, fmt.Sprintf("intelliclip-%s.jsonl", now.Format("2006-01-02T150405")))
	}
	if err := ValidatePath(exportPath, PathCheckWrite, exportsDir, cfg); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	items, err := st.List(ctx)
	if err != nil {
		return nil, wrap("export", err)
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.Internal(err)
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

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(ExportHeader{
		IntelliclipExport: true,
		SchemaVersion:     ExportSchemaVersion,
		ExportedAt:        now.UnixMilli(),
		Count:             len(items),
	}); err != nil {
		return nil, errors.NewInternal(err)
	}

	// List is newest first; write oldest first so a re-import preserves
	// insertion order.
	for i := len(items) - 1; i >= 0; i-- {
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("export")
		}
		s := items[i]
		if err := enc.Encode(ExportRecord{
			ID:        s.ID,
			Content:   s.Content,
			Timestamp: s.Timestamp,
			Language:  s.Language,
			Tags:      s.Tags,
			Summary:   s.Summary,
		}); err != nil {
			return nil, errors.NewInternal(err)
		}
	}

	if err := w.Flush(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlink at the destination.
	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInvalidRequest("path must not be a symlink")
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
	return &ExportOutput{
		Path:       exportPath,
		Count:      len(items),
		ExportedAt: now.UnixMilli(),
	}, nil
}
