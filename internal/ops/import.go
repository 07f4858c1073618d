package ops

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hpungsan/intelliclip/internal/config"
	"github.com/hpungsan/intelliclip/internal/errors"
	"github.com/hpungsan/intelliclip/internal/snippet"
	"github.com/hpungsan/intelliclip/internal/store"
)

// ImportMode controls how invalid lines are handled.
type ImportMode string

const (
	ImportModeError ImportMode = "error" // any invalid line aborts; nothing is written
	ImportModeSkip  ImportMode = "skip"  // invalid lines are reported and skipped
)

// maxImportLine bounds a single JSONL line.
const maxImportLine = 16 << 20

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string
	Mode ImportMode // default: error
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	IDs      []int64       `json:"ids,omitempty"`
	Errors   []ImportError `json:"errors,omitempty"`
}

// ImportError describes one rejected line.
type ImportError struct {
	Line    int    `json:"line"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Import appends the records of a JSONL export to the store. Every record
// gets a fresh id; content, timestamp, language, tags and summary are
// restored as exported. Valid records are written in one transaction.
func Import(ctx context.Context, st *store.Store, cfg *config.Config, exportsDir string, input ImportInput) (*ImportOutput, error) {
	if input.Mode == "" {
		input.Mode = ImportModeError
	}
	if input.Mode != ImportModeError && input.Mode != ImportModeSkip {
		return nil, errors.NewInvalidRequest("mode must be one of: error, skip")
	}
	if err := ValidatePath(input.Path, PathCheckRead, exportsDir, cfg); err != nil {
		return nil, err
	}

	file, err := openFileNoFollow(input.Path, os.O_RDONLY, 0)
	if err != nil {
		return nil, errors.Internal(err)
	}
	defer file.Close()

	records, parseErrors := parseExport(file)
	out := &ImportOutput{Errors: parseErrors}
	if len(parseErrors) > 0 && input.Mode == ImportModeError {
		return out, nil
	}
	out.Skipped = len(parseErrors)

	if len(records) > 0 {
		ids, err := st.InsertMany(ctx, records)
		if err != nil {
			return nil, wrap("import", err)
		}
		out.IDs = ids
		out.Imported = len(ids)
	}
	return out, nil
}

func parseExport(r io.Reader) ([]snippet.Snippet, []ImportError) {
	var (
		records []snippet.Snippet
		errs    []ImportError
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxImportLine)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var header struct {
			IntelliclipExport bool `json:"_intelliclip_export"`
		}
		if err := json.Unmarshal(raw, &header); err != nil {
			errs = append(errs, ImportError{Line: line, Code: "PARSE_ERROR", Message: fmt.Sprintf("invalid JSON: %v", err)})
			continue
		}
		if header.IntelliclipExport {
			continue
		}

		var rec ExportRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			errs = append(errs, ImportError{Line: line, Code: "PARSE_ERROR", Message: fmt.Sprintf("invalid record: %v", err)})
			continue
		}
		if snippet.IsBlank(rec.Content) {
			errs = append(errs, ImportError{Line: line, Code: "INVALID_RECORD", Message: "content must not be empty"})
			continue
		}

		records = append(records, snippet.Snippet{
			Content:   rec.Content,
			Timestamp: rec.Timestamp,
			Language:  snippet.CleanLanguage(rec.Language),
			Tags:      snippet.NormalizeTagsPtr(rec.Tags),
			Summary:   rec.Summary,
		})
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, ImportError{Line: line + 1, Code: "READ_ERROR", Message: fmt.Sprintf("failed to read file: %v", err)})
	}
	return records, errs
}
