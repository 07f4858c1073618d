package ops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/intelliclip/internal/config"
	"github.com/hpungsan/intelliclip/internal/errors"
)

// PathCheckMode selects read (import) or write (export) validation.
type PathCheckMode int

const (
	PathCheckRead PathCheckMode = iota
	PathCheckWrite
)

// ValidatePath checks an import/export path:
//   - no ".." components
//   - .jsonl extension
//   - the file sits directly in exportsDir or a configured allowed path,
//     unless cfg.AllowUnsafePaths is set
//   - neither the file nor its parent directory is a symlink
//
// Files in subdirectories of an allowed directory are rejected so no
// intermediate component can be swapped for a symlink after validation.
func ValidatePath(path string, mode PathCheckMode, exportsDir string, cfg *config.Config) error {
	if path == "" {
		return errors.NewInvalidRequest("path is required")
	}
	if containsTraversal(path) {
		return errors.NewInvalidRequest("path must not contain directory traversal (..)")
	}

	cleaned := filepath.Clean(path)
	if filepath.Ext(cleaned) != ".jsonl" {
		return errors.NewInvalidRequest("path must have .jsonl extension")
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("invalid path: %v", err))
	}

	if cfg == nil || !cfg.AllowUnsafePaths {
		allowed, err := allowedDirs(exportsDir, cfg)
		if err != nil {
			return err
		}
		parent := filepath.Dir(absPath)
		if !isDirectlyIn(parent, allowed) {
			return errors.NewInvalidRequest(fmt.Sprintf(
				"file must be directly in an allowed directory (no subdirectories); allowed: %v", allowed))
		}
		if info, err := os.Lstat(parent); err == nil && info.Mode()&os.ModeSymlink != 0 {
			return errors.NewInvalidRequest("parent directory must not be a symlink")
		}
	}

	if mode == PathCheckRead {
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			return errors.NewFileNotFound(path)
		}
	}
	if info, err := os.Lstat(absPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("path must not be a symlink")
	}
	return nil
}

// allowedDirs returns exportsDir plus absolute configured paths, with
// symlinked entries resolved to their targets.
func allowedDirs(exportsDir string, cfg *config.Config) ([]string, error) {
	var dirs []string
	if exportsDir != "" {
		dirs = append(dirs, exportsDir)
	}
	if cfg != nil {
		for _, p := range cfg.AllowedPaths {
			if filepath.IsAbs(p) {
				dirs = append(dirs, p)
			}
		}
	}

	result := make([]string, 0, len(dirs))
	for _, d := range dirs {
		abs, err := filepath.Abs(filepath.Clean(d))
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid allowed path: %v", err))
		}
		if info, err := os.Lstat(abs); err == nil && info.Mode()&os.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(abs)
			if err != nil {
				return nil, errors.NewInvalidRequest(fmt.Sprintf("cannot resolve symlink in allowed path: %v", err))
			}
			abs = resolved
		}
		result = append(result, abs)
	}
	return result, nil
}

func isDirectlyIn(parent string, allowed []string) bool {
	parent = filepath.Clean(parent)
	for _, dir := range allowed {
		if parent == filepath.Clean(dir) {
			return true
		}
	}
	return false
}

func containsTraversal(path string) bool {
	for _, part := range strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	}) {
		if part == ".." {
			return true
		}
	}
	return false
}
