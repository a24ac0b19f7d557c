package deodex

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/odexlab/deodexer/pkg/util"
)

// Discover traverses root recursively and returns the absolute paths of all
// regular files whose name ends with ext, in traversal order. Matching is
// case-sensitive, following the external tool's own naming convention.
//
// Unreadable subdirectories are skipped, not fatal. A root that does not
// exist yields (nil, ErrInputPathMissing) so callers can treat it as a
// "nothing to do" warning rather than an abort. Paths matching an exclude
// pattern are skipped, pruning whole subtrees for directory matches.
func Discover(root, ext string, excludes []string, loggerHandler slog.Handler) ([]string, error) {
	if loggerHandler == nil {
		loggerHandler = slog.NewTextHandler(io.Discard, nil)
	}
	logger := slog.New(loggerHandler).With(slog.String("component", "discovery"))
	if ext == "" {
		ext = DefaultExtension
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve input directory %q: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Input directory does not exist", slog.String("path", absRoot))
			return nil, ErrInputPathMissing
		}
		return nil, fmt.Errorf("cannot access input directory %q: %w", absRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path %q is not a directory", absRoot)
	}

	var found []string
	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Permission errors on subdirectories are skipped silently; only
			// a failure on the root itself is fatal.
			logger.Debug("Skipping unreadable path", slog.String("path", path), slog.String("error", err.Error()))
			if path == absRoot {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			logger.Debug("Skipping symbolic link", slog.String("path", path))
			return nil
		}
		if len(excludes) > 0 && path != absRoot {
			rel, relErr := filepath.Rel(absRoot, path)
			if relErr == nil && util.MatchesAnyExclude(excludes, rel) {
				logger.Debug("Excluded by pattern", slog.String("path", path))
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ext) {
			found = append(found, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("directory walk failed: %w", walkErr)
	}

	logger.Debug("Discovery finished", slog.String("path", absRoot), slog.Int("count", len(found)))
	return found, nil
}
