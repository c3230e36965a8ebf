// Package corpus enumerates the document corpus on disk.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rcwhitaker/caseindex/constants"
	"github.com/rcwhitaker/caseindex/internal/common"
)

// ListFiles walks root and returns every regular file with the given
// extension (lowercased, no dot), sorted by lowercased path so runs are
// deterministic across filesystems.
func ListFiles(root, ext string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if constants.NormalizeExt(filepath.Ext(path)) == ext {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, common.NewAppError("CORPUS_NOT_FOUND", "walk "+root, common.ErrNotFound)
		}
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(files[i]) < strings.ToLower(files[j])
	})
	return files, nil
}

// CompilePatterns compiles user-supplied filter patterns, case-insensitive.
func CompilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pat := range patterns {
		re, err := regexp.Compile("(?i)" + pat)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pat, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// MatchAny reports whether any pattern matches s.
func MatchAny(patterns []*regexp.Regexp, s string) bool {
	for _, pat := range patterns {
		if pat.MatchString(s) {
			return true
		}
	}
	return false
}

// Window slices files to the 1-based startIndex and optional maxFiles cap.
// startIndex past the end is the caller's error to surface.
func Window(files []string, startIndex, maxFiles int) []string {
	if startIndex < 1 {
		startIndex = 1
	}
	if startIndex > len(files) {
		return nil
	}
	out := files[startIndex-1:]
	if maxFiles > 0 && len(out) > maxFiles {
		out = out[:maxFiles]
	}
	return out
}

// FilterInclude keeps only files matching at least one include pattern.
// An empty pattern set keeps everything.
func FilterInclude(files []string, patterns []*regexp.Regexp) []string {
	if len(patterns) == 0 {
		return files
	}
	var out []string
	for _, f := range files {
		if MatchAny(patterns, f) {
			out = append(out, f)
		}
	}
	return out
}
