package utils

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-zglob"
)

// SourceExtension is the extension of files scanned for declarations
const SourceExtension = ".cs"

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info fs.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info fs.DirEntry) bool

// FileWalkOptions configures file walking behavior
type FileWalkOptions struct {
	FileFilter      FileFilter
	DirectoryFilter DirectoryFilter
	SkipErrors      bool
}

// SourceFileFilter accepts .cs files that are not generated artifacts. generatedExt is
// the artifact extension without the leading dot, e.g. g.cs.
func SourceFileFilter(generatedExt string) FileFilter {
	generated := "." + strings.TrimPrefix(generatedExt, ".")
	return func(path string, info fs.DirEntry) bool {
		if info.IsDir() {
			return false
		}
		name := info.Name()
		return strings.HasSuffix(name, SourceExtension) && !strings.HasSuffix(name, generated)
	}
}

// GeneratedFileFilter accepts files ending in the artifact extension
func GeneratedFileFilter(generatedExt string) FileFilter {
	generated := "." + strings.TrimPrefix(generatedExt, ".")
	return func(path string, info fs.DirEntry) bool {
		return !info.IsDir() && strings.HasSuffix(info.Name(), generated)
	}
}

var skipDirs = map[string]bool{
	"bin":          true,
	"obj":          true,
	"vendor":       true,
	"node_modules": true,
	"packages":     true,
}

// DefaultDirectoryFilter skips build output, package caches and hidden directories
func DefaultDirectoryFilter() DirectoryFilter {
	return func(path string, info fs.DirEntry) bool {
		if !info.IsDir() {
			return true
		}
		return !SkippedDirectory(info.Name())
	}
}

// SkippedDirectory reports whether a directory with this name is never scanned
func SkippedDirectory(name string) bool {
	if strings.HasPrefix(name, ".") && name != "." && name != ".." {
		return true
	}
	return skipDirs[name]
}

// WalkFiles walks a directory tree and returns the files accepted by the filters,
// in lexical order. The root itself is never filtered out.
func WalkFiles(rootDir string, options FileWalkOptions) ([]string, error) {
	var matched []string

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if options.SkipErrors {
				return nil
			}
			return err
		}

		if d.IsDir() {
			if path != rootDir && options.DirectoryFilter != nil && !options.DirectoryFilter(path, d) {
				return filepath.SkipDir
			}
			return nil
		}

		if options.FileFilter == nil || options.FileFilter(path, d) {
			matched = append(matched, path)
		}
		return nil
	})

	return matched, err
}

// IsPattern reports whether an input names a glob rather than a directory or file
func IsPattern(input string) bool {
	return strings.ContainsAny(input, "*?[{")
}

// ExpandPattern resolves a glob such as src/**/*.cs. Matches inside skipped directories
// and files rejected by filter are dropped. The result is sorted.
func ExpandPattern(pattern string, filter FileFilter) ([]string, error) {
	matches, err := zglob.Glob(pattern)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	base := patternBase(pattern)
	var files []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() || inSkippedDirectory(base, m) {
			continue
		}
		if filter != nil && !filter(m, fs.FileInfoToDirEntry(info)) {
			continue
		}
		files = append(files, m)
	}
	sort.Strings(files)
	return files, nil
}

// patternBase returns the directory part of pattern that precedes the first wildcard
func patternBase(pattern string) string {
	parts := strings.Split(filepath.ToSlash(pattern), "/")
	for i, part := range parts {
		if IsPattern(part) {
			return filepath.FromSlash(strings.Join(parts[:i], "/"))
		}
	}
	return filepath.Dir(pattern)
}

// inSkippedDirectory checks the directories between base and path
func inSkippedDirectory(base, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Dir(filepath.Clean(path)))
	if err != nil {
		rel = filepath.Dir(path)
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part != "" && SkippedDirectory(part) {
			return true
		}
	}
	return false
}

// WriteFileIfChanged writes content to path unless the file already holds exactly that
// content. Parent directories are created as needed. It reports whether it wrote.
func WriteFileIfChanged(path string, content []byte) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && string(existing) == string(content) {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
