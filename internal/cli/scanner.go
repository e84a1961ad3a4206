package cli

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-zglob"
	"github.com/toyz/proxygen/internal/errors"
	"github.com/toyz/proxygen/internal/utils"
)

// DirectoryScanner collects the C# sources named by the configured inputs
type DirectoryScanner struct {
	extension string
	exclude   []string
}

// NewDirectoryScanner creates a scanner. extension is the artifact extension, whose
// files are never scanned; exclude holds glob patterns of files to leave out.
func NewDirectoryScanner(extension string, exclude []string) *DirectoryScanner {
	return &DirectoryScanner{extension: extension, exclude: exclude}
}

// ScanSources resolves inputs to a sorted, duplicate-free list of source files.
// Supported inputs:
//   - dir/... scans dir and all of its subdirectories
//   - dir scans only the files directly inside dir
//   - a .cs file is taken as is
//   - anything containing a wildcard is expanded as a glob, ** included
func (s *DirectoryScanner) ScanSources(inputs []string) ([]string, error) {
	filter := utils.SourceFileFilter(s.extension)
	seen := make(map[string]bool)
	var files []string

	add := func(paths ...string) error {
		for _, p := range paths {
			p = filepath.Clean(p)
			abs, err := filepath.Abs(p)
			if err != nil {
				return errors.WrapFileSystemError("resolve", p, err)
			}
			if seen[abs] || s.excluded(p) {
				continue
			}
			seen[abs] = true
			files = append(files, p)
		}
		return nil
	}

	for _, input := range inputs {
		found, err := s.resolve(input, filter)
		if err != nil {
			return nil, err
		}
		if err := add(found...); err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

func (s *DirectoryScanner) resolve(input string, filter utils.FileFilter) ([]string, error) {
	if utils.IsPattern(input) {
		files, err := utils.ExpandPattern(input, filter)
		if err != nil {
			return nil, errors.WrapFileSystemError("expand", input, err)
		}
		return files, nil
	}

	root, recursive := RootOf(input)
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.WrapFileSystemError("scan", root, err).
			WithSuggestion("Check that the input exists, or use a pattern such as ./...")
	}

	if !info.IsDir() {
		return []string{root}, nil
	}

	opts := utils.FileWalkOptions{
		FileFilter:      filter,
		DirectoryFilter: utils.DefaultDirectoryFilter(),
	}
	if !recursive {
		opts.DirectoryFilter = func(string, os.DirEntry) bool { return false }
	}
	files, err := utils.WalkFiles(root, opts)
	if err != nil {
		return nil, errors.WrapFileSystemError("scan", root, err)
	}
	return files, nil
}

func (s *DirectoryScanner) excluded(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, pattern := range s.exclude {
		if ok, err := zglob.Match(pattern, slashed); err == nil && ok {
			return true
		}
	}
	return false
}

// RootOf returns the directory or file an input starts from and whether it is scanned
// recursively. For glob patterns the root is the part before the first wildcard.
func RootOf(input string) (string, bool) {
	if utils.IsPattern(input) {
		parts := strings.Split(filepath.ToSlash(input), "/")
		for i, part := range parts {
			if utils.IsPattern(part) {
				root := strings.Join(parts[:i], "/")
				if root == "" {
					root = "."
				}
				return filepath.FromSlash(root), true
			}
		}
	}
	if input == "..." {
		return ".", true
	}
	if strings.HasSuffix(input, "/...") {
		root := strings.TrimSuffix(input, "/...")
		if root == "" {
			root = "."
		}
		return root, true
	}
	if input == "" {
		return ".", false
	}
	return input, false
}
