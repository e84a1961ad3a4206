package cli

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/proxygen/internal/emitter"
	"github.com/toyz/proxygen/internal/errors"
	"github.com/toyz/proxygen/internal/templates"
	"github.com/toyz/proxygen/internal/utils"
)

// Cleaner removes artifacts produced by earlier runs. Only files that start with the
// generated header are removed, so hand-written files sharing the extension survive.
type Cleaner struct {
	extension string
	header    []byte
}

// cleanScope is one directory the cleaner searches
type cleanScope struct {
	dir       string
	recursive bool
}

// NewCleaner creates a cleaner for artifacts with the given extension
func NewCleaner(extension string) *Cleaner {
	header, err := templates.GenerateHeader(emitter.ToolName)
	if err != nil {
		header = "// Code generated by " + emitter.ToolName
	}
	return &Cleaner{
		extension: strings.TrimPrefix(extension, "."),
		header:    []byte(header),
	}
}

// CleanGeneratedFiles removes generated artifacts anywhere below the root of each input
// and returns the removed paths in sorted order. Inputs use the same forms the scanner
// accepts; a file input stands for its directory.
func (c *Cleaner) CleanGeneratedFiles(inputs []string) ([]string, error) {
	scopes := make([]cleanScope, 0, len(inputs))
	for _, input := range inputs {
		root, _ := RootOf(input)
		if filepath.Ext(root) == utils.SourceExtension {
			root = filepath.Dir(root)
		}
		scopes = append(scopes, cleanScope{dir: root, recursive: true})
	}
	return c.remove(scopes, nil)
}

// Prune removes generated artifacts that the last pass did not produce, so a binding
// that disappears takes its artifact with it. Only directory inputs are searched: a
// plain directory covers its own files and dir/... its whole tree. File and glob inputs
// name a subset of their directory and are left alone. outDir, when set, is searched
// too. Paths in keep are never removed.
func (c *Cleaner) Prune(inputs []string, outDir string, keep []string) ([]string, error) {
	var scopes []cleanScope
	for _, input := range inputs {
		if utils.IsPattern(input) {
			continue
		}
		root, recursive := RootOf(input)
		if filepath.Ext(root) == utils.SourceExtension {
			continue
		}
		scopes = append(scopes, cleanScope{dir: root, recursive: recursive})
	}
	if outDir != "" {
		scopes = append(scopes, cleanScope{dir: outDir})
	}

	kept := make(map[string]bool, len(keep))
	for _, path := range keep {
		kept[absPath(path)] = true
	}
	return c.remove(scopes, kept)
}

func (c *Cleaner) remove(scopes []cleanScope, keep map[string]bool) ([]string, error) {
	seen := make(map[string]bool)
	var removed []string

	for _, s := range scopes {
		files, err := c.generatedFiles(s)
		if err != nil {
			return removed, err
		}

		for _, path := range files {
			abs := absPath(path)
			if seen[abs] || keep[abs] {
				continue
			}
			seen[abs] = true

			generated, err := c.isGenerated(path)
			if err != nil {
				return removed, errors.WrapFileSystemError("read", path, err)
			}
			if !generated {
				continue
			}
			if err := os.Remove(path); err != nil {
				return removed, errors.WrapFileSystemError("remove", path, err)
			}
			removed = append(removed, path)
		}
	}

	sort.Strings(removed)
	return removed, nil
}

// generatedFiles lists the files carrying the artifact extension in one scope, skipping
// build output and hidden directories
func (c *Cleaner) generatedFiles(s cleanScope) ([]string, error) {
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		return nil, nil
	}

	opts := utils.FileWalkOptions{
		FileFilter:      utils.GeneratedFileFilter(c.extension),
		DirectoryFilter: utils.DefaultDirectoryFilter(),
	}
	if !s.recursive {
		opts.DirectoryFilter = func(string, fs.DirEntry) bool { return false }
	}

	files, err := utils.WalkFiles(s.dir, opts)
	if err != nil {
		return nil, errors.WrapFileSystemError("scan", s.dir, err)
	}
	return files, nil
}

func (c *Cleaner) isGenerated(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, len(c.header))
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return bytes.Equal(buf[:n], c.header), nil
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
