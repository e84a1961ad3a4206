package utils

import (
	"fmt"
	"path/filepath"

	"github.com/toyz/proxygen/internal/annotations"
)

// FileReader parses C# sources, caching each parse until the file changes on disk
type FileReader struct {
	parser *annotations.Parser
	cache  *FileCache[*annotations.File]
}

// NewFileReader creates a new FileReader with an empty cache
func NewFileReader() *FileReader {
	return &FileReader{
		parser: annotations.NewParser(),
		cache:  NewFileCache[*annotations.File](),
	}
}

// ParseSourceFile parses the C# file at filePath. A cached parse is reused while the
// file keeps its modification time and size. Syntax errors come back unwrapped so the
// caller can report their position.
func (fr *FileReader) ParseSourceFile(filePath string) (*annotations.File, error) {
	cleanPath, err := cleanFilePath(filePath)
	if err != nil {
		return nil, err
	}
	return fr.cache.Load(cleanPath, fr.parser.ReadFile)
}

// Retain drops cached parses of files that are no longer scanned
func (fr *FileReader) Retain(paths []string) {
	clean := make([]string, 0, len(paths))
	for _, p := range paths {
		clean = append(clean, filepath.Clean(p))
	}
	fr.cache.Prune(clean)
}

// InvalidateFile removes a specific file from the cache
func (fr *FileReader) InvalidateFile(filePath string) {
	fr.cache.Delete(filepath.Clean(filePath))
}

// ClearCache clears all cached parses
func (fr *FileReader) ClearCache() {
	fr.cache.Clear()
}

// GetCacheStats returns statistics about the cache
func (fr *FileReader) GetCacheStats() CacheStats {
	return fr.cache.GetStats()
}

func cleanFilePath(filePath string) (string, error) {
	if err := NotEmpty("filePath")(filePath); err != nil {
		return "", fmt.Errorf("file path %w", err)
	}
	return filepath.Clean(filePath), nil
}
