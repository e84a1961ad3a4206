package cli

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/toyz/proxygen/internal/errors"
	"github.com/toyz/proxygen/internal/utils"
)

// Watcher re-runs generation when C# sources change
type Watcher struct {
	roots       []string
	extension   string
	debounce    time.Duration
	diagnostics *utils.DiagnosticSystem
	run         func(ctx context.Context) error
}

// NewWatcher creates a watcher over the roots of inputs. run is called once per burst
// of changes, debounce after the last one.
func NewWatcher(inputs []string, extension string, debounce time.Duration, diagnostics *utils.DiagnosticSystem, run func(ctx context.Context) error) *Watcher {
	roots := make([]string, 0, len(inputs))
	for _, input := range inputs {
		root, _ := RootOf(input)
		if filepath.Ext(root) == utils.SourceExtension {
			root = filepath.Dir(root)
		}
		roots = append(roots, root)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		roots:       roots,
		extension:   extension,
		debounce:    debounce,
		diagnostics: diagnostics,
		run:         run,
	}
}

// Watch blocks until ctx is done. Errors from run are reported and watching goes on.
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.FileSystemErrorCode, "failed to create file watcher", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, root := range w.roots {
		if err := w.addTree(watcher, root); err != nil {
			return errors.WrapFileSystemError("watch", root, err)
		}
	}
	w.diagnostics.Info("Watching %s for changes (Ctrl+C to stop)", strings.Join(w.roots, ", "))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(watcher, event.Name); err != nil {
						w.diagnostics.Warn("Cannot watch %s: %v", event.Name, err)
					}
					continue
				}
			}
			if !w.relevant(event) {
				continue
			}
			w.diagnostics.Debug("Change detected: %s", event)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Stop()
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := w.run(ctx); err != nil {
				w.diagnostics.Error("Generation failed: %v", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.diagnostics.Warn("Watcher error: %v", err)
		}
	}
}

// relevant reports whether an event touches a scanned source file. Generated artifacts
// are ignored, which keeps a pass from triggering the next one.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	generated := "." + strings.TrimPrefix(w.extension, ".")
	return strings.HasSuffix(name, utils.SourceExtension) && !strings.HasSuffix(name, generated)
}

// addTree watches dir and every directory below it that the scanner would visit
func (w *Watcher) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && utils.SkippedDirectory(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
