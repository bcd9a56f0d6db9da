package sanitize

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/sudokufaceoff/faceoff/internal/locale"
)

// Watch sanitizes locale files of the directory each time they are written or created,
// until ctx is cancelled. onFile, if not nil, is called after each sanitized file.
//
// Errors on a single file are logged and do not stop the watch.
func (s Sanitizer) Watch(ctx context.Context, onFile func(FileReport)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %v", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("failed to add directory %s to watcher: %v", s.dir, err)
	}
	s.log.Info("Watching locale directory", "dir", s.dir)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Locale watcher stopped")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed unexpectedly")
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			name := filepath.Base(event.Name)
			if !locale.IsLocaleFile(name) {
				continue
			}

			f := locale.File{Locale: strings.TrimSuffix(name, filepath.Ext(name)), Path: event.Name}
			fr, err := s.File(f)
			if err != nil {
				// Editors often write in several steps: the next event will retry.
				s.log.Warn("Could not sanitize changed file", "file", event.Name, "error", err)
				continue
			}
			if onFile != nil {
				onFile(fr)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed unexpectedly")
			}
			s.log.Warn("Watcher error", "error", err)
		}
	}
}
