package tui

import (
	"path/filepath"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/colonyops/pl/internal/core/logging"
)

// FilesChangedMsg is sent when a watched file was written, replaced or removed.
type FilesChangedMsg struct {
	Paths []string
}

// FileWatcher watches individual files (the configuration document and the
// todo cache) and emits FilesChangedMsg via tea.Cmd. Parent directories are
// watched so atomic temp-file+rename writes are seen.
type FileWatcher struct {
	watcher     *fsnotify.Watcher
	files       map[string]bool
	debounceDur time.Duration
	log         zerolog.Logger
}

// NewFileWatcher creates a watcher for paths. Returns nil if no parent
// directory can be watched or fsnotify fails.
func NewFileWatcher(paths []string) *FileWatcher {
	log := logging.Component("tui-watcher")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn().Err(err).Msg("failed to create fsnotify watcher")
		return nil
	}

	w := &FileWatcher{
		watcher:     watcher,
		files:       map[string]bool{},
		debounceDur: 200 * time.Millisecond,
		log:         log,
	}

	dirs := map[string]bool{}
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	added := 0
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			w.log.Debug().Err(err).Str("dir", dir).Msg("skipping directory")
			continue
		}
		added++
	}

	if added == 0 {
		_ = watcher.Close()
		return nil
	}

	return w
}

// Start returns a tea.Cmd that blocks until a watched file changes, then
// returns a FilesChangedMsg. The caller must re-invoke Start after
// processing the message to continue watching.
func (w *FileWatcher) Start() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-w.watcher.Events:
				if !ok {
					return nil
				}
				if !w.relevant(event) {
					continue
				}

				w.log.Debug().
					Str("path", event.Name).
					Str("op", event.Op.String()).
					Msg("file system event")

				changed := map[string]bool{filepath.Clean(event.Name): true}

				debounce := time.NewTimer(w.debounceDur)
			debounceLoop:
				for {
					select {
					case e, ok := <-w.watcher.Events:
						if !ok {
							break debounceLoop
						}
						if w.relevant(e) {
							changed[filepath.Clean(e.Name)] = true
						}
						if !debounce.Stop() {
							<-debounce.C
						}
						debounce.Reset(w.debounceDur)
					case <-debounce.C:
						break debounceLoop
					}
				}

				paths := make([]string, 0, len(changed))
				for p := range changed {
					paths = append(paths, p)
				}
				sort.Strings(paths)

				return FilesChangedMsg{Paths: paths}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return nil
				}
				w.log.Error().Err(err).Msg("watcher error")
			}
		}
	}
}

// Close stops the watcher.
func (w *FileWatcher) Close() error {
	return w.watcher.Close()
}

func (w *FileWatcher) relevant(event fsnotify.Event) bool {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return false
	}
	return w.files[filepath.Clean(event.Name)]
}
