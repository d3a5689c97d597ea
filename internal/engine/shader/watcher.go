package shader

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/glsandbox/internal/logger"
)

// Watcher reports shader files that changed on disk.
type Watcher struct {
	fsw     *fsnotify.Watcher
	changes chan string
	done    chan struct{}
	log     *zap.Logger
}

// Watch starts watching dir for written or created shader files.
func Watch(dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		changes: make(chan string, 16),
		done:    make(chan struct{}),
		log:     logger.Named("shader"),
	}
	go w.start()

	w.log.Info("Watching shaders", zap.String("dir", dir))
	return w, nil
}

// Changes delivers base names of changed files. Events are dropped while
// the channel is full.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) start() {
	for {
		select {
		case e, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !isShader(e.Name) {
				continue
			}
			select {
			case w.changes <- filepath.Base(e.Name):
			default:
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("Watcher error", zap.Error(err))
		case <-w.done:
			return
		}
	}
}

func isShader(name string) bool {
	switch filepath.Ext(name) {
	case ".vert", ".frag":
		return true
	}
	return false
}
