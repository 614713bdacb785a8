package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/bastiangx/scriptserve/internal/utils"
	"github.com/bastiangx/scriptserve/pkg/debounce"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
)

// ReloadDelay coalesces the burst of events an editor save produces.
const ReloadDelay = 250 * time.Millisecond

// Watcher reloads a Store whenever its config file changes on disk.
type Watcher struct {
	store    *Store
	path     string
	watcher  *fsnotify.Watcher
	reloader *debounce.Scheduler

	closeOnce sync.Once
	done      chan struct{}
}

// Watch starts watching the store's file. The directory is watched rather
// than the file so editors that save by rename are still seen.
func Watch(store *Store) (*Watcher, error) {
	return watch(store, ReloadDelay, nil)
}

func watch(store *Store, delay time.Duration, clock debounce.Clock) (*Watcher, error) {
	path := store.Path()
	if path == "" {
		return nil, errors.New("config store has no file to watch")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating fsnotify watcher")
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "watching %s", filepath.Dir(path))
	}

	w := &Watcher{
		store:   store,
		path:    filepath.Clean(path),
		watcher: fw,
		done:    make(chan struct{}),
	}
	w.reloader = debounce.New(delay, clock, w.reload)
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				log.Debugf("Config watcher saw %s on %s", event.Op, event.Name)
				w.reloader.Arm()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("Config watcher error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	if !utils.FileExists(w.path) {
		log.Debugf("Config %s vanished, keeping current values", w.path)
		return
	}
	cfg, err := LoadConfig(w.path)
	if err != nil {
		log.Warnf("Config reload from %s failed: %v", w.path, err)
		return
	}
	w.store.Set(cfg)
	log.Debugf("Config reloaded from %s", w.path)
}

// Close stops watching.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.reloader.Cancel()
		err = w.watcher.Close()
		<-w.done
	})
	return err
}
