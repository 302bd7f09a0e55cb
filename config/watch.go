package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/rainlang/rainlsp/meta"
)

// OnChange receives a freshly loaded rainconfig and the store built from it.
type OnChange func(config *Config, store *meta.Store)

// Watch reloads the rainconfig at path whenever it changes and hands the
// result to onChange. A file that fails to load is logged and skipped. Watch
// blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange OnChange) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer watcher.Close()

	path = filepath.Clean(path)
	// editors often replace the file, so watch its directory
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return errors.Wrapf(err, "watch %s", path)
	}
	log.Infof("watching %s", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			reload(path, onChange)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Errorf("watch %s: %s", path, err.Error())
		}
	}
}

func reload(path string, onChange OnChange) {
	config, err := Load(path)
	if err != nil {
		log.Errorf("%s", err.Error())
		return
	}
	store, err := config.Store()
	if err != nil {
		log.Errorf("%s", err.Error())
		return
	}
	log.Noticef("reloaded %s", path)
	onChange(config, store)
}
