package main

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/ztrue/tracerr"
)

// watch calls rebuild once up front and again whenever a source file or the
// manifest in dir changes. It only returns on watcher failure.
func watch(dir string, rebuild func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return tracerr.Wrap(err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return tracerr.Wrap(err)
	}

	run := func() {
		if err := rebuild(); err != nil {
			log.Printf("build failed: %v", err)
		}
	}
	run()

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if !strings.HasSuffix(name, sourceSuffix) && name != manifestName {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				log.Printf("%s changed, rebuilding", name)
				run()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return tracerr.Wrap(err)
		}
	}
}
