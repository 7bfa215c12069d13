// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package watcher reports changes made to the managed configuration files
// by anything, including hand edits.
package watcher

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/stratastor/logger"
	"github.com/stratastor/smbadmin/pkg/errors"
	"github.com/stratastor/smbadmin/pkg/metrics"
)

// Watcher observes files by watching their parent directories, so editors
// that replace a file on save are still seen.
type Watcher struct {
	logger  logger.Logger
	metrics *metrics.Metrics
	watcher *fsnotify.Watcher
	files   map[string]string // absolute path -> label
}

// New watches files, keyed by the label used in logs and metrics. Files
// whose directory does not exist are skipped with a warning.
func New(l logger.Logger, m *metrics.Metrics, files map[string]string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.WatcherError).WithMetadata("operation", "create")
	}

	w := &Watcher{
		logger:  l,
		metrics: m,
		watcher: fw,
		files:   make(map[string]string, len(files)),
	}

	dirs := map[string]bool{}
	for label, path := range files {
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = filepath.Clean(path)
		}
		w.files[abs] = label

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			l.Warn("Cannot watch configuration directory", "dir", dir, "file", label, "error", err)
			continue
		}
		dirs[dir] = true
	}

	if len(dirs) == 0 {
		_ = fw.Close()
		return nil, errors.New(errors.WatcherError, "no configuration directory could be watched")
	}
	return w, nil
}

// Run handles events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Configuration watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	label, ok := w.files[filepath.Clean(event.Name)]
	if !ok {
		return
	}
	op := opName(event.Op)
	if op == "" {
		return
	}

	w.metrics.ObserveFileEvent(label, op)
	w.logger.Info("Configuration file changed", "file", label, "path", event.Name, "op", op)
}

// opName returns the label for the first meaningful bit of op. Permission
// changes are ignored.
func opName(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	}
	return ""
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Files lists the watched files by label.
func (w *Watcher) Files() map[string]string {
	out := make(map[string]string, len(w.files))
	for path, label := range w.files {
		out[label] = path
	}
	return out
}
