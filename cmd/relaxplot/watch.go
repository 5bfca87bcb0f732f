package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	werrors "github.com/r3d91ll/relaxplot/pkg/errors"
)

// defaultDebounce coalesces the burst of events an editor save produces.
const defaultDebounce = 200 * time.Millisecond

// watchFile calls fn after path is written, created or replaced, at most
// once per debounce interval, until ctx is done. The parent directory is
// watched so that editors that save by renaming are still seen.
func watchFile(ctx context.Context, path string, debounce time.Duration, logger *slog.Logger, fn func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return werrors.WrapIO(err, werrors.ErrIOReadFailed, "cannot resolve dataset path").
			WithContext("path", path)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return werrors.WrapIO(err, werrors.ErrIOReadFailed, "cannot start file watcher")
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return werrors.WrapIO(err, werrors.ErrIOReadFailed, "cannot watch dataset directory").
			WithContext("path", filepath.Dir(abs))
	}
	logger.Debug("watching dataset", "path", abs)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("dataset changed", "op", ev.Op.String())
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "error", err)

		case <-timer.C:
			fn()
		}
	}
}
