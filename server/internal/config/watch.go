package config

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config at path whenever the file is written and hands
// the result to onChange. It runs until ctx is cancelled.
//
// Only log_level takes effect live. The dataset is loaded once per process,
// and listeners are bound at startup, so changes to those settings are
// logged as needing a restart and otherwise ignored. A reload that fails
// validation keeps the previous config and onChange is not called.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	// prev is nil when the file is currently invalid; every later good
	// reload is then compared against nothing.
	prev, _ := Load(path)
	slog.Info("config: watching for log level changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Atomic-save editors replace the file, which shows up as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// Re-add in case an atomic save replaced the inode.
			_ = watcher.Add(path)

			next, err := Load(path)
			if err != nil {
				slog.Error("config: reload failed, keeping previous config",
					"path", path, "err", err)
				continue
			}

			if fields := RestartRequired(prev, next); len(fields) > 0 {
				slog.Warn("config: changes need a restart, dataset is not reloaded",
					"path", path, "fields", fields)
			}
			slog.Info("config: reloaded", "path", path, "log_level", next.Server.LogLevel)
			prev = next
			onChange(next)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

// RestartRequired lists the YAML keys that differ between prev and next but
// are only read at startup. A nil prev yields nil.
func RestartRequired(prev, next *Config) []string {
	if prev == nil || next == nil {
		return nil
	}
	a, b := prev.Server, next.Server

	var fields []string
	if a.HTTPPort != b.HTTPPort {
		fields = append(fields, "server.http_port")
	}
	if a.UIDir != b.UIDir {
		fields = append(fields, "server.ui_dir")
	}
	if a.Dataset != b.Dataset {
		fields = append(fields, "server.dataset")
	}
	if a.Slider != b.Slider {
		fields = append(fields, "server.slider")
	}
	if a.WS != b.WS {
		fields = append(fields, "server.ws")
	}
	return fields
}
