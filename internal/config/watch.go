package config

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// WatchLive watches cfg's override file (if one was set) for writes and
// refreshes live with RetentionSeconds/DefaultEncoding on each one. It
// returns immediately if cfg.ConfigFilePath is empty — hot-reload is opt-in,
// only active when OSCMDMCP_CONFIG was set in the first place.
func WatchLive(ctx context.Context, cfg *Config, live *Live, logger *slog.Logger) error {
	if cfg.ConfigFilePath == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(cfg.ConfigFilePath); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := live.Reload(cfg.ConfigFilePath); err != nil {
					logger.Warn("config hot-reload failed", "path", cfg.ConfigFilePath, "error", err)
					continue
				}
				logger.Info("config hot-reloaded",
					"path", cfg.ConfigFilePath,
					"retention_seconds", live.RetentionSeconds(),
					"default_encoding", live.DefaultEncoding())
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", "error", err)
			}
		}
	}()

	return nil
}
