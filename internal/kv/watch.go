package kv

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/pocketnotes/internal/checksum"
)

// ChangeCallback is called when the file behind a watched key changes.
// sum is the new content checksum, or checksum.Empty when the key was removed.
type ChangeCallback func(key, sum string)

const settleDelay = 100 * time.Millisecond

// Watch observes the FS root and reports changes to key until ctx is
// cancelled. Bursts of events are debounced and only reported when the
// file's checksum differs from the last one seen, so repeated writes of the
// same bytes stay quiet.
func Watch(ctx context.Context, store *FS, key string, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(store.Root()); err != nil {
		return err
	}

	target := store.KeyFile(key)
	last := fileSum(target)

	logger.Info("watcher: started", slog.String("root", store.Root()), slog.String("key", key))

	var settle *time.Timer
	var settleCh <-chan time.Time
	schedule := func() {
		if settle == nil {
			settle = time.NewTimer(settleDelay)
			settleCh = settle.C
		} else {
			settle.Reset(settleDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if settle != nil {
				settle.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-settleCh:
			sum := fileSum(target)
			if sum == last {
				continue
			}
			last = sum
			logger.Debug("watcher: key changed", slog.String("key", key), slog.String("checksum", sum))
			if cb != nil {
				cb(key, sum)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// Temp files are renamed onto the target, so only the target
			// name is of interest.
			if name, ok := keyFromFile(ev.Name); !ok || name != key {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func fileSum(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return checksum.Empty
	}
	return checksum.Sum(data)
}
